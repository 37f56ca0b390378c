package rest

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/queries"
	authsvc "staybook/internal/app/services/auth"
	"staybook/internal/infra/obs"
)

// Server wires the HTTP surface to the application buses.
type Server struct {
	Logger   *slog.Logger
	Commands commands.Bus
	Queries  queries.Bus
	Auth     *authsvc.Service
	Ready    map[string]obs.ReadinessCheck
	Currency string
	// PublicBaseURL is the externally reachable origin used to build the
	// gateway callback URL.
	PublicBaseURL string
}

func (s *Server) Router(env string) *gin.Engine {
	if env == "prod" || env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(obs.RequestID(), obs.Logging(s.Logger), obs.Recovery(s.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", obs.RequestIDHeader},
		ExposeHeaders:    []string{obs.RequestIDHeader},
		AllowCredentials: false,
	}))

	r.GET("/livez", obs.Livez())
	r.GET("/readyz", obs.Readyz(s.Ready))

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.POST("/logout", s.requireAuth(), s.logout)
		auth.GET("/me", s.requireAuth(), s.me)
	}

	listings := api.Group("/listings")
	{
		listings.GET("", s.listListings)
		listings.GET("/:id", s.getListing)
		listings.GET("/:id/reviews", s.listReviews)
		listings.POST("", s.requireAuth(), s.createListing)
		listings.PUT("/:id", s.requireAuth(), s.updateListing)
		listings.POST("/:id/photos", s.requireAuth(), s.uploadPhoto)
		listings.POST("/:id/reviews", s.requireAuth(), s.submitReview)
	}

	bookings := api.Group("/bookings", s.requireAuth())
	{
		bookings.POST("", s.requestBooking)
		bookings.POST("/:id/cancel", s.cancelBooking)
		bookings.GET("/:id/payments", s.listPayments)
		bookings.POST("/:id/payments", s.initiatePayment)
		bookings.POST("/:id/payments/verify", s.verifyPayment)
	}

	api.GET("/me/bookings", s.requireAuth(), s.myBookings)

	return r
}
