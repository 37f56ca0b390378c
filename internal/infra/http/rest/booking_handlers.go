package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	appbooking "staybook/internal/app/handlers/booking"
	"staybook/internal/app/queries"
)

type bookingRequest struct {
	ListingID string    `json:"listing_id" binding:"required"`
	CheckIn   time.Time `json:"check_in" binding:"required"`
	CheckOut  time.Time `json:"check_out" binding:"required"`
	Guests    int       `json:"guests" binding:"required"`
}

func (s *Server) requestBooking(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[appbooking.RequestBookingCommand, *appbooking.RequestBookingResult](c.Request.Context(), s.Commands, appbooking.RequestBookingCommand{
		CommandID:       uuid.NewString(),
		ListingID:       req.ListingID,
		GuestID:         principal(c).ID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) cancelBooking(c *gin.Context) {
	var req cancelRequest
	_ = c.ShouldBindJSON(&req)
	result, err := commands.Dispatch[appbooking.CancelBookingCommand, *appbooking.CancelBookingResult](c.Request.Context(), s.Commands, appbooking.CancelBookingCommand{
		BookingID: c.Param("id"),
		ActorID:   principal(c).ID,
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) myBookings(c *gin.Context) {
	result, err := queries.Ask[appbooking.GuestBookingsQuery, dto.BookingCollection](c.Request.Context(), s.Queries, appbooking.GuestBookingsQuery{
		GuestID: principal(c).ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
