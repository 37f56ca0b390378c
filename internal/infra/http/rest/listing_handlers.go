package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	applistings "staybook/internal/app/handlers/listings"
	"staybook/internal/app/queries"
)

const maxPhotoBytes = 10 << 20

type listingRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	NightlyRate   string     `json:"nightly_rate" binding:"required"`
	Currency      string     `json:"currency"`
	Capacity      int        `json:"capacity" binding:"required"`
	Amenities     []string   `json:"amenities"`
	AvailableFrom *time.Time `json:"available_from"`
	AvailableTo   *time.Time `json:"available_to"`
	Available     *bool      `json:"available"`
}

func (s *Server) createListing(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := applistings.CreateListingCommand{
		CommandID:   uuid.NewString(),
		OwnerID:     principal(c).ID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		NightlyRate: req.NightlyRate,
		Currency:    s.currencyOr(req.Currency),
		Capacity:    req.Capacity,
		Amenities:   req.Amenities,
	}
	if req.AvailableFrom != nil {
		cmd.AvailableFrom = *req.AvailableFrom
	}
	if req.AvailableTo != nil {
		cmd.AvailableTo = *req.AvailableTo
	}
	listing, err := commands.Dispatch[applistings.CreateListingCommand, *dto.Listing](c.Request.Context(), s.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (s *Server) updateListing(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	cmd := applistings.UpdateListingCommand{
		ListingID:   c.Param("id"),
		ActorID:     principal(c).ID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		NightlyRate: req.NightlyRate,
		Currency:    s.currencyOr(req.Currency),
		Capacity:    req.Capacity,
		Amenities:   req.Amenities,
		Available:   available,
	}
	if req.AvailableFrom != nil {
		cmd.AvailableFrom = *req.AvailableFrom
	}
	if req.AvailableTo != nil {
		cmd.AvailableTo = *req.AvailableTo
	}
	listing, err := commands.Dispatch[applistings.UpdateListingCommand, *dto.Listing](c.Request.Context(), s.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (s *Server) getListing(c *gin.Context) {
	listing, err := queries.Ask[applistings.GetListingQuery, *dto.Listing](c.Request.Context(), s.Queries, applistings.GetListingQuery{
		ListingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (s *Server) listListings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	result, err := queries.Ask[applistings.ListListingsQuery, dto.ListingCollection](c.Request.Context(), s.Queries, applistings.ListListingsQuery{
		Owner:    c.Query("owner"),
		Location: c.Query("location"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) uploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file required"})
		return
	}
	if file.Size > maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo too large"})
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer src.Close()

	result, err := commands.Dispatch[applistings.AttachPhotoCommand, *applistings.AttachPhotoResult](c.Request.Context(), s.Commands, applistings.AttachPhotoCommand{
		ListingID:   c.Param("id"),
		ActorID:     principal(c).ID,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        src,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) currencyOr(currency string) string {
	if currency != "" {
		return currency
	}
	return s.Currency
}
