package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	appreviews "staybook/internal/app/handlers/reviews"
	"staybook/internal/app/queries"
)

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func (s *Server) submitReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	review, err := commands.Dispatch[appreviews.SubmitReviewCommand, *dto.Review](c.Request.Context(), s.Commands, appreviews.SubmitReviewCommand{
		CommandID: uuid.NewString(),
		ListingID: c.Param("id"),
		AuthorID:  principal(c).ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (s *Server) listReviews(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	result, err := queries.Ask[appreviews.ListReviewsQuery, dto.ReviewCollection](c.Request.Context(), s.Queries, appreviews.ListReviewsQuery{
		ListingID: c.Param("id"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
