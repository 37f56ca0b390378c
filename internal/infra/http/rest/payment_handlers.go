package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	apppayments "staybook/internal/app/handlers/payments"
	"staybook/internal/app/queries"
)

type initiatePaymentRequest struct {
	ReturnURL string `json:"return_url"`
}

func (s *Server) initiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	_ = c.ShouldBindJSON(&req)
	bookingID := c.Param("id")
	result, err := commands.Dispatch[apppayments.InitiatePaymentCommand, *apppayments.InitiatePaymentResult](c.Request.Context(), s.Commands, apppayments.InitiatePaymentCommand{
		BookingID:   bookingID,
		ActorID:     principal(c).ID,
		ReturnURL:   req.ReturnURL,
		CallbackURL: s.PublicBaseURL + "/api/v1/bookings/" + bookingID + "/payments/verify",
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type verifyPaymentRequest struct {
	Reference string `json:"reference"`
}

func (s *Server) verifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	_ = c.ShouldBindJSON(&req)
	reference := req.Reference
	if reference == "" {
		reference = c.Query("tx_ref")
	}
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference required"})
		return
	}
	result, err := commands.Dispatch[apppayments.VerifyPaymentCommand, *apppayments.VerifyPaymentResult](c.Request.Context(), s.Commands, apppayments.VerifyPaymentCommand{
		BookingID: c.Param("id"),
		Reference: reference,
		ActorID:   principal(c).ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listPayments(c *gin.Context) {
	result, err := queries.Ask[apppayments.BookingPaymentsQuery, dto.PaymentCollection](c.Request.Context(), s.Queries, apppayments.BookingPaymentsQuery{
		BookingID: c.Param("id"),
		ActorID:   principal(c).ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
