package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"staybook/internal/app/policies"
	authsvc "staybook/internal/app/services/auth"
	domainauth "staybook/internal/domain/auth"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpayments "staybook/internal/domain/payments"
	domainreviews "staybook/internal/domain/reviews"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/obs"
)

// respondError translates domain errors into HTTP statuses. Anything
// unmatched logs as a 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainlistings.ErrNotFound),
		errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainpayments.ErrNotFound),
		errors.Is(err, domainreviews.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})

	case errors.Is(err, domainbooking.ErrOverlap),
		errors.Is(err, domainbooking.ErrListingUnavailable),
		errors.Is(err, domainbooking.ErrOutsideWindow),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainpayments.ErrDuplicatePayment),
		errors.Is(err, domainpayments.ErrReferenceTaken),
		errors.Is(err, domainreviews.ErrDuplicateReview),
		errors.Is(err, domainuser.ErrEmailAlreadyUsed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, domainbooking.ErrNotGuest),
		errors.Is(err, domainlistings.ErrNotOwner),
		errors.Is(err, domainreviews.ErrOwnListing):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, authsvc.ErrInvalidCredentials),
		errors.Is(err, authsvc.ErrSessionExpired),
		errors.Is(err, domainauth.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

	case errors.Is(err, policies.ErrGatewayUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment gateway unavailable"})

	case errors.Is(err, policies.ErrGatewayRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "payment rejected"})

	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrCheckInInPast),
		errors.Is(err, domainbooking.ErrCapacityExceeded),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, money.ErrInvalidDecimal),
		errors.Is(err, money.ErrInvalidCurrency),
		errors.Is(err, domainlistings.ErrTitleRequired),
		errors.Is(err, domainlistings.ErrCapacity),
		errors.Is(err, domainlistings.ErrNightlyRate),
		errors.Is(err, domainlistings.ErrAvailabilityWindow),
		errors.Is(err, domainreviews.ErrInvalidRating),
		errors.Is(err, authsvc.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		obs.Logger(c).Error("request failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
