package booking

import (
	"errors"
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var (
	ErrCheckInInPast      = errors.New("booking: check-in date is in the past")
	ErrListingUnavailable = errors.New("booking: listing is not available")
	ErrOutsideWindow      = errors.New("booking: dates fall outside the listing availability window")
	ErrCapacityExceeded   = errors.New("booking: guests count exceeds listing capacity")
)

// PriceQuote is the result of validating and pricing a requested stay.
type PriceQuote struct {
	Nights int
	Total  money.Money
}

// Quote validates a requested stay against the listing and prices it:
// nights = max(1, whole days between check-in and check-out), total =
// nightly rate x nights. Pure; create and update flows run it identically.
func Quote(listing *listings.Listing, dr daterange.DateRange, guests int, now time.Time) (PriceQuote, error) {
	if err := dr.Validate(); err != nil {
		return PriceQuote{}, err
	}
	if dr.CheckIn.Before(daterange.Midnight(now)) {
		return PriceQuote{}, ErrCheckInInPast
	}
	if !listing.Available {
		return PriceQuote{}, ErrListingUnavailable
	}
	if !listing.WindowCovers(dr) {
		return PriceQuote{}, ErrOutsideWindow
	}
	if guests <= 0 {
		return PriceQuote{}, ErrInvalidGuests
	}
	if guests > listing.Capacity {
		return PriceQuote{}, ErrCapacityExceeded
	}
	nights := dr.Nights()
	return PriceQuote{
		Nights: nights,
		Total:  listing.NightlyRate.Multiply(int64(nights)),
	}, nil
}
