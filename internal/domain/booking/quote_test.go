package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func july(d int) time.Time {
	return time.Date(2026, time.July, d, 0, 0, 0, 0, time.UTC)
}

func testListing(t *testing.T) *listings.Listing {
	t.Helper()
	l, err := listings.NewListing(listings.CreateParams{
		ID:            "lst-1",
		Owner:         "owner-1",
		Title:         "Lakeside cottage",
		Location:      "Bahir Dar",
		NightlyRate:   money.Must(10000, "ETB"),
		Capacity:      2,
		AvailableFrom: july(1),
		AvailableTo:   july(31),
		Now:           july(1),
	})
	require.NoError(t, err)
	return l
}

func TestQuotePricesWholeNights(t *testing.T) {
	l := testListing(t)
	dr, err := daterange.New(july(10), july(12))
	require.NoError(t, err)

	quote, err := booking.Quote(l, dr, 2, july(1))
	require.NoError(t, err)
	assert.Equal(t, 2, quote.Nights)
	assert.Equal(t, money.Must(20000, "ETB"), quote.Total)
}

func TestQuotePricesByCalendarDay(t *testing.T) {
	l := testListing(t)

	// a late check-in and an early check-out still span two nights
	dr, err := daterange.New(july(10).Add(22*time.Hour), july(12).Add(2*time.Hour))
	require.NoError(t, err)

	quote, err := booking.Quote(l, dr, 2, july(1))
	require.NoError(t, err)
	assert.Equal(t, 2, quote.Nights)
	assert.Equal(t, money.Must(20000, "ETB"), quote.Total)
}

func TestQuoteRejectsOverCapacity(t *testing.T) {
	l := testListing(t)
	dr, err := daterange.New(july(10), july(12))
	require.NoError(t, err)

	_, err = booking.Quote(l, dr, 3, july(1))
	assert.ErrorIs(t, err, booking.ErrCapacityExceeded)

	_, err = booking.Quote(l, dr, 0, july(1))
	assert.ErrorIs(t, err, booking.ErrInvalidGuests)
}

func TestQuoteRejectsPastCheckIn(t *testing.T) {
	l := testListing(t)
	dr, err := daterange.New(july(10), july(12))
	require.NoError(t, err)

	_, err = booking.Quote(l, dr, 2, july(11))
	assert.ErrorIs(t, err, booking.ErrCheckInInPast)

	// check-in today is fine
	_, err = booking.Quote(l, dr, 2, july(10).Add(18*time.Hour))
	assert.NoError(t, err)
}

func TestQuoteRejectsOutsideWindow(t *testing.T) {
	l := testListing(t)
	dr, err := daterange.New(july(30), time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = booking.Quote(l, dr, 2, july(1))
	assert.ErrorIs(t, err, booking.ErrOutsideWindow)
}

func TestQuoteRejectsUnavailableListing(t *testing.T) {
	l := testListing(t)
	l.Available = false
	dr, err := daterange.New(july(10), july(12))
	require.NoError(t, err)

	_, err = booking.Quote(l, dr, 2, july(1))
	assert.ErrorIs(t, err, booking.ErrListingUnavailable)
}
