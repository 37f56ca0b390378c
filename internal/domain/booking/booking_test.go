package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func testBooking(t *testing.T) *booking.Booking {
	t.Helper()
	dr, err := daterange.New(july(10), july(12))
	require.NoError(t, err)
	b, err := booking.NewBooking(booking.CreateParams{
		ID:        "bkg-1",
		ListingID: "lst-1",
		GuestID:   "guest-1",
		Range:     dr,
		Guests:    2,
		Total:     money.Must(20000, "ETB"),
		CreatedAt: july(1),
	})
	require.NoError(t, err)
	return b
}

func TestNewBookingStartsPending(t *testing.T) {
	b := testBooking(t)
	assert.Equal(t, booking.StatePending, b.State)
	assert.True(t, b.Active())

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.requested", events[0].EventName())
}

func TestConfirmIsIdempotent(t *testing.T) {
	b := testBooking(t)
	require.NoError(t, b.Confirm(july(2)))
	assert.Equal(t, booking.StateConfirmed, b.State)

	b.ClearEvents()
	require.NoError(t, b.Confirm(july(3)))
	assert.Equal(t, booking.StateConfirmed, b.State)
	assert.Empty(t, b.PendingEvents(), "re-confirming must not emit another event")
}

func TestConfirmRejectsTerminalStates(t *testing.T) {
	b := testBooking(t)
	require.NoError(t, b.Cancel("plans changed", july(2)))
	assert.ErrorIs(t, b.Confirm(july(3)), booking.ErrInvalidState)
}

func TestCancelFromPendingAndConfirmed(t *testing.T) {
	b := testBooking(t)
	require.NoError(t, b.Cancel("", july(2)))
	assert.Equal(t, booking.StateCancelled, b.State)
	assert.False(t, b.Active())

	c := testBooking(t)
	require.NoError(t, c.Confirm(july(2)))
	require.NoError(t, c.Cancel("", july(3)))
	assert.Equal(t, booking.StateCancelled, c.State)

	assert.ErrorIs(t, c.Cancel("", july(4)), booking.ErrInvalidState)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	b := testBooking(t)
	assert.ErrorIs(t, b.Complete(july(13)), booking.ErrInvalidState)

	require.NoError(t, b.Confirm(july(2)))
	require.NoError(t, b.Complete(july(13)))
	assert.Equal(t, booking.StateCompleted, b.State)
	assert.ErrorIs(t, b.Complete(july(14)), booking.ErrInvalidState)
}
