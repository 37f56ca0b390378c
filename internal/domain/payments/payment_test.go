package payments_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/payments"
	"staybook/internal/domain/shared/money"
)

func at(h int) time.Time {
	return time.Date(2026, time.July, 1, h, 0, 0, 0, time.UTC)
}

func testPayment(t *testing.T) *payments.Payment {
	t.Helper()
	p, err := payments.NewPayment(payments.CreateParams{
		ID:            "pay-1",
		BookingID:     "bkg-1",
		Reference:     "ref-1",
		TransactionID: "TXN_ABC123DEF4",
		Amount:        money.Must(20000, "ETB"),
		CreatedAt:     at(9),
	})
	require.NoError(t, err)
	return p
}

func TestNewPaymentStartsPending(t *testing.T) {
	p := testPayment(t)
	assert.Equal(t, payments.StatePending, p.State)
	assert.True(t, p.Active())

	events := p.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "payments.initiated", events[0].EventName())
}

func TestCompleteEmitsReceiptEvent(t *testing.T) {
	p := testPayment(t)
	p.ClearEvents()

	receipt := payments.Receipt{GuestEmail: "guest@example.com", GuestName: "Abebe", ListingTitle: "Lakeside cottage"}
	require.NoError(t, p.Complete(receipt, at(10)))
	assert.Equal(t, payments.StateCompleted, p.State)

	events := p.PendingEvents()
	require.Len(t, events, 1)
	completed, ok := events[0].(payments.PaymentCompleted)
	require.True(t, ok)
	assert.Equal(t, "guest@example.com", completed.GuestEmail)
	assert.Equal(t, "Lakeside cottage", completed.ListingTitle)
}

func TestTerminalStatesAbsorbTransitions(t *testing.T) {
	p := testPayment(t)
	require.NoError(t, p.Complete(payments.Receipt{}, at(10)))
	p.ClearEvents()

	// a late failure report must not flip a completed payment
	require.NoError(t, p.Fail("late gateway callback", at(11)))
	assert.Equal(t, payments.StateCompleted, p.State)
	assert.Empty(t, p.PendingEvents())

	require.NoError(t, p.Complete(payments.Receipt{}, at(12)))
	assert.Empty(t, p.PendingEvents(), "re-completing must not emit another event")

	f := testPayment(t)
	require.NoError(t, f.Fail("declined", at(10)))
	f.ClearEvents()
	require.NoError(t, f.Complete(payments.Receipt{}, at(11)))
	assert.Equal(t, payments.StateFailed, f.State)
	assert.False(t, f.Active())
}
