package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/policies"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/payments"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/notify"
	"staybook/internal/infra/outbox"
)

type fakeNotifier struct {
	err  error
	sent []policies.PaymentConfirmation
}

func (n *fakeNotifier) SendPaymentConfirmation(ctx context.Context, msg policies.PaymentConfirmation) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func newHandler(notifier *fakeNotifier) *notify.Handler {
	return &notify.Handler{Notifier: notifier, Logger: slog.New(slog.DiscardHandler)}
}

func completedEnvelope(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(payments.PaymentCompleted{
		PaymentID:    "pay-1",
		BookingID:    booking.BookingID("bkg-1"),
		Reference:    "ref-1",
		Amount:       money.Must(20000, "ETB"),
		GuestEmail:   "guest@example.com",
		GuestName:    "Abebe Bikila",
		ListingTitle: "Lakeside cottage",
		At:           time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	envelope, err := json.Marshal(outbox.Envelope{
		SpecVersion: "1.0",
		ID:          "evt-1",
		Type:        "payments.completed",
		Source:      "staybook",
		Data:        data,
	})
	require.NoError(t, err)
	return envelope
}

func TestHandleSendsConfirmation(t *testing.T) {
	notifier := &fakeNotifier{}
	handler := newHandler(notifier)

	err := handler.Handle(context.Background(), "staybook.payments.events.v1", []byte("pay-1"), completedEnvelope(t))
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)

	msg := notifier.sent[0]
	assert.Equal(t, "guest@example.com", msg.RecipientEmail)
	assert.Equal(t, "Abebe Bikila", msg.RecipientName)
	assert.Equal(t, "Lakeside cottage", msg.ListingTitle)
	assert.Equal(t, "200.00 ETB", msg.Amount)
}

func TestHandleIgnoresOtherEventTypes(t *testing.T) {
	notifier := &fakeNotifier{}
	handler := newHandler(notifier)

	envelope, err := json.Marshal(outbox.Envelope{
		SpecVersion: "1.0",
		ID:          "evt-2",
		Type:        "booking.confirmed",
		Source:      "staybook",
		Data:        json.RawMessage(`{}`),
	})
	require.NoError(t, err)

	require.NoError(t, handler.Handle(context.Background(), "staybook.booking.events.v1", nil, envelope))
	assert.Empty(t, notifier.sent)
}

func TestHandleSwallowsGarbage(t *testing.T) {
	notifier := &fakeNotifier{}
	handler := newHandler(notifier)

	require.NoError(t, handler.Handle(context.Background(), "staybook.payments.events.v1", nil, []byte("not json")))
	assert.Empty(t, notifier.sent)
}

func TestHandleSwallowsDeliveryFailure(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	handler := newHandler(notifier)

	err := handler.Handle(context.Background(), "staybook.payments.events.v1", nil, completedEnvelope(t))
	assert.NoError(t, err, "mail failures never bubble up to the consumer group")
}
