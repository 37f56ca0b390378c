package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"staybook/internal/app/policies"
	"staybook/internal/infra/outbox"
)

const paymentCompletedType = "payments.completed"

type completedEventData struct {
	PaymentID    string
	BookingID    string
	Reference    string
	GuestEmail   string
	GuestName    string
	ListingTitle string
	Amount       struct {
		Amount   int64
		Currency string
	}
}

// Handler consumes payment events and sends the confirmation email. Delivery
// failures are logged and swallowed: mail must never affect payment state,
// and a poison message must not wedge the consumer group.
type Handler struct {
	Notifier policies.Notifier
	Logger   *slog.Logger
}

func (h *Handler) Handle(ctx context.Context, topic string, key, value []byte) error {
	var envelope outbox.Envelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		h.Logger.Warn("skipping undecodable event", "topic", topic, "err", err)
		return nil
	}
	if envelope.Type != paymentCompletedType {
		return nil
	}

	var data completedEventData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		h.Logger.Warn("skipping malformed payment event", "event_id", envelope.ID, "err", err)
		return nil
	}

	msg := policies.PaymentConfirmation{
		RecipientEmail: data.GuestEmail,
		RecipientName:  data.GuestName,
		ListingTitle:   data.ListingTitle,
		Amount:         fmt.Sprintf("%s %s", formatAmount(data.Amount.Amount), data.Amount.Currency),
	}
	if err := h.Notifier.SendPaymentConfirmation(ctx, msg); err != nil {
		h.Logger.Error("payment confirmation mail failed",
			"event_id", envelope.ID, "payment_id", data.PaymentID, "err", err)
		return nil
	}
	h.Logger.Info("payment confirmation sent", "payment_id", data.PaymentID, "booking_id", data.BookingID)
	return nil
}

func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
