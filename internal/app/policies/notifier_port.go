package policies

import "context"

// PaymentConfirmation is the payload of the post-payment email.
type PaymentConfirmation struct {
	RecipientEmail string
	RecipientName  string
	ListingTitle   string
	Amount         string
}

// Notifier delivers guest-facing notifications. Best-effort: failures are
// logged by callers and never affect booking or payment state.
type Notifier interface {
	SendPaymentConfirmation(ctx context.Context, msg PaymentConfirmation) error
}
