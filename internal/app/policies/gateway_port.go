package policies

import (
	"context"
	"errors"

	"staybook/internal/domain/shared/money"
)

var (
	// ErrGatewayUnavailable marks transport failures: timeouts, connection
	// errors, 5xx responses. The payment is still marked FAILED so the guest
	// can re-initiate.
	ErrGatewayUnavailable = errors.New("gateway: payment service unavailable")
	// ErrGatewayRejected marks a definitive rejection by the gateway.
	ErrGatewayRejected = errors.New("gateway: payment rejected")
)

type CheckoutParams struct {
	Amount      money.Money
	Email       string
	FirstName   string
	LastName    string
	Phone       string
	TxRef       string
	CallbackURL string
	ReturnURL   string
	Title       string
	Description string
}

type Checkout struct {
	CheckoutURL string
	TxRef       string
}

type VerifyResult struct {
	// Succeeded is true only when the gateway definitively reports success.
	Succeeded bool
}

// PaymentGateway abstracts the external payment provider. Implementations
// return ErrGatewayUnavailable for transport problems and ErrGatewayRejected
// when the provider refuses the request.
type PaymentGateway interface {
	Initialize(ctx context.Context, params CheckoutParams) (Checkout, error)
	Verify(ctx context.Context, txRef string) (VerifyResult, error)
}
