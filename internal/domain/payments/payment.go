package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

var (
	// ErrDuplicatePayment is returned when a booking already holds a payment
	// in PENDING or COMPLETED state.
	ErrDuplicatePayment = errors.New("payments: active payment already exists for booking")
	ErrNotFound         = errors.New("payments: not found")
	ErrReferenceTaken   = errors.New("payments: reference already in use")
)

type PaymentID string

type PaymentState string

const (
	StatePending   PaymentState = "PENDING"
	StateCompleted PaymentState = "COMPLETED"
	StateFailed    PaymentState = "FAILED"
)

// ActiveStates block a new payment attempt for the same booking.
var ActiveStates = []PaymentState{StatePending, StateCompleted}

type Payment struct {
	ID        PaymentID
	BookingID booking.BookingID
	// Reference is the globally unique opaque token correlated with the
	// external gateway (its tx_ref). Never reused.
	Reference     string
	TransactionID string
	Amount        money.Money
	State         PaymentState
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByReference(ctx context.Context, reference string) (*Payment, error)
	ListByBooking(ctx context.Context, bookingID booking.BookingID) ([]*Payment, error)
	// Create inserts a new payment, failing with ErrDuplicatePayment when the
	// booking already has one in an active state. Implementations must make
	// the check-and-insert atomic (unique constraint or transaction).
	Create(ctx context.Context, payment *Payment) error
	Save(ctx context.Context, payment *Payment) error
}

type CreateParams struct {
	ID            PaymentID
	BookingID     booking.BookingID
	Reference     string
	TransactionID string
	Amount        money.Money
	CreatedAt     time.Time
}

func NewPayment(params CreateParams) (*Payment, error) {
	if strings.TrimSpace(string(params.BookingID)) == "" {
		return nil, errors.New("payments: booking id required")
	}
	if strings.TrimSpace(params.Reference) == "" {
		return nil, errors.New("payments: reference required")
	}
	if params.Amount.Amount <= 0 {
		return nil, errors.New("payments: amount must be positive")
	}
	now := params.CreatedAt.UTC()
	p := &Payment{
		ID:            params.ID,
		BookingID:     params.BookingID,
		Reference:     params.Reference,
		TransactionID: params.TransactionID,
		Amount:        params.Amount,
		State:         StatePending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p.Record(PaymentInitiated{PaymentID: p.ID, BookingID: p.BookingID, Reference: p.Reference, Amount: p.Amount, At: now})
	return p, nil
}

// Receipt carries the notification payload captured when a payment completes.
type Receipt struct {
	GuestEmail   string
	GuestName    string
	ListingTitle string
}

// Complete transitions a pending payment to COMPLETED. Terminal states absorb
// the call: re-delivered gateway results are no-ops and never flip state.
func (p *Payment) Complete(receipt Receipt, now time.Time) error {
	if p.terminal() {
		return nil
	}
	p.State = StateCompleted
	p.UpdatedAt = now.UTC()
	p.Record(PaymentCompleted{
		PaymentID:    p.ID,
		BookingID:    p.BookingID,
		Reference:    p.Reference,
		Amount:       p.Amount,
		GuestEmail:   receipt.GuestEmail,
		GuestName:    receipt.GuestName,
		ListingTitle: receipt.ListingTitle,
		At:           p.UpdatedAt,
	})
	return nil
}

// Fail transitions a pending payment to FAILED. No-op once terminal.
func (p *Payment) Fail(reason string, now time.Time) error {
	if p.terminal() {
		return nil
	}
	p.State = StateFailed
	p.UpdatedAt = now.UTC()
	p.Record(PaymentFailed{PaymentID: p.ID, BookingID: p.BookingID, Reference: p.Reference, Reason: reason, At: p.UpdatedAt})
	return nil
}

// Active reports whether the payment blocks a new attempt for its booking.
func (p *Payment) Active() bool {
	return p.State == StatePending || p.State == StateCompleted
}

func (p *Payment) terminal() bool {
	return p.State == StateCompleted || p.State == StateFailed
}
