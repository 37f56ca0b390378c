package payments

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainpayments "staybook/internal/domain/payments"
	domainuser "staybook/internal/domain/user"
)

const initiatePaymentKey = "payments.initiate"

var ErrUnitOfWorkFactoryRequired = errors.New("payments: unit of work factory required")

type InitiatePaymentCommand struct {
	BookingID   string
	ActorID     string
	ReturnURL   string
	CallbackURL string
	Now         time.Time
}

func (c InitiatePaymentCommand) Key() string { return initiatePaymentKey }

type InitiatePaymentResult struct {
	PaymentID   string       `json:"payment_id"`
	Reference   string       `json:"reference"`
	CheckoutURL string       `json:"checkout_url"`
	Amount      dto.MoneyDTO `json:"amount"`
	Status      string       `json:"status"`
}

// InitiatePaymentHandler records a PENDING payment, commits it, and only then
// talks to the gateway. The record must survive even when the remote call
// fails, so the flow cannot share a transaction with the network hop.
type InitiatePaymentHandler struct {
	UoWFactory uow.UoWFactory
	Gateway    policies.PaymentGateway
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *InitiatePaymentHandler) Handle(ctx context.Context, cmd InitiatePaymentCommand) (*InitiatePaymentResult, error) {
	if h.UoWFactory == nil {
		return nil, ErrUnitOfWorkFactoryRequired
	}
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	payment, guest, title, err := h.createPending(ctx, cmd, now)
	if err != nil {
		return nil, err
	}

	checkout, gerr := h.Gateway.Initialize(ctx, policies.CheckoutParams{
		Amount:      payment.Amount,
		Email:       guest.Email,
		FirstName:   firstName(guest.Name),
		LastName:    lastName(guest.Name),
		TxRef:       payment.Reference,
		CallbackURL: cmd.CallbackURL,
		ReturnURL:   cmd.ReturnURL,
		Title:       title,
		Description: fmt.Sprintf("Booking %s", cmd.BookingID),
	})
	if gerr != nil {
		if ferr := h.markFailed(ctx, payment.Reference, gerr.Error(), now); ferr != nil {
			return nil, ferr
		}
		return nil, gerr
	}

	return &InitiatePaymentResult{
		PaymentID:   string(payment.ID),
		Reference:   payment.Reference,
		CheckoutURL: checkout.CheckoutURL,
		Amount:      dto.MapMoney(payment.Amount),
		Status:      string(domainpayments.StatePending),
	}, nil
}

func (h *InitiatePaymentHandler) createPending(ctx context.Context, cmd InitiatePaymentCommand, now time.Time) (*domainpayments.Payment, *domainuser.User, string, error) {
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, nil, "", err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()
	ctx = uow.ContextWithUnitOfWork(ctx, unit)

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, nil, "", err
	}
	if booking.GuestID != cmd.ActorID {
		return nil, nil, "", domainbooking.ErrNotGuest
	}
	if !booking.Active() {
		return nil, nil, "", domainbooking.ErrInvalidState
	}

	guest, err := unit.Users().ByID(ctx, domainuser.ID(booking.GuestID))
	if err != nil {
		return nil, nil, "", err
	}
	listing, err := unit.Listings().ByID(ctx, booking.ListingID)
	if err != nil {
		return nil, nil, "", err
	}

	payment, err := domainpayments.NewPayment(domainpayments.CreateParams{
		ID:            domainpayments.PaymentID(uuid.NewString()),
		BookingID:     booking.ID,
		Reference:     newReference(),
		TransactionID: newTransactionID(),
		Amount:        booking.Total,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, nil, "", err
	}
	if err := unit.Payments().Create(ctx, payment); err != nil {
		return nil, nil, "", err
	}

	pending := payment.PendingEvents()
	payment.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, nil, "", err
	}

	if err := unit.Commit(ctx); err != nil {
		return nil, nil, "", err
	}
	committed = true
	return payment, guest, listing.Title, nil
}

func (h *InitiatePaymentHandler) markFailed(ctx context.Context, reference, reason string, now time.Time) error {
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()
	ctx = uow.ContextWithUnitOfWork(ctx, unit)

	payment, err := unit.Payments().ByReference(ctx, reference)
	if err != nil {
		return err
	}
	if err := payment.Fail(reason, now); err != nil {
		return err
	}
	if err := unit.Payments().Save(ctx, payment); err != nil {
		return err
	}
	pending := payment.PendingEvents()
	payment.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return err
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (h *InitiatePaymentHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func newReference() string {
	return uuid.NewString()
}

func newTransactionID() string {
	id := uuid.New()
	return "TXN_" + strings.ToUpper(hex.EncodeToString(id[:])[:10])
}

func firstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return full
	}
	return parts[0]
}

func lastName(full string) string {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}

var _ commands.Handler[InitiatePaymentCommand, *InitiatePaymentResult] = (*InitiatePaymentHandler)(nil)
