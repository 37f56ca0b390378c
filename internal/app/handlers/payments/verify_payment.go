package payments

import (
	"context"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainpayments "staybook/internal/domain/payments"
	domainuser "staybook/internal/domain/user"
)

const verifyPaymentKey = "payments.verify"

type VerifyPaymentCommand struct {
	BookingID string
	Reference string
	ActorID   string
	Now       time.Time
}

func (c VerifyPaymentCommand) Key() string { return verifyPaymentKey }

type VerifyPaymentResult struct {
	PaymentID     string       `json:"payment_id"`
	Reference     string       `json:"reference"`
	PaymentStatus string       `json:"payment_status"`
	BookingStatus string       `json:"booking_status"`
	Amount        dto.MoneyDTO `json:"amount"`
}

// VerifyPaymentHandler asks the gateway for the outcome of a checkout and
// settles the payment accordingly. A completed payment confirms its booking
// in the same transaction that records the notification event, so either
// both land or neither does.
type VerifyPaymentHandler struct {
	UoWFactory uow.UoWFactory
	Gateway    policies.PaymentGateway
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *VerifyPaymentHandler) Handle(ctx context.Context, cmd VerifyPaymentCommand) (*VerifyPaymentResult, error) {
	if h.UoWFactory == nil {
		return nil, ErrUnitOfWorkFactoryRequired
	}
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	payment, booking, err := h.load(ctx, cmd)
	if err != nil {
		return nil, err
	}

	// Terminal payments never flip. Re-delivered callbacks and guest
	// refreshes just read back the settled state.
	if payment.State != domainpayments.StatePending {
		return result(payment, booking), nil
	}

	verdict, gerr := h.Gateway.Verify(ctx, payment.Reference)
	if gerr != nil {
		p, b, serr := h.settle(ctx, cmd, false, "gateway unreachable during verification", now)
		if serr != nil {
			return nil, serr
		}
		if p.State == domainpayments.StateFailed {
			return nil, gerr
		}
		// A concurrent verification settled first; report its outcome.
		return result(p, b), nil
	}

	reason := ""
	if !verdict.Succeeded {
		reason = "gateway reported failure"
	}
	p, b, err := h.settle(ctx, cmd, verdict.Succeeded, reason, now)
	if err != nil {
		return nil, err
	}
	return result(p, b), nil
}

func (h *VerifyPaymentHandler) load(ctx context.Context, cmd VerifyPaymentCommand) (*domainpayments.Payment, *domainbooking.Booking, error) {
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, nil, err
	}
	defer unit.Rollback(ctx)
	ctx = uow.ContextWithUnitOfWork(ctx, unit)

	payment, err := unit.Payments().ByReference(ctx, cmd.Reference)
	if err != nil {
		return nil, nil, err
	}
	if string(payment.BookingID) != cmd.BookingID {
		return nil, nil, domainpayments.ErrNotFound
	}
	booking, err := unit.Bookings().ByID(ctx, payment.BookingID)
	if err != nil {
		return nil, nil, err
	}
	if cmd.ActorID != "" && booking.GuestID != cmd.ActorID {
		return nil, nil, domainbooking.ErrNotGuest
	}
	return payment, booking, nil
}

func (h *VerifyPaymentHandler) settle(ctx context.Context, cmd VerifyPaymentCommand, succeeded bool, reason string, now time.Time) (*domainpayments.Payment, *domainbooking.Booking, error) {
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()
	ctx = uow.ContextWithUnitOfWork(ctx, unit)

	payment, err := unit.Payments().ByReference(ctx, cmd.Reference)
	if err != nil {
		return nil, nil, err
	}
	booking, err := unit.Bookings().ByID(ctx, payment.BookingID)
	if err != nil {
		return nil, nil, err
	}
	if payment.State != domainpayments.StatePending {
		return payment, booking, nil
	}

	if succeeded {
		guest, err := unit.Users().ByID(ctx, domainuser.ID(booking.GuestID))
		if err != nil {
			return nil, nil, err
		}
		listing, err := unit.Listings().ByID(ctx, booking.ListingID)
		if err != nil {
			return nil, nil, err
		}
		if err := payment.Complete(domainpayments.Receipt{
			GuestEmail:   guest.Email,
			GuestName:    guest.Name,
			ListingTitle: listing.Title,
		}, now); err != nil {
			return nil, nil, err
		}
		if err := booking.Confirm(now); err != nil {
			return nil, nil, err
		}
		if err := unit.Bookings().Save(ctx, booking); err != nil {
			return nil, nil, err
		}
	} else {
		if err := payment.Fail(reason, now); err != nil {
			return nil, nil, err
		}
	}

	if err := unit.Payments().Save(ctx, payment); err != nil {
		return nil, nil, err
	}

	pending := append(payment.PendingEvents(), booking.PendingEvents()...)
	payment.ClearEvents()
	booking.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, nil, err
	}

	if err := unit.Commit(ctx); err != nil {
		return nil, nil, err
	}
	committed = true
	return payment, booking, nil
}

func (h *VerifyPaymentHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func result(p *domainpayments.Payment, b *domainbooking.Booking) *VerifyPaymentResult {
	return &VerifyPaymentResult{
		PaymentID:     string(p.ID),
		Reference:     p.Reference,
		PaymentStatus: string(p.State),
		BookingStatus: string(b.State),
		Amount:        dto.MapMoney(p.Amount),
	}
}

var _ commands.Handler[VerifyPaymentCommand, *VerifyPaymentResult] = (*VerifyPaymentHandler)(nil)
