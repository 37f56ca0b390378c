package payments

import (
	"context"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

const bookingPaymentsKey = "payments.booking_list"

type BookingPaymentsQuery struct {
	BookingID string
	ActorID   string
}

func (q BookingPaymentsQuery) Key() string { return bookingPaymentsKey }

type BookingPaymentsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *BookingPaymentsHandler) Handle(ctx context.Context, q BookingPaymentsQuery) (dto.PaymentCollection, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.PaymentCollection{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.PaymentCollection{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return dto.PaymentCollection{}, err
	}
	if q.ActorID != "" && booking.GuestID != q.ActorID {
		return dto.PaymentCollection{}, domainbooking.ErrNotGuest
	}

	items, err := unit.Payments().ListByBooking(ctx, booking.ID)
	if err != nil {
		return dto.PaymentCollection{}, err
	}
	return dto.MapPaymentCollection(items), nil
}

var _ queries.Handler[BookingPaymentsQuery, dto.PaymentCollection] = (*BookingPaymentsHandler)(nil)
