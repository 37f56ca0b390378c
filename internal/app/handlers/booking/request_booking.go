package booking

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainrange "staybook/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

// RequestBookingCommand creates a PENDING booking after pricing and
// availability checks.
type RequestBookingCommand struct {
	CommandID       string
	ListingID       string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	Now             time.Time
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

// ReplayableErrors lists the request failures an idempotent retry must see
// with their sentinel identity intact, so the HTTP layer maps a replayed
// rejection to the same status as the original.
func ReplayableErrors() middleware.ReplayCatalog {
	return middleware.ReplayCatalog{
		"booking.overlap":         domainbooking.ErrOverlap,
		"booking.listing_missing": domainlistings.ErrNotFound,
		"booking.unavailable":     domainbooking.ErrListingUnavailable,
		"booking.outside_window":  domainbooking.ErrOutsideWindow,
		"booking.checkin_past":    domainbooking.ErrCheckInInPast,
		"booking.capacity":        domainbooking.ErrCapacityExceeded,
		"booking.guests":          domainbooking.ErrInvalidGuests,
		"booking.invalid_range":   domainrange.ErrInvalidRange,
	}
}

type RequestBookingResult struct {
	BookingID string       `json:"booking_id"`
	Nights    int          `json:"nights"`
	Total     dto.MoneyDTO `json:"total"`
}

type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}

	quote, err := domainbooking.Quote(listing, dr, cmd.Guests, now)
	if err != nil {
		return nil, err
	}

	// Overlap check and insert share the unit's transaction so two
	// concurrent requests cannot both pass the check.
	taken, err := unit.Bookings().HasOverlap(ctx, listing.ID, dr, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domainbooking.ErrOverlap
	}

	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(cmd.CommandID),
		ListingID: listing.ID,
		GuestID:   cmd.GuestID,
		Range:     dr,
		Guests:    cmd.Guests,
		Total:     quote.Total,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}

	pending := booking.PendingEvents()
	booking.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &RequestBookingResult{
		BookingID: string(booking.ID),
		Nights:    quote.Nights,
		Total:     dto.MapMoney(quote.Total),
	}, nil
}

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
