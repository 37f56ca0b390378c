package listings

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/money"
)

const createListingKey = "listings.create"

var ErrUnitOfWorkRequired = errors.New("listings: unit of work required")

type CreateListingCommand struct {
	CommandID     string
	OwnerID       string
	Title         string
	Description   string
	Location      string
	NightlyRate   string
	Currency      string
	Capacity      int
	Amenities     []string
	AvailableFrom time.Time
	AvailableTo   time.Time
	Now           time.Time
}

func (c CreateListingCommand) Key() string { return createListingKey }

type CreateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.Listing, error) {
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

	rate, err := money.ParseDecimal(cmd.NightlyRate, cmd.Currency)
	if err != nil {
		return nil, err
	}
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:            domainlistings.ListingID(cmd.CommandID),
		Owner:         domainlistings.OwnerID(cmd.OwnerID),
		Title:         cmd.Title,
		Description:   cmd.Description,
		Location:      cmd.Location,
		NightlyRate:   rate,
		Capacity:      cmd.Capacity,
		Amenities:     cmd.Amenities,
		AvailableFrom: cmd.AvailableFrom,
		AvailableTo:   cmd.AvailableTo,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}

	pending := listing.PendingEvents()
	listing.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	out := dto.MapListing(listing)
	return &out, nil
}

func (h *CreateListingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateListingCommand, *dto.Listing] = (*CreateListingHandler)(nil)
