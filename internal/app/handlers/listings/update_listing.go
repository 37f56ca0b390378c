package listings

import (
	"context"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/money"
)

const updateListingKey = "listings.update"

type UpdateListingCommand struct {
	ListingID     string
	ActorID       string
	Title         string
	Description   string
	Location      string
	NightlyRate   string
	Currency      string
	Capacity      int
	Amenities     []string
	AvailableFrom time.Time
	AvailableTo   time.Time
	Available     bool
	Now           time.Time
}

func (c UpdateListingCommand) Key() string { return updateListingKey }

type UpdateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (*dto.Listing, error) {
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

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if string(listing.Owner) != cmd.ActorID {
		return nil, domainlistings.ErrNotOwner
	}

	rate, err := money.ParseDecimal(cmd.NightlyRate, cmd.Currency)
	if err != nil {
		return nil, err
	}
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if err := listing.Update(domainlistings.UpdateParams{
		Title:         cmd.Title,
		Description:   cmd.Description,
		Location:      cmd.Location,
		NightlyRate:   rate,
		Capacity:      cmd.Capacity,
		Amenities:     cmd.Amenities,
		AvailableFrom: cmd.AvailableFrom,
		AvailableTo:   cmd.AvailableTo,
		Available:     cmd.Available,
		Now:           now,
	}); err != nil {
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

func (h *UpdateListingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[UpdateListingCommand, *dto.Listing] = (*UpdateListingHandler)(nil)
