package listings

import (
	"context"
	"io"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
)

const attachPhotoKey = "listings.attach_photo"

type AttachPhotoCommand struct {
	ListingID   string
	ActorID     string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Now         time.Time
}

func (c AttachPhotoCommand) Key() string { return attachPhotoKey }

type AttachPhotoResult struct {
	URL string `json:"url"`
}

// AttachPhotoHandler uploads to object storage first and records the URL on
// the listing afterwards, so a stored URL always points at an existing object.
type AttachPhotoHandler struct {
	UoWFactory uow.UoWFactory
	Photos     policies.PhotoStore
}

func (h *AttachPhotoHandler) Handle(ctx context.Context, cmd AttachPhotoCommand) (*AttachPhotoResult, error) {
	if h.UoWFactory == nil {
		return nil, ErrUnitOfWorkRequired
	}
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if err := h.authorize(ctx, cmd); err != nil {
		return nil, err
	}

	url, err := h.Photos.Store(ctx, policies.PhotoUpload{
		ListingID:   cmd.ListingID,
		Filename:    cmd.Filename,
		ContentType: cmd.ContentType,
		Size:        cmd.Size,
		Body:        cmd.Body,
	})
	if err != nil {
		return nil, err
	}

	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()
	ctx = uow.ContextWithUnitOfWork(ctx, unit)

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	listing.AttachPhoto(url, now)
	listing.ClearEvents()
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true

	return &AttachPhotoResult{URL: url}, nil
}

func (h *AttachPhotoHandler) authorize(ctx context.Context, cmd AttachPhotoCommand) error {
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	defer unit.Rollback(ctx)
	ctx = uow.ContextWithUnitOfWork(ctx, unit)

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return err
	}
	if string(listing.Owner) != cmd.ActorID {
		return domainlistings.ErrNotOwner
	}
	return nil
}

var _ commands.Handler[AttachPhotoCommand, *AttachPhotoResult] = (*AttachPhotoHandler)(nil)
