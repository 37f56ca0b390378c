package listings_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applistings "staybook/internal/app/handlers/listings"
	"staybook/internal/app/policies"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

func newFactory() *memory.Factory {
	return memory.NewFactory(memory.NewStore())
}

func createCmd(id, owner string) applistings.CreateListingCommand {
	return applistings.CreateListingCommand{
		CommandID:   id,
		OwnerID:     owner,
		Title:       "Lakeside cottage",
		Description: "Two rooms on the lake",
		Location:    "Bahir Dar",
		NightlyRate: "100.00",
		Currency:    "ETB",
		Capacity:    2,
		Amenities:   []string{"wifi"},
		Now:         time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateListing(t *testing.T) {
	factory := newFactory()
	handler := &applistings.CreateListingHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

	listing, err := handler.Handle(context.Background(), createCmd("lst-1", "owner-1"))
	require.NoError(t, err)
	assert.Equal(t, "lst-1", listing.ID)
	assert.Equal(t, "100.00", listing.NightlyRate.Amount)
	assert.True(t, listing.Available, "new listings accept bookings by default")

	get := &applistings.GetListingHandler{UoWFactory: factory}
	fetched, err := get.Handle(context.Background(), applistings.GetListingQuery{ListingID: "lst-1"})
	require.NoError(t, err)
	assert.Equal(t, listing.Title, fetched.Title)
}

func TestCreateListingValidatesRate(t *testing.T) {
	handler := &applistings.CreateListingHandler{UoWFactory: newFactory(), Outbox: memory.NewOutbox()}

	cmd := createCmd("lst-1", "owner-1")
	cmd.NightlyRate = "not-a-number"
	_, err := handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, money.ErrInvalidDecimal)

	cmd = createCmd("lst-2", "owner-1")
	cmd.NightlyRate = "0.00"
	_, err = handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, domainlistings.ErrNightlyRate)
}

func TestUpdateListingRequiresOwner(t *testing.T) {
	factory := newFactory()
	create := &applistings.CreateListingHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	update := &applistings.UpdateListingHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

	_, err := create.Handle(context.Background(), createCmd("lst-1", "owner-1"))
	require.NoError(t, err)

	_, err = update.Handle(context.Background(), applistings.UpdateListingCommand{
		ListingID:   "lst-1",
		ActorID:     "intruder",
		Title:       "Hijacked",
		NightlyRate: "1.00",
		Currency:    "ETB",
		Capacity:    1,
		Available:   true,
	})
	assert.ErrorIs(t, err, domainlistings.ErrNotOwner)
}

func TestUpdateListing(t *testing.T) {
	factory := newFactory()
	create := &applistings.CreateListingHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	update := &applistings.UpdateListingHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

	_, err := create.Handle(context.Background(), createCmd("lst-1", "owner-1"))
	require.NoError(t, err)

	updated, err := update.Handle(context.Background(), applistings.UpdateListingCommand{
		ListingID:   "lst-1",
		ActorID:     "owner-1",
		Title:       "Lakeside cottage deluxe",
		NightlyRate: "150.00",
		Currency:    "ETB",
		Capacity:    4,
		Available:   false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lakeside cottage deluxe", updated.Title)
	assert.Equal(t, "150.00", updated.NightlyRate.Amount)
	assert.Equal(t, 4, updated.Capacity)
	assert.False(t, updated.Available)
}

type fakePhotoStore struct {
	uploads []policies.PhotoUpload
	err     error
}

func (s *fakePhotoStore) Store(ctx context.Context, upload policies.PhotoUpload) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploads = append(s.uploads, upload)
	return "https://cdn.example.com/" + upload.ListingID + "/" + upload.Filename, nil
}

func TestAttachPhoto(t *testing.T) {
	factory := newFactory()
	create := &applistings.CreateListingHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	_, err := create.Handle(context.Background(), createCmd("lst-1", "owner-1"))
	require.NoError(t, err)

	photos := &fakePhotoStore{}
	attach := &applistings.AttachPhotoHandler{UoWFactory: factory, Photos: photos}

	result, err := attach.Handle(context.Background(), applistings.AttachPhotoCommand{
		ListingID:   "lst-1",
		ActorID:     "owner-1",
		Filename:    "porch.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Body:        strings.NewReader("data"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/lst-1/porch.jpg", result.URL)
	require.Len(t, photos.uploads, 1)
	assert.Equal(t, "image/jpeg", photos.uploads[0].ContentType)

	get := &applistings.GetListingHandler{UoWFactory: factory}
	listing, err := get.Handle(context.Background(), applistings.GetListingQuery{ListingID: "lst-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{result.URL}, listing.Photos)
}

func TestAttachPhotoRequiresOwner(t *testing.T) {
	factory := newFactory()
	create := &applistings.CreateListingHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	_, err := create.Handle(context.Background(), createCmd("lst-1", "owner-1"))
	require.NoError(t, err)

	photos := &fakePhotoStore{}
	attach := &applistings.AttachPhotoHandler{UoWFactory: factory, Photos: photos}

	_, err = attach.Handle(context.Background(), applistings.AttachPhotoCommand{
		ListingID: "lst-1",
		ActorID:   "intruder",
		Filename:  "porch.jpg",
		Body:      strings.NewReader("data"),
	})
	assert.ErrorIs(t, err, domainlistings.ErrNotOwner)
	assert.Empty(t, photos.uploads, "nothing is uploaded for a rejected actor")
}

func TestListListingsFilters(t *testing.T) {
	factory := newFactory()
	create := &applistings.CreateListingHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

	_, err := create.Handle(context.Background(), createCmd("lst-1", "owner-1"))
	require.NoError(t, err)
	other := createCmd("lst-2", "owner-2")
	other.Location = "Addis Ababa"
	_, err = create.Handle(context.Background(), other)
	require.NoError(t, err)

	list := &applistings.ListListingsHandler{UoWFactory: factory}

	all, err := list.Handle(context.Background(), applistings.ListListingsQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	byOwner, err := list.Handle(context.Background(), applistings.ListListingsQuery{Owner: "owner-2"})
	require.NoError(t, err)
	require.Len(t, byOwner.Items, 1)
	assert.Equal(t, "lst-2", byOwner.Items[0].ID)

	byLocation, err := list.Handle(context.Background(), applistings.ListListingsQuery{Location: "Bahir Dar"})
	require.NoError(t, err)
	require.Len(t, byLocation.Items, 1)
	assert.Equal(t, "lst-1", byLocation.Items[0].ID)
}
