package reviews_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appreviews "staybook/internal/app/handlers/reviews"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	domainreviews "staybook/internal/domain/reviews"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

func seed(t *testing.T) (*memory.Factory, *appreviews.SubmitReviewHandler) {
	t.Helper()
	store := memory.NewStore()
	factory := memory.NewFactory(store)

	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:          "lst-1",
		Owner:       "owner-1",
		Title:       "Lakeside cottage",
		NightlyRate: money.Must(10000, "ETB"),
		Capacity:    2,
		Now:         time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	listing.ClearEvents()

	ctx := context.Background()
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Listings().Save(ctx, listing))
	require.NoError(t, unit.Commit(ctx))

	return factory, &appreviews.SubmitReviewHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
}

func cmd(id, author string, rating int) appreviews.SubmitReviewCommand {
	return appreviews.SubmitReviewCommand{
		CommandID: id,
		ListingID: "lst-1",
		AuthorID:  author,
		Rating:    rating,
		Comment:   "lovely stay",
	}
}

func TestSubmitReview(t *testing.T) {
	factory, handler := seed(t)

	review, err := handler.Handle(context.Background(), cmd("rev-1", "guest-1", 5))
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "lovely stay", review.Comment)

	listHandler := &appreviews.ListReviewsHandler{UoWFactory: factory}
	result, err := listHandler.Handle(context.Background(), appreviews.ListReviewsQuery{ListingID: "lst-1"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "guest-1", result.Items[0].AuthorID)
}

func TestSubmitReviewRejectsDuplicateAuthor(t *testing.T) {
	_, handler := seed(t)

	_, err := handler.Handle(context.Background(), cmd("rev-1", "guest-1", 5))
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), cmd("rev-2", "guest-1", 3))
	assert.ErrorIs(t, err, domainreviews.ErrDuplicateReview)
}

func TestSubmitReviewRejectsOwner(t *testing.T) {
	_, handler := seed(t)
	_, err := handler.Handle(context.Background(), cmd("rev-1", "owner-1", 5))
	assert.ErrorIs(t, err, domainreviews.ErrOwnListing)
}

func TestSubmitReviewValidatesRating(t *testing.T) {
	_, handler := seed(t)
	for _, rating := range []int{0, 6, -1} {
		_, err := handler.Handle(context.Background(), cmd("rev-1", "guest-1", rating))
		assert.ErrorIs(t, err, domainreviews.ErrInvalidRating)
	}
}

func TestListReviewsUnknownListing(t *testing.T) {
	factory, _ := seed(t)
	listHandler := &appreviews.ListReviewsHandler{UoWFactory: factory}
	_, err := listHandler.Handle(context.Background(), appreviews.ListReviewsQuery{ListingID: "missing"})
	assert.ErrorIs(t, err, domainlistings.ErrNotFound)
}
