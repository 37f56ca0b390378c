package memory

import (
	"context"
	"errors"
	"sync"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpayments "staybook/internal/domain/payments"
	domainreviews "staybook/internal/domain/reviews"
	domainuser "staybook/internal/domain/user"
)

var errUnitFinished = errors.New("memory: unit of work already finished")

// Factory hands out units that hold the store lock from Begin to Commit or
// Rollback. Writes are staged and only reach the maps on Commit.
type Factory struct {
	Store *Store
}

func NewFactory(store *Store) *Factory {
	return &Factory{Store: store}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	f.Store.mu.Lock()
	u := &Unit{store: f.Store}
	u.stagedListings = make(map[domainlistings.ListingID]*domainlistings.Listing)
	u.stagedBookings = make(map[domainbooking.BookingID]*domainbooking.Booking)
	u.stagedPayments = make(map[string]*domainpayments.Payment)
	u.stagedReviews = make(map[reviewKey]*domainreviews.Review)
	u.stagedUsers = make(map[domainuser.ID]*domainuser.User)
	return u, nil
}

type Unit struct {
	store *Store

	finishOnce sync.Once
	finished   bool

	stagedListings map[domainlistings.ListingID]*domainlistings.Listing
	stagedBookings map[domainbooking.BookingID]*domainbooking.Booking
	stagedPayments map[string]*domainpayments.Payment
	stagedReviews  map[reviewKey]*domainreviews.Review
	stagedUsers    map[domainuser.ID]*domainuser.User
}

func (u *Unit) Listings() domainlistings.Repository { return &listingRepo{unit: u} }
func (u *Unit) Bookings() domainbooking.Repository  { return &bookingRepo{unit: u} }
func (u *Unit) Payments() domainpayments.Repository { return &paymentRepo{unit: u} }
func (u *Unit) Reviews() domainreviews.Repository   { return &reviewRepo{unit: u} }
func (u *Unit) Users() domainuser.Repository        { return &userRepo{unit: u} }

func (u *Unit) Commit(ctx context.Context) error {
	if u.finished {
		return errUnitFinished
	}
	u.finishOnce.Do(func() {
		for id, l := range u.stagedListings {
			u.store.listings[id] = l
		}
		for id, b := range u.stagedBookings {
			u.store.bookings[id] = b
		}
		for ref, p := range u.stagedPayments {
			u.store.payments[ref] = p
		}
		for key, r := range u.stagedReviews {
			u.store.reviews[key] = r
		}
		for id, usr := range u.stagedUsers {
			u.store.users[id] = usr
		}
		u.finished = true
		u.store.mu.Unlock()
	})
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.finishOnce.Do(func() {
		u.finished = true
		u.store.mu.Unlock()
	})
	return nil
}
