package memory

import (
	"sync"

	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpayments "staybook/internal/domain/payments"
	domainreviews "staybook/internal/domain/reviews"
	domainuser "staybook/internal/domain/user"
)

// Store is the process-local backing map set. Units of work serialize on the
// store mutex, so a unit sees no concurrent writes between Begin and Commit.
type Store struct {
	mu sync.Mutex

	listings map[domainlistings.ListingID]*domainlistings.Listing
	bookings map[domainbooking.BookingID]*domainbooking.Booking
	payments map[string]*domainpayments.Payment
	reviews  map[reviewKey]*domainreviews.Review
	users    map[domainuser.ID]*domainuser.User
}

type reviewKey struct {
	listing domainlistings.ListingID
	author  string
}

func NewStore() *Store {
	return &Store{
		listings: make(map[domainlistings.ListingID]*domainlistings.Listing),
		bookings: make(map[domainbooking.BookingID]*domainbooking.Booking),
		payments: make(map[string]*domainpayments.Payment),
		reviews:  make(map[reviewKey]*domainreviews.Review),
		users:    make(map[domainuser.ID]*domainuser.User),
	}
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	cp := *l
	cp.Amenities = append([]string(nil), l.Amenities...)
	cp.Photos = append([]string(nil), l.Photos...)
	cp.ClearEvents()
	return &cp
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.ClearEvents()
	return &cp
}

func clonePayment(p *domainpayments.Payment) *domainpayments.Payment {
	cp := *p
	cp.ClearEvents()
	return &cp
}

func cloneReview(r *domainreviews.Review) *domainreviews.Review {
	cp := *r
	cp.ClearEvents()
	return &cp
}

func cloneUser(u *domainuser.User) *domainuser.User {
	cp := *u
	return &cp
}
