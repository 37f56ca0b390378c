package memory

import (
	"context"
	"sort"

	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpayments "staybook/internal/domain/payments"
	domainreviews "staybook/internal/domain/reviews"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

type listingRepo struct{ unit *Unit }

func (r *listingRepo) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	if l, ok := r.unit.stagedListings[id]; ok {
		return cloneListing(l), nil
	}
	if l, ok := r.unit.store.listings[id]; ok {
		return cloneListing(l), nil
	}
	return nil, domainlistings.ErrNotFound
}

func (r *listingRepo) Save(ctx context.Context, listing *domainlistings.Listing) error {
	cp := cloneListing(listing)
	cp.Version = listing.Version + 1
	r.unit.stagedListings[listing.ID] = cp
	listing.Version = cp.Version
	return nil
}

func (r *listingRepo) List(ctx context.Context, params domainlistings.ListParams) ([]*domainlistings.Listing, error) {
	var all []*domainlistings.Listing
	seen := make(map[domainlistings.ListingID]bool)
	for id, l := range r.unit.stagedListings {
		seen[id] = true
		all = append(all, l)
	}
	for id, l := range r.unit.store.listings {
		if !seen[id] {
			all = append(all, l)
		}
	}
	var matched []*domainlistings.Listing
	for _, l := range all {
		if params.Owner != "" && l.Owner != params.Owner {
			continue
		}
		if params.Location != "" && l.Location != params.Location {
			continue
		}
		matched = append(matched, cloneListing(l))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, params.Limit, params.Offset), nil
}

type bookingRepo struct{ unit *Unit }

func (r *bookingRepo) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	if b, ok := r.unit.stagedBookings[id]; ok {
		return cloneBooking(b), nil
	}
	if b, ok := r.unit.store.bookings[id]; ok {
		return cloneBooking(b), nil
	}
	return nil, domainbooking.ErrNotFound
}

func (r *bookingRepo) Save(ctx context.Context, booking *domainbooking.Booking) error {
	cp := cloneBooking(booking)
	cp.Version = booking.Version + 1
	r.unit.stagedBookings[booking.ID] = cp
	booking.Version = cp.Version
	return nil
}

func (r *bookingRepo) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	var out []*domainbooking.Booking
	for _, b := range r.allBookings() {
		if b.GuestID == guestID {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *bookingRepo) HasOverlap(ctx context.Context, listingID domainlistings.ListingID, dr daterange.DateRange, exclude domainbooking.BookingID) (bool, error) {
	for _, b := range r.allBookings() {
		if b.ListingID != listingID || b.ID == exclude || !b.Active() {
			continue
		}
		if b.Range.Overlaps(dr) {
			return true, nil
		}
	}
	return false, nil
}

func (r *bookingRepo) allBookings() []*domainbooking.Booking {
	var all []*domainbooking.Booking
	seen := make(map[domainbooking.BookingID]bool)
	for id, b := range r.unit.stagedBookings {
		seen[id] = true
		all = append(all, b)
	}
	for id, b := range r.unit.store.bookings {
		if !seen[id] {
			all = append(all, b)
		}
	}
	return all
}

type paymentRepo struct{ unit *Unit }

func (r *paymentRepo) ByReference(ctx context.Context, reference string) (*domainpayments.Payment, error) {
	if p, ok := r.unit.stagedPayments[reference]; ok {
		return clonePayment(p), nil
	}
	if p, ok := r.unit.store.payments[reference]; ok {
		return clonePayment(p), nil
	}
	return nil, domainpayments.ErrNotFound
}

func (r *paymentRepo) ListByBooking(ctx context.Context, bookingID domainbooking.BookingID) ([]*domainpayments.Payment, error) {
	var out []*domainpayments.Payment
	for _, p := range r.allPayments() {
		if p.BookingID == bookingID {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *paymentRepo) Create(ctx context.Context, payment *domainpayments.Payment) error {
	if _, ok := r.unit.stagedPayments[payment.Reference]; ok {
		return domainpayments.ErrReferenceTaken
	}
	if _, ok := r.unit.store.payments[payment.Reference]; ok {
		return domainpayments.ErrReferenceTaken
	}
	for _, p := range r.allPayments() {
		if p.BookingID == payment.BookingID && p.Active() {
			return domainpayments.ErrDuplicatePayment
		}
	}
	cp := clonePayment(payment)
	cp.Version = 1
	r.unit.stagedPayments[payment.Reference] = cp
	payment.Version = 1
	return nil
}

func (r *paymentRepo) Save(ctx context.Context, payment *domainpayments.Payment) error {
	cp := clonePayment(payment)
	cp.Version = payment.Version + 1
	r.unit.stagedPayments[payment.Reference] = cp
	payment.Version = cp.Version
	return nil
}

func (r *paymentRepo) allPayments() []*domainpayments.Payment {
	var all []*domainpayments.Payment
	seen := make(map[string]bool)
	for ref, p := range r.unit.stagedPayments {
		seen[ref] = true
		all = append(all, p)
	}
	for ref, p := range r.unit.store.payments {
		if !seen[ref] {
			all = append(all, p)
		}
	}
	return all
}

type reviewRepo struct{ unit *Unit }

func (r *reviewRepo) ListByListing(ctx context.Context, listingID domainlistings.ListingID, limit, offset int) ([]*domainreviews.Review, error) {
	var out []*domainreviews.Review
	seen := make(map[reviewKey]bool)
	for key, rv := range r.unit.stagedReviews {
		seen[key] = true
		if rv.ListingID == listingID {
			out = append(out, cloneReview(rv))
		}
	}
	for key, rv := range r.unit.store.reviews {
		if !seen[key] && rv.ListingID == listingID {
			out = append(out, cloneReview(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *reviewRepo) Create(ctx context.Context, review *domainreviews.Review) error {
	key := reviewKey{listing: review.ListingID, author: review.AuthorID}
	if _, ok := r.unit.stagedReviews[key]; ok {
		return domainreviews.ErrDuplicateReview
	}
	if _, ok := r.unit.store.reviews[key]; ok {
		return domainreviews.ErrDuplicateReview
	}
	r.unit.stagedReviews[key] = cloneReview(review)
	return nil
}

type userRepo struct{ unit *Unit }

func (r *userRepo) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	if u, ok := r.unit.stagedUsers[id]; ok {
		return cloneUser(u), nil
	}
	if u, ok := r.unit.store.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domainuser.ErrNotFound
}

func (r *userRepo) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	for _, u := range r.unit.stagedUsers {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	for id, u := range r.unit.store.users {
		if _, staged := r.unit.stagedUsers[id]; staged {
			continue
		}
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (r *userRepo) Save(ctx context.Context, user *domainuser.User) error {
	r.unit.stagedUsers[user.ID] = cloneUser(user)
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
