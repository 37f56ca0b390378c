package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpayments "staybook/internal/domain/payments"
	domainreviews "staybook/internal/domain/reviews"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

type listingRepo struct{ unit *Unit }

func (r *listingRepo) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	ctx = r.unit.bind(ctx)
	var doc listingDoc
	err := r.unit.db.Collection(colListings).FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainlistings.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *listingRepo) Save(ctx context.Context, listing *domainlistings.Listing) error {
	ctx = r.unit.bind(ctx)
	col := r.unit.db.Collection(colListings)
	doc := toListingDoc(listing)
	if listing.Version == 0 {
		doc.Version = 1
		if _, err := col.InsertOne(ctx, doc); err != nil {
			return err
		}
		listing.Version = 1
		return nil
	}
	doc.Version = listing.Version + 1
	res, err := col.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": listing.Version}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	listing.Version = doc.Version
	return nil
}

func (r *listingRepo) List(ctx context.Context, params domainlistings.ListParams) ([]*domainlistings.Listing, error) {
	ctx = r.unit.bind(ctx)
	filter := bson.M{}
	if params.Owner != "" {
		filter["owner_id"] = string(params.Owner)
	}
	if params.Location != "" {
		filter["location"] = params.Location
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if params.Limit > 0 {
		opts.SetLimit(int64(params.Limit))
	}
	if params.Offset > 0 {
		opts.SetSkip(int64(params.Offset))
	}
	cur, err := r.unit.db.Collection(colListings).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainlistings.Listing
	for cur.Next(ctx) {
		var doc listingDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

type bookingRepo struct{ unit *Unit }

func (r *bookingRepo) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	ctx = r.unit.bind(ctx)
	var doc bookingDoc
	err := r.unit.db.Collection(colBookings).FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainbooking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// Save claims one document per listing night on first insert. Concurrent
// transactions booking overlapping dates collide on a claim _id, so at most
// one commits; the claims are released when the booking leaves its active
// states.
func (r *bookingRepo) Save(ctx context.Context, booking *domainbooking.Booking) error {
	ctx = r.unit.bind(ctx)
	col := r.unit.db.Collection(colBookings)
	doc := toBookingDoc(booking)
	if booking.Version == 0 {
		if _, err := r.unit.db.Collection(colBookingNights).InsertMany(ctx, nightClaims(booking)); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domainbooking.ErrOverlap
			}
			return err
		}
		doc.Version = 1
		if _, err := col.InsertOne(ctx, doc); err != nil {
			return err
		}
		booking.Version = 1
		return nil
	}
	doc.Version = booking.Version + 1
	res, err := col.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": booking.Version}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	if !booking.Active() {
		if _, err := r.unit.db.Collection(colBookingNights).DeleteMany(ctx, bson.M{"booking_id": doc.ID}); err != nil {
			return err
		}
	}
	booking.Version = doc.Version
	return nil
}

func (r *bookingRepo) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	ctx = r.unit.bind(ctx)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.unit.db.Collection(colBookings).Find(ctx, bson.M{"guest_id": guestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

func (r *bookingRepo) HasOverlap(ctx context.Context, listingID domainlistings.ListingID, dr daterange.DateRange, exclude domainbooking.BookingID) (bool, error) {
	ctx = r.unit.bind(ctx)
	states := make([]string, 0, len(domainbooking.ActiveStates))
	for _, s := range domainbooking.ActiveStates {
		states = append(states, string(s))
	}
	filter := bson.M{
		"listing_id": string(listingID),
		"state":      bson.M{"$in": states},
		"check_in":   bson.M{"$lt": dr.CheckOut},
		"check_out":  bson.M{"$gt": dr.CheckIn},
	}
	if exclude != "" {
		filter["_id"] = bson.M{"$ne": string(exclude)}
	}
	n, err := r.unit.db.Collection(colBookings).CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type paymentRepo struct{ unit *Unit }

func (r *paymentRepo) ByReference(ctx context.Context, reference string) (*domainpayments.Payment, error) {
	ctx = r.unit.bind(ctx)
	var doc paymentDoc
	err := r.unit.db.Collection(colPayments).FindOne(ctx, bson.M{"reference": reference}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainpayments.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *paymentRepo) ListByBooking(ctx context.Context, bookingID domainbooking.BookingID) ([]*domainpayments.Payment, error) {
	ctx = r.unit.bind(ctx)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.unit.db.Collection(colPayments).Find(ctx, bson.M{"booking_id": string(bookingID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainpayments.Payment
	for cur.Next(ctx) {
		var doc paymentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

// Create relies on two unique indexes: the plain one on reference and the
// partial one on booking_id restricted to active states. The insert either
// lands or reports which constraint it hit.
func (r *paymentRepo) Create(ctx context.Context, payment *domainpayments.Payment) error {
	ctx = r.unit.bind(ctx)
	doc := toPaymentDoc(payment)
	doc.Version = 1
	_, err := r.unit.db.Collection(colPayments).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), idxPaymentReference) {
			return domainpayments.ErrReferenceTaken
		}
		return domainpayments.ErrDuplicatePayment
	}
	if err != nil {
		return err
	}
	payment.Version = 1
	return nil
}

func (r *paymentRepo) Save(ctx context.Context, payment *domainpayments.Payment) error {
	ctx = r.unit.bind(ctx)
	doc := toPaymentDoc(payment)
	doc.Version = payment.Version + 1
	res, err := r.unit.db.Collection(colPayments).ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": payment.Version}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	payment.Version = doc.Version
	return nil
}

type reviewRepo struct{ unit *Unit }

func (r *reviewRepo) ListByListing(ctx context.Context, listingID domainlistings.ListingID, limit, offset int) ([]*domainreviews.Review, error) {
	ctx = r.unit.bind(ctx)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	cur, err := r.unit.db.Collection(colReviews).Find(ctx, bson.M{"listing_id": string(listingID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainreviews.Review
	for cur.Next(ctx) {
		var doc reviewDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

func (r *reviewRepo) Create(ctx context.Context, review *domainreviews.Review) error {
	ctx = r.unit.bind(ctx)
	_, err := r.unit.db.Collection(colReviews).InsertOne(ctx, toReviewDoc(review))
	if mongo.IsDuplicateKeyError(err) {
		return domainreviews.ErrDuplicateReview
	}
	return err
}

type userRepo struct{ unit *Unit }

func (r *userRepo) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	ctx = r.unit.bind(ctx)
	var doc userDoc
	err := r.unit.db.Collection(colUsers).FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainuser.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *userRepo) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	ctx = r.unit.bind(ctx)
	var doc userDoc
	err := r.unit.db.Collection(colUsers).FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainuser.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *userRepo) Save(ctx context.Context, user *domainuser.User) error {
	ctx = r.unit.bind(ctx)
	opts := options.Replace().SetUpsert(true)
	_, err := r.unit.db.Collection(colUsers).ReplaceOne(ctx, bson.M{"_id": string(user.ID)}, toUserDoc(user), opts)
	if mongo.IsDuplicateKeyError(err) {
		return domainuser.ErrEmailAlreadyUsed
	}
	return err
}
