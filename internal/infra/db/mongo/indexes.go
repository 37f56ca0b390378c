package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpayments "staybook/internal/domain/payments"
)

const (
	idxPaymentReference = "uniq_payment_reference"
	idxActivePayment    = "uniq_active_payment_per_booking"
	idxReviewAuthor     = "uniq_review_listing_author"
	idxUserEmail        = "uniq_user_email"
)

// EnsureIndexes creates the constraints the repositories rely on. Safe to run
// on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	activeStates := make([]string, 0, len(domainpayments.ActiveStates))
	for _, s := range domainpayments.ActiveStates {
		activeStates = append(activeStates, string(s))
	}

	_, err := db.Collection(colPayments).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(idxPaymentReference),
		},
		{
			Keys: bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName(idxActivePayment).
				SetPartialFilterExpression(bson.M{"state": bson.M{"$in": activeStates}}),
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(colBookings).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "state", Value: 1}, {Key: "check_in", Value: 1}}},
		{Keys: bson.D{{Key: "guest_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return err
	}

	// night claims are keyed by _id; this one serves claim release on cancel
	_, err = db.Collection(colBookingNights).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "booking_id", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(colReviews).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "listing_id", Value: 1}, {Key: "author_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(idxReviewAuthor),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(colUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(idxUserEmail),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(colListings).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(colOutbox).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "occurred_at", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(colIdempotency).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "occurred_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32((24 * time.Hour).Seconds())),
	})
	return err
}
