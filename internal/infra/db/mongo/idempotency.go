package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/middleware"
)

type idempotencyDoc struct {
	Key        string    `bson:"_id"`
	Payload    []byte    `bson:"payload,omitempty"`
	Error      string    `bson:"error,omitempty"`
	ErrorCode  string    `bson:"error_code,omitempty"`
	OccurredAt time.Time `bson:"occurred_at"`
}

// IdempotencyStore persists command results keyed by idempotency key. A TTL
// index on occurred_at ages records out.
type IdempotencyStore struct {
	db *mongo.Database
}

func NewIdempotencyStore(db *mongo.Database) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var doc idempotencyDoc
	err := s.db.Collection(colIdempotency).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	return middleware.IdempotencyRecord{
		Key:        doc.Key,
		Payload:    doc.Payload,
		Error:      doc.Error,
		ErrorCode:  doc.ErrorCode,
		OccurredAt: doc.OccurredAt,
	}, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection(colIdempotency).ReplaceOne(ctx, bson.M{"_id": rec.Key}, idempotencyDoc{
		Key:        rec.Key,
		Payload:    rec.Payload,
		Error:      rec.Error,
		ErrorCode:  rec.ErrorCode,
		OccurredAt: rec.OccurredAt,
	}, opts)
	return err
}
