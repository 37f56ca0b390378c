package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	infraoutbox "staybook/internal/infra/outbox"
)

const (
	outboxPending = "pending"
	outboxSent    = "sent"
	outboxFailed  = "failed"
)

type outboxDoc struct {
	ID         string            `bson:"_id"`
	Name       string            `bson:"name"`
	Aggregate  string            `bson:"aggregate"`
	Payload    []byte            `bson:"payload"`
	Headers    map[string]string `bson:"headers,omitempty"`
	OccurredAt time.Time         `bson:"occurred_at"`
	Status     string            `bson:"status"`
	Attempts   int               `bson:"attempts"`
	LastError  string            `bson:"last_error,omitempty"`
}

// OutboxStore writes event records into the outbox collection. Add joins the
// caller's unit of work when one is in the context, which is what makes the
// state change and its events atomic.
type OutboxStore struct {
	db *mongo.Database
}

func NewOutboxStore(db *mongo.Database) *OutboxStore {
	return &OutboxStore{db: db}
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if unit, ok := uow.FromContext(ctx); ok {
		if mu, ok := unit.(*Unit); ok {
			ctx = mu.bind(ctx)
		}
	}
	_, err := s.db.Collection(colOutbox).InsertOne(ctx, outboxDoc{
		ID:         record.ID,
		Name:       record.Name,
		Aggregate:  record.Aggregate,
		Payload:    record.Payload,
		Headers:    record.Headers,
		OccurredAt: record.OccurredAt,
		Status:     outboxPending,
	})
	return err
}

func (s *OutboxStore) Claim(ctx context.Context, limit int) ([]infraoutbox.StoredEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := s.db.Collection(colOutbox).Find(ctx, bson.M{"status": outboxPending}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []infraoutbox.StoredEvent
	var ids []string
	for cur.Next(ctx) {
		var doc outboxDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, infraoutbox.StoredEvent{
			ID:         doc.ID,
			Name:       doc.Name,
			Aggregate:  doc.Aggregate,
			Payload:    doc.Payload,
			OccurredAt: doc.OccurredAt,
			Headers:    doc.Headers,
			Attempts:   doc.Attempts + 1,
		})
		ids = append(ids, doc.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		_, err = s.db.Collection(colOutbox).UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": ids}},
			bson.M{"$inc": bson.M{"attempts": 1}},
		)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, ids []string) error {
	_, err := s.db.Collection(colOutbox).UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"status": outboxSent}},
	)
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, reason string) error {
	_, err := s.db.Collection(colOutbox).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": outboxFailed, "last_error": reason}},
	)
	return err
}
