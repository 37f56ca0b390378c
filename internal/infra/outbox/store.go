package outbox

import (
	"context"
	"time"
)

// StoredEvent is an outbox row awaiting publication.
type StoredEvent struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    []byte
	OccurredAt time.Time
	Headers    map[string]string
	Attempts   int
}

// Store is the durable queue the worker drains. Claim returns pending rows
// and bumps their attempt count; rows stay pending until marked sent or
// failed, so one worker instance owns the drain loop.
type Store interface {
	Claim(ctx context.Context, limit int) ([]StoredEvent, error)
	MarkSent(ctx context.Context, ids []string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}
