package memory

import (
	"context"
	"sync"

	appoutbox "staybook/internal/app/outbox"
	infraoutbox "staybook/internal/infra/outbox"
)

type outboxEntry struct {
	record   appoutbox.EventRecord
	attempts int
	sent     bool
	failed   bool
	lastErr  string
}

// Outbox keeps pending event records in memory. It backs both the
// application-side Add and the worker-side Claim/Mark calls.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, &outboxEntry{record: record})
	return nil
}

func (o *Outbox) Claim(ctx context.Context, limit int) ([]infraoutbox.StoredEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []infraoutbox.StoredEvent
	for _, e := range o.entries {
		if e.sent || e.failed {
			continue
		}
		e.attempts++
		out = append(out, infraoutbox.StoredEvent{
			ID:         e.record.ID,
			Name:       e.record.Name,
			Aggregate:  e.record.Aggregate,
			Payload:    e.record.Payload,
			OccurredAt: e.record.OccurredAt,
			Headers:    e.record.Headers,
			Attempts:   e.attempts,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (o *Outbox) MarkSent(ctx context.Context, ids []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for _, e := range o.entries {
		if set[e.record.ID] {
			e.sent = true
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.entries {
		if e.record.ID == id {
			e.failed = true
			e.lastErr = reason
		}
	}
	return nil
}

// Pending returns unsent records, oldest first. Test helper.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []appoutbox.EventRecord
	for _, e := range o.entries {
		if !e.sent && !e.failed {
			out = append(out, e.record)
		}
	}
	return out
}

// All returns every record ever added, in order. Test helper.
func (o *Outbox) All() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, 0, len(o.entries))
	for _, e := range o.entries {
		out = append(out, e.record)
	}
	return out
}
