package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

// Publisher pushes an encoded envelope to a topic. The kafka producer is the
// production implementation.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error
}

// Envelope is the CloudEvents 1.0 shape every published event uses.
type Envelope struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

type Worker struct {
	Store        Store
	Publisher    Publisher
	Logger       *slog.Logger
	Source       string
	TopicPrefix  string
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// Run drains the outbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	interval := w.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Drain(ctx); err != nil {
				w.Logger.Error("outbox drain failed", "err", err)
			}
		}
	}
}

// Drain claims one batch and publishes it. Rows that keep failing past
// MaxAttempts are parked with MarkFailed so they stop blocking the queue.
func (w *Worker) Drain(ctx context.Context) error {
	batch := w.BatchSize
	if batch <= 0 {
		batch = 100
	}
	events, err := w.Store.Claim(ctx, batch)
	if err != nil {
		return err
	}
	var sent []string
	for _, ev := range events {
		payload, err := json.Marshal(Envelope{
			SpecVersion:     "1.0",
			ID:              ev.ID,
			Type:            ev.Name,
			Source:          w.Source,
			Subject:         ev.Aggregate,
			Time:            ev.OccurredAt,
			DataContentType: "application/json",
			Data:            json.RawMessage(ev.Payload),
		})
		if err != nil {
			w.Logger.Error("outbox envelope encode failed", "event_id", ev.ID, "err", err)
			_ = w.Store.MarkFailed(ctx, ev.ID, err.Error())
			continue
		}
		topic := w.TopicFor(ev.Name)
		if err := w.Publisher.Publish(ctx, topic, ev.Aggregate, payload, ev.Headers); err != nil {
			w.Logger.Warn("outbox publish failed", "event_id", ev.ID, "topic", topic, "attempt", ev.Attempts, "err", err)
			if w.MaxAttempts > 0 && ev.Attempts >= w.MaxAttempts {
				_ = w.Store.MarkFailed(ctx, ev.ID, err.Error())
			}
			continue
		}
		sent = append(sent, ev.ID)
	}
	if len(sent) == 0 {
		return nil
	}
	return w.Store.MarkSent(ctx, sent)
}

// TopicFor routes an event name to its family topic: "payments.completed"
// lands on "<prefix>.payments.events.v1".
func (w *Worker) TopicFor(eventName string) string {
	family := eventName
	if i := strings.IndexByte(eventName, '.'); i > 0 {
		family = eventName[:i]
	}
	if w.TopicPrefix == "" {
		return family + ".events.v1"
	}
	return w.TopicPrefix + "." + family + ".events.v1"
}
