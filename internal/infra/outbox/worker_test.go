package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "staybook/internal/app/outbox"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/storage/memory"
)

type published struct {
	topic   string
	key     string
	payload []byte
}

type fakePublisher struct {
	err  error
	sent []published
}

func (p *fakePublisher) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{topic: topic, key: key, payload: payload})
	return nil
}

func newWorker(store infraoutbox.Store, pub infraoutbox.Publisher) *infraoutbox.Worker {
	return &infraoutbox.Worker{
		Store:       store,
		Publisher:   pub,
		Logger:      slog.New(slog.DiscardHandler),
		Source:      "staybook",
		TopicPrefix: "staybook",
		MaxAttempts: 3,
	}
}

func addRecord(t *testing.T, box *memory.Outbox, id, name string) {
	t.Helper()
	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{
		ID:         id,
		Name:       name,
		Aggregate:  "agg-1",
		Payload:    []byte(`{"BookingID":"bkg-1"}`),
		OccurredAt: time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC),
	}))
}

func TestDrainPublishesEnvelopes(t *testing.T) {
	box := memory.NewOutbox()
	pub := &fakePublisher{}
	addRecord(t, box, "evt-1", "payments.completed")
	addRecord(t, box, "evt-2", "booking.confirmed")

	require.NoError(t, newWorker(box, pub).Drain(context.Background()))
	require.Len(t, pub.sent, 2)
	assert.Equal(t, "staybook.payments.events.v1", pub.sent[0].topic)
	assert.Equal(t, "staybook.booking.events.v1", pub.sent[1].topic)
	assert.Equal(t, "agg-1", pub.sent[0].key)

	var envelope infraoutbox.Envelope
	require.NoError(t, json.Unmarshal(pub.sent[0].payload, &envelope))
	assert.Equal(t, "1.0", envelope.SpecVersion)
	assert.Equal(t, "payments.completed", envelope.Type)
	assert.Equal(t, "staybook", envelope.Source)
	assert.JSONEq(t, `{"BookingID":"bkg-1"}`, string(envelope.Data))

	assert.Empty(t, box.Pending(), "published records leave the queue")
}

func TestDrainIsNoopWhenEmpty(t *testing.T) {
	box := memory.NewOutbox()
	pub := &fakePublisher{}
	require.NoError(t, newWorker(box, pub).Drain(context.Background()))
	assert.Empty(t, pub.sent)
}

func TestDrainRetriesUntilMaxAttempts(t *testing.T) {
	box := memory.NewOutbox()
	pub := &fakePublisher{err: errors.New("broker down")}
	addRecord(t, box, "evt-1", "payments.completed")
	worker := newWorker(box, pub)

	for i := 0; i < 3; i++ {
		require.NoError(t, worker.Drain(context.Background()))
	}
	// parked after the third failed attempt
	assert.Empty(t, box.Pending())

	pub.err = nil
	require.NoError(t, worker.Drain(context.Background()))
	assert.Empty(t, pub.sent, "parked records are not retried")
}

func TestDrainRecoversAfterTransientFailure(t *testing.T) {
	box := memory.NewOutbox()
	pub := &fakePublisher{err: errors.New("broker down")}
	addRecord(t, box, "evt-1", "payments.completed")
	worker := newWorker(box, pub)

	require.NoError(t, worker.Drain(context.Background()))
	require.Empty(t, pub.sent)

	pub.err = nil
	require.NoError(t, worker.Drain(context.Background()))
	require.Len(t, pub.sent, 1)
	assert.Empty(t, box.Pending())
}

func TestTopicFor(t *testing.T) {
	worker := newWorker(memory.NewOutbox(), &fakePublisher{})
	assert.Equal(t, "staybook.payments.events.v1", worker.TopicFor("payments.completed"))
	assert.Equal(t, "staybook.listings.events.v1", worker.TopicFor("listings.created"))

	worker.TopicPrefix = ""
	assert.Equal(t, "payments.events.v1", worker.TopicFor("payments.failed"))
}
