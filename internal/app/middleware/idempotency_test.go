package middleware_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/infra/storage/memory"
)

type echoCommand struct {
	Value string
	Key_  string
}

func (c echoCommand) Key() string            { return "test.echo" }
func (c echoCommand) IdempotencyKey() string { return c.Key_ }
func (c echoCommand) ResultPrototype() any   { return &echoResult{} }

type echoResult struct {
	Value string `json:"value"`
}

type countingHandler struct {
	calls int
	err   error
}

func (h *countingHandler) Handle(ctx context.Context, cmd echoCommand) (*echoResult, error) {
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	return &echoResult{Value: cmd.Value}, nil
}

var errStayTaken = errors.New("test: stay taken")

func newBus(handler *countingHandler, store middleware.IdempotencyStore) commands.Bus {
	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, echoCommand{}.Key(), handler)
	catalog := middleware.ReplayCatalog{"stay_taken": errStayTaken}
	return middleware.ChainCommands(base, middleware.Idempotency(store, nil, catalog))
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	handler := &countingHandler{}
	bus := newBus(handler, memory.NewIdempotencyStore(time.Hour))
	ctx := context.Background()

	first, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "hello", Key_: "k-1"})
	require.NoError(t, err)
	assert.Equal(t, "hello", first.Value)

	second, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "changed", Key_: "k-1"})
	require.NoError(t, err)
	assert.Equal(t, "hello", second.Value, "the stored result wins over the retried payload")
	assert.Equal(t, 1, handler.calls, "handler runs once per key")
}

func TestIdempotencyDistinctKeysRunIndependently(t *testing.T) {
	handler := &countingHandler{}
	bus := newBus(handler, memory.NewIdempotencyStore(time.Hour))
	ctx := context.Background()

	_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "a", Key_: "k-1"})
	require.NoError(t, err)
	_, err = commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "b", Key_: "k-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, handler.calls)
}

func TestIdempotencyEmptyKeyBypassesStore(t *testing.T) {
	handler := &countingHandler{}
	bus := newBus(handler, memory.NewIdempotencyStore(time.Hour))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "x"})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, handler.calls)
}

func TestIdempotencyReplaysErrors(t *testing.T) {
	handler := &countingHandler{err: errors.New("boom")}
	bus := newBus(handler, memory.NewIdempotencyStore(time.Hour))
	ctx := context.Background()

	_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "x", Key_: "k-1"})
	require.EqualError(t, err, "boom")

	handler.err = nil
	_, err = commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "x", Key_: "k-1"})
	require.EqualError(t, err, "boom", "a recorded failure is replayed, not retried")
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencyReplaysSentinelIdentity(t *testing.T) {
	handler := &countingHandler{err: fmt.Errorf("lst-1: %w", errStayTaken)}
	bus := newBus(handler, memory.NewIdempotencyStore(time.Hour))
	ctx := context.Background()

	_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "x", Key_: "k-1"})
	require.ErrorIs(t, err, errStayTaken)

	// the replay keeps the sentinel, so errors.Is mapping still works
	handler.err = nil
	_, err = commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "x", Key_: "k-1"})
	assert.ErrorIs(t, err, errStayTaken)
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencyExpiredRecordRunsAgain(t *testing.T) {
	handler := &countingHandler{}
	bus := newBus(handler, memory.NewIdempotencyStore(time.Nanosecond))
	ctx := context.Background()

	_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "x", Key_: "k-1"})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "x", Key_: "k-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, handler.calls)
}
