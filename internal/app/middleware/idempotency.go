package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"staybook/internal/app/commands"
)

// IdempotentCommand marks commands whose outcome is stored under a
// client-chosen key and replayed on retries instead of re-running the
// handler.
type IdempotentCommand interface {
	commands.Command
	// IdempotencyKey returns the client-supplied key, empty to opt out.
	IdempotencyKey() string
	// ResultPrototype returns a pointer the stored payload decodes into.
	ResultPrototype() any
}

// IdempotencyRecord is one stored outcome: an encoded result payload, or the
// error the first attempt ended with. ErrorCode keeps the failure
// machine-readable so a replay can surface the original sentinel rather than
// an opaque message.
type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	ErrorCode  string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

// ReplayCatalog maps stable codes to sentinel errors. A recorded failure
// whose error matches a catalog entry is stored by code and rebuilt as the
// sentinel itself on replay, so errors.Is works across the store round trip.
type ReplayCatalog map[string]error

func (c ReplayCatalog) codeFor(err error) string {
	for code, sentinel := range c {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ""
}

func (c ReplayCatalog) rebuild(rec IdempotencyRecord) error {
	if sentinel, ok := c[rec.ErrorCode]; ok {
		return sentinel
	}
	return errors.New(rec.Error)
}

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency replays stored outcomes for IdempotentCommands. Commands
// without a key, and non-idempotent commands, pass straight through.
func Idempotency(store IdempotencyStore, codec ResultCodec, replayable ReplayCatalog) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return nextFn(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				return replayOutcome(rec, idCmd, codec, replayable)
			}

			result, err := nextFn(ctx, cmd)
			if saveErr := saveOutcome(ctx, store, codec, replayable, key, result, err); saveErr != nil {
				if err != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, saveErr
			}
			return result, err
		})
	}
}

func replayOutcome(rec IdempotencyRecord, cmd IdempotentCommand, codec ResultCodec, replayable ReplayCatalog) (any, error) {
	if rec.Error != "" || rec.ErrorCode != "" {
		return nil, replayable.rebuild(rec)
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	if rv := reflect.ValueOf(proto); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, errMissingPrototype
	}
	return proto, nil
}

func saveOutcome(ctx context.Context, store IdempotencyStore, codec ResultCodec, replayable ReplayCatalog, key string, result any, err error) error {
	rec := IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
	if err != nil {
		rec.Error = err.Error()
		rec.ErrorCode = replayable.codeFor(err)
		return store.Save(ctx, rec)
	}
	if result != nil {
		payload, encErr := codec.Encode(result)
		if encErr != nil {
			return encErr
		}
		rec.Payload = payload
	}
	return store.Save(ctx, rec)
}
