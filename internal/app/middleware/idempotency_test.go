package middleware

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/app/commands"
	domainbooking "homestay/internal/domain/booking"
)

type mapIdempotencyStore struct {
	records map[string]IdempotencyRecord
}

func newMapStore() *mapIdempotencyStore {
	return &mapIdempotencyStore{records: map[string]IdempotencyRecord{}}
}

func (s *mapIdempotencyStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *mapIdempotencyStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.records[rec.Key] = rec
	return nil
}

type pingCommand struct {
	Key_ string
}

func (c pingCommand) Key() string            { return "test.ping" }
func (c pingCommand) IdempotencyKey() string { return c.Key_ }
func (c pingCommand) ResultPrototype() any   { return &pingResult{} }

type pingResult struct {
	Value int `json:"value"`
}

type countingHandler struct {
	calls int
	err   error
}

func (h *countingHandler) Handle(_ context.Context, _ pingCommand) (*pingResult, error) {
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	return &pingResult{Value: h.calls}, nil
}

func newPipeline(handler *countingHandler, store IdempotencyStore) commands.Bus {
	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, pingCommand{}.Key(), handler)
	return ChainCommands(base, Idempotency(store, nil))
}

func TestIdempotencyReplaysResult(t *testing.T) {
	handler := &countingHandler{}
	bus := newPipeline(handler, newMapStore())
	ctx := context.Background()

	first, err := commands.Dispatch[pingCommand, *pingResult](ctx, bus, pingCommand{Key_: "k-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Value)

	second, err := commands.Dispatch[pingCommand, *pingResult](ctx, bus, pingCommand{Key_: "k-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Value, "replayed, not re-executed")
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencyDistinctKeysExecute(t *testing.T) {
	handler := &countingHandler{}
	bus := newPipeline(handler, newMapStore())
	ctx := context.Background()

	_, err := commands.Dispatch[pingCommand, *pingResult](ctx, bus, pingCommand{Key_: "k-1"})
	require.NoError(t, err)
	_, err = commands.Dispatch[pingCommand, *pingResult](ctx, bus, pingCommand{Key_: "k-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, handler.calls)
}

func TestIdempotencyEmptyKeyBypasses(t *testing.T) {
	handler := &countingHandler{}
	bus := newPipeline(handler, newMapStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := commands.Dispatch[pingCommand, *pingResult](ctx, bus, pingCommand{})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, handler.calls)
}

func TestIdempotencyReplaysError(t *testing.T) {
	handler := &countingHandler{err: errors.New("boom")}
	bus := newPipeline(handler, newMapStore())
	ctx := context.Background()

	_, err := commands.Dispatch[pingCommand, *pingResult](ctx, bus, pingCommand{Key_: "k-1"})
	require.Error(t, err)

	handler.err = nil
	_, err = commands.Dispatch[pingCommand, *pingResult](ctx, bus, pingCommand{Key_: "k-1"})
	require.Error(t, err, "recorded failure is replayed")
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencyReplayKeepsErrorKind(t *testing.T) {
	handler := &countingHandler{err: domainbooking.ErrDateConflict}
	bus := newPipeline(handler, newMapStore())
	ctx := context.Background()

	_, err := commands.Dispatch[pingCommand, *pingResult](ctx, bus, pingCommand{Key_: "k-1"})
	require.ErrorIs(t, err, domainbooking.ErrDateConflict)

	handler.err = nil
	_, err = commands.Dispatch[pingCommand, *pingResult](ctx, bus, pingCommand{Key_: "k-1"})
	require.ErrorIs(t, err, domainbooking.ErrDateConflict, "replay must keep the error identity")
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencyReplayKeepsWrappedErrorKind(t *testing.T) {
	wrapped := fmt.Errorf("listing lst-1: %w", domainbooking.ErrDateConflict)
	handler := &countingHandler{err: wrapped}
	bus := newPipeline(handler, newMapStore())
	ctx := context.Background()

	_, err := commands.Dispatch[pingCommand, *pingResult](ctx, bus, pingCommand{Key_: "k-1"})
	require.Error(t, err)

	handler.err = nil
	_, err = commands.Dispatch[pingCommand, *pingResult](ctx, bus, pingCommand{Key_: "k-1"})
	require.ErrorIs(t, err, domainbooking.ErrDateConflict)
	assert.Equal(t, wrapped.Error(), err.Error(), "replay must keep the recorded message")
}
