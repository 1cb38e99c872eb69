package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testConsumerGroup = "mail-worker"

// authEvent builds an envelope the way the auth service publishes them,
// skipping NewEvent so the event ID is deterministic.
func authEvent(eventID string) *Event {
	return &Event{
		EventID:     eventID,
		EventType:   "user.invited",
		AggregateID: "user-42",
	}
}

// countingHandler returns a handler that counts invocations and returns err.
func countingHandler(calls *atomic.Int32, err error) Handler {
	return func(ctx context.Context, event *Event) error {
		calls.Add(1)
		return err
	}
}

func TestIdempotentHandler_ProcessesFirstDelivery(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	var calls atomic.Int32

	handler := IdempotentHandler(store, countingHandler(&calls, nil), testConsumerGroup, testLogger())

	require.NoError(t, handler(context.Background(), authEvent("evt-1")))
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotentHandler_SkipsRedelivery(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	var calls atomic.Int32

	handler := IdempotentHandler(store, countingHandler(&calls, nil), testConsumerGroup, testLogger())
	event := authEvent("evt-redelivered")

	require.NoError(t, handler(context.Background(), event))
	require.NoError(t, handler(context.Background(), event))

	assert.Equal(t, int32(1), calls.Load(), "redelivery should be skipped")
}

func TestIdempotentHandler_DistinctEventsBothProcessed(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	var calls atomic.Int32

	handler := IdempotentHandler(store, countingHandler(&calls, nil), testConsumerGroup, testLogger())

	require.NoError(t, handler(context.Background(), authEvent("evt-a")))
	require.NoError(t, handler(context.Background(), authEvent("evt-b")))

	assert.Equal(t, int32(2), calls.Load())

	for _, id := range []string{"evt-a", "evt-b"} {
		seen, err := store.Contains(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, seen, "event %s should be recorded", id)
	}
}

func TestIdempotentHandler_EmptyEventIDAlwaysPassesThrough(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	var calls atomic.Int32

	handler := IdempotentHandler(store, countingHandler(&calls, nil), testConsumerGroup, testLogger())
	event := authEvent("")

	for range 3 {
		require.NoError(t, handler(context.Background(), event))
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestIdempotentHandler_FailureLeavesEventUnrecorded(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	handlerErr := errors.New("mail provider down")
	var calls atomic.Int32

	handler := IdempotentHandler(store, countingHandler(&calls, handlerErr), testConsumerGroup, testLogger())
	event := authEvent("evt-failing")

	require.ErrorIs(t, handler(context.Background(), event), handlerErr)

	seen, err := store.Contains(context.Background(), "evt-failing")
	require.NoError(t, err)
	assert.False(t, seen, "failed event must stay eligible for retry")

	// The retry is not a duplicate.
	require.ErrorIs(t, handler(context.Background(), event), handlerErr)
	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotentHandler_StoreFailureFailsOpen(t *testing.T) {
	var calls atomic.Int32

	handler := IdempotentHandler(unavailableStore{}, countingHandler(&calls, nil), testConsumerGroup, testLogger())

	require.NoError(t, handler(context.Background(), authEvent("evt-store-down")))
	assert.Equal(t, int32(1), calls.Load(), "store outage must not drop messages")
}

func TestMemoryIdempotencyStore_RoundTrip(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	ctx := context.Background()

	seen, err := store.Contains(ctx, "evt-unknown")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Add(ctx, "evt-known"))

	seen, err = store.Contains(ctx, "evt-known")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMemoryIdempotencyStore_TTLExpiry(t *testing.T) {
	store := NewMemoryIdempotencyStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "evt-short-lived"))

	time.Sleep(25 * time.Millisecond)

	seen, err := store.Contains(ctx, "evt-short-lived")
	require.NoError(t, err)
	assert.False(t, seen, "entry should expire after TTL")
	assert.Equal(t, 0, store.Len(), "expired entry should be purged on access")
}

func TestMemoryIdempotencyStore_AddIsIdempotent(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	ctx := context.Background()

	for range 5 {
		require.NoError(t, store.Add(ctx, "evt-same"))
	}
	assert.Equal(t, 1, store.Len())
}

func TestMemoryIdempotencyStore_ConcurrentSameKey(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Add(ctx, "evt-hot")
			_, _ = store.Contains(ctx, "evt-hot")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len())
}

type unavailableStore struct{}

func (unavailableStore) Contains(context.Context, string) (bool, error) {
	return false, errors.New("idempotency store unavailable")
}

func (unavailableStore) Add(context.Context, string) error {
	return errors.New("idempotency store unavailable")
}
