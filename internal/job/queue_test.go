package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := NewRegistry(
		Registration{Kind: "test", Handler: noopHandler, MaxAttempts: 3},
	)
	require.NoError(t, err)
	return registry
}

func TestQueueEnqueue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("persists then dispatches", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		queue := NewQueue(store, testRegistry(t), 10, nil)

		id, err := queue.Enqueue(ctx, "test", json.RawMessage(`{"x":1}`))
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, id)

		record, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, StatePending, record.State)
		assert.Equal(t, "test", record.Kind)
		assert.Equal(t, 0, record.Attempts)
		assert.Equal(t, 3, record.MaxAttempts, "attempt budget comes from the registry")

		select {
		case dispatched := <-queue.Chan():
			assert.Equal(t, id, dispatched.ID)
		default:
			t.Fatal("expected job on dispatch channel")
		}
	})

	t.Run("unregistered kind gets one attempt", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		queue := NewQueue(store, testRegistry(t), 10, nil)

		id, err := queue.Enqueue(ctx, "mystery", nil)
		require.NoError(t, err)

		record, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, record.MaxAttempts)
	})

	t.Run("save failure aborts dispatch", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		store.saveErr = errors.New("db down")
		queue := NewQueue(store, testRegistry(t), 10, nil)

		_, err := queue.Enqueue(ctx, "test", nil)
		require.Error(t, err)
		assert.Empty(t, queue.Chan())
	})

	t.Run("full queue rejected", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		queue := NewQueue(store, testRegistry(t), 1, nil)

		_, err := queue.Enqueue(ctx, "test", nil)
		require.NoError(t, err)

		_, err = queue.Enqueue(ctx, "test", nil)
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("closed queue rejected", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		queue := NewQueue(store, testRegistry(t), 10, nil)
		queue.Close()

		_, err := queue.Enqueue(ctx, "test", nil)
		assert.ErrorIs(t, err, ErrQueueClosed)
	})
}

func TestQueueGetStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns caller-facing view", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		queue := NewQueue(store, testRegistry(t), 10, nil)

		id, err := queue.Enqueue(ctx, "test", nil)
		require.NoError(t, err)
		require.NoError(t, store.MarkCompleted(ctx, id, json.RawMessage(`{"ok":true}`)))

		status, err := queue.GetStatus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, StateCompleted, status.State)
		assert.JSONEq(t, `{"ok":true}`, string(status.Value))
		assert.Empty(t, status.FailedReason)
	})

	t.Run("retry notes stay hidden until terminal failure", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		queue := NewQueue(store, testRegistry(t), 10, nil)

		id, err := queue.Enqueue(ctx, "test", nil)
		require.NoError(t, err)

		record, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		require.NoError(t, queue.requeue(ctx, record, "transient upstream error"))

		// The requeue note lands in the store but a pending job reports no
		// failure to its poller.
		status, err := queue.GetStatus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, StatePending, status.State)
		assert.Empty(t, status.FailedReason)

		require.NoError(t, store.MarkFailed(ctx, id, "upstream always down"))
		status, err = queue.GetStatus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, StateFailed, status.State)
		assert.Equal(t, "upstream always down", status.FailedReason)
	})

	t.Run("unknown job", func(t *testing.T) {
		t.Parallel()
		queue := NewQueue(newMemStore(), testRegistry(t), 10, nil)

		_, err := queue.GetStatus(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrJobNotFound)
	})
}

func TestQueueRecover(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newMemStore()

	pending := &Record{ID: uuid.New(), Kind: "test", State: StatePending, MaxAttempts: 3}
	interrupted := &Record{ID: uuid.New(), Kind: "test", State: StateActive, Attempts: 1, MaxAttempts: 3}
	done := &Record{ID: uuid.New(), Kind: "test", State: StateCompleted, MaxAttempts: 3}
	require.NoError(t, store.Save(ctx, pending))
	require.NoError(t, store.Save(ctx, interrupted))
	require.NoError(t, store.Save(ctx, done))

	queue := NewQueue(store, testRegistry(t), 10, nil)
	require.NoError(t, queue.Recover(ctx))

	// Both unfinished jobs are back on the channel; the completed one is
	// left alone.
	dispatched := map[uuid.UUID]bool{}
	for i := 0; i < 2; i++ {
		select {
		case record := <-queue.Chan():
			dispatched[record.ID] = true
		default:
			t.Fatal("expected two recovered jobs on dispatch channel")
		}
	}
	assert.True(t, dispatched[pending.ID])
	assert.True(t, dispatched[interrupted.ID])
	assert.Empty(t, queue.Chan())

	// The interrupted job was reset to pending, keeping its attempt count.
	record, err := store.GetByID(ctx, interrupted.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePending, record.State)
	assert.Equal(t, 1, record.Attempts)
}
