package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Queue is the durable job queue. Enqueued jobs are persisted through the
// Store before being handed to workers over an in-memory channel, so jobs
// not yet completed survive a process restart and are requeued by Recover.
// Dispatch order is FIFO per queue instance; no ordering is guaranteed
// between different kinds.
type Queue struct {
	store    Store
	registry *Registry
	jobs     chan *Record
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewQueue creates a durable queue with the given dispatch buffer size.
// The registry supplies each kind's configured attempt budget.
func NewQueue(store Store, registry *Registry, size int, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		store:    store,
		registry: registry,
		jobs:     make(chan *Record, size),
		logger:   logger.With("component", "job_queue"),
	}
}

// Enqueue persists a new job of the given kind and schedules it for
// dispatch. Returns the queue-assigned job ID.
func (q *Queue) Enqueue(ctx context.Context, kind string, payload json.RawMessage) (uuid.UUID, error) {
	now := time.Now().UTC()
	record := &Record{
		ID:          uuid.New(),
		Kind:        kind,
		Payload:     payload,
		MaxAttempts: q.registry.MaxAttempts(kind),
		State:       StatePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Persist first: durability beats dispatch. A job that lands in the
	// store but not in the channel is picked up by the next Recover.
	if err := q.store.Save(ctx, record); err != nil {
		return uuid.Nil, fmt.Errorf("failed to save job: %w", err)
	}

	if err := q.dispatch(record); err != nil {
		return uuid.Nil, err
	}

	q.logger.Debug("job enqueued",
		"job_id", record.ID,
		"job_kind", kind,
		"queue_len", len(q.jobs),
		"queue_cap", cap(q.jobs))
	return record.ID, nil
}

// GetStatus returns the caller-facing status of a job: its state, last
// reported progress, and its value or failure reason. The stored reason
// column also holds retry notes for operators, so it is surfaced only once
// the job is terminally failed.
// Returns ErrJobNotFound for an unknown ID.
func (q *Queue) GetStatus(ctx context.Context, id uuid.UUID) (*Status, error) {
	record, err := q.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := &Status{
		State:    record.State,
		Progress: record.Progress,
		Value:    record.Value,
	}
	if record.State == StateFailed {
		status.FailedReason = record.FailedReason
	}
	return status, nil
}

// Recover requeues jobs left unfinished by a previous process: pending jobs
// are re-dispatched as-is, active jobs (interrupted mid-execution by a
// crash) are reset to pending first.
func (q *Queue) Recover(ctx context.Context) error {
	pending, err := q.store.ListByState(ctx, StatePending)
	if err != nil {
		return fmt.Errorf("failed to list pending jobs: %w", err)
	}

	active, err := q.store.ListByState(ctx, StateActive)
	if err != nil {
		return fmt.Errorf("failed to list active jobs: %w", err)
	}

	q.logger.Info("recovering unfinished jobs",
		"pending_count", len(pending),
		"active_count", len(active))

	for _, record := range pending {
		if err := q.dispatch(record); err != nil {
			q.logger.Error("failed to requeue pending job",
				"job_id", record.ID,
				"job_kind", record.Kind,
				"error", err)
		}
	}

	for _, record := range active {
		if err := q.store.MarkPending(ctx, record.ID, "reset after recovery"); err != nil {
			q.logger.Error("failed to reset interrupted job",
				"job_id", record.ID,
				"job_kind", record.Kind,
				"error", err)
			continue
		}
		if err := q.dispatch(record); err != nil {
			q.logger.Error("failed to requeue interrupted job",
				"job_id", record.ID,
				"job_kind", record.Kind,
				"error", err)
		}
	}

	return nil
}

// Chan returns the read-only dispatch channel consumed by workers.
func (q *Queue) Chan() <-chan *Record {
	return q.jobs
}

// Close closes the queue, preventing further job submission.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("job queue closed")
	}
}

// dispatch places a record on the in-memory channel without blocking.
func (q *Queue) dispatch(record *Record) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- record:
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// requeue puts a job back on the channel for another attempt. Used by the
// worker between retries.
func (q *Queue) requeue(ctx context.Context, record *Record, reason string) error {
	if err := q.store.MarkPending(ctx, record.ID, reason); err != nil {
		return err
	}
	if err := q.dispatch(record); err != nil && !errors.Is(err, ErrQueueClosed) {
		return err
	}
	return nil
}
