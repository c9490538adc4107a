package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// State represents the current lifecycle state of a job.
type State string

// Possible job states
const (
	StatePending   State = "pending"
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Job kind constants
const (
	// KindGenerateStory is the job kind for the story generation pipeline.
	KindGenerateStory = "generateStory"

	// KindUpdateWordStatus is the job kind for updating a vocabulary word's
	// learning status.
	KindUpdateWordStatus = "updateWordStatus"
)

// Record is one unit of queued asynchronous work. Records are created when
// enqueued, mutated by the worker (attempt increments, state transitions)
// and by handlers (progress writes, return value), and retained after a
// terminal state so callers can poll the outcome.
type Record struct {
	ID           uuid.UUID         `json:"id"`
	Kind         string            `json:"kind"`
	Payload      json.RawMessage   `json:"payload"`
	Attempts     int               `json:"attempts"`
	MaxAttempts  int               `json:"max_attempts"`
	State        State             `json:"state"`
	Progress     *ProgressSnapshot `json:"progress,omitempty"`
	Value        json.RawMessage   `json:"value,omitempty"`
	FailedReason string            `json:"failed_reason,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Status is the caller-facing view of a job, returned by the status query.
// It exposes only lifecycle state, last reported progress, and the outcome;
// internal stage detail never leaks to the caller.
type Status struct {
	State        State             `json:"status"`
	Progress     *ProgressSnapshot `json:"progress,omitempty"`
	Value        json.RawMessage   `json:"value,omitempty"`
	FailedReason string            `json:"failed_reason,omitempty"`
}

// Store defines the interface for persisting jobs. The queue relies on it
// for durability: jobs not yet completed remain retrievable across process
// restarts.
type Store interface {
	// Save persists a newly enqueued job.
	Save(ctx context.Context, record *Record) error

	// MarkActive transitions a job to active for one execution attempt,
	// atomically incrementing its attempt counter. Returns the updated
	// record. Returns ErrJobNotFound for an unknown ID.
	MarkActive(ctx context.Context, id uuid.UUID) (*Record, error)

	// MarkPending returns a job to the pending state so it can be
	// retried or recovered. The reason is kept for operators.
	MarkPending(ctx context.Context, id uuid.UUID, reason string) error

	// MarkCompleted transitions a job to its terminal completed state and
	// records the handler's return value.
	MarkCompleted(ctx context.Context, id uuid.UUID, value json.RawMessage) error

	// MarkFailed transitions a job to its terminal failed state and records
	// the failure reason.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error

	// WriteProgress atomically replaces the job's progress snapshot.
	WriteProgress(ctx context.Context, id uuid.UUID, snapshot ProgressSnapshot) error

	// GetByID retrieves a job by its ID.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// ListByState retrieves all jobs in the given state, oldest first.
	ListByState(ctx context.Context, state State) ([]*Record, error)

	// WithTx returns a new Store instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller.
	WithTx(tx *sql.Tx) Store
}
