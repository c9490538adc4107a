package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lingotale/lingotale-api/internal/job"
	"github.com/lingotale/lingotale-api/internal/platform/logger"
	"github.com/lingotale/lingotale-api/internal/store"
)

// PostgresJobStore implements the job.Store interface using PostgreSQL.
// It is the durability layer behind the job queue: rows outlive the
// process, so unfinished jobs can be recovered after a restart.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of job.Store.
// It accepts a database connection or transaction that should be
// initialized and managed by the caller.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements job.Store
var _ job.Store = (*PostgresJobStore)(nil)

// Save persists a newly enqueued job.
func (s *PostgresJobStore) Save(ctx context.Context, record *job.Record) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO jobs (id, kind, payload, attempts, max_attempts, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Kind,
		[]byte(record.Payload),
		record.Attempts,
		record.MaxAttempts,
		record.State,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to save job",
			"job_id", record.ID,
			"job_kind", record.Kind,
			"error", err)
		return fmt.Errorf("failed to save job to database: %w", err)
	}

	return nil
}

// MarkActive claims the job for one execution attempt, atomically
// incrementing the attempt counter, and returns the updated record.
func (s *PostgresJobStore) MarkActive(ctx context.Context, id uuid.UUID) (*job.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET state = $1, attempts = attempts + 1, updated_at = $2
		WHERE id = $3
		RETURNING id, kind, payload, attempts, max_attempts, state, progress, value, failed_reason, created_at, updated_at
	`

	row := s.db.QueryRowContext(ctx, query, job.StateActive, time.Now().UTC(), id)
	record, err := scanJobRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, job.ErrJobNotFound
		}
		log.Error("failed to mark job active", "job_id", id, "error", err)
		return nil, fmt.Errorf("failed to mark job active: %w", err)
	}
	return record, nil
}

// MarkPending returns the job to the pending state for retry or recovery.
func (s *PostgresJobStore) MarkPending(ctx context.Context, id uuid.UUID, reason string) error {
	return s.updateState(ctx, id, job.StatePending, nil, reason)
}

// MarkCompleted transitions the job to its terminal completed state.
func (s *PostgresJobStore) MarkCompleted(ctx context.Context, id uuid.UUID, value json.RawMessage) error {
	return s.updateState(ctx, id, job.StateCompleted, value, "")
}

// MarkFailed transitions the job to its terminal failed state.
func (s *PostgresJobStore) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return s.updateState(ctx, id, job.StateFailed, nil, reason)
}

// updateState writes a state transition. value and reason are stored as
// given; pending transitions keep the reason for operators without
// surfacing it as a terminal failure.
func (s *PostgresJobStore) updateState(
	ctx context.Context,
	id uuid.UUID,
	state job.State,
	value json.RawMessage,
	reason string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET state = $1, value = $2, failed_reason = $3, updated_at = $4
		WHERE id = $5
	`

	var valueArg any
	if value != nil {
		valueArg = []byte(value)
	}

	result, err := s.db.ExecContext(ctx, query, state, valueArg, reason, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update job state",
			"job_id", id,
			"state", state,
			"error", err)
		return fmt.Errorf("failed to update job state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return job.ErrJobNotFound
	}

	return nil
}

// WriteProgress atomically replaces the job's progress snapshot.
func (s *PostgresJobStore) WriteProgress(ctx context.Context, id uuid.UUID, snapshot job.ProgressSnapshot) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal progress snapshot: %w", err)
	}

	query := `
		UPDATE jobs
		SET progress = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, data, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to write job progress", "job_id", id, "error", err)
		return fmt.Errorf("failed to write job progress: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return job.ErrJobNotFound
	}

	return nil
}

// GetByID retrieves a job by its ID.
func (s *PostgresJobStore) GetByID(ctx context.Context, id uuid.UUID) (*job.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, kind, payload, attempts, max_attempts, state, progress, value, failed_reason, created_at, updated_at
		FROM jobs
		WHERE id = $1
	`

	row := s.db.QueryRowContext(ctx, query, id)
	record, err := scanJobRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, job.ErrJobNotFound
		}
		log.Error("failed to get job", "job_id", id, "error", err)
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return record, nil
}

// ListByState retrieves all jobs in the given state, oldest first.
func (s *PostgresJobStore) ListByState(ctx context.Context, state job.State) ([]*job.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, kind, payload, attempts, max_attempts, state, progress, value, failed_reason, created_at, updated_at
		FROM jobs
		WHERE state = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, state)
	if err != nil {
		log.Error("failed to query jobs by state", "state", state, "error", err)
		return nil, fmt.Errorf("failed to query jobs by state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*job.Record
	for rows.Next() {
		record, err := scanJobRow(rows)
		if err != nil {
			log.Error("failed to scan job row", "state", state, "error", err)
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return records, nil
}

// WithTx returns a new job.Store instance that uses the provided transaction.
func (s *PostgresJobStore) WithTx(tx *sql.Tx) job.Store {
	return &PostgresJobStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanJobRow reads one job record from a row.
func scanJobRow(row rowScanner) (*job.Record, error) {
	var (
		record       job.Record
		payload      []byte
		progressData []byte
		value        []byte
		failedReason sql.NullString
	)

	err := row.Scan(
		&record.ID,
		&record.Kind,
		&payload,
		&record.Attempts,
		&record.MaxAttempts,
		&record.State,
		&progressData,
		&value,
		&failedReason,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Payload = payload
	record.FailedReason = failedReason.String
	if value != nil {
		record.Value = value
	}
	if progressData != nil {
		var snapshot job.ProgressSnapshot
		if err := json.Unmarshal(progressData, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal progress snapshot: %w", err)
		}
		record.Progress = &snapshot
	}

	return &record, nil
}
