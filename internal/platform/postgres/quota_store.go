package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lingotale/lingotale-api/internal/platform/logger"
	"github.com/lingotale/lingotale-api/internal/quota"
	"github.com/lingotale/lingotale-api/internal/store"
)

// PostgresQuotaStore implements the quota.Store interface using PostgreSQL.
// One row per user holds the day's counter and its expiry; all mutations
// are single-statement upserts, so concurrent increments for the same user
// serialize on the row without explicit locking.
type PostgresQuotaStore struct {
	db     store.DBTX
	limit  int
	loc    *time.Location
	logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewPostgresQuotaStore creates a quota store with the given daily limit
// and reset time zone.
func NewPostgresQuotaStore(db store.DBTX, limit int, loc *time.Location, logger *slog.Logger) *PostgresQuotaStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresQuotaStore{
		db:     db,
		limit:  limit,
		loc:    loc,
		logger: logger.With(slog.String("component", "quota_store")),
		now:    time.Now,
	}
}

// Ensure PostgresQuotaStore implements quota.Store
var _ quota.Store = (*PostgresQuotaStore)(nil)

// Increment adds one to the user's counter for the current local day and
// returns the post-increment count. On first use of a day (or after expiry)
// the record is created with its expiry at the next local-midnight
// boundary, so the quota always resets at the same wall-clock time
// regardless of when the first request happened.
//
// The upsert serializes on the user's row, so each concurrent caller sees a
// distinct post-increment count; at most limit callers can observe a count
// within the limit. A charge that lands past the limit is rolled back and
// reported as quota.ErrLimitExceeded.
func (s *PostgresQuotaStore) Increment(ctx context.Context, userID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now().UTC()
	expiresAt := quota.NextResetTime(now, s.loc).UTC()

	// An expired row is treated as absent: the upsert restarts the count
	// at 1 with a fresh expiry instead of continuing yesterday's count.
	query := `
		INSERT INTO generation_quotas (user_id, count, expires_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET count = CASE WHEN generation_quotas.expires_at <= $3 THEN 1 ELSE generation_quotas.count + 1 END,
		    expires_at = CASE WHEN generation_quotas.expires_at <= $3 THEN EXCLUDED.expires_at ELSE generation_quotas.expires_at END
		RETURNING count
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, expiresAt, now).Scan(&count); err != nil {
		log.Error("failed to increment quota", "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to increment quota: %w", err)
	}

	if count > s.limit {
		if err := s.Decrement(ctx, userID); err != nil {
			log.Error("failed to roll back over-limit charge", "user_id", userID, "error", err)
			return 0, err
		}
		return count - 1, quota.ErrLimitExceeded
	}
	return count, nil
}

// Decrement subtracts one from the user's counter, never below zero.
// A missing or expired record is a no-op: compensation can race with
// natural expiry and must not fail because the day rolled over first.
func (s *PostgresQuotaStore) Decrement(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE generation_quotas
		SET count = GREATEST(count - 1, 0)
		WHERE user_id = $1 AND expires_at > $2
	`

	_, err := s.db.ExecContext(ctx, query, userID, s.now().UTC())
	if err != nil {
		log.Error("failed to decrement quota", "user_id", userID, "error", err)
		return fmt.Errorf("failed to decrement quota: %w", err)
	}
	return nil
}

// IsLimitReached reports whether the user's unexpired counter has reached
// the configured daily limit.
func (s *PostgresQuotaStore) IsLimitReached(ctx context.Context, userID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COALESCE(
			(SELECT count FROM generation_quotas WHERE user_id = $1 AND expires_at > $2),
			0
		)
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, s.now().UTC()).Scan(&count); err != nil {
		log.Error("failed to read quota", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to read quota: %w", err)
	}

	return count >= s.limit, nil
}

// Remove deletes the user's record regardless of expiry.
func (s *PostgresQuotaStore) Remove(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM generation_quotas WHERE user_id = $1`, userID); err != nil {
		log.Error("failed to remove quota record", "user_id", userID, "error", err)
		return fmt.Errorf("failed to remove quota record: %w", err)
	}
	return nil
}
