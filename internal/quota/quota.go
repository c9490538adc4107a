// Package quota enforces the per-user daily story generation limit.
//
// Each user gets a counter that expires at the next occurrence of a fixed
// wall-clock boundary (midnight in a configured time zone), not 24 hours
// after the first request. The request path increments the counter before a
// generation job is enqueued; the worker decrements it when the job
// ultimately fails so users are not charged for a failed attempt.
package quota

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrLimitExceeded is returned by Increment when the charge would push the
// user's counter past the daily limit. The counter is left unchanged.
var ErrLimitExceeded = errors.New("daily quota limit exceeded")

// Store is the contract for the per-user daily quota counter.
//
// All implementations must make the charge atomic per user: concurrent
// increments for the same user serialize, so the admitted count can never
// exceed the configured limit even when requests race. A separate
// check-then-increment sequence cannot give that guarantee; Increment is
// the single gate.
type Store interface {
	// Increment adds one to the user's counter for the current local day,
	// creating the record with its reset-boundary expiry on first use, and
	// returns the post-increment count. Returns ErrLimitExceeded, leaving
	// the counter unchanged, when the charge would pass the daily limit.
	Increment(ctx context.Context, userID uuid.UUID) (int, error)

	// Decrement subtracts one from the user's counter. It is a no-op, not
	// an error, when no record exists: a compensation can race with natural
	// expiry.
	Decrement(ctx context.Context, userID uuid.UUID) error

	// IsLimitReached reports whether the user has reached the daily limit.
	// An expired record counts as absent.
	IsLimitReached(ctx context.Context, userID uuid.UUID) (bool, error)

	// Remove deletes the user's record regardless of expiry.
	Remove(ctx context.Context, userID uuid.UUID) error
}

// NextResetTime returns the next occurrence of the quota reset boundary
// (00:00 in loc) strictly after now. A record created at any point during a
// local day therefore expires at the same local time as every other record
// from that day.
func NextResetTime(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, 1)
}
