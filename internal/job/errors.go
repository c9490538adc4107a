package job

import (
	"errors"
	"fmt"
)

// Common errors returned by the job package.
var (
	// ErrJobNotFound is returned when querying or updating an unknown job ID.
	ErrJobNotFound = errors.New("job not found")

	// ErrUnknownJobKind is returned when a job's kind has no registered
	// handler. This is a configuration bug, not a transient fault, so
	// dispatch fails immediately and the job is never retried.
	ErrUnknownJobKind = errors.New("unknown job kind")

	// ErrQueueClosed is returned when enqueueing on a closed queue.
	ErrQueueClosed = errors.New("job queue is closed")

	// ErrQueueFull is returned when the in-memory dispatch buffer is full.
	ErrQueueFull = errors.New("job queue is full")

	// ErrDuplicateKind is returned when two handlers register the same kind.
	ErrDuplicateKind = errors.New("job kind already registered")
)

// PermanentError wraps an error that must not be retried regardless of the
// job's remaining attempts. Handlers return it for precondition failures
// (bad payload, missing prerequisite state) where a retry cannot succeed.
type PermanentError struct {
	Err error
}

// Error implements the error interface.
func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent marks err as non-retryable. Returns nil if err is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is marked non-retryable.
func IsPermanent(err error) bool {
	var perm *PermanentError
	return errors.As(err, &perm)
}
