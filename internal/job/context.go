package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Context carries one job execution's identity, payload, and progress
// tracker into its handler. It is exclusively owned by that execution and
// never shared across concurrent jobs.
type Context struct {
	// ID is the job's queue-assigned identifier.
	ID uuid.UUID

	// Kind is the job's kind tag.
	Kind string

	// Attempt is the 1-based number of the current execution attempt.
	Attempt int

	// Logger is scoped to this job execution.
	Logger *slog.Logger

	payload json.RawMessage
	tracker *Tracker
}

// DecodePayload unmarshals the job's payload into v.
func (jc *Context) DecodePayload(v any) error {
	if err := json.Unmarshal(jc.payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", jc.Kind, err)
	}
	return nil
}

// Advance reports a phase transition through the job's progress tracker.
// It is a no-op for kinds registered without a phase catalog.
func (jc *Context) Advance(ctx context.Context, phaseName string) error {
	if jc.tracker == nil {
		return nil
	}
	return jc.tracker.Advance(ctx, phaseName)
}
