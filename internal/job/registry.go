package job

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler executes one job attempt. On success it returns the job's value,
// which is stored on the record for callers polling the status query.
// Returning an error aborts the whole attempt; the worker decides
// retry-vs-terminal at its outer boundary, so handlers never catch and
// compensate stage errors individually.
type Handler func(ctx context.Context, jc *Context) (json.RawMessage, error)

// CompensationFunc is a corrective action run exactly once when a job of the
// registered kind reaches terminal failure after exhausting its attempts.
// It receives the job's original payload.
type CompensationFunc func(ctx context.Context, payload json.RawMessage) error

// Registration declares one job kind: its handler, its retry budget, the
// phase catalog used for progress reporting, and an optional compensation
// hook. Declaring compensation here keeps the worker generic; adding a new
// compensable kind never requires editing worker internals.
type Registration struct {
	// Kind is the string tag routing jobs to this registration.
	Kind string

	// Handler executes the job.
	Handler Handler

	// MaxAttempts is the number of execution attempts before the job is
	// marked failed. Must be at least 1.
	MaxAttempts int

	// Phases is the ordered phase catalog for this kind's progress
	// reporting. May be nil for kinds that report no progress.
	Phases Catalog

	// Compensate, if non-nil, runs after the job's terminal failure.
	Compensate CompensationFunc
}

// Registry is a closed, explicit mapping from job kind to registration,
// resolved once at startup. Lookup of an unregistered kind is a dispatch
// error, never a silent no-op.
type Registry struct {
	registrations map[string]Registration
}

// NewRegistry builds a registry from the given registrations.
// Returns an error on duplicate kinds or invalid registrations so
// configuration bugs surface at construction time.
func NewRegistry(registrations ...Registration) (*Registry, error) {
	m := make(map[string]Registration, len(registrations))

	for _, reg := range registrations {
		if reg.Kind == "" {
			return nil, fmt.Errorf("registration has empty kind")
		}
		if reg.Handler == nil {
			return nil, fmt.Errorf("registration for kind %q has nil handler", reg.Kind)
		}
		if reg.MaxAttempts < 1 {
			return nil, fmt.Errorf("registration for kind %q has max attempts %d, need at least 1",
				reg.Kind, reg.MaxAttempts)
		}
		if _, exists := m[reg.Kind]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKind, reg.Kind)
		}
		m[reg.Kind] = reg
	}

	return &Registry{registrations: m}, nil
}

// Lookup returns the registration for the given kind.
// Returns ErrUnknownJobKind if the kind is not registered.
func (r *Registry) Lookup(kind string) (Registration, error) {
	reg, ok := r.registrations[kind]
	if !ok {
		return Registration{}, fmt.Errorf("%w: %s", ErrUnknownJobKind, kind)
	}
	return reg, nil
}

// MaxAttempts returns the configured attempt budget for the given kind,
// or 1 when the kind is not registered. Unregistered kinds fail on their
// first dispatch anyway, so a single attempt is all they get.
func (r *Registry) MaxAttempts(kind string) int {
	if reg, ok := r.registrations[kind]; ok {
		return reg.MaxAttempts
	}
	return 1
}
