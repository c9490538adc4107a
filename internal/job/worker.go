package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// WorkerConfig holds configuration for the worker pool.
type WorkerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs.
	// If zero or negative, defaults to 1.
	WorkerCount int
}

// DefaultWorkerConfig returns a WorkerConfig with reasonable defaults.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		WorkerCount: 2,
	}
}

// Worker pulls jobs off the queue and routes each to its registered handler
// by kind. It owns the retry-vs-terminal decision at its outermost boundary:
// handler failures are retried until the kind's attempt budget is exhausted,
// then the job is marked failed and the kind's compensation hook (if any)
// runs exactly once. Handlers themselves never decide retries and never
// touch compensation state.
type Worker struct {
	queue    *Queue
	store    Store
	registry *Registry

	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	stop        chan struct{}
	stopOnce    sync.Once
	logger      *slog.Logger
}

// NewWorker creates a worker pool consuming from the given queue. The
// registry is passed in explicitly; the worker holds no ambient state.
func NewWorker(queue *Queue, store Store, registry *Registry, cfg WorkerConfig, logger *slog.Logger) *Worker {
	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		queue:       queue,
		store:       store,
		registry:    registry,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		stop:        make(chan struct{}),
		logger:      logger.With("component", "job_worker"),
	}
}

// Start launches the worker goroutines.
func (w *Worker) Start() {
	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.run(i)
	}
}

// Stop signals the workers to stop accepting new jobs and waits for
// in-flight handlers to run to completion. The shared context is cancelled
// only after the wait, so a handler mid-execution finishes and records its
// outcome rather than being aborted at its next external call.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
	w.cancel()
}

// run is one worker goroutine's main loop.
func (w *Worker) run(id int) {
	defer w.wg.Done()

	w.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-w.stop:
			w.logger.Debug("stopping worker", "worker_id", id)
			return

		case <-w.ctx.Done():
			w.logger.Debug("stopping worker", "worker_id", id)
			return

		case record, ok := <-w.queue.Chan():
			if !ok {
				w.logger.Debug("job channel closed, stopping worker", "worker_id", id)
				return
			}
			w.process(record, id)
		}
	}
}

// process executes a single dequeued job and reacts to the outcome.
func (w *Worker) process(record *Record, workerID int) {
	ctx := w.ctx
	logger := w.logger.With(
		"job_id", record.ID,
		"job_kind", record.Kind,
		"worker_id", workerID,
	)

	// Claim the job: active state, attempt counter incremented. This is the
	// only place attempts advance, so a restarted process keeps counting
	// from where the previous one stopped.
	record, err := w.store.MarkActive(ctx, record.ID)
	if err != nil {
		logger.Error("failed to mark job active", "error", err)
		return
	}

	logger = logger.With("attempt", record.Attempts, "max_attempts", record.MaxAttempts)
	logger.Info("processing job")

	reg, err := w.registry.Lookup(record.Kind)
	if err != nil {
		// Nothing can handle this kind; retrying would dispatch into the
		// same missing registration.
		logger.Error("no handler registered for job kind", "error", err)
		w.fail(ctx, record, Registration{}, err, logger)
		return
	}

	// The tracker picks up from the record's stored progress, so a retry
	// attempt re-running early phases never rewinds the persisted index.
	var tracker *Tracker
	if reg.Phases != nil {
		tracker = NewTracker(w.store, record.ID, reg.Phases, record.Progress, logger)
	}

	jc := &Context{
		ID:      record.ID,
		Kind:    record.Kind,
		Attempt: record.Attempts,
		Logger:  logger,
		payload: record.Payload,
		tracker: tracker,
	}

	value, err := reg.Handler(ctx, jc)
	if err == nil {
		if markErr := w.store.MarkCompleted(ctx, record.ID, value); markErr != nil {
			logger.Error("failed to mark job completed", "error", markErr)
			return
		}
		logger.Info("job completed")
		return
	}

	logger.Error("job attempt failed", "error", err)

	if IsPermanent(err) {
		// Precondition-class failure: a retry cannot succeed.
		w.fail(ctx, record, reg, err, logger)
		return
	}

	if record.Attempts < record.MaxAttempts {
		if requeueErr := w.queue.requeue(ctx, record, err.Error()); requeueErr != nil {
			logger.Error("failed to requeue job for retry", "error", requeueErr)
			w.fail(ctx, record, reg, err, logger)
			return
		}
		logger.Info("job requeued for retry")
		return
	}

	w.fail(ctx, record, reg, err, logger)
}

// fail marks a job terminally failed and runs the kind's compensation hook.
// Compensation runs only here, on final failure, never per attempt: a user
// is not penalized for transient retries, and is refunded exactly once when
// the job gives up for good. The hook fires only once MarkFailed has
// actually recorded the terminal state; if that write fails the job is
// still recoverable, will be retried after a restart, and compensating now
// would double-refund when it finally fails for real. Terminal bookkeeping
// runs detached from the worker context so a shutdown mid-failure cannot
// leave the refund half-applied.
func (w *Worker) fail(ctx context.Context, record *Record, reg Registration, cause error, logger *slog.Logger) {
	ctx = context.WithoutCancel(ctx)

	reason := failureReason(cause)
	if err := w.store.MarkFailed(ctx, record.ID, reason); err != nil {
		logger.Error("failed to mark job failed", "error", err)
		return
	}

	logger.Error("job failed terminally", "reason", reason)

	if reg.Compensate == nil {
		return
	}

	if err := reg.Compensate(ctx, record.Payload); err != nil {
		logger.Error("compensation failed", "error", err)
		return
	}
	logger.Info("compensation applied")
}

// failureReason produces the short, human-readable reason surfaced to
// polling callers. Permanent markers are internal routing detail and are
// stripped.
func failureReason(err error) string {
	var perm *PermanentError
	if errors.As(err, &perm) {
		return perm.Err.Error()
	}
	if errors.Is(err, ErrUnknownJobKind) {
		return err.Error()
	}
	return fmt.Sprintf("%v", err)
}
