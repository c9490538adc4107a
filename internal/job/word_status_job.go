package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lingotale/lingotale-api/internal/domain"
)

// Dependency and payload errors for WordStatusHandler
var (
	ErrNilWordUpdater = errors.New("word updater cannot be nil")

	errMissingWordID     = errors.New("word status payload missing word ID")
	errMissingWordUserID = errors.New("word status payload missing user ID")
	errMissingWordStatus = errors.New("word status payload missing status")
)

// WordUpdater applies a learning-status change to one vocabulary word.
type WordUpdater interface {
	UpdateWordStatus(ctx context.Context, userID, wordID uuid.UUID, status domain.WordStatus) error
}

// WordStatusPayload is the payload of an updateWordStatus job.
type WordStatusPayload struct {
	WordID uuid.UUID         `json:"word_id"`
	UserID uuid.UUID         `json:"user_id"`
	Status domain.WordStatus `json:"status"`
}

// WordStatusHandler processes updateWordStatus jobs. A malformed payload is
// a precondition failure: the job fails on its first attempt and is never
// retried. The kind has no compensation hook.
type WordStatusHandler struct {
	words  WordUpdater
	logger *slog.Logger
}

// NewWordStatusHandler creates the updateWordStatus handler.
func NewWordStatusHandler(words WordUpdater, logger *slog.Logger) (*WordStatusHandler, error) {
	if words == nil {
		return nil, ErrNilWordUpdater
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WordStatusHandler{
		words:  words,
		logger: logger.With("component", "word_status_handler"),
	}, nil
}

// Registration returns the declarative registration for the
// updateWordStatus kind.
func (h *WordStatusHandler) Registration(maxAttempts int) Registration {
	return Registration{
		Kind:        KindUpdateWordStatus,
		Handler:     h.Handle,
		MaxAttempts: maxAttempts,
	}
}

// Handle runs one updateWordStatus attempt.
func (h *WordStatusHandler) Handle(ctx context.Context, jc *Context) (json.RawMessage, error) {
	var payload WordStatusPayload
	if err := jc.DecodePayload(&payload); err != nil {
		return nil, Permanent(err)
	}

	if payload.WordID == uuid.Nil {
		return nil, Permanent(errMissingWordID)
	}
	if payload.UserID == uuid.Nil {
		return nil, Permanent(errMissingWordUserID)
	}
	if payload.Status == "" {
		return nil, Permanent(errMissingWordStatus)
	}
	if !domain.IsValidWordStatus(payload.Status) {
		return nil, Permanent(fmt.Errorf("%w: %s", domain.ErrInvalidWordStatus, payload.Status))
	}

	if err := h.words.UpdateWordStatus(ctx, payload.UserID, payload.WordID, payload.Status); err != nil {
		return nil, fmt.Errorf("failed to update word status: %w", err)
	}

	jc.Logger.Info("word status updated",
		"word_id", payload.WordID,
		"status", payload.Status)
	return nil, nil
}
