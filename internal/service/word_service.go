package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lingotale/lingotale-api/internal/domain"
	"github.com/lingotale/lingotale-api/internal/job"
	"github.com/lingotale/lingotale-api/internal/store"
)

// WordService provides vocabulary operations: the asynchronous
// status-update entry point consumed by the HTTP layer, the synchronous
// update applied by the job handler, and the vocabulary reads the story
// pipeline starts with.
type WordService interface {
	// EnqueueWordStatusUpdate enqueues an updateWordStatus job and returns
	// its ID for polling.
	EnqueueWordStatusUpdate(ctx context.Context, userID, wordID uuid.UUID, status domain.WordStatus) (uuid.UUID, error)

	// UpdateWordStatus applies a status change to a word owned by the user.
	// Returns ErrWordNotFound if the word does not exist and
	// domain.ErrUnauthorized if it belongs to someone else.
	UpdateWordStatus(ctx context.Context, userID, wordID uuid.UUID, status domain.WordStatus) error

	// GetKnownWords returns the user's known vocabulary.
	GetKnownWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error)

	// GetUnknownWords returns vocabulary the user has seen but not learned.
	GetUnknownWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error)

	// GetLearningWords returns vocabulary the user is currently studying.
	GetLearningWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error)
}

type wordServiceImpl struct {
	wordStore store.WordStore
	queue     JobQueue
	logger    *slog.Logger
}

// NewWordService creates a new WordService.
func NewWordService(wordStore store.WordStore, queue JobQueue, logger *slog.Logger) (WordService, error) {
	if wordStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "wordStore cannot be nil"}
	}
	if queue == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "queue cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &wordServiceImpl{
		wordStore: wordStore,
		queue:     queue,
		logger:    logger.With("component", "word_service"),
	}, nil
}

func (s *wordServiceImpl) EnqueueWordStatusUpdate(
	ctx context.Context,
	userID, wordID uuid.UUID,
	status domain.WordStatus,
) (uuid.UUID, error) {
	payload, err := json.Marshal(job.WordStatusPayload{
		WordID: wordID,
		UserID: userID,
		Status: status,
	})
	if err != nil {
		return uuid.Nil, &ServiceError{
			Operation: "enqueue_word_status_update",
			Message:   "failed to marshal payload",
			Err:       err,
		}
	}

	jobID, err := s.queue.Enqueue(ctx, job.KindUpdateWordStatus, payload)
	if err != nil {
		return uuid.Nil, &ServiceError{
			Operation: "enqueue_word_status_update",
			Message:   "failed to enqueue job",
			Err:       err,
		}
	}

	s.logger.Info("word status update enqueued",
		"job_id", jobID,
		"word_id", wordID,
		"user_id", userID,
		"status", status)
	return jobID, nil
}

func (s *wordServiceImpl) UpdateWordStatus(
	ctx context.Context,
	userID, wordID uuid.UUID,
	status domain.WordStatus,
) error {
	word, err := s.wordStore.GetByID(ctx, wordID)
	if err != nil {
		if errors.Is(err, store.ErrWordNotFound) {
			return ErrWordNotFound
		}
		return &ServiceError{
			Operation: "update_word_status",
			Message:   "failed to retrieve word",
			Err:       err,
		}
	}

	if word.UserID != userID {
		return domain.ErrUnauthorized
	}

	if err := s.wordStore.UpdateStatus(ctx, wordID, status); err != nil {
		return &ServiceError{
			Operation: "update_word_status",
			Message:   "failed to update word status",
			Err:       err,
		}
	}
	return nil
}

func (s *wordServiceImpl) GetKnownWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error) {
	return s.wordStore.FindByUserAndStatus(ctx, userID, domain.WordStatusKnown)
}

func (s *wordServiceImpl) GetUnknownWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error) {
	return s.wordStore.FindByUserAndStatus(ctx, userID, domain.WordStatusUnknown)
}

func (s *wordServiceImpl) GetLearningWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error) {
	return s.wordStore.FindByUserAndStatus(ctx, userID, domain.WordStatusLearning)
}
