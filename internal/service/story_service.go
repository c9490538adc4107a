package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lingotale/lingotale-api/internal/domain"
	"github.com/lingotale/lingotale-api/internal/job"
	"github.com/lingotale/lingotale-api/internal/quota"
	"github.com/lingotale/lingotale-api/internal/store"
)

// JobQueue is the subset of the durable queue the story service uses.
type JobQueue interface {
	Enqueue(ctx context.Context, kind string, payload json.RawMessage) (uuid.UUID, error)
	GetStatus(ctx context.Context, id uuid.UUID) (*job.Status, error)
}

// StoryService owns the request-acceptance path for story generation (quota
// charge, job enqueue) and the persistence of the finished composite. It is
// also the job-status read path for polling clients.
type StoryService interface {
	// StartStoryGeneration charges the user's daily quota and enqueues a
	// generateStory job. Returns the job ID for polling.
	// Returns domain.ErrDailyLimitReached when the user is out of quota.
	StartStoryGeneration(ctx context.Context, userID uuid.UUID, topic, languageCode, translationLanguageCode string) (uuid.UUID, error)

	// SaveGeneratedStory persists the composite generation result: the
	// story row, the newly discovered words, and the story-word links, all
	// in one transaction. Returns the new story's ID.
	SaveGeneratedStory(ctx context.Context, userID uuid.UUID, generated *domain.GeneratedStory) (uuid.UUID, error)

	// JobStatus returns the current status of a job.
	// Returns job.ErrJobNotFound for an unknown ID.
	JobStatus(ctx context.Context, jobID uuid.UUID) (*job.Status, error)

	// GetStory returns a story owned by the user.
	// Returns ErrStoryNotFound if it does not exist and
	// domain.ErrUnauthorized if it belongs to someone else.
	GetStory(ctx context.Context, userID, storyID uuid.UUID) (*domain.Story, error)
}

type storyServiceImpl struct {
	db         *sql.DB
	storyStore store.StoryStore
	wordStore  store.WordStore
	quotaStore quota.Store
	queue      JobQueue
	logger     *slog.Logger
}

// NewStoryService creates a new StoryService.
// It returns an error if any of the required dependencies are nil.
func NewStoryService(
	db *sql.DB,
	storyStore store.StoryStore,
	wordStore store.WordStore,
	quotaStore quota.Store,
	queue JobQueue,
	logger *slog.Logger,
) (StoryService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if storyStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "storyStore cannot be nil"}
	}
	if wordStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "wordStore cannot be nil"}
	}
	if quotaStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "quotaStore cannot be nil"}
	}
	if queue == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "queue cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &storyServiceImpl{
		db:         db,
		storyStore: storyStore,
		wordStore:  wordStore,
		quotaStore: quotaStore,
		queue:      queue,
		logger:     logger.With("component", "story_service"),
	}, nil
}

func (s *storyServiceImpl) StartStoryGeneration(
	ctx context.Context,
	userID uuid.UUID,
	topic, languageCode, translationLanguageCode string,
) (uuid.UUID, error) {
	// Charge the quota before enqueueing: a job that exists without a
	// charge could let a user exceed the limit by racing the queue. The
	// charge itself is the admission gate; the store serializes concurrent
	// increments on the user's row, so two requests racing at the boundary
	// cannot both be admitted. The worker refunds the charge if the job
	// ultimately fails.
	count, err := s.quotaStore.Increment(ctx, userID)
	if err != nil {
		if errors.Is(err, quota.ErrLimitExceeded) {
			s.logger.Info("story generation rejected, daily limit reached", "user_id", userID)
			return uuid.Nil, domain.ErrDailyLimitReached
		}
		return uuid.Nil, &ServiceError{
			Operation: "start_story_generation",
			Message:   "failed to charge quota",
			Err:       err,
		}
	}
	s.logger.Debug("quota charged", "user_id", userID, "count", count)

	payload, err := json.Marshal(job.StoryGenerationPayload{
		UserID:                  userID,
		Topic:                   topic,
		LanguageCode:            languageCode,
		TranslationLanguageCode: translationLanguageCode,
	})
	if err != nil {
		return uuid.Nil, &ServiceError{
			Operation: "start_story_generation",
			Message:   "failed to marshal payload",
			Err:       err,
		}
	}

	jobID, err := s.queue.Enqueue(ctx, job.KindGenerateStory, payload)
	if err != nil {
		// The job never started; refund immediately rather than leaving
		// the charge to expire.
		if decErr := s.quotaStore.Decrement(ctx, userID); decErr != nil {
			s.logger.Error("failed to refund quota after enqueue failure",
				"user_id", userID,
				"error", decErr)
		}
		return uuid.Nil, &ServiceError{
			Operation: "start_story_generation",
			Message:   "failed to enqueue job",
			Err:       err,
		}
	}

	s.logger.Info("story generation job enqueued",
		"job_id", jobID,
		"user_id", userID,
		"topic", topic)
	return jobID, nil
}

func (s *storyServiceImpl) SaveGeneratedStory(
	ctx context.Context,
	userID uuid.UUID,
	generated *domain.GeneratedStory,
) (uuid.UUID, error) {
	story, err := domain.NewStory(userID, generated.Topic, generated.Text, generated.Translation, generated.AudioURL)
	if err != nil {
		return uuid.Nil, &ServiceError{
			Operation: "save_generated_story",
			Message:   "failed to build story entity",
			Err:       err,
		}
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStories := s.storyStore.WithTx(tx)
		txWords := s.wordStore.WithTx(tx)

		if err := txStories.Create(ctx, story); err != nil {
			return fmt.Errorf("failed to save story: %w", err)
		}

		wordIDs, err := saveStoryWords(ctx, txWords, userID, generated.NewWords)
		if err != nil {
			return err
		}

		if len(wordIDs) > 0 {
			if err := txStories.LinkWords(ctx, story.ID, wordIDs); err != nil {
				return fmt.Errorf("failed to link words to story: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, &ServiceError{
			Operation: "save_generated_story",
			Message:   "failed to persist composite result",
			Err:       err,
		}
	}

	s.logger.Info("generated story persisted",
		"story_id", story.ID,
		"user_id", userID,
		"new_word_count", len(generated.NewWords))
	return story.ID, nil
}

// saveStoryWords persists the newly discovered words and returns their IDs
// for story linking. The pipeline filters lemmas against its vocabulary
// snapshot, but the table can have gained a lemma since (a concurrent job,
// or a learning-status row the snapshot never saw). The user already tracks
// such a word; the existing row is linked instead of re-created, which
// would trip the per-user lemma uniqueness constraint and abort the whole
// save.
func saveStoryWords(ctx context.Context, words store.WordStore, userID uuid.UUID, items []domain.VocabularyItem) ([]uuid.UUID, error) {
	wordIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		existing, err := words.GetByUserAndLemma(ctx, userID, item.Lemma)
		if err == nil {
			wordIDs = append(wordIDs, existing.ID)
			continue
		}
		if !errors.Is(err, store.ErrWordNotFound) {
			return nil, fmt.Errorf("failed to check for existing word %q: %w", item.Lemma, err)
		}

		word, err := domain.NewWord(userID, item.Lemma, item.Translation, item.Article)
		if err != nil {
			return nil, fmt.Errorf("failed to build word entity for %q: %w", item.Lemma, err)
		}
		word.ExampleSentence = item.ExampleSentence
		word.ExampleTranslation = item.ExampleTranslation

		if err := words.Create(ctx, word); err != nil {
			return nil, fmt.Errorf("failed to save word %q: %w", item.Lemma, err)
		}
		wordIDs = append(wordIDs, word.ID)
	}
	return wordIDs, nil
}

func (s *storyServiceImpl) JobStatus(ctx context.Context, jobID uuid.UUID) (*job.Status, error) {
	return s.queue.GetStatus(ctx, jobID)
}

func (s *storyServiceImpl) GetStory(ctx context.Context, userID, storyID uuid.UUID) (*domain.Story, error) {
	story, err := s.storyStore.GetByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, store.ErrStoryNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, &ServiceError{
			Operation: "get_story",
			Message:   "failed to retrieve story",
			Err:       err,
		}
	}
	if story.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return story, nil
}
