package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lingotale/lingotale-api/internal/domain"
	"github.com/lingotale/lingotale-api/internal/platform/logger"
	"github.com/lingotale/lingotale-api/internal/store"
)

// PostgresStoryStore implements the store.StoryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStoryStore creates a new PostgreSQL implementation of the
// StoryStore interface.
func NewPostgresStoryStore(db store.DBTX, logger *slog.Logger) *PostgresStoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "story_store")),
	}
}

// Ensure PostgresStoryStore implements store.StoryStore
var _ store.StoryStore = (*PostgresStoryStore)(nil)

// Create implements store.StoryStore.Create
func (s *PostgresStoryStore) Create(ctx context.Context, story *domain.Story) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := story.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO stories (id, user_id, topic, text, translation, audio_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		story.ID,
		story.UserID,
		story.Topic,
		story.Text,
		story.Translation,
		story.AudioURL,
		story.CreatedAt,
		story.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
			return fmt.Errorf("%w: user does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create story",
			"story_id", story.ID,
			"user_id", story.UserID,
			"error", err)
		return fmt.Errorf("failed to create story: %w", err)
	}

	return nil
}

// GetByID implements store.StoryStore.GetByID
func (s *PostgresStoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Story, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, topic, text, translation, audio_url, created_at, updated_at
		FROM stories
		WHERE id = $1
	`

	var story domain.Story
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&story.ID,
		&story.UserID,
		&story.Topic,
		&story.Text,
		&story.Translation,
		&story.AudioURL,
		&story.CreatedAt,
		&story.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStoryNotFound
		}
		log.Error("failed to get story", "story_id", id, "error", err)
		return nil, fmt.Errorf("failed to get story: %w", err)
	}

	return &story, nil
}

// LinkWords implements store.StoryStore.LinkWords
func (s *PostgresStoryStore) LinkWords(ctx context.Context, storyID uuid.UUID, wordIDs []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO story_words (story_id, word_id)
		VALUES ($1, $2)
		ON CONFLICT (story_id, word_id) DO NOTHING
	`

	for _, wordID := range wordIDs {
		if _, err := s.db.ExecContext(ctx, query, storyID, wordID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
				return fmt.Errorf("%w: story or word does not exist", store.ErrInvalidEntity)
			}
			log.Error("failed to link word to story",
				"story_id", storyID,
				"word_id", wordID,
				"error", err)
			return fmt.Errorf("failed to link word to story: %w", err)
		}
	}

	return nil
}

// WithTx implements store.StoryStore.WithTx
func (s *PostgresStoryStore) WithTx(tx *sql.Tx) store.StoryStore {
	return &PostgresStoryStore{
		db:     tx,
		logger: s.logger,
	}
}
