package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lingotale/lingotale-api/internal/domain"
)

// StoryStore defines the interface for story data persistence.
type StoryStore interface {
	// Create saves a new story to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, story *domain.Story) error

	// GetByID retrieves a story by its unique ID.
	// Returns ErrStoryNotFound if the story does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Story, error)

	// LinkWords associates the given word IDs with a story, recording which
	// new vocabulary a story introduced.
	LinkWords(ctx context.Context, storyID uuid.UUID, wordIDs []uuid.UUID) error

	// WithTx returns a new StoryStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller (typically a service).
	WithTx(tx *sql.Tx) StoryStore
}
