package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lingotale/lingotale-api/internal/domain"
)

// WordStore defines the interface for vocabulary data persistence.
type WordStore interface {
	// Create saves a new word to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, word *domain.Word) error

	// GetByID retrieves a word by its unique ID.
	// Returns ErrWordNotFound if the word does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error)

	// GetByUserAndLemma retrieves the user's word for the given lemma,
	// matched case-insensitively.
	// Returns ErrWordNotFound if the user has no such word.
	GetByUserAndLemma(ctx context.Context, userID uuid.UUID, lemma string) (*domain.Word, error)

	// FindByUserAndStatus retrieves all of a user's words with the given
	// status. Returns an empty slice if none match.
	FindByUserAndStatus(ctx context.Context, userID uuid.UUID, status domain.WordStatus) ([]*domain.Word, error)

	// UpdateStatus updates the status of an existing word.
	// Returns ErrWordNotFound if the word does not exist.
	// Returns validation errors if the status is invalid.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.WordStatus) error

	// WithTx returns a new WordStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller (typically a service).
	WithTx(tx *sql.Tx) WordStore
}
