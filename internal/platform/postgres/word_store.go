package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lingotale/lingotale-api/internal/domain"
	"github.com/lingotale/lingotale-api/internal/platform/logger"
	"github.com/lingotale/lingotale-api/internal/store"
)

// PostgreSQL error codes
const (
	pgForeignKeyViolationCode = "23503"
	pgUniqueViolationCode     = "23505"
)

// PostgresWordStore implements the store.WordStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWordStore creates a new PostgreSQL implementation of the
// WordStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresWordStore(db store.DBTX, logger *slog.Logger) *PostgresWordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresWordStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_store")),
	}
}

// Ensure PostgresWordStore implements store.WordStore
var _ store.WordStore = (*PostgresWordStore)(nil)

// Create implements store.WordStore.Create
// Returns validation errors from the domain Word if data is invalid.
// Returns store.ErrInvalidEntity if the user ID doesn't exist.
func (s *PostgresWordStore) Create(ctx context.Context, word *domain.Word) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := word.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO words (id, user_id, lemma, translation, article, example_sentence, example_translation, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		word.ID,
		word.UserID,
		word.Lemma,
		word.Translation,
		word.Article,
		word.ExampleSentence,
		word.ExampleTranslation,
		word.Status,
		word.CreatedAt,
		word.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgForeignKeyViolationCode:
				return fmt.Errorf("%w: user does not exist", store.ErrInvalidEntity)
			case pgUniqueViolationCode:
				return fmt.Errorf("%w: word", store.ErrDuplicate)
			}
		}
		log.Error("failed to create word",
			"word_id", word.ID,
			"user_id", word.UserID,
			"error", err)
		return fmt.Errorf("failed to create word: %w", err)
	}

	return nil
}

// GetByID implements store.WordStore.GetByID
func (s *PostgresWordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, lemma, translation, article, example_sentence, example_translation, status, created_at, updated_at
		FROM words
		WHERE id = $1
	`

	var word domain.Word
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&word.ID,
		&word.UserID,
		&word.Lemma,
		&word.Translation,
		&word.Article,
		&word.ExampleSentence,
		&word.ExampleTranslation,
		&word.Status,
		&word.CreatedAt,
		&word.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWordNotFound
		}
		log.Error("failed to get word", "word_id", id, "error", err)
		return nil, fmt.Errorf("failed to get word: %w", err)
	}

	return &word, nil
}

// GetByUserAndLemma implements store.WordStore.GetByUserAndLemma
func (s *PostgresWordStore) GetByUserAndLemma(ctx context.Context, userID uuid.UUID, lemma string) (*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, lemma, translation, article, example_sentence, example_translation, status, created_at, updated_at
		FROM words
		WHERE user_id = $1 AND LOWER(lemma) = LOWER($2)
	`

	var word domain.Word
	err := s.db.QueryRowContext(ctx, query, userID, lemma).Scan(
		&word.ID,
		&word.UserID,
		&word.Lemma,
		&word.Translation,
		&word.Article,
		&word.ExampleSentence,
		&word.ExampleTranslation,
		&word.Status,
		&word.CreatedAt,
		&word.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWordNotFound
		}
		log.Error("failed to get word by lemma",
			"user_id", userID,
			"lemma", lemma,
			"error", err)
		return nil, fmt.Errorf("failed to get word by lemma: %w", err)
	}

	return &word, nil
}

// FindByUserAndStatus implements store.WordStore.FindByUserAndStatus
func (s *PostgresWordStore) FindByUserAndStatus(
	ctx context.Context,
	userID uuid.UUID,
	status domain.WordStatus,
) ([]*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, lemma, translation, article, example_sentence, example_translation, status, created_at, updated_at
		FROM words
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, status)
	if err != nil {
		log.Error("failed to query words",
			"user_id", userID,
			"status", status,
			"error", err)
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer func() { _ = rows.Close() }()

	words := []*domain.Word{}
	for rows.Next() {
		var word domain.Word
		if err := rows.Scan(
			&word.ID,
			&word.UserID,
			&word.Lemma,
			&word.Translation,
			&word.Article,
			&word.ExampleSentence,
			&word.ExampleTranslation,
			&word.Status,
			&word.CreatedAt,
			&word.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan word row: %w", err)
		}
		words = append(words, &word)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating word rows: %w", err)
	}

	return words, nil
}

// UpdateStatus implements store.WordStore.UpdateStatus
func (s *PostgresWordStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.WordStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsValidWordStatus(status) {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidWordStatus)
	}

	query := `
		UPDATE words
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update word status",
			"word_id", id,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update word status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrWordNotFound
	}

	return nil
}

// WithTx implements store.WordStore.WithTx
func (s *PostgresWordStore) WithTx(tx *sql.Tx) store.WordStore {
	return &PostgresWordStore{
		db:     tx,
		logger: s.logger,
	}
}
