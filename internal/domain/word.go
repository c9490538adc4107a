package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// WordStatus represents the learner's relationship to a vocabulary word.
type WordStatus string

// Possible word status values
const (
	// WordStatusKnown marks vocabulary the user has demonstrated knowledge of.
	WordStatusKnown WordStatus = "known"
	// WordStatusLearning marks vocabulary the user is actively studying.
	WordStatusLearning WordStatus = "learning"
	// WordStatusUnknown marks vocabulary the user has seen but not learned.
	WordStatusUnknown WordStatus = "unknown"
)

// Common validation errors for Word
var (
	ErrEmptyWordID     = errors.New("word ID cannot be empty")
	ErrEmptyWordUserID = errors.New("word user ID cannot be empty")
	ErrEmptyWordLemma  = errors.New("word lemma cannot be empty")
)

// Word represents one vocabulary entry tracked for a user. Lemma holds the
// dictionary base form, not the inflected occurrence encountered in a story.
type Word struct {
	ID                  uuid.UUID  `json:"id"`
	UserID              uuid.UUID  `json:"user_id"`
	Lemma               string     `json:"lemma"`
	Translation         string     `json:"translation"`
	Article             string     `json:"article,omitempty"`
	ExampleSentence     string     `json:"example_sentence,omitempty"`
	ExampleTranslation  string     `json:"example_translation,omitempty"`
	Status              WordStatus `json:"status"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewWord creates a new Word for the given user with unknown status.
// Returns an error if validation fails.
func NewWord(userID uuid.UUID, lemma, translation, article string) (*Word, error) {
	word := &Word{
		ID:          uuid.New(),
		UserID:      userID,
		Lemma:       lemma,
		Translation: translation,
		Article:     article,
		Status:      WordStatusUnknown,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := word.Validate(); err != nil {
		return nil, err
	}

	return word, nil
}

// Validate checks if the Word has valid data.
// Returns an error if any field fails validation.
func (w *Word) Validate() error {
	if w.ID == uuid.Nil {
		return ErrEmptyWordID
	}

	if w.UserID == uuid.Nil {
		return ErrEmptyWordUserID
	}

	if w.Lemma == "" {
		return ErrEmptyWordLemma
	}

	if !IsValidWordStatus(w.Status) {
		return ErrInvalidWordStatus
	}

	return nil
}

// UpdateStatus updates the word's status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (w *Word) UpdateStatus(status WordStatus) error {
	if !IsValidWordStatus(status) {
		return ErrInvalidWordStatus
	}

	w.Status = status
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValidWordStatus checks if the given status is a valid WordStatus.
func IsValidWordStatus(status WordStatus) bool {
	switch status {
	case WordStatusKnown, WordStatusLearning, WordStatusUnknown:
		return true
	default:
		return false
	}
}
