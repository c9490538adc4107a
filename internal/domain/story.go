package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Story
var (
	ErrEmptyStoryID     = errors.New("story ID cannot be empty")
	ErrEmptyStoryUserID = errors.New("story user ID cannot be empty")
	ErrEmptyStoryText   = errors.New("story text cannot be empty")
)

// Story represents a generated story persisted for a user, together with
// its full translation and the reference to the assembled audio artifact.
type Story struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Topic       string    `json:"topic"`
	Text        string    `json:"text"`
	Translation string    `json:"translation"`
	AudioURL    string    `json:"audio_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewStory creates a new Story with the given attributes.
// Returns an error if validation fails.
func NewStory(userID uuid.UUID, topic, text, translation, audioURL string) (*Story, error) {
	story := &Story{
		ID:          uuid.New(),
		UserID:      userID,
		Topic:       topic,
		Text:        text,
		Translation: translation,
		AudioURL:    audioURL,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := story.Validate(); err != nil {
		return nil, err
	}

	return story, nil
}

// Validate checks if the Story has valid data.
func (s *Story) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptyStoryID
	}

	if s.UserID == uuid.Nil {
		return ErrEmptyStoryUserID
	}

	if s.Text == "" {
		return ErrEmptyStoryText
	}

	return nil
}

// ChunkPair is one translated segment of a story: a run of 7-8 words in the
// target language paired with its translation. The full translation of a
// story is the concatenation of its chunk translations in order.
type ChunkPair struct {
	Chunk           string `json:"chunk"`
	TranslatedChunk string `json:"translated_chunk"`
}

// VocabularyItem is a newly discovered word produced by lemma extraction:
// a base form the user does not already know, with its translation, the
// article/gender marker where the language has one, and an in-context
// example sentence pair.
type VocabularyItem struct {
	Lemma              string `json:"lemma"`
	Translation        string `json:"translation"`
	Article            string `json:"article,omitempty"`
	ExampleSentence    string `json:"example_sentence"`
	ExampleTranslation string `json:"example_translation"`
}

// GeneratedStory is the composite result of one story generation run: the
// story text, its full translation, the per-chunk pairs, the newly
// discovered vocabulary, and the persisted audio reference. Only this
// composite crosses into permanent storage; intermediate stage output does
// not survive the job.
type GeneratedStory struct {
	Topic       string           `json:"topic"`
	Text        string           `json:"text"`
	Translation string           `json:"translation"`
	Chunks      []ChunkPair      `json:"chunks"`
	NewWords    []VocabularyItem `json:"new_words"`
	AudioURL    string           `json:"audio_url"`
}
