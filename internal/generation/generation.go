// Package generation defines the contracts between the story pipeline and
// the external AI, speech, and storage services it composes. These
// interfaces are the boundary between the application core and network
// collaborators, following the hexagonal architecture pattern; every call
// is a suspension point and may fail with a transport or format error.
package generation

import (
	"context"

	"github.com/lingotale/lingotale-api/internal/domain"
)

// Lemma is one base-form word extracted from generated text, together with
// its article/gender marker (where the language has one) and the sentence
// it occurred in.
type Lemma struct {
	Lemma    string `json:"lemma"`
	Article  string `json:"article,omitempty"`
	Sentence string `json:"sentence"`
}

// PauseLength selects the silence inserted between audio segments as pacing.
type PauseLength int

// Pause lengths used when assembling narrated audio.
const (
	PauseShort PauseLength = iota
	PauseMedium
)

// StoryGenerator produces story text in the target language from the
// learner's vocabulary and a topic.
type StoryGenerator interface {
	// GenerateStory creates a story using the given vocabulary words and
	// topic in the language identified by languageCode.
	// Returns ErrNoStoryText if the provider produces empty output.
	GenerateStory(ctx context.Context, words []string, topic, languageCode string) (string, error)
}

// Translator translates story text chunk by chunk.
type Translator interface {
	// TranslateChunks splits text into runs of 7-8 words and returns each
	// chunk paired with its translation into targetLanguageCode, in
	// document order.
	TranslateChunks(ctx context.Context, text, targetLanguageCode string) ([]domain.ChunkPair, error)
}

// Lemmatizer extracts dictionary base forms from text and translates them.
type Lemmatizer interface {
	// Lemmatize returns the base-form words occurring in text, each with
	// the sentence it appeared in.
	Lemmatize(ctx context.Context, text string) ([]Lemma, error)

	// TranslateLemmas translates the given lemmas into targetLanguageCode,
	// producing for each an in-context example sentence and its translation.
	TranslateLemmas(ctx context.Context, lemmas []Lemma, targetLanguageCode string) ([]domain.VocabularyItem, error)
}

// Speech synthesizes spoken audio for story narration.
type Speech interface {
	// Synthesize produces audio bytes for the given text.
	// isTargetLanguage selects the voice: true for the language being
	// learned, false for the user's own language.
	Synthesize(ctx context.Context, text string, isTargetLanguage bool) ([]byte, error)

	// Pause returns a silent audio segment of the given length, used as
	// pacing between narrated segments.
	Pause(length PauseLength) []byte
}

// AudioStore persists assembled audio artifacts.
type AudioStore interface {
	// PersistAudio stores the audio bytes and returns a stable URL or path
	// for later playback.
	PersistAudio(ctx context.Context, audio []byte) (string, error)
}
