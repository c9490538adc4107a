package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/lingotale/lingotale-api/internal/domain"
	"github.com/lingotale/lingotale-api/internal/generation"
	"github.com/lingotale/lingotale-api/internal/quota"
)

// Dependency validation errors for StoryGenerationHandler
var (
	ErrNilVocabularyReader = errors.New("vocabulary reader cannot be nil")
	ErrNilStoryGenerator   = errors.New("story generator cannot be nil")
	ErrNilTranslator       = errors.New("translator cannot be nil")
	ErrNilLemmatizer       = errors.New("lemmatizer cannot be nil")
	ErrNilSpeech           = errors.New("speech synthesizer cannot be nil")
	ErrNilAudioStore       = errors.New("audio store cannot be nil")
	ErrNilStoryPersister   = errors.New("story persister cannot be nil")
	ErrNilQuotaStore       = errors.New("quota store cannot be nil")
)

// VocabularyReader provides the two independent vocabulary reads the
// pipeline starts with.
type VocabularyReader interface {
	// GetKnownWords returns the user's known vocabulary.
	GetKnownWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error)

	// GetUnknownWords returns vocabulary the user has seen but not learned.
	GetUnknownWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error)
}

// StoryPersister saves the composite generation result. The persist happens
// synchronously before the job is marked complete; either the whole
// composite lands or nothing does.
type StoryPersister interface {
	SaveGeneratedStory(ctx context.Context, userID uuid.UUID, story *domain.GeneratedStory) (uuid.UUID, error)
}

// StoryGenerationPayload is the payload of a generateStory job.
type StoryGenerationPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Topic  string    `json:"topic"`
	// LanguageCode is the language being learned; the story is written and
	// narrated in it.
	LanguageCode string `json:"language_code"`
	// TranslationLanguageCode is the user's own language, used for
	// translations and example sentences.
	TranslationLanguageCode string `json:"translation_language_code"`
}

// StoryGenerationResult is the job value a completed generateStory job
// exposes to polling callers.
type StoryGenerationResult struct {
	StoryID     uuid.UUID               `json:"story_id"`
	Text        string                  `json:"text"`
	Translation string                  `json:"translation"`
	AudioURL    string                  `json:"audio_url"`
	NewWords    []domain.VocabularyItem `json:"new_words"`
}

// StoryGenerationHandler orchestrates the story generation pipeline: story
// assembly, lemma assembly, and audio assembly, run strictly in sequence.
// Each stage depends on the previous stage's output and every external call
// is a suspension point, so there is no internal parallelism. Stage errors
// are never caught and compensated here; they abort the attempt and the
// worker decides retry-vs-terminal.
type StoryGenerationHandler struct {
	vocab      VocabularyReader
	generator  generation.StoryGenerator
	translator generation.Translator
	lemmatizer generation.Lemmatizer
	speech     generation.Speech
	audioStore generation.AudioStore
	persister  StoryPersister
	quota      quota.Store
	logger     *slog.Logger
}

// NewStoryGenerationHandler creates the generateStory handler.
// All dependencies are required.
func NewStoryGenerationHandler(
	vocab VocabularyReader,
	generator generation.StoryGenerator,
	translator generation.Translator,
	lemmatizer generation.Lemmatizer,
	speech generation.Speech,
	audioStore generation.AudioStore,
	persister StoryPersister,
	quotaStore quota.Store,
	logger *slog.Logger,
) (*StoryGenerationHandler, error) {
	if vocab == nil {
		return nil, ErrNilVocabularyReader
	}
	if generator == nil {
		return nil, ErrNilStoryGenerator
	}
	if translator == nil {
		return nil, ErrNilTranslator
	}
	if lemmatizer == nil {
		return nil, ErrNilLemmatizer
	}
	if speech == nil {
		return nil, ErrNilSpeech
	}
	if audioStore == nil {
		return nil, ErrNilAudioStore
	}
	if persister == nil {
		return nil, ErrNilStoryPersister
	}
	if quotaStore == nil {
		return nil, ErrNilQuotaStore
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StoryGenerationHandler{
		vocab:      vocab,
		generator:  generator,
		translator: translator,
		lemmatizer: lemmatizer,
		speech:     speech,
		audioStore: audioStore,
		persister:  persister,
		quota:      quotaStore,
		logger:     logger.With("component", "story_generation_handler"),
	}, nil
}

// Registration returns the declarative registration for the generateStory
// kind, including its phase catalog and quota compensation hook.
func (h *StoryGenerationHandler) Registration(maxAttempts int) Registration {
	return Registration{
		Kind:        KindGenerateStory,
		Handler:     h.Handle,
		MaxAttempts: maxAttempts,
		Phases:      StoryPhases,
		Compensate:  h.CompensateQuota,
	}
}

// Handle runs one generateStory attempt.
func (h *StoryGenerationHandler) Handle(ctx context.Context, jc *Context) (json.RawMessage, error) {
	var payload StoryGenerationPayload
	if err := jc.DecodePayload(&payload); err != nil {
		return nil, Permanent(err)
	}
	if payload.UserID == uuid.Nil {
		return nil, Permanent(errors.New("story generation payload missing user ID"))
	}

	if err := jc.Advance(ctx, PhaseStart); err != nil {
		return nil, err
	}

	// Two independent vocabulary reads. Failing either aborts before the
	// expensive generation call.
	if err := jc.Advance(ctx, PhaseFetchVocabulary); err != nil {
		return nil, err
	}
	known, err := h.vocab.GetKnownWords(ctx, payload.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch known vocabulary: %w", err)
	}
	if len(known) == 0 {
		// Stories are built from the learner's vocabulary; without an
		// assessment there is nothing to build from, and retrying cannot
		// change that.
		return nil, Permanent(domain.ErrVocabularyAssessmentRequired)
	}
	unknown, err := h.vocab.GetUnknownWords(ctx, payload.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unknown vocabulary: %w", err)
	}

	// Story assembly.
	if err := jc.Advance(ctx, PhaseGenerateText); err != nil {
		return nil, err
	}
	words := make([]string, 0, len(known)+len(unknown))
	for _, w := range known {
		words = append(words, w.Lemma)
	}
	for _, w := range unknown {
		words = append(words, w.Lemma)
	}
	text, err := h.generator.GenerateStory(ctx, words, payload.Topic, payload.LanguageCode)
	if err != nil {
		return nil, fmt.Errorf("failed to generate story text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("story generation produced empty output: %w", generation.ErrNoStoryText)
	}

	if err := jc.Advance(ctx, PhaseTranslate); err != nil {
		return nil, err
	}
	chunks, err := h.translator.TranslateChunks(ctx, text, payload.TranslationLanguageCode)
	if err != nil {
		return nil, fmt.Errorf("failed to translate story: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("translation produced no chunks: %w", generation.ErrInvalidResponse)
	}
	translation := joinChunkTranslations(chunks)

	// Lemma assembly.
	if err := jc.Advance(ctx, PhaseExtractLemmas); err != nil {
		return nil, err
	}
	lemmas, err := h.lemmatizer.Lemmatize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to extract lemmas: %w", err)
	}
	newLemmas := filterTrackedLemmas(lemmas, known, unknown)

	if err := jc.Advance(ctx, PhaseBuildExamples); err != nil {
		return nil, err
	}
	var newWords []domain.VocabularyItem
	if len(newLemmas) > 0 {
		newWords, err = h.lemmatizer.TranslateLemmas(ctx, newLemmas, payload.TranslationLanguageCode)
		if err != nil {
			return nil, fmt.Errorf("failed to translate new lemmas: %w", err)
		}
	}

	// Audio assembly.
	if err := jc.Advance(ctx, PhaseSynthesizeAudio); err != nil {
		return nil, err
	}
	audioURL, err := h.assembleAudio(ctx, chunks)
	if err != nil {
		return nil, err
	}

	if err := jc.Advance(ctx, PhasePersist); err != nil {
		return nil, err
	}
	composite := &domain.GeneratedStory{
		Topic:       payload.Topic,
		Text:        text,
		Translation: translation,
		Chunks:      chunks,
		NewWords:    newWords,
		AudioURL:    audioURL,
	}
	storyID, err := h.persister.SaveGeneratedStory(ctx, payload.UserID, composite)
	if err != nil {
		return nil, fmt.Errorf("failed to persist generated story: %w", err)
	}

	result := StoryGenerationResult{
		StoryID:     storyID,
		Text:        text,
		Translation: translation,
		AudioURL:    audioURL,
		NewWords:    newWords,
	}
	value, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal story generation result: %w", err)
	}

	jc.Logger.Info("story generated",
		"story_id", storyID,
		"new_word_count", len(newWords),
		"chunk_count", len(chunks))
	return value, nil
}

// CompensateQuota refunds the user's daily quota increment after a
// generateStory job reaches terminal failure. Decrement is a no-op when the
// record has already expired, so this is safe to run at any time.
func (h *StoryGenerationHandler) CompensateQuota(ctx context.Context, payload json.RawMessage) error {
	var p StoryGenerationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to decode payload for quota compensation: %w", err)
	}
	if p.UserID == uuid.Nil {
		return errors.New("cannot compensate quota without a user ID")
	}
	if err := h.quota.Decrement(ctx, p.UserID); err != nil {
		return fmt.Errorf("failed to decrement quota for user %s: %w", p.UserID, err)
	}
	h.logger.Info("quota compensated after terminal failure", "user_id", p.UserID)
	return nil
}

// assembleAudio narrates the story chunk by chunk: target-language speech,
// a short pause, the translation speech, then a medium pause before the
// next chunk. The ordered result is concatenated into one artifact and
// persisted.
func (h *StoryGenerationHandler) assembleAudio(ctx context.Context, chunks []domain.ChunkPair) (string, error) {
	var audio []byte
	for _, pair := range chunks {
		target, err := h.speech.Synthesize(ctx, pair.Chunk, true)
		if err != nil {
			return "", fmt.Errorf("failed to synthesize chunk audio: %w", err)
		}
		translated, err := h.speech.Synthesize(ctx, pair.TranslatedChunk, false)
		if err != nil {
			return "", fmt.Errorf("failed to synthesize translation audio: %w", err)
		}

		audio = append(audio, target...)
		audio = append(audio, h.speech.Pause(generation.PauseShort)...)
		audio = append(audio, translated...)
		audio = append(audio, h.speech.Pause(generation.PauseMedium)...)
	}

	url, err := h.audioStore.PersistAudio(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("failed to persist audio artifact: %w", err)
	}
	return url, nil
}

// joinChunkTranslations builds the full-document translation as the
// concatenation of chunk translations, in order. There is no separate
// full-document translation call.
func joinChunkTranslations(chunks []domain.ChunkPair) string {
	parts := make([]string, 0, len(chunks))
	for _, pair := range chunks {
		if trimmed := strings.TrimSpace(pair.TranslatedChunk); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// filterTrackedLemmas drops lemmas already tracked for the user, known or
// unknown: the generator prompt feeds previously seen unknown words back
// into new stories, and re-discovering one of those must not produce a
// second vocabulary row. Matching is plain case-insensitive string equality
// on the base form: "hund" matches a tracked "Hund". Inflected forms of
// tracked words are not recognized, a known precision limitation.
func filterTrackedLemmas(lemmas []generation.Lemma, known, unknown []*domain.Word) []generation.Lemma {
	tracked := make(map[string]struct{}, len(known)+len(unknown))
	for _, w := range known {
		tracked[strings.ToLower(w.Lemma)] = struct{}{}
	}
	for _, w := range unknown {
		tracked[strings.ToLower(w.Lemma)] = struct{}{}
	}

	var fresh []generation.Lemma
	seen := make(map[string]struct{})
	for _, l := range lemmas {
		key := strings.ToLower(l.Lemma)
		if _, ok := tracked[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, l)
	}
	return fresh
}
