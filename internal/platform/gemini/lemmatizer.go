package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lingotale/lingotale-api/internal/domain"
	"github.com/lingotale/lingotale-api/internal/generation"
)

// Lemmatizer implements generation.Lemmatizer using the Gemini API.
type Lemmatizer struct {
	client *Client
}

// NewLemmatizer creates a Gemini-backed lemmatizer.
func NewLemmatizer(client *Client) *Lemmatizer {
	return &Lemmatizer{client: client}
}

// Ensure Lemmatizer implements generation.Lemmatizer
var _ generation.Lemmatizer = (*Lemmatizer)(nil)

const lemmatizePromptFormat = `Extract every distinct content word from the following text as its dictionary base form (lemma).
For each lemma include the grammatical article or gender marker if the language has one (empty string otherwise)
and the sentence from the text it occurred in.
Respond with a JSON array only, no markdown fences, of
{"lemma": "...", "article": "...", "sentence": "..."}.
Text:
%s`

const translateLemmasPromptFormat = `Translate each of the following lemmas into the language with ISO code %q.
For each, also write one short, simple example sentence using the lemma in its original language,
and translate that sentence too.
Respond with a JSON array only, no markdown fences, of
{"lemma": "...", "translation": "...", "article": "...", "example_sentence": "...", "example_translation": "..."},
in the same order as the input.
Lemmas:
%s`

// Lemmatize implements generation.Lemmatizer.Lemmatize.
func (l *Lemmatizer) Lemmatize(ctx context.Context, text string) ([]generation.Lemma, error) {
	raw, err := l.client.generateWithRetry(ctx, fmt.Sprintf(lemmatizePromptFormat, text))
	if err != nil {
		return nil, fmt.Errorf("lemma extraction call failed: %w", err)
	}

	var lemmas []generation.Lemma
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &lemmas); err != nil {
		return nil, fmt.Errorf("%w: failed to parse lemma response: %v",
			generation.ErrInvalidResponse, err)
	}

	return lemmas, nil
}

// TranslateLemmas implements generation.Lemmatizer.TranslateLemmas.
func (l *Lemmatizer) TranslateLemmas(
	ctx context.Context,
	lemmas []generation.Lemma,
	targetLanguageCode string,
) ([]domain.VocabularyItem, error) {
	if len(lemmas) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for _, lemma := range lemmas {
		if lemma.Article != "" {
			fmt.Fprintf(&sb, "%s %s\n", lemma.Article, lemma.Lemma)
		} else {
			fmt.Fprintf(&sb, "%s\n", lemma.Lemma)
		}
	}

	raw, err := l.client.generateWithRetry(ctx,
		fmt.Sprintf(translateLemmasPromptFormat, targetLanguageCode, sb.String()))
	if err != nil {
		return nil, fmt.Errorf("lemma translation call failed: %w", err)
	}

	var items []domain.VocabularyItem
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &items); err != nil {
		return nil, fmt.Errorf("%w: failed to parse lemma translation response: %v",
			generation.ErrInvalidResponse, err)
	}
	if len(items) != len(lemmas) {
		return nil, fmt.Errorf("%w: expected %d lemma translations, got %d",
			generation.ErrInvalidResponse, len(lemmas), len(items))
	}

	return items, nil
}
