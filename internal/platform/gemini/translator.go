package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lingotale/lingotale-api/internal/domain"
	"github.com/lingotale/lingotale-api/internal/generation"
)

// chunkWordCount is the number of words per translation chunk. Chunks of
// 7-8 words keep each audio segment short enough to follow along with.
const chunkWordCount = 8

// Translator implements generation.Translator using the Gemini API.
type Translator struct {
	client *Client
}

// NewTranslator creates a Gemini-backed chunk translator.
func NewTranslator(client *Client) *Translator {
	return &Translator{client: client}
}

// Ensure Translator implements generation.Translator
var _ generation.Translator = (*Translator)(nil)

const translatePromptFormat = `Translate each of the following numbered text chunks into the language with ISO code %q.
Respond with a JSON array only, no markdown fences, where each element is
{"chunk": "<original>", "translated_chunk": "<translation>"}, in the same order as the input.
Chunks:
%s`

// TranslateChunks implements generation.Translator.TranslateChunks.
// The text is split locally into runs of up to 8 words; the full-document
// translation is the caller's concatenation of the chunk translations, so
// there is no separate whole-text call.
func (t *Translator) TranslateChunks(ctx context.Context, text, targetLanguageCode string) ([]domain.ChunkPair, error) {
	chunks := splitChunks(text, chunkWordCount)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no text to translate", generation.ErrInvalidResponse)
	}

	var sb strings.Builder
	for i, chunk := range chunks {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, chunk)
	}

	raw, err := t.client.generateWithRetry(ctx, fmt.Sprintf(translatePromptFormat, targetLanguageCode, sb.String()))
	if err != nil {
		return nil, fmt.Errorf("translation call failed: %w", err)
	}

	var pairs []domain.ChunkPair
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &pairs); err != nil {
		return nil, fmt.Errorf("%w: failed to parse translation response: %v",
			generation.ErrInvalidResponse, err)
	}
	if len(pairs) != len(chunks) {
		return nil, fmt.Errorf("%w: expected %d chunk translations, got %d",
			generation.ErrInvalidResponse, len(chunks), len(pairs))
	}

	// Trust our own chunking over whatever the model echoed back.
	for i := range pairs {
		pairs[i].Chunk = chunks[i]
	}

	return pairs, nil
}

// splitChunks splits text into runs of up to size words, preserving order.
func splitChunks(text string, size int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// stripCodeFences removes a surrounding markdown code fence if the model
// added one despite instructions.
func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
