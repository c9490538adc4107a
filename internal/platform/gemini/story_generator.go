package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/lingotale/lingotale-api/internal/generation"
)

// StoryGenerator implements generation.StoryGenerator using the Gemini API.
type StoryGenerator struct {
	client *Client
}

// NewStoryGenerator creates a Gemini-backed story generator.
func NewStoryGenerator(client *Client) *StoryGenerator {
	return &StoryGenerator{client: client}
}

// Ensure StoryGenerator implements generation.StoryGenerator
var _ generation.StoryGenerator = (*StoryGenerator)(nil)

const storyPromptFormat = `Write a short story in the language with ISO code %q about the topic %q.
Use simple sentence structure suitable for a language learner.
Prefer words from this vocabulary list wherever they fit naturally: %s.
Respond with the story text only, no title, no commentary, no markdown.`

// GenerateStory implements generation.StoryGenerator.GenerateStory.
// Empty provider output is a hard failure (ErrNoStoryText), never an empty
// success.
func (g *StoryGenerator) GenerateStory(ctx context.Context, words []string, topic, languageCode string) (string, error) {
	prompt := fmt.Sprintf(storyPromptFormat, languageCode, topic, strings.Join(words, ", "))

	text, err := g.client.generateWithRetry(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("story generation call failed: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", generation.ErrNoStoryText
	}

	return text, nil
}
