// Package gemini implements the story pipeline's text collaborators
// (story generation, chunked translation, lemma extraction) on top of
// Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/lingotale/lingotale-api/internal/config"
	"github.com/lingotale/lingotale-api/internal/generation"
	"google.golang.org/genai"
)

// Client wraps the Gemini API client with the retry and error-mapping
// policy shared by every text collaborator.
type Client struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string
}

// NewClient creates a Gemini client from the LLM configuration.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Client{
		logger: logger.With("component", "gemini_client"),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// generateWithRetry calls the Gemini API with exponential backoff and
// jitter for transient errors. Permanent errors (safety blocks, malformed
// responses) return immediately; the response text is returned raw for the
// caller to parse.
func (c *Client) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := c.config.MaxRetries
	baseDelaySeconds := c.config.RetryDelaySeconds
	if maxRetries < 0 {
		maxRetries = 3
	}
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	attempt := 0

	for attempt <= maxRetries {
		attemptNum := attempt + 1
		c.logger.DebugContext(ctx, "calling Gemini API",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		var text string
		var isTransient bool

		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
		switch {
		case err != nil:
			// Transport failure; assume it might resolve on retry.
			isTransient = true
		case resp == nil || len(resp.Candidates) == 0:
			err = fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
		case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
			err = fmt.Errorf("%w: blocked by safety filters", generation.ErrContentBlocked)
		case resp.Candidates[0].Content == nil:
			err = fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
		default:
			for _, part := range resp.Candidates[0].Content.Parts {
				if part != nil {
					text += part.Text
				}
			}
		}

		if err == nil {
			return text, nil
		}

		c.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !isTransient || attempt >= maxRetries {
			if isTransient {
				return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
					generation.ErrTransientFailure, maxRetries, err)
			}
			return "", err
		}

		// Exponential backoff with jitter:
		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}

		attempt++
	}

	return "", fmt.Errorf("%w: failed after %d attempts", generation.ErrTransientFailure, attempt)
}
