// Package speech implements the pipeline's speech collaborator using the
// Google Cloud Text-to-Speech REST API.
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lingotale/lingotale-api/internal/generation"
)

const (
	synthesizeEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

	// sampleRate is the PCM sample rate requested from the API. Segments
	// are concatenated as raw 16-bit mono PCM, so every segment and every
	// pause must share it.
	sampleRate = 22050

	// wavHeaderSize is the size of the RIFF header on LINEAR16 responses,
	// stripped before concatenation.
	wavHeaderSize = 44

	shortPause  = 300 * time.Millisecond
	mediumPause = 700 * time.Millisecond
)

// Config holds the voice selection for the two sides of a narration.
type Config struct {
	APIKey string
	// TargetVoice is the BCP-47 voice language for the language being
	// learned, e.g. "de-DE".
	TargetVoice string
	// SourceVoice is the voice language for translations, e.g. "en-US".
	SourceVoice string
}

// GoogleSpeech implements generation.Speech against the Text-to-Speech
// REST API. Responses are requested as LINEAR16 and returned with the WAV
// header stripped, so callers can concatenate segments and pauses freely.
type GoogleSpeech struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGoogleSpeech creates a speech synthesizer.
func NewGoogleSpeech(cfg Config, logger *slog.Logger) (*GoogleSpeech, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: speech API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.TargetVoice == "" || cfg.SourceVoice == "" {
		return nil, fmt.Errorf("%w: speech voices cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleSpeech{
		cfg:        cfg,
		endpoint:   synthesizeEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With("component", "google_speech"),
	}, nil
}

// Ensure GoogleSpeech implements generation.Speech
var _ generation.Speech = (*GoogleSpeech)(nil)

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding   string `json:"audioEncoding"`
		SampleRateHertz int    `json:"sampleRateHertz"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize implements generation.Speech.Synthesize.
func (g *GoogleSpeech) Synthesize(ctx context.Context, text string, isTargetLanguage bool) ([]byte, error) {
	voice := g.cfg.SourceVoice
	if isTargetLanguage {
		voice = g.cfg.TargetVoice
	}

	var req synthesizeRequest
	req.Input.Text = text
	req.Voice.LanguageCode = voice
	req.AudioConfig.AudioEncoding = "LINEAR16"
	req.AudioConfig.SampleRateHertz = sampleRate

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.endpoint+"?key="+g.cfg.APIKey, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesize request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: speech synthesis call failed: %v",
			generation.ErrTransientFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		g.logger.Error("speech synthesis returned non-OK status",
			"status", resp.StatusCode,
			"body", string(payload))
		return nil, fmt.Errorf("%w: speech synthesis returned status %d",
			generation.ErrTransientFailure, resp.StatusCode)
	}

	var decoded synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: failed to decode synthesize response: %v",
			generation.ErrInvalidResponse, err)
	}

	audio, err := base64.StdEncoding.DecodeString(decoded.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode audio content: %v",
			generation.ErrInvalidResponse, err)
	}
	if len(audio) <= wavHeaderSize {
		return nil, errors.New("speech synthesis returned no audio data")
	}

	// Strip the per-segment WAV header; the audio store writes one header
	// for the assembled artifact.
	return audio[wavHeaderSize:], nil
}

// Pause implements generation.Speech.Pause. Silence in 16-bit PCM is
// zeroed samples, so pacing segments need no API call.
func (g *GoogleSpeech) Pause(length generation.PauseLength) []byte {
	d := shortPause
	if length == generation.PauseMedium {
		d = mediumPause
	}
	// 2 bytes per sample, mono.
	n := int(d.Seconds() * sampleRate * 2)
	if n%2 != 0 {
		n++
	}
	return make([]byte, n)
}
