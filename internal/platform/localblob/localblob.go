// Package localblob stores generated audio artifacts on the local
// filesystem as WAV files.
package localblob

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/lingotale/lingotale-api/internal/generation"
)

const (
	// PCM format of assembled narration audio: 16-bit mono.
	sampleRate    = 22050
	bitsPerSample = 16
	numChannels   = 1
)

// AudioStore persists assembled narration audio under a base directory and
// returns a stable relative URL for each artifact.
type AudioStore struct {
	baseDir string
	logger  *slog.Logger
}

// NewAudioStore creates the store and ensures the base directory exists.
func NewAudioStore(baseDir string, logger *slog.Logger) (*AudioStore, error) {
	if baseDir == "" {
		return nil, errors.New("audio storage directory cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio storage directory: %w", err)
	}
	return &AudioStore{
		baseDir: baseDir,
		logger:  logger.With("component", "audio_store"),
	}, nil
}

// Ensure AudioStore implements generation.AudioStore
var _ generation.AudioStore = (*AudioStore)(nil)

// PersistAudio writes raw PCM audio as a WAV file and returns the URL path
// under which the file is served.
func (s *AudioStore) PersistAudio(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("audio data cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.New().String() + ".wav"
	path := filepath.Join(s.baseDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(wavHeader(len(audio))); err != nil {
		return "", fmt.Errorf("failed to write audio header: %w", err)
	}
	if _, err := f.Write(audio); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}

	s.logger.Debug("persisted audio artifact", "file", name, "bytes", len(audio))
	return "/audio/" + name, nil
}

// wavHeader builds the 44-byte RIFF header for a PCM payload of dataLen
// bytes in the store's fixed format.
func wavHeader(dataLen int) []byte {
	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	h := make([]byte, 44)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataLen))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:24], numChannels)
	binary.LittleEndian.PutUint32(h[24:28], sampleRate)
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], bitsPerSample)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataLen))
	return h
}
