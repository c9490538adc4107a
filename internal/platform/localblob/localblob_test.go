package localblob

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAudioStore(t *testing.T) {
	t.Parallel()

	t.Run("creates the base directory", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "nested", "audio")

		_, err := NewAudioStore(dir, nil)
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("empty directory rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewAudioStore("", nil)
		assert.Error(t, err)
	})
}

func TestPersistAudio(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("writes a playable WAV file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		store, err := NewAudioStore(dir, nil)
		require.NoError(t, err)

		pcm := []byte{1, 2, 3, 4, 5, 6}
		url, err := store.PersistAudio(ctx, pcm)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(url, "/audio/"))
		require.True(t, strings.HasSuffix(url, ".wav"))

		data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/audio/")))
		require.NoError(t, err)
		require.Len(t, data, 44+len(pcm))

		// RIFF header invariants.
		assert.Equal(t, "RIFF", string(data[0:4]))
		assert.Equal(t, "WAVE", string(data[8:12]))
		assert.Equal(t, "data", string(data[36:40]))
		assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(data[40:44]))
		assert.Equal(t, uint32(sampleRate), binary.LittleEndian.Uint32(data[24:28]))
		assert.Equal(t, pcm, data[44:])
	})

	t.Run("distinct files per artifact", func(t *testing.T) {
		t.Parallel()
		store, err := NewAudioStore(t.TempDir(), nil)
		require.NoError(t, err)

		first, err := store.PersistAudio(ctx, []byte{1, 2})
		require.NoError(t, err)
		second, err := store.PersistAudio(ctx, []byte{3, 4})
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("empty audio rejected", func(t *testing.T) {
		t.Parallel()
		store, err := NewAudioStore(t.TempDir(), nil)
		require.NoError(t, err)

		_, err = store.PersistAudio(ctx, nil)
		assert.Error(t, err)
	})
}
