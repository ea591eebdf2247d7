package audio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentWAV returns a 16-bit stereo PCM WAV file of n silent frames.
func silentWAV(n int) []byte {
	data := n * 4
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+data))
	b.WriteString("WAVEfmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&b, binary.LittleEndian, uint16(2))
	binary.Write(&b, binary.LittleEndian, uint32(SampleRate))
	binary.Write(&b, binary.LittleEndian, uint32(SampleRate*4))
	binary.Write(&b, binary.LittleEndian, uint16(4))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(data))
	b.Write(make([]byte, data))
	return b.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestSharedContext(t *testing.T) {
	c := SharedContext()
	require.NotNil(t, c)
	assert.Same(t, c, SharedContext())
	assert.Equal(t, SampleRate, c.SampleRate())
}

func TestLoadSpeaker(t *testing.T) {
	ctx := SharedContext()

	t.Run("wav", func(t *testing.T) {
		s, err := LoadSpeaker(ctx, writeFile(t, "step.wav", silentWAV(64)), WithPlaybackRate(2))
		require.NoError(t, err)
		assert.False(t, s.IsPlaying())
		assert.Equal(t, 2.0, s.PlaybackRate())
	})

	t.Run("raw pcm", func(t *testing.T) {
		s, err := LoadSpeaker(ctx, writeFile(t, "step.PCM", make([]byte, 256)))
		require.NoError(t, err)
		assert.False(t, s.IsPlaying())
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := LoadSpeaker(ctx, writeFile(t, "step.flac", []byte("x")))
		assert.ErrorIs(t, err, ErrUnsupportedSound)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadSpeaker(ctx, filepath.Join(t.TempDir(), "gone.wav"))
		assert.Error(t, err)
	})

	t.Run("corrupt wav", func(t *testing.T) {
		_, err := LoadSpeaker(ctx, writeFile(t, "bad.wav", []byte("not a riff file")))
		assert.Error(t, err)
	})
}
