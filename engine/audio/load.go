package audio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// SampleRate is the rate the shared audio context is created with.
const SampleRate = 44100

// SharedContext returns the process-wide ebiten audio context, creating it on first use.
// The output device is only opened once a player starts.
//
// Returns:
//   - *audio.Context: the context
func SharedContext() *audio.Context {
	if c := audio.CurrentContext(); c != nil {
		return c
	}
	return audio.NewContext(SampleRate)
}

// LoadSpeaker decodes a sound file into a Speaker on ctx.
// WAV files are resampled to the context rate; .pcm and .raw files must already be
// 16-bit stereo little-endian PCM at that rate.
//
// Parameters:
//   - ctx: the audio context
//   - path: the sound file
//   - options: functional options to configure the speaker
//
// Returns:
//   - Speaker: the speaker
//   - error: ErrUnsupportedSound, or a read or decode error
func LoadSpeaker(ctx *audio.Context, path string, options ...SpeakerBuilderOption) (Speaker, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" && ext != ".pcm" && ext != ".raw" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSound, path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sound %q: %w", path, err)
	}

	if ext != ".wav" {
		return NewSpeaker(ctx.NewPlayerFromBytes(b), options...), nil
	}

	stream, err := wav.DecodeWithSampleRate(ctx.SampleRate(), bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode wav %q: %w", path, err)
	}
	p, err := ctx.NewPlayer(stream)
	if err != nil {
		return nil, fmt.Errorf("create player %q: %w", path, err)
	}
	return NewSpeaker(p, options...), nil
}
