package audio

import (
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"go.uber.org/zap"
)

// Player is the subset of an ebiten audio player a Speaker drives.
type Player interface {
	Play()
	Pause()
	IsPlaying() bool
	Rewind() error
	SetVolume(volume float64)
	Volume() float64
}

var _ Player = (*audio.Player)(nil)

// Speaker adapts a Player to the animator's speaker collaborator.
type Speaker interface {
	// Player returns the wrapped player.
	//
	// Returns:
	//   - Player: the player
	Player() Player

	// Play starts playback from the current position.
	Play()

	// Stop pauses playback and rewinds to the start.
	Stop()

	// IsPlaying reports whether the player is audible.
	//
	// Returns:
	//   - bool: true while playing
	IsPlaying() bool

	// SetVolume sets the player volume. Negative volumes are clamped to 0.
	//
	// Parameters:
	//   - volume: the volume, 1 being unattenuated
	SetVolume(volume float64)

	// SetPlaybackRate records the requested pitch. The player keeps its own sample rate,
	// so the rate is only reported back through PlaybackRate.
	//
	// Parameters:
	//   - rate: the rate multiplier
	SetPlaybackRate(rate float64)

	// PlaybackRate returns the last requested pitch.
	//
	// Returns:
	//   - float64: the rate multiplier
	PlaybackRate() float64
}

type speaker struct {
	player Player
	logger *zap.Logger

	mu   sync.Mutex
	rate float64
}

var _ Speaker = &speaker{}

// NewSpeaker creates a Speaker around a player.
//
// Parameters:
//   - player: the player to drive
//   - options: functional options to configure the speaker
//
// Returns:
//   - Speaker: the new speaker
func NewSpeaker(player Player, options ...SpeakerBuilderOption) Speaker {
	if player == nil {
		panic("audio: nil player")
	}
	s := &speaker{
		player: player,
		logger: zap.NewNop(),
		rate:   1,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *speaker) Player() Player {
	return s.player
}

func (s *speaker) Play() {
	if !s.player.IsPlaying() {
		s.player.Play()
	}
}

func (s *speaker) Stop() {
	s.player.Pause()
	if err := s.player.Rewind(); err != nil {
		s.logger.Warn("speaker rewind failed", zap.Error(err))
	}
}

func (s *speaker) IsPlaying() bool {
	return s.player.IsPlaying()
}

func (s *speaker) SetVolume(volume float64) {
	s.player.SetVolume(math.Max(volume, 0))
}

func (s *speaker) SetPlaybackRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = rate
}

func (s *speaker) PlaybackRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}
