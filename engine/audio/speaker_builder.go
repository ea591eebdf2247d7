package audio

import "go.uber.org/zap"

// SpeakerBuilderOption is a functional option for configuring a Speaker during construction.
type SpeakerBuilderOption func(*speaker)

// WithLogger sets the logger used to report player failures.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - SpeakerBuilderOption: functional option to set the logger
func WithLogger(logger *zap.Logger) SpeakerBuilderOption {
	return func(s *speaker) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPlaybackRate sets the initial playback rate.
//
// Parameters:
//   - rate: the rate multiplier
//
// Returns:
//   - SpeakerBuilderOption: functional option to set the rate
func WithPlaybackRate(rate float64) SpeakerBuilderOption {
	return func(s *speaker) {
		s.rate = rate
	}
}
