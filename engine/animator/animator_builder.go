package animator

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-anim/engine/action"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

// AnimatorBuilderOption is a functional option for configuring an Animator.
type AnimatorBuilderOption func(*animator)

// WithStore sets the action registry and pose cache. The store is shared, not copied.
//
// Parameters:
//   - s: the store
//
// Returns:
//   - AnimatorBuilderOption: option function to apply
func WithStore(s *action.Store) AnimatorBuilderOption {
	return func(a *animator) {
		a.store = s
	}
}

// WithBaker sets the baker used to precompute armature poses.
//
// Parameters:
//   - b: the baker
//
// Returns:
//   - AnimatorBuilderOption: option function to apply
func WithBaker(b skeleton.Baker) AnimatorBuilderOption {
	return func(a *animator) {
		a.baker = b
	}
}

// WithLogger sets the logger for recoverable binding problems.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op logger
//
// Returns:
//   - AnimatorBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) AnimatorBuilderOption {
	return func(a *animator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithFramerate sets the frames per second elapsed time is converted with.
// Values <= 0 are treated as the default (24).
//
// Parameters:
//   - fps: the framerate
//
// Returns:
//   - AnimatorBuilderOption: option function to apply
func WithFramerate(fps float64) AnimatorBuilderOption {
	return func(a *animator) {
		if fps <= 0 {
			fps = 24
		}
		a.framerate = fps
	}
}

// WithTimeline sets the scene frame range STATIC slots span.
//
// Parameters:
//   - start: the first frame
//   - end: the last frame
//
// Returns:
//   - AnimatorBuilderOption: option function to apply
func WithTimeline(start, end float64) AnimatorBuilderOption {
	return func(a *animator) {
		a.timelineStart = start
		a.timelineEnd = end
	}
}
