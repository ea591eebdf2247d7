package curve

import "errors"

var (
	// ErrUnknownInterpolation is returned when a keyframe carries an interpolation
	// mode other than BEZIER, LINEAR or CONSTANT.
	ErrUnknownInterpolation = errors.New("unknown keyframe interpolation mode")

	// ErrNoKeyframes is returned when sampling a curve without keyframes.
	ErrNoKeyframes = errors.New("curve has no keyframes")
)
