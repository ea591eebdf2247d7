package action

import "errors"

var (
	// ErrEmptyAction is returned when an action without curves is bound to a slot.
	ErrEmptyAction = errors.New("action has no curves")

	// ErrFrameRange is returned when an action's end frame precedes its start frame.
	ErrFrameRange = errors.New("invalid action frame range")

	// ErrChannelIndex is returned when a curve's array index is outside the components of its channel.
	ErrChannelIndex = errors.New("channel array index out of range")
)
