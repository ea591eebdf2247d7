package skeleton

import "errors"

var (
	// ErrUnknownBone is returned when a bone references a parent or name the armature does not contain.
	ErrUnknownBone = errors.New("unknown bone")

	// ErrCycle is returned when the parent links of an armature form a loop.
	ErrCycle = errors.New("bone hierarchy contains a cycle")
)
