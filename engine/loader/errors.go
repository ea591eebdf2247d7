package loader

import "errors"

var (
	// ErrUnsupportedFormat is returned for an asset whose extension no backend reads.
	ErrUnsupportedFormat = errors.New("unsupported asset format")

	// ErrUnknownArmature is returned when an object names an armature the asset does not declare.
	ErrUnknownArmature = errors.New("unknown armature")

	// ErrUnknownObjectType is returned for an object type outside ARMATURE, MESH, SPEAKER and EMPTY.
	ErrUnknownObjectType = errors.New("unknown object type")
)
