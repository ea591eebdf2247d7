package animator

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-anim/engine/action"
)

var (
	// ErrEmptyAction is returned when an action without curves is applied.
	ErrEmptyAction = action.ErrEmptyAction

	// ErrUnknownKind is returned when a slot with an unrecognised kind is evaluated.
	ErrUnknownKind = errors.New("unknown animation kind")

	// ErrInvalidSlot is returned for a slot index outside [0, NumSlots).
	ErrInvalidSlot = errors.New("invalid animation slot")

	// ErrNoEmptySlot is returned when every slot of an entity is bound.
	ErrNoEmptySlot = errors.New("no empty animation slot")

	// ErrNotAnimated is returned when a query needs an entity that has no bound slots.
	ErrNotAnimated = errors.New("entity is not animated")

	// ErrUnresolvedAnimation is returned when apply finds no animation with the given name.
	ErrUnresolvedAnimation = errors.New("unresolved animation name")
)
