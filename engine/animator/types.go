package animator

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// NumSlots is the number of independent animation slots per entity.
const NumSlots = 8

// Slot indices. SlotAll addresses every bound slot of an entity at once.
const (
	SlotAll = -1
	Slot0   = 0
	Slot1   = 1
	Slot2   = 2
	Slot3   = 3
	Slot4   = 4
	Slot5   = 5
	Slot6   = 6
	Slot7   = 7
)

// Kind identifies what a slot drives.
type Kind int

const (
	KindArmature  Kind = iota + 1 // an armature posing itself from baked frames
	KindSkeletal                  // a skinned mesh posed from its armature's baked frames
	KindObject                    // object-level translation, rotation and scale
	KindVertex                    // baked vertex animation frames
	KindSound                     // speaker volume and pitch
	KindParticles                 // particle emitter time cursor
	KindStatic                    // timeline only, nothing to evaluate
)

func (k Kind) String() string {
	switch k {
	case KindArmature:
		return "ARMATURE"
	case KindSkeletal:
		return "SKELETAL"
	case KindObject:
		return "OBJECT"
	case KindVertex:
		return "VERTEX"
	case KindSound:
		return "SOUND"
	case KindParticles:
		return "PARTICLES"
	case KindStatic:
		return "STATIC"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Behavior is the policy applied when playback crosses a clip boundary.
type Behavior int

const (
	BehaviorCyclic Behavior = iota
	BehaviorFinishReset
	BehaviorFinishStop
)

func (b Behavior) String() string {
	switch b {
	case BehaviorCyclic:
		return "CYCLIC"
	case BehaviorFinishReset:
		return "FINISH_RESET"
	case BehaviorFinishStop:
		return "FINISH_STOP"
	}
	return fmt.Sprintf("Behavior(%d)", int(b))
}

// EntityType is the authoring type of an entity.
type EntityType int

const (
	EntityEmpty EntityType = iota
	EntityArmature
	EntityMesh
	EntitySpeaker
)

func (t EntityType) String() string {
	switch t {
	case EntityEmpty:
		return "EMPTY"
	case EntityArmature:
		return "ARMATURE"
	case EntityMesh:
		return "MESH"
	case EntitySpeaker:
		return "SPEAKER"
	}
	return fmt.Sprintf("EntityType(%d)", int(t))
}

// FinishCallback is invoked once after a slot crosses its clip boundary.
type FinishCallback func(e *Entity, slot int)

// Transform is the object-level pose an OBJECT slot writes into.
type Transform interface {
	// Translation returns the local translation.
	//
	// Returns:
	//   - mgl32.Vec3: the translation
	Translation() mgl32.Vec3

	// SetTranslation sets the local translation.
	//
	// Parameters:
	//   - t: the new translation
	SetTranslation(t mgl32.Vec3)

	// Rotation returns the local rotation.
	//
	// Returns:
	//   - mgl32.Quat: the rotation
	Rotation() mgl32.Quat

	// SetRotation sets the local rotation.
	//
	// Parameters:
	//   - q: the new rotation
	SetRotation(q mgl32.Quat)

	// Scale returns the uniform scale.
	//
	// Returns:
	//   - float32: the scale
	Scale() float32

	// SetScale sets the uniform scale.
	//
	// Parameters:
	//   - s: the new scale
	SetScale(s float32)

	// UpdateTransform recomputes the derived world transform.
	UpdateTransform()
}

// Physics mirrors a committed pose into a physics body.
type Physics interface {
	// SyncTransform moves the body to the given pose. Non-physical entities treat this as a no-op.
	//
	// Parameters:
	//   - translation: the world position
	//   - rotation: the world rotation
	SyncTransform(translation mgl32.Vec3, rotation mgl32.Quat)
}

// Speaker is the audio source a SOUND slot drives.
type Speaker interface {
	// SetVolume sets the playback volume.
	//
	// Parameters:
	//   - volume: the volume, 1 being unattenuated
	SetVolume(volume float64)

	// SetPlaybackRate sets the pitch as a playback rate multiplier.
	//
	// Parameters:
	//   - rate: the rate, 1 being the authored pitch
	SetPlaybackRate(rate float64)

	// IsPlaying reports whether the speaker is currently audible.
	//
	// Returns:
	//   - bool: true while playing
	IsPlaying() bool

	// Stop halts playback.
	Stop()
}

// ParticleSystem receives the playback time of a PARTICLES slot.
type ParticleSystem interface {
	// SetTime moves the emitter to a point in time.
	//
	// Parameters:
	//   - sec: the time in seconds
	SetTime(sec float64)
}
