package animator

import (
	"github.com/google/uuid"

	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

// EntityBuilderOption is a functional option for configuring an Entity.
type EntityBuilderOption func(*Entity)

// WithID overrides the generated entity ID.
//
// Parameters:
//   - id: the entity ID
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithID(id uuid.UUID) EntityBuilderOption {
	return func(e *Entity) {
		e.id = id
	}
}

// WithType sets the authoring type of the entity.
//
// Parameters:
//   - t: the entity type
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithType(t EntityType) EntityBuilderOption {
	return func(e *Entity) {
		e.typ = t
	}
}

// WithArmature sets the armature. For ARMATURE entities it is the entity's own
// skeleton; for any other type it is the skinning armature.
//
// Parameters:
//   - a: the armature
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithArmature(a *skeleton.Armature) EntityBuilderOption {
	return func(e *Entity) {
		e.armature = a
	}
}

// WithBonePointers overrides the default one-to-one bone pointers.
//
// Parameters:
//   - pointers: bone pointers keyed by bone name
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithBonePointers(pointers map[string]skeleton.BonePointer) EntityBuilderOption {
	return func(e *Entity) {
		e.pointers = pointers
	}
}

// WithCyclic marks the entity's default animations as looping.
//
// Parameters:
//   - cyclic: true to loop default animations
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithCyclic(cyclic bool) EntityBuilderOption {
	return func(e *Entity) {
		e.cyclic = cyclic
	}
}

// WithDefaultActions sets the action names ApplyDefault binds.
//
// Parameters:
//   - names: the action names
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithDefaultActions(names ...string) EntityBuilderOption {
	return func(e *Entity) {
		e.defaultActions = append(e.defaultActions, names...)
	}
}

// WithVertexAnims sets the baked vertex animations of a mesh.
//
// Parameters:
//   - anims: the vertex animations in buffer order
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithVertexAnims(anims ...VertexAnim) EntityBuilderOption {
	return func(e *Entity) {
		e.vertexAnims = append(e.vertexAnims, anims...)
	}
}

// WithParticleSystems sets the particle systems of the entity.
//
// Parameters:
//   - systems: the particle systems
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithParticleSystems(systems ...ParticleSystemInfo) EntityBuilderOption {
	return func(e *Entity) {
		e.particleSystems = append(e.particleSystems, systems...)
	}
}

// WithTransform sets the transform collaborator OBJECT slots write into.
//
// Parameters:
//   - t: the transform
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithTransform(t Transform) EntityBuilderOption {
	return func(e *Entity) {
		e.transform = t
	}
}

// WithPhysics sets the physics collaborator synced after transform updates.
//
// Parameters:
//   - p: the physics collaborator
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithPhysics(p Physics) EntityBuilderOption {
	return func(e *Entity) {
		e.physics = p
	}
}

// WithSpeaker sets the audio collaborator SOUND slots drive.
//
// Parameters:
//   - s: the speaker
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithSpeaker(s Speaker) EntityBuilderOption {
	return func(e *Entity) {
		e.speaker = s
	}
}
