package animator

import (
	"github.com/google/uuid"

	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

// ParticleEmitter is the particle type that can be animated.
const ParticleEmitter = "EMITTER"

// VertexAnim is a baked vertex animation authored on a mesh.
type VertexAnim struct {
	Name       string
	FrameStart float64
	FrameEnd   float64
}

// ParticleSystemInfo describes one particle system of an entity.
type ParticleSystemInfo struct {
	Name       string
	Type       string // EMITTER or HAIR
	FrameStart float64
	FrameEnd   float64
	Lifetime   float64
	Cyclic     bool

	// System receives the time cursor; nil systems are advanced but not driven.
	System ParticleSystem
}

// SkinFrame is the bracket of baked bone data an ARMATURE or SKELETAL slot last evaluated.
type SkinFrame struct {
	TransBefore []float32
	TransAfter  []float32
	QuatsBefore []float32
	QuatsAfter  []float32
	FrameFactor float32
}

// VertexFrame is the bracket of vertex animation frames a VERTEX slot last evaluated.
type VertexFrame struct {
	Frame  int
	Next   int
	Factor float32
}

// Entity is an animatable object with a fixed set of slots.
type Entity struct {
	id       uuid.UUID
	name     string
	typ      EntityType
	armature *skeleton.Armature
	pointers map[string]skeleton.BonePointer
	cyclic   bool

	defaultActions  []string
	vertexAnims     []VertexAnim
	particleSystems []ParticleSystemInfo

	transform Transform
	physics   Physics
	speaker   Speaker

	slots    [NumSlots]*animSlot
	animated bool

	skin   SkinFrame
	vertex VertexFrame
}

// NewEntity creates an entity with a fresh ID.
//
// Parameters:
//   - name: the entity name
//   - options: functional options for configuring the entity
//
// Returns:
//   - *Entity: the entity
func NewEntity(name string, options ...EntityBuilderOption) *Entity {
	e := &Entity{
		id:   uuid.New(),
		name: name,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.armature != nil && e.pointers == nil {
		e.pointers = skeleton.BonePointers(e.armature)
	}
	return e
}

func (e *Entity) ID() uuid.UUID {
	return e.id
}

func (e *Entity) Name() string {
	return e.name
}

func (e *Entity) Type() EntityType {
	return e.typ
}

// Cyclic reports whether default animations loop.
func (e *Entity) Cyclic() bool {
	return e.cyclic
}

// Armature returns the entity's own armature. Only ARMATURE entities have one.
func (e *Entity) Armature() *skeleton.Armature {
	if e.typ != EntityArmature {
		return nil
	}
	return e.armature
}

// FirstArmature returns the armature skinning a non-armature entity.
func (e *Entity) FirstArmature() *skeleton.Armature {
	if e.typ == EntityArmature {
		return nil
	}
	return e.armature
}

// BonePointers returns the bone pointers used to lay out skinning data.
func (e *Entity) BonePointers() map[string]skeleton.BonePointer {
	return e.pointers
}

func (e *Entity) DefaultActions() []string {
	return e.defaultActions
}

func (e *Entity) VertexAnims() []VertexAnim {
	return e.vertexAnims
}

func (e *Entity) ParticleSystems() []ParticleSystemInfo {
	return e.particleSystems
}

// HasAnimatedParticles reports whether any particle system is an emitter.
func (e *Entity) HasAnimatedParticles() bool {
	for _, ps := range e.particleSystems {
		if ps.Type == ParticleEmitter {
			return true
		}
	}
	return false
}

func (e *Entity) Transform() Transform {
	return e.transform
}

func (e *Entity) Speaker() Speaker {
	return e.speaker
}

func (e *Entity) Physics() Physics {
	return e.physics
}

// Skin returns the skinning bracket written by the last ARMATURE or SKELETAL evaluation.
func (e *Entity) Skin() SkinFrame {
	return e.skin
}

// VertexFrame returns the frame bracket written by the last VERTEX evaluation.
func (e *Entity) VertexFrame() VertexFrame {
	return e.vertex
}

func (e *Entity) vertexFrameOffset(va VertexAnim) int {
	offset := 0
	for _, v := range e.vertexAnims {
		if v.Name == va.Name {
			break
		}
		offset += int(v.FrameEnd - v.FrameStart + 1)
	}
	return offset
}

func (e *Entity) findVertexAnim(name string) (VertexAnim, bool) {
	for _, v := range e.vertexAnims {
		if v.Name == name {
			return v, true
		}
	}
	return VertexAnim{}, false
}

func (e *Entity) findParticleSystem(name string) (ParticleSystemInfo, bool) {
	for _, ps := range e.particleSystems {
		if ps.Name == name {
			return ps, true
		}
	}
	return ParticleSystemInfo{}, false
}

func (e *Entity) updateTransform() {
	if e.transform == nil {
		return
	}
	e.transform.UpdateTransform()
}

func (e *Entity) syncPhysics() {
	if e.physics == nil || e.transform == nil {
		return
	}
	e.physics.SyncTransform(e.transform.Translation(), e.transform.Rotation())
}
