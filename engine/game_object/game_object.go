package game_object

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

type gameObject struct {
	id      uint64
	name    string
	enabled atomic.Bool
	parent  GameObject

	translation mgl32.Vec3
	rotation    mgl32.Quat
	scale       float32

	world   [16]float32
	updates int
}

// GameObject is a scene node with a local translation, rotation and uniform
// scale, and a world matrix derived from its parent chain. It satisfies the
// animator's Transform contract.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Enabled returns whether this object takes part in updates.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether the object takes part in updates.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Parent returns the parent object, or nil for a root.
	//
	// Returns:
	//   - GameObject: the parent
	Parent() GameObject

	// SetParent attaches the object to a parent. The world matrix is refreshed on the next UpdateTransform.
	//
	// Parameters:
	//   - p: the parent, or nil to detach
	SetParent(p GameObject)

	// Translation returns the local translation.
	//
	// Returns:
	//   - mgl32.Vec3: the translation
	Translation() mgl32.Vec3

	// SetTranslation sets the local translation.
	//
	// Parameters:
	//   - t: the translation
	SetTranslation(t mgl32.Vec3)

	// Rotation returns the local rotation.
	//
	// Returns:
	//   - mgl32.Quat: the rotation
	Rotation() mgl32.Quat

	// SetRotation sets the local rotation.
	//
	// Parameters:
	//   - q: the rotation
	SetRotation(q mgl32.Quat)

	// Scale returns the local uniform scale.
	//
	// Returns:
	//   - float32: the scale
	Scale() float32

	// SetScale sets the local uniform scale.
	//
	// Parameters:
	//   - s: the scale
	SetScale(s float32)

	// UpdateTransform recomputes the world matrix from the local transform and the parent's world matrix.
	UpdateTransform()

	// WorldMatrix returns the world matrix computed by the last UpdateTransform, column-major.
	//
	// Returns:
	//   - [16]float32: the world matrix
	WorldMatrix() [16]float32

	// WorldTransform decomposes the world matrix.
	//
	// Returns:
	//   - mgl32.Vec3: the world translation
	//   - mgl32.Quat: the world rotation
	//   - float32: the world uniform scale
	WorldTransform() (mgl32.Vec3, mgl32.Quat, float32)

	// ToLocal maps a world-space point into this object's local space.
	//
	// Parameters:
	//   - p: the world-space point
	//
	// Returns:
	//   - mgl32.Vec3: the local point
	//   - bool: false if the world matrix is singular
	ToLocal(p mgl32.Vec3) (mgl32.Vec3, bool)

	// Updates returns how many times UpdateTransform has run.
	//
	// Returns:
	//   - int: the update count
	Updates() int
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		rotation: mgl32.QuatIdent(),
		scale:    1,
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	obj.recompute()
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Parent() GameObject {
	return g.parent
}

func (g *gameObject) SetParent(p GameObject) {
	g.parent = p
}

func (g *gameObject) Translation() mgl32.Vec3 {
	return g.translation
}

func (g *gameObject) SetTranslation(t mgl32.Vec3) {
	g.translation = t
}

func (g *gameObject) Rotation() mgl32.Quat {
	return g.rotation
}

func (g *gameObject) SetRotation(q mgl32.Quat) {
	g.rotation = q
}

func (g *gameObject) Scale() float32 {
	return g.scale
}

func (g *gameObject) SetScale(s float32) {
	g.scale = s
}

func (g *gameObject) UpdateTransform() {
	g.recompute()
	g.updates++
}

func (g *gameObject) recompute() {
	var local [16]float32
	common.ComposeMatrix(local[:], g.translation, g.rotation, g.scale)

	if g.parent == nil {
		g.world = local
		return
	}
	parent := g.parent.WorldMatrix()
	common.Mul4(g.world[:], parent[:], local[:])
}

func (g *gameObject) WorldMatrix() [16]float32 {
	return g.world
}

func (g *gameObject) WorldTransform() (mgl32.Vec3, mgl32.Quat, float32) {
	return common.DecomposeMatrix(g.world[:])
}

func (g *gameObject) ToLocal(p mgl32.Vec3) (mgl32.Vec3, bool) {
	var inv [16]float32
	common.Identity(inv[:])
	if !common.Invert4(inv[:], g.world[:]) {
		return mgl32.Vec3{}, false
	}
	m := mgl32.Mat4(inv)
	return m.Mul4x1(p.Vec4(1)).Vec3(), true
}

func (g *gameObject) Updates() int {
	return g.updates
}
