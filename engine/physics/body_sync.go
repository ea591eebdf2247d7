package physics

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
)

// BodySync keeps a kinematic physics body in step with an animated transform.
// The body lives in the XY plane; the rotation is reduced to its angle about Z.
type BodySync interface {
	// Body returns the synced body.
	//
	// Returns:
	//   - *cp.Body: the kinematic body
	Body() *cp.Body

	// SyncTransform moves the body to the given pose.
	//
	// Parameters:
	//   - translation: the world position
	//   - rotation: the world rotation
	SyncTransform(translation mgl32.Vec3, rotation mgl32.Quat)

	// Remove takes the body and its shapes out of the space it was added to.
	// Calling it again, or on a body without a space, does nothing.
	// It must not be called while the space is stepping.
	Remove()

	// Syncs returns how many times the body has been moved.
	//
	// Returns:
	//   - uint64: the sync count
	Syncs() uint64
}

type bodySync struct {
	body  *cp.Body
	space *cp.Space
	syncs atomic.Uint64
}

var _ BodySync = &bodySync{}

// NewBodySync creates a BodySync around a new kinematic body.
//
// Parameters:
//   - options: functional options to configure the sync
//
// Returns:
//   - BodySync: the new body sync
func NewBodySync(options ...BodySyncBuilderOption) BodySync {
	b := &bodySync{}
	for _, opt := range options {
		opt(b)
	}
	if b.body == nil {
		b.body = cp.NewKinematicBody()
	}
	if b.space != nil {
		b.space.AddBody(b.body)
	}
	return b
}

func (b *bodySync) Body() *cp.Body {
	return b.body
}

func (b *bodySync) SyncTransform(translation mgl32.Vec3, rotation mgl32.Quat) {
	b.body.SetPosition(cp.Vector{X: float64(translation.X()), Y: float64(translation.Y())})
	b.body.SetAngle(Yaw(rotation))
	b.syncs.Add(1)
}

func (b *bodySync) Remove() {
	if b.space == nil || !b.space.ContainsBody(b.body) {
		return
	}
	var shapes []*cp.Shape
	b.body.EachShape(func(s *cp.Shape) {
		shapes = append(shapes, s)
	})
	for _, s := range shapes {
		if b.space.ContainsShape(s) {
			b.space.RemoveShape(s)
		}
	}
	b.space.RemoveBody(b.body)
	b.space = nil
}

func (b *bodySync) Syncs() uint64 {
	return b.syncs.Load()
}

// Yaw returns the rotation angle of q about the Z axis, in radians.
//
// Parameters:
//   - q: the rotation
//
// Returns:
//   - float64: the angle in (-pi, pi]
func Yaw(q mgl32.Quat) float64 {
	x, y, z, w := float64(q.V.X()), float64(q.V.Y()), float64(q.V.Z()), float64(q.W)
	return math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
}
