package common

import "github.com/go-gl/mathgl/mgl32"

// TSR is a packed translation, uniform scale and rotation record laid out as
// [tx, ty, tz, s, qx, qy, qz, qw].
type TSR [8]float32

// IdentityTSR returns the identity TSR: zero translation, unit scale, identity rotation.
//
// Returns:
//   - TSR: the identity record
func IdentityTSR() TSR {
	return TSR{0, 0, 0, 1, 0, 0, 0, 1}
}

// NewTSR packs a translation, uniform scale and rotation quaternion into a TSR.
//
// Parameters:
//   - t: translation
//   - s: uniform scale
//   - q: rotation quaternion
//
// Returns:
//   - TSR: the packed record
func NewTSR(t mgl32.Vec3, s float32, q mgl32.Quat) TSR {
	return TSR{t[0], t[1], t[2], s, q.V[0], q.V[1], q.V[2], q.W}
}

// Translation returns the translation part.
func (a TSR) Translation() mgl32.Vec3 {
	return mgl32.Vec3{a[0], a[1], a[2]}
}

// Scale returns the uniform scale.
func (a TSR) Scale() float32 {
	return a[3]
}

// Rotation returns the rotation quaternion.
func (a TSR) Rotation() mgl32.Quat {
	return mgl32.Quat{W: a[7], V: mgl32.Vec3{a[4], a[5], a[6]}}
}

// Multiply composes two transforms. The result applies b first, then a.
//
// Parameters:
//   - b: the inner transform
//
// Returns:
//   - TSR: a ∘ b
func (a TSR) Multiply(b TSR) TSR {
	q := a.Rotation()
	s := a.Scale()
	t := a.Translation().Add(q.Rotate(b.Translation()).Mul(s))
	return NewTSR(t, s*b.Scale(), q.Mul(b.Rotation()))
}

// Invert returns the inverse transform. A zero scale inverts to zero scale.
//
// Returns:
//   - TSR: the inverse of a
func (a TSR) Invert() TSR {
	var s float32
	if a.Scale() != 0 {
		s = 1 / a.Scale()
	}
	q := a.Rotation().Conjugate()
	t := q.Rotate(a.Translation()).Mul(-s)
	return NewTSR(t, s, q)
}

// Normalized returns a copy of a with its rotation normalized.
func (a TSR) Normalized() TSR {
	return NewTSR(a.Translation(), a.Scale(), a.Rotation().Normalize())
}

// TransformPoint applies the transform to a point.
//
// Parameters:
//   - p: the point
//
// Returns:
//   - mgl32.Vec3: t + s * rotate(q, p)
func (a TSR) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return a.Translation().Add(a.Rotation().Rotate(p).Mul(a.Scale()))
}

// Slerp spherically interpolates between two rotations along the shortest arc.
//
// Parameters:
//   - a: the rotation at factor 0
//   - b: the rotation at factor 1
//   - factor: interpolation factor in [0, 1]
//
// Returns:
//   - mgl32.Quat: the interpolated rotation
func Slerp(a, b mgl32.Quat, factor float32) mgl32.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, factor)
}

// Lerp linearly interpolates between two scalars.
func Lerp(a, b, factor float32) float32 {
	return (1-factor)*a + factor*b
}
