package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/num/quat"
)

func assertVecInDelta(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], delta, "component %d", i)
	}
}

// sameRotation compares quaternions up to sign.
func sameRotation(t *testing.T, want, got mgl32.Quat) {
	t.Helper()
	assert.InDelta(t, 1.0, math.Abs(float64(want.Normalize().Dot(got.Normalize()))), 1e-5)
}

func gonumRotate(q mgl32.Quat, v mgl32.Vec3) mgl32.Vec3 {
	qn := quat.Number{Real: float64(q.W), Imag: float64(q.V[0]), Jmag: float64(q.V[1]), Kmag: float64(q.V[2])}
	vn := quat.Number{Imag: float64(v[0]), Jmag: float64(v[1]), Kmag: float64(v[2])}
	r := quat.Mul(quat.Mul(qn, vn), quat.Conj(qn))
	return mgl32.Vec3{float32(r.Imag), float32(r.Jmag), float32(r.Kmag)}
}

func TestTSRMultiply(t *testing.T) {
	a := NewTSR(mgl32.Vec3{1, 2, 3}, 2, mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0}))
	b := NewTSR(mgl32.Vec3{-1, 0.5, 4}, 0.5, mgl32.QuatRotate(-1.1, mgl32.Vec3{1, 0, 0}))
	p := mgl32.Vec3{0.3, -2, 1.5}

	t.Run("identity is neutral", func(t *testing.T) {
		assert.Equal(t, a, IdentityTSR().Multiply(a))
		got := a.Multiply(IdentityTSR())
		assertVecInDelta(t, a.Translation(), got.Translation(), 1e-6)
		assert.InDelta(t, a.Scale(), got.Scale(), 1e-6)
		sameRotation(t, a.Rotation(), got.Rotation())
	})

	t.Run("b is applied first", func(t *testing.T) {
		want := a.TransformPoint(b.TransformPoint(p))
		assertVecInDelta(t, want, a.Multiply(b).TransformPoint(p), 1e-4)
	})

	t.Run("rotation matches quaternion oracle", func(t *testing.T) {
		q := a.Rotation()
		assertVecInDelta(t, gonumRotate(q, p), q.Rotate(p), 1e-5)
		want := a.Translation().Add(gonumRotate(q, p).Mul(a.Scale()))
		assertVecInDelta(t, want, a.TransformPoint(p), 1e-5)
	})
}

func TestTSRInvert(t *testing.T) {
	tests := []struct {
		name string
		tsr  TSR
	}{
		{name: "identity", tsr: IdentityTSR()},
		{name: "translation only", tsr: NewTSR(mgl32.Vec3{4, -3, 1}, 1, mgl32.QuatIdent())},
		{name: "full", tsr: NewTSR(mgl32.Vec3{1, 2, 3}, 3, mgl32.QuatRotate(1.3, mgl32.Vec3{0, 0.6, 0.8}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.tsr.Multiply(tt.tsr.Invert())
			assertVecInDelta(t, mgl32.Vec3{}, got.Translation(), 1e-5)
			assert.InDelta(t, 1.0, got.Scale(), 1e-6)
			sameRotation(t, mgl32.QuatIdent(), got.Rotation())
		})
	}

	t.Run("zero scale", func(t *testing.T) {
		inv := NewTSR(mgl32.Vec3{1, 0, 0}, 0, mgl32.QuatIdent()).Invert()
		assert.Equal(t, float32(0), inv.Scale())
	})
}

func TestSlerpShortestPath(t *testing.T) {
	q := mgl32.QuatRotate(0.4, mgl32.Vec3{0, 0, 1})
	neg := q.Scale(-1)

	sameRotation(t, q, Slerp(q, neg, 0.5))

	half := Slerp(mgl32.QuatIdent(), mgl32.QuatRotate(1, mgl32.Vec3{0, 0, 1}), 0.5)
	sameRotation(t, mgl32.QuatRotate(0.5, mgl32.Vec3{0, 0, 1}), half)
}

func TestLerp(t *testing.T) {
	assert.InDelta(t, 2.5, Lerp(2, 3, 0.5), 1e-6)
	assert.InDelta(t, 2.0, Lerp(2, 3, 0), 1e-6)
}
