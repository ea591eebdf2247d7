package game_object

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameObject_Defaults(t *testing.T) {
	g := NewGameObject(WithID(7), WithName("crate"))

	assert.Equal(t, uint64(7), g.ID())
	assert.Equal(t, "crate", g.Name())
	assert.True(t, g.Enabled())
	assert.Equal(t, float32(1), g.Scale())
	assert.Equal(t, mgl32.Ident4(), mgl32.Mat4(g.WorldMatrix()))
	assert.Zero(t, g.Updates())

	g.SetEnabled(false)
	assert.False(t, g.Enabled())
}

func TestGameObject_WorldFollowsParent(t *testing.T) {
	parent := NewGameObject(
		WithPosition(10, 0, 0),
		WithRotation(mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})),
		WithScale(2),
	)
	child := NewGameObject(WithParent(parent), WithPosition(1, 0, 0))

	pos, rot, scale := child.WorldTransform()
	assert.InDelta(t, 10, pos[0], 1e-5)
	assert.InDelta(t, 2, pos[1], 1e-5)
	assert.InDelta(t, 2, scale, 1e-5)
	assert.InDelta(t, 1, math.Abs(float64(rot.Dot(parent.Rotation()))), 1e-5)

	parent.SetTranslation(mgl32.Vec3{0, 0, 5})
	parent.UpdateTransform()
	child.UpdateTransform()
	pos, _, _ = child.WorldTransform()
	assert.InDelta(t, 0, pos[0], 1e-5)
	assert.InDelta(t, 2, pos[1], 1e-5)
	assert.InDelta(t, 5, pos[2], 1e-5)
	assert.Equal(t, 1, child.Updates())
	assert.Same(t, parent, child.Parent())
}

func TestGameObject_ToLocal(t *testing.T) {
	g := NewGameObject(WithPosition(1, 2, 3), WithScale(2))

	local, ok := g.ToLocal(mgl32.Vec3{3, 2, 3})
	require.True(t, ok)
	assert.InDelta(t, 1, local[0], 1e-5)
	assert.InDelta(t, 0, local[1], 1e-5)

	g.SetScale(0)
	g.UpdateTransform()
	_, ok = g.ToLocal(mgl32.Vec3{})
	assert.False(t, ok)
}
