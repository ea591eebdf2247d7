package skeleton

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

func twoBoneRig(t *testing.T) *Armature {
	t.Helper()
	a, err := NewArmature("rig", []Bone{
		{Name: "root", Rest: restAt(1, 0, 0)},
		{Name: "tip", Parent: "root", Rest: restAt(2, 0, 0)},
	})
	require.NoError(t, err)
	return a
}

func TestCompositor_RestPoseIsIdentity(t *testing.T) {
	a := twoBoneRig(t)
	c, err := NewCompositor(a, BonePointers(a))
	require.NoError(t, err)
	require.Equal(t, 2, c.NumDeformBones())

	trans := make([]float32, 8)
	quats := make([]float32, 8)
	c.Compose([]common.TSR{common.IdentityTSR(), common.IdentityTSR()}, trans, quats)

	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1}, trans)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1}, quats)
}

func TestCompositor_TranslationDelta(t *testing.T) {
	a := twoBoneRig(t)
	c, err := NewCompositor(a, BonePointers(a))
	require.NoError(t, err)

	basis := []common.TSR{
		common.NewTSR(mgl32.Vec3{0, 2, 0}, 1, mgl32.QuatIdent()),
		common.IdentityTSR(),
	}
	trans := make([]float32, 8)
	quats := make([]float32, 8)
	c.Compose(basis, trans, quats)

	want := []float32{0, 2, 0, 1, 0, 2, 0, 1}
	if diff := cmp.Diff(want, trans, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("trans mismatch (-want +got):\n%s", diff)
	}
}

func TestCompositor_RotationPropagatesToChildren(t *testing.T) {
	a := twoBoneRig(t)
	c, err := NewCompositor(a, BonePointers(a))
	require.NoError(t, err)

	rot := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})
	basis := []common.TSR{
		common.NewTSR(mgl32.Vec3{}, 1, rot),
		common.IdentityTSR(),
	}
	trans := make([]float32, 8)
	quats := make([]float32, 8)
	c.Compose(basis, trans, quats)

	// the root pivots around its head at (1, 0, 0)
	want := []float32{1, -1, 0, 1, 1, -1, 0, 1}
	if diff := cmp.Diff(want, trans, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("trans mismatch (-want +got):\n%s", diff)
	}

	var tip common.TSR
	copy(tip[:4], trans[4:8])
	copy(tip[4:], quats[4:8])
	head := tip.TransformPoint(mgl32.Vec3{2, 0, 0})
	assert.InDelta(t, 1, head[0], 1e-5)
	assert.InDelta(t, 1, head[1], 1e-5)
}

func TestCompositor_Idempotent(t *testing.T) {
	a := twoBoneRig(t)
	c, err := NewCompositor(a, BonePointers(a))
	require.NoError(t, err)

	basis := []common.TSR{
		common.NewTSR(mgl32.Vec3{0.3, 0, 1}, 1.5, mgl32.QuatRotate(0.7, mgl32.Vec3{1, 0, 0})),
		common.NewTSR(mgl32.Vec3{0, 1, 0}, 1, mgl32.QuatRotate(-0.2, mgl32.Vec3{0, 1, 0})),
	}
	t1, q1 := make([]float32, 8), make([]float32, 8)
	t2, q2 := make([]float32, 8), make([]float32, 8)
	c.Compose(basis, t1, q1)
	c.Compose(basis, t2, q2)

	assert.Equal(t, t1, t2)
	assert.Equal(t, q1, q2)
}

func TestNewCompositor_BadPointer(t *testing.T) {
	a := twoBoneRig(t)
	_, err := NewCompositor(a, map[string]BonePointer{"ghost": {PoseBoneIndex: 9}})
	assert.ErrorIs(t, err, ErrUnknownBone)
}
