package skeleton

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

func restAt(x, y, z float32) common.TSR {
	return common.NewTSR(mgl32.Vec3{x, y, z}, 1, mgl32.QuatIdent())
}

func TestNewArmature(t *testing.T) {
	tests := []struct {
		name    string
		bones   []Bone
		wantErr error
	}{
		{
			name: "valid chain",
			bones: []Bone{
				{Name: "hand", Parent: "arm", Rest: restAt(2, 0, 0)},
				{Name: "root", Rest: restAt(0, 0, 0)},
				{Name: "arm", Parent: "root", Rest: restAt(1, 0, 0)},
			},
		},
		{
			name:    "unknown parent",
			bones:   []Bone{{Name: "arm", Parent: "ghost"}},
			wantErr: ErrUnknownBone,
		},
		{
			name:    "duplicate name",
			bones:   []Bone{{Name: "arm"}, {Name: "arm"}},
			wantErr: ErrUnknownBone,
		},
		{
			name:    "cycle",
			bones:   []Bone{{Name: "a", Parent: "b"}, {Name: "b", Parent: "a"}},
			wantErr: ErrCycle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewArmature("rig", tt.bones)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.bones), a.NumBones())
		})
	}
}

func TestArmature_Chain(t *testing.T) {
	a, err := NewArmature("rig", []Bone{
		{Name: "hand", Parent: "arm"},
		{Name: "root"},
		{Name: "arm", Parent: "root"},
	})
	require.NoError(t, err)

	hand, ok := a.BoneIndex("hand")
	require.True(t, ok)
	assert.Equal(t, []int{0, 2, 1}, a.Chain(hand))
	assert.Equal(t, -1, a.Parent(1))
	assert.Equal(t, 2, a.Parent(hand))

	_, ok = a.BoneIndex("tail")
	assert.False(t, ok)
}

func TestBonePointers(t *testing.T) {
	a, err := NewArmature("rig", []Bone{{Name: "root"}, {Name: "spine", Parent: "root"}})
	require.NoError(t, err)

	ptrs := BonePointers(a)
	assert.Equal(t, map[string]BonePointer{
		"root":  {BoneIndex: 0, DeformBoneIndex: 0, PoseBoneIndex: 0},
		"spine": {BoneIndex: 1, DeformBoneIndex: 1, PoseBoneIndex: 1},
	}, ptrs)

	p, ok := a.BonePointer("spine")
	require.True(t, ok)
	assert.Equal(t, ptrs["spine"], p)

	_, ok = a.BonePointer("tail")
	assert.False(t, ok)
}
