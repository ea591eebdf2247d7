package skeleton

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// Bone is a single joint of an armature.
type Bone struct {
	// Name is the bone's identifier, matched against action bone channels.
	Name string

	// Parent is the parent bone's name, empty for root bones.
	Parent string

	// Rest is the bone's armature-space rest transform.
	Rest common.TSR
}

// Armature is an immutable bone hierarchy.
type Armature struct {
	name    string
	bones   []Bone
	parents []int
	index   map[string]int
	chains  [][]int // bone index first, root last
	restInv []common.TSR
}

// NewArmature validates the hierarchy and precomputes each bone's chain to the root.
//
// Parameters:
//   - name: the armature name
//   - bones: the bones, in any order
//
// Returns:
//   - *Armature: the armature
//   - error: ErrUnknownBone for a dangling parent or duplicate name, ErrCycle for a parent loop
func NewArmature(name string, bones []Bone) (*Armature, error) {
	a := &Armature{
		name:    name,
		bones:   make([]Bone, len(bones)),
		parents: make([]int, len(bones)),
		index:   make(map[string]int, len(bones)),
		chains:  make([][]int, len(bones)),
		restInv: make([]common.TSR, len(bones)),
	}
	copy(a.bones, bones)

	for i, b := range a.bones {
		if _, dup := a.index[b.Name]; dup {
			return nil, fmt.Errorf("armature %q: %w: duplicate bone %q", name, ErrUnknownBone, b.Name)
		}
		a.index[b.Name] = i
		a.bones[i].Rest = b.Rest.Normalized()
		a.restInv[i] = a.bones[i].Rest.Invert()
	}

	for i, b := range a.bones {
		a.parents[i] = -1
		if b.Parent == "" {
			continue
		}
		p, ok := a.index[b.Parent]
		if !ok {
			return nil, fmt.Errorf("armature %q bone %q: %w: parent %q", name, b.Name, ErrUnknownBone, b.Parent)
		}
		a.parents[i] = p
	}

	for i := range a.bones {
		chain := []int{i}
		for p := a.parents[i]; p >= 0; p = a.parents[p] {
			if len(chain) > len(a.bones) {
				return nil, fmt.Errorf("armature %q bone %q: %w", name, a.bones[i].Name, ErrCycle)
			}
			chain = append(chain, p)
		}
		a.chains[i] = chain
	}

	return a, nil
}

func (a *Armature) Name() string {
	return a.name
}

// Bones returns the bones in declaration order. The slice must not be modified.
func (a *Armature) Bones() []Bone {
	return a.bones
}

func (a *Armature) NumBones() int {
	return len(a.bones)
}

// BoneIndex returns the index of the named bone.
func (a *Armature) BoneIndex(name string) (int, bool) {
	i, ok := a.index[name]
	return i, ok
}

// Parent returns the parent index of a bone, or -1 for a root.
func (a *Armature) Parent(bone int) int {
	return a.parents[bone]
}

// Chain returns the bone indices from bone up to its root.
func (a *Armature) Chain(bone int) []int {
	return a.chains[bone]
}

// BonePointer locates a bone in the armature, the skinning arrays and the pose bones.
type BonePointer struct {
	BoneIndex       int
	DeformBoneIndex int
	PoseBoneIndex   int
}

// BonePointers maps every bone of a to its pointer. All three indices equal the
// bone's declaration index.
//
// Parameters:
//   - a: the armature
//
// Returns:
//   - map[string]BonePointer: pointers keyed by bone name
func BonePointers(a *Armature) map[string]BonePointer {
	out := make(map[string]BonePointer, len(a.bones))
	for i, b := range a.bones {
		out[b.Name] = BonePointer{BoneIndex: i, DeformBoneIndex: i, PoseBoneIndex: i}
	}
	return out
}

// BonePointer returns the pointer of the named bone.
func (a *Armature) BonePointer(name string) (BonePointer, bool) {
	i, ok := a.index[name]
	if !ok {
		return BonePointer{}, false
	}
	return BonePointer{BoneIndex: i, DeformBoneIndex: i, PoseBoneIndex: i}, true
}
