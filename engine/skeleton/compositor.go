package skeleton

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/action"
)

// Compositor computes hierarchical skinning poses for one armature. It reuses
// its scratch tables across calls and is not safe for concurrent use.
type Compositor struct {
	armature  *Armature
	pointers  []namedPointer
	numDeform int
	basis     []common.TSR
	channel   []common.TSR
	valid     []bool
}

type namedPointer struct {
	name string
	BonePointer
}

// NewCompositor prepares a compositor for the given armature and pointers.
//
// Parameters:
//   - a: the armature
//   - pointers: bone pointers keyed by bone name
//
// Returns:
//   - *Compositor: the compositor
//   - error: ErrUnknownBone if a pointer's pose index is outside the armature
func NewCompositor(a *Armature, pointers map[string]BonePointer) (*Compositor, error) {
	c := &Compositor{
		armature: a,
		basis:    make([]common.TSR, a.NumBones()),
		channel:  make([]common.TSR, a.NumBones()),
		valid:    make([]bool, a.NumBones()),
	}

	for name, p := range pointers {
		if p.PoseBoneIndex < 0 || p.PoseBoneIndex >= a.NumBones() || p.DeformBoneIndex < 0 {
			return nil, fmt.Errorf("armature %q: %w: %q", a.Name(), ErrUnknownBone, name)
		}
		c.pointers = append(c.pointers, namedPointer{name: name, BonePointer: p})
		if p.DeformBoneIndex+1 > c.numDeform {
			c.numDeform = p.DeformBoneIndex + 1
		}
	}
	sort.Slice(c.pointers, func(i, j int) bool {
		return c.pointers[i].DeformBoneIndex < c.pointers[j].DeformBoneIndex
	})

	return c, nil
}

// NumDeformBones returns the number of deform slots in the output arrays.
func (c *Compositor) NumDeformBones() int {
	return c.numDeform
}

// Compose evaluates the pose for one set of per-bone basis transforms and
// writes (x, y, z, scale) into trans and a normalized (x, y, z, w) quaternion
// into quats at 4*deform index. Both outputs must hold 4*NumDeformBones floats.
//
// Parameters:
//   - basis: per pose bone parent-relative delta transforms
//   - trans: destination translation+scale array
//   - quats: destination quaternion array
func (c *Compositor) Compose(basis []common.TSR, trans, quats []float32) {
	for i := range c.valid {
		c.valid[i] = false
	}

	for _, p := range c.pointers {
		tsr := c.world(p.PoseBoneIndex, basis)
		q := tsr.Rotation().Normalize()
		d := 4 * p.DeformBoneIndex
		trans[d], trans[d+1], trans[d+2], trans[d+3] = tsr[0], tsr[1], tsr[2], tsr[3]
		quats[d], quats[d+1], quats[d+2], quats[d+3] = q.V[0], q.V[1], q.V[2], q.W
	}
}

// ComposeSample evaluates the pose of an action at one sample.
//
// Parameters:
//   - act: the compiled action
//   - sample: the sample index
//
// Returns:
//   - []float32: translation+scale per deform bone
//   - []float32: quaternion per deform bone
func (c *Compositor) ComposeSample(act *action.Action, sample int) ([]float32, []float32) {
	for i, b := range c.armature.bones {
		c.basis[i] = act.BoneTSR(b.Name, sample)
	}
	trans := make([]float32, 4*c.numDeform)
	quats := make([]float32, 4*c.numDeform)
	c.Compose(c.basis, trans, quats)
	return trans, quats
}

// world walks the chain from the root down to bone, reusing every ancestor
// already resolved in this pass.
func (c *Compositor) world(bone int, basis []common.TSR) common.TSR {
	chain := c.armature.chains[bone]
	parent := common.IdentityTSR()

	for i := len(chain) - 1; i >= 0; i-- {
		b := chain[i]
		if c.valid[b] {
			parent = c.channel[b]
			continue
		}

		// into bone space, apply the basis, back to armature space
		rest := c.armature.bones[b].Rest
		local := rest.Multiply(basis[b].Multiply(c.armature.restInv[b]))

		c.channel[b] = parent.Multiply(local)
		c.valid[b] = true
		parent = c.channel[b]
	}

	return c.channel[bone]
}
