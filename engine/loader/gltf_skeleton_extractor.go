package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

// gltfRig is an armature built from a glTF skin plus the joint data animation import needs.
type gltfRig struct {
	skin      int
	armature  *skeleton.Armature
	boneNames map[int]string     // joint node index -> bone name
	localRest map[int]common.TSR // joint node index -> rest relative to the parent joint
}

// gltfSkeletonExtractorImpl is the implementation of the gltfSkeletonExtractor interface.
type gltfSkeletonExtractorImpl struct {
	parser gltfParser
}

// gltfSkeletonExtractor turns glTF skins into armatures.
type gltfSkeletonExtractor interface {
	// ExtractRig builds the armature of one skin. The armature-space rest of each bone
	// is the inverse of its inverse bind matrix, or the composed node hierarchy when the
	// skin has no bind matrices.
	//
	// Parameters:
	//   - skinIndex: the index of the skin
	//
	// Returns:
	//   - *gltfRig: the rig
	//   - error: error if the skin is malformed
	ExtractRig(skinIndex int) (*gltfRig, error)

	// ExtractAllRigs builds the armature of every skin in the document.
	//
	// Returns:
	//   - []*gltfRig: one rig per skin
	//   - error: error if any skin is malformed
	ExtractAllRigs() ([]*gltfRig, error)

	// FindSkinForMesh returns the skin a mesh node is bound to, or -1.
	//
	// Parameters:
	//   - meshIndex: the mesh index
	//
	// Returns:
	//   - int: the skin index, or -1 if none
	FindSkinForMesh(meshIndex int) int
}

var _ gltfSkeletonExtractor = &gltfSkeletonExtractorImpl{}

func newGLTFSkeletonExtractor(parser gltfParser) gltfSkeletonExtractor {
	return &gltfSkeletonExtractorImpl{parser: parser}
}

func (e *gltfSkeletonExtractorImpl) ExtractAllRigs() ([]*gltfRig, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	rigs := make([]*gltfRig, len(doc.Skins))
	for i := range doc.Skins {
		rig, err := e.ExtractRig(i)
		if err != nil {
			return nil, fmt.Errorf("skin %d: %w", i, err)
		}
		rigs[i] = rig
	}
	return rigs, nil
}

func (e *gltfSkeletonExtractorImpl) FindSkinForMesh(meshIndex int) int {
	doc := e.parser.Document()
	if doc == nil {
		return -1
	}
	for _, node := range doc.Nodes {
		if node.Mesh != nil && *node.Mesh == meshIndex && node.Skin != nil {
			return *node.Skin
		}
	}
	return -1
}

func (e *gltfSkeletonExtractorImpl) ExtractRig(skinIndex int) (*gltfRig, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, fmt.Errorf("skin index %d out of range", skinIndex)
	}
	skin := &doc.Skins[skinIndex]

	var ibms [][16]float32
	if skin.InverseBindMatrices != nil {
		var err error
		if ibms, err = e.parser.ReadMat4Accessor(*skin.InverseBindMatrices); err != nil {
			return nil, fmt.Errorf("failed to read inverse bind matrices: %w", err)
		}
	}

	rig := &gltfRig{
		skin:      skinIndex,
		boneNames: make(map[int]string, len(skin.Joints)),
		localRest: make(map[int]common.TSR, len(skin.Joints)),
	}

	for i, joint := range skin.Joints {
		if joint < 0 || joint >= len(doc.Nodes) {
			return nil, fmt.Errorf("joint %d: invalid node index %d", i, joint)
		}
		rig.boneNames[joint] = common.Coalesce(doc.Nodes[joint].Name, fmt.Sprintf("bone_%d", i))
		rig.localRest[joint] = gltfNodeTSR(&doc.Nodes[joint])
	}

	parents := gltfParentIndices(doc)
	jointParent := func(joint int) (int, bool) {
		for p := parents[joint]; p >= 0; p = parents[p] {
			if _, ok := rig.boneNames[p]; ok {
				return p, true
			}
		}
		return -1, false
	}

	bones := make([]skeleton.Bone, len(skin.Joints))
	for i, joint := range skin.Joints {
		bones[i].Name = rig.boneNames[joint]
		if p, ok := jointParent(joint); ok {
			bones[i].Parent = rig.boneNames[p]
		}
		if i < len(ibms) {
			rest, ok := gltfRestFromInverseBind(ibms[i])
			if !ok {
				return nil, fmt.Errorf("joint %q: singular inverse bind matrix", bones[i].Name)
			}
			bones[i].Rest = rest
			continue
		}
		rest := rig.localRest[joint]
		for p, ok := jointParent(joint); ok; p, ok = jointParent(p) {
			rest = rig.localRest[p].Multiply(rest)
		}
		bones[i].Rest = rest
	}

	name := common.Coalesce(skin.Name, fmt.Sprintf("skin_%d", skinIndex))
	a, err := skeleton.NewArmature(name, bones)
	if err != nil {
		return nil, err
	}
	rig.armature = a
	return rig, nil
}

// gltfParentIndices maps every node to its parent node, -1 for roots.
func gltfParentIndices(doc *gltfDocument) []int {
	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i, node := range doc.Nodes {
		for _, c := range node.Children {
			if c >= 0 && c < len(parents) {
				parents[c] = i
			}
		}
	}
	return parents
}

// gltfNodeTSR returns a node's local transform. Non-uniform scale collapses to its mean.
func gltfNodeTSR(node *gltfNode) common.TSR {
	if node.Matrix != nil {
		t, q, s := common.DecomposeMatrix(node.Matrix[:])
		return common.NewTSR(t, s, q)
	}

	t := mgl32.Vec3{}
	q := mgl32.QuatIdent()
	s := float32(1)
	if node.Translation != nil {
		t = mgl32.Vec3(*node.Translation)
	}
	if node.Rotation != nil {
		q = gltfQuat(*node.Rotation).Normalize()
	}
	if node.Scale != nil {
		s = (node.Scale[0] + node.Scale[1] + node.Scale[2]) / 3
	}
	return common.NewTSR(t, s, q)
}

func gltfRestFromInverseBind(ibm [16]float32) (common.TSR, bool) {
	var m [16]float32
	if !common.Invert4(m[:], ibm[:]) {
		return common.TSR{}, false
	}
	t, q, s := common.DecomposeMatrix(m[:])
	return common.NewTSR(t, s, q), true
}

// gltfQuat converts a glTF x, y, z, w quaternion.
func gltfQuat(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}
