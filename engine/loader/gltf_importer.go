package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	framerate float64
}

// gltfImporter runs the parser and extractors over one glTF/GLB document.
type gltfImporter interface {
	// Import loads a glTF/GLB file.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *importedAsset: the armatures, raw actions and objects of the document
	//   - error: error if import fails
	Import(path string) (*importedAsset, error)

	// ImportReader loads a glTF/GLB document from a stream. External buffers are not resolvable.
	//
	// Parameters:
	//   - name: the asset name used when the document has no scene name
	//   - r: the reader providing glTF/GLB data
	//
	// Returns:
	//   - *importedAsset: the imported asset data
	//   - error: error if import fails
	ImportReader(name string, r io.Reader) (*importedAsset, error)
}

var _ gltfImporter = &gltfImporterImpl{}

func newGLTFImporter(framerate float64) gltfImporter {
	return &gltfImporterImpl{framerate: framerate}
}

func (imp *gltfImporterImpl) Import(path string) (*importedAsset, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return imp.importFromParser(parser, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader) (*importedAsset, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, ""); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}
	return imp.importFromParser(parser, name)
}

func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackName string) (*importedAsset, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	skeletons := newGLTFSkeletonExtractor(parser)
	rigs, err := skeletons.ExtractAllRigs()
	if err != nil {
		return nil, fmt.Errorf("skeleton extraction failed: %w", err)
	}

	clips, err := newGLTFAnimationExtractor(parser, imp.framerate).ExtractAllClips(rigs)
	if err != nil {
		return nil, fmt.Errorf("animation extraction failed: %w", err)
	}

	out := &importedAsset{Name: gltfAssetName(doc, fallbackName)}
	for _, rig := range rigs {
		out.Armatures = append(out.Armatures, rig.armature)
	}
	for _, c := range clips {
		out.Actions = append(out.Actions, c.raw)
	}

	// one ARMATURE object per skin, defaulting to the clips that animate its joints
	for _, rig := range rigs {
		obj := Object{
			Name:     rig.armature.Name(),
			Type:     animator.EntityArmature,
			Armature: rig.armature.Name(),
			Cyclic:   true,
		}
		for _, c := range clips {
			if c.node < 0 && slices.Contains(c.rigs, rig.skin) {
				obj.Actions = append(obj.Actions, c.raw.Name)
			}
		}
		out.Objects = append(out.Objects, obj)
	}

	for i, node := range doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		skin := skeletons.FindSkinForMesh(*node.Mesh)
		if skin < 0 || skin >= len(rigs) {
			continue
		}
		out.Objects = append(out.Objects, Object{
			Name:     common.Coalesce(node.Name, fmt.Sprintf("mesh_%d", i)),
			Type:     animator.EntityMesh,
			Armature: rigs[skin].armature.Name(),
			Cyclic:   true,
		})
	}

	// one EMPTY object per animated non-joint node
	byNode := make(map[int]int)
	for _, c := range clips {
		if c.node < 0 {
			continue
		}
		idx, ok := byNode[c.node]
		if !ok {
			idx = len(out.Objects)
			byNode[c.node] = idx
			out.Objects = append(out.Objects, Object{
				Name:   common.Coalesce(doc.Nodes[c.node].Name, fmt.Sprintf("node_%d", c.node)),
				Type:   animator.EntityEmpty,
				Cyclic: true,
			})
		}
		out.Objects[idx].Actions = append(out.Objects[idx].Actions, c.raw.Name)
	}

	return out, nil
}

func gltfAssetName(doc *gltfDocument, fallback string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	return common.Coalesce(fallback, "unnamed_asset")
}
