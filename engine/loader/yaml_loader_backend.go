package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/action"
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

type yamlAsset struct {
	Name      string         `yaml:"name"`
	Armatures []yamlArmature `yaml:"armatures"`
	Actions   []yamlAction   `yaml:"actions"`
	Objects   []yamlObject   `yaml:"objects"`
}

type yamlArmature struct {
	Name  string     `yaml:"name"`
	Bones []yamlBone `yaml:"bones"`
}

type yamlBone struct {
	Name        string      `yaml:"name"`
	Parent      string      `yaml:"parent"`
	Translation [3]float32  `yaml:"translation"`
	Rotation    *[4]float32 `yaml:"rotation"` // x, y, z, w
	Scale       *float32    `yaml:"scale"`
}

type yamlAction struct {
	Name       string      `yaml:"name"`
	FrameRange [2]float64  `yaml:"frame_range"`
	Curves     []yamlCurve `yaml:"curves"`
}

type yamlCurve struct {
	DataPath   string         `yaml:"data_path"`
	ArrayIndex int            `yaml:"array_index"`
	Keyframes  []yamlKeyframe `yaml:"keyframes"`
}

type yamlKeyframe struct {
	Time          float64     `yaml:"time"`
	Value         float64     `yaml:"value"`
	Interpolation *string     `yaml:"interpolation"` // missing means BEZIER
	Left          *[2]float64 `yaml:"left"`
	Right         *[2]float64 `yaml:"right"`
}

type yamlObject struct {
	Name            string               `yaml:"name"`
	Type            string               `yaml:"type"`
	Armature        string               `yaml:"armature"`
	Actions         []string             `yaml:"actions"`
	Cyclic          bool                 `yaml:"cyclic"`
	Physics         bool                 `yaml:"physics"`
	Sound           string               `yaml:"sound"`
	VertexAnims     []yamlVertexAnim     `yaml:"vertex_anims"`
	ParticleSystems []yamlParticleSystem `yaml:"particle_systems"`
}

type yamlVertexAnim struct {
	Name       string  `yaml:"name"`
	FrameStart float64 `yaml:"frame_start"`
	FrameEnd   float64 `yaml:"frame_end"`
}

type yamlParticleSystem struct {
	Name       string  `yaml:"name"`
	Type       string  `yaml:"type"`
	FrameStart float64 `yaml:"frame_start"`
	FrameEnd   float64 `yaml:"frame_end"`
	Lifetime   float64 `yaml:"lifetime"`
	Cyclic     bool    `yaml:"cyclic"`
	Count      int     `yaml:"count"`
}

// yamlLoaderBackend reads the oxy-anim YAML asset format.
type yamlLoaderBackend struct{}

var _ loaderBackend = &yamlLoaderBackend{}

func newYAMLLoaderBackend() loaderBackend {
	return &yamlLoaderBackend{}
}

func (b *yamlLoaderBackend) Load(path string) (*importedAsset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return b.LoadReader(name, f)
}

func (b *yamlLoaderBackend) LoadReader(name string, r io.Reader) (*importedAsset, error) {
	var doc yamlAsset
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode YAML asset: %w", err)
	}

	out := &importedAsset{Name: common.Coalesce(doc.Name, name)}

	known := make(map[string]bool, len(doc.Armatures))
	for _, ya := range doc.Armatures {
		a, err := ya.toArmature()
		if err != nil {
			return nil, err
		}
		known[a.Name()] = true
		out.Armatures = append(out.Armatures, a)
	}

	for _, ya := range doc.Actions {
		raw, err := ya.toRawAction()
		if err != nil {
			return nil, err
		}
		out.Actions = append(out.Actions, raw)
	}

	for _, yo := range doc.Objects {
		obj, err := yo.toObject()
		if err != nil {
			return nil, err
		}
		if obj.Armature != "" && !known[obj.Armature] {
			return nil, fmt.Errorf("object %q: %w: %q", obj.Name, ErrUnknownArmature, obj.Armature)
		}
		out.Objects = append(out.Objects, obj)
	}

	return out, nil
}

func (ya yamlArmature) toArmature() (*skeleton.Armature, error) {
	bones := make([]skeleton.Bone, len(ya.Bones))
	for i, yb := range ya.Bones {
		rot := mgl32.QuatIdent()
		if yb.Rotation != nil {
			rot = mgl32.Quat{W: yb.Rotation[3], V: mgl32.Vec3{yb.Rotation[0], yb.Rotation[1], yb.Rotation[2]}}
		}
		scale := float32(1)
		if yb.Scale != nil {
			scale = *yb.Scale
		}
		bones[i] = skeleton.Bone{
			Name:   yb.Name,
			Parent: yb.Parent,
			Rest:   common.NewTSR(mgl32.Vec3(yb.Translation), scale, rot),
		}
	}
	a, err := skeleton.NewArmature(ya.Name, bones)
	if err != nil {
		return nil, fmt.Errorf("armature %q: %w", ya.Name, err)
	}
	return a, nil
}

func (ya yamlAction) toRawAction() (action.RawAction, error) {
	raw := action.RawAction{
		Name:       ya.Name,
		FrameRange: ya.FrameRange,
		Curves:     make([]action.Curve, len(ya.Curves)),
	}
	for i, yc := range ya.Curves {
		keys := make([]curve.Keyframe, len(yc.Keyframes))
		for j, yk := range yc.Keyframes {
			interp := curve.InterpBezier
			if yk.Interpolation != nil {
				var err error
				if interp, err = curve.ParseInterpolation(*yk.Interpolation); err != nil {
					return action.RawAction{}, fmt.Errorf("action %q curve %s[%d] key %d: %w", ya.Name, yc.DataPath, yc.ArrayIndex, j, err)
				}
			}
			keys[j] = curve.Keyframe{
				Time:          yk.Time,
				Value:         yk.Value,
				Interpolation: interp,
				LeftHandle:    handle(yk.Left, yk.Time, yk.Value),
				RightHandle:   handle(yk.Right, yk.Time, yk.Value),
			}
		}
		raw.Curves[i] = action.Curve{DataPath: yc.DataPath, ArrayIndex: yc.ArrayIndex, Keyframes: keys}
	}
	return raw, nil
}

// handle defaults a missing Bezier handle to the key itself.
func handle(h *[2]float64, time, value float64) curve.Point {
	if h == nil {
		return curve.Point{X: time, Y: value}
	}
	return curve.Point{X: h[0], Y: h[1]}
}

func (yo yamlObject) toObject() (Object, error) {
	typ, err := parseEntityType(yo.Type)
	if err != nil {
		return Object{}, fmt.Errorf("object %q: %w", yo.Name, err)
	}
	obj := Object{
		Name:     yo.Name,
		Type:     typ,
		Armature: yo.Armature,
		Actions:  yo.Actions,
		Cyclic:   yo.Cyclic,
		Physics:  yo.Physics,
		Sound:    yo.Sound,
	}
	for _, va := range yo.VertexAnims {
		obj.VertexAnims = append(obj.VertexAnims, animator.VertexAnim{
			Name:       va.Name,
			FrameStart: va.FrameStart,
			FrameEnd:   va.FrameEnd,
		})
	}
	for _, ps := range yo.ParticleSystems {
		obj.ParticleSystems = append(obj.ParticleSystems, ParticleSystem{
			Name:       ps.Name,
			Type:       common.Coalesce(strings.ToUpper(ps.Type), animator.ParticleEmitter),
			FrameStart: ps.FrameStart,
			FrameEnd:   ps.FrameEnd,
			Lifetime:   ps.Lifetime,
			Cyclic:     ps.Cyclic,
			Count:      ps.Count,
		})
	}
	return obj, nil
}

func parseEntityType(s string) (animator.EntityType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "EMPTY":
		return animator.EntityEmpty, nil
	case "ARMATURE":
		return animator.EntityArmature, nil
	case "MESH":
		return animator.EntityMesh, nil
	case "SPEAKER":
		return animator.EntitySpeaker, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownObjectType, s)
}
