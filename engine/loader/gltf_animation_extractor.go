package loader

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/action"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
)

// gltfClip is one imported action. Bone clips animate rig joints; object clips animate one
// non-joint node and carry its index.
type gltfClip struct {
	raw  action.RawAction
	node int   // -1 for bone clips
	rigs []int // skins whose joints the clip animates
}

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser    gltfParser
	framerate float64
}

// gltfAnimationExtractor converts glTF animations into authored actions.
//
// Joint channels are rewritten as deltas from the joint's local rest, which is what the
// pose compositor expects of bone curves. Channels on other nodes become one object-level
// action per node, named "<animation>_<node>".
type gltfAnimationExtractor interface {
	// ExtractClips converts one animation.
	//
	// Parameters:
	//   - animIndex: the index of the animation
	//   - rigs: the rigs whose joints map channels to bones
	//
	// Returns:
	//   - []gltfClip: the bone clip (if any joint is animated) followed by the object clips
	//   - error: error if a sampler cannot be read
	ExtractClips(animIndex int, rigs []*gltfRig) ([]gltfClip, error)

	// ExtractAllClips converts every animation in the document.
	//
	// Parameters:
	//   - rigs: the rigs whose joints map channels to bones
	//
	// Returns:
	//   - []gltfClip: all clips, in animation order
	//   - error: error if any animation fails
	ExtractAllClips(rigs []*gltfRig) ([]gltfClip, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

func newGLTFAnimationExtractor(parser gltfParser, framerate float64) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser, framerate: framerate}
}

func (e *gltfAnimationExtractorImpl) ExtractAllClips(rigs []*gltfRig) ([]gltfClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	var clips []gltfClip
	for i := range doc.Animations {
		c, err := e.ExtractClips(i, rigs)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		clips = append(clips, c...)
	}
	return clips, nil
}

func (e *gltfAnimationExtractorImpl) ExtractClips(animIndex int, rigs []*gltfRig) ([]gltfClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return nil, fmt.Errorf("animation index %d out of range", animIndex)
	}
	anim := &doc.Animations[animIndex]
	name := common.Coalesce(anim.Name, fmt.Sprintf("animation_%d", animIndex))

	bones := gltfClip{node: -1, raw: action.RawAction{Name: name}}
	objects := make(map[int]*gltfClip)
	var objectOrder []int
	rigSeen := make(map[int]bool)

	lo, hi := math.Inf(1), math.Inf(-1)

	for i := range anim.Channels {
		ch := &anim.Channels[i]
		if ch.Target.Node == nil || ch.Target.Path == gltfAnimPathWeights {
			continue
		}
		node := *ch.Target.Node
		if node < 0 || node >= len(doc.Nodes) {
			return nil, fmt.Errorf("animation %q channel %d: invalid node %d", name, i, node)
		}
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: invalid sampler index %d", name, i, ch.Sampler)
		}

		track, err := e.readTrack(&anim.Samplers[ch.Sampler], ch.Target.Path)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: %w", name, i, err)
		}
		if len(track.frames) == 0 {
			continue
		}
		lo = math.Min(lo, track.frames[0])
		hi = math.Max(hi, track.frames[len(track.frames)-1])

		if rig, bone, ok := findJoint(rigs, node); ok {
			track.toBasis(ch.Target.Path, rig.localRest[node])
			bones.raw.Curves = append(bones.raw.Curves, track.curves(fmt.Sprintf(`pose.bones[%q].`, bone), ch.Target.Path)...)
			if !rigSeen[rig.skin] {
				rigSeen[rig.skin] = true
				bones.rigs = append(bones.rigs, rig.skin)
			}
			continue
		}

		obj, ok := objects[node]
		if !ok {
			nodeName := common.Coalesce(doc.Nodes[node].Name, fmt.Sprintf("node_%d", node))
			obj = &gltfClip{node: node, raw: action.RawAction{Name: name + "_" + nodeName}}
			objects[node] = obj
			objectOrder = append(objectOrder, node)
		}
		obj.raw.Curves = append(obj.raw.Curves, track.curves("", ch.Target.Path)...)
	}

	if math.IsInf(lo, 1) {
		return nil, nil
	}

	var clips []gltfClip
	if len(bones.raw.Curves) > 0 {
		bones.raw.FrameRange = [2]float64{lo, hi}
		clips = append(clips, bones)
	}
	for _, node := range objectOrder {
		obj := objects[node]
		obj.raw.FrameRange = [2]float64{lo, hi}
		obj.raw.Curves = append(obj.raw.Curves, restCurves(obj.raw.Curves, gltfNodeTSR(&doc.Nodes[node]), lo)...)
		clips = append(clips, *obj)
	}
	return clips, nil
}

func findJoint(rigs []*gltfRig, node int) (*gltfRig, string, bool) {
	for _, rig := range rigs {
		if bone, ok := rig.boneNames[node]; ok {
			return rig, bone, true
		}
	}
	return nil, "", false
}

// gltfTrack is one sampler's keys converted to frames, with CUBICSPLINE tangents split out.
type gltfTrack struct {
	interp curve.Interpolation
	frames []float64
	values [][4]float32
	in     [][4]float32 // tangents per second, CUBICSPLINE only
	out    [][4]float32
	width  int
	fps    float64
}

func (e *gltfAnimationExtractorImpl) readTrack(s *gltfAnimSampler, path string) (*gltfTrack, error) {
	times, err := e.parser.ReadScalarAccessor(s.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read timestamps: %w", err)
	}

	var raw [][4]float32
	width := 3
	switch path {
	case gltfAnimPathTranslation, gltfAnimPathScale:
		v3, err := e.parser.ReadVec3Accessor(s.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s values: %w", path, err)
		}
		raw = make([][4]float32, len(v3))
		for i, v := range v3 {
			raw[i] = [4]float32{v[0], v[1], v[2], 0}
		}
	case gltfAnimPathRotation:
		if raw, err = e.parser.ReadVec4Accessor(s.Output); err != nil {
			return nil, fmt.Errorf("failed to read rotation values: %w", err)
		}
		width = 4
	default:
		return nil, fmt.Errorf("unsupported target path %q", path)
	}

	t := &gltfTrack{width: width, fps: e.framerate}
	switch s.Interpolation {
	case gltfInterpolationStep:
		t.interp = curve.InterpConstant
	case gltfInterpolationCubicSpline:
		t.interp = curve.InterpBezier
	case "", gltfInterpolationLinear:
		t.interp = curve.InterpLinear
	default:
		return nil, fmt.Errorf("unsupported interpolation %q", s.Interpolation)
	}

	n := len(times)
	if t.interp == curve.InterpBezier {
		n = min(n, len(raw)/3)
		t.in, t.values, t.out = make([][4]float32, n), make([][4]float32, n), make([][4]float32, n)
		for i := range n {
			t.in[i], t.values[i], t.out[i] = raw[3*i], raw[3*i+1], raw[3*i+2]
		}
	} else {
		n = min(n, len(raw))
		t.values = raw[:n]
	}

	t.frames = make([]float64, n)
	for i := range n {
		t.frames[i] = float64(times[i]) * e.framerate
	}
	return t, nil
}

// toBasis rewrites the track relative to the joint's local rest.
func (t *gltfTrack) toBasis(path string, rest common.TSR) {
	inv := rest.Rotation().Conjugate()
	s := rest.Scale()
	if s == 0 {
		s = 1
	}

	apply := func(vs [][4]float32, isTangent bool) {
		for i, v := range vs {
			switch path {
			case gltfAnimPathTranslation:
				p := mgl32.Vec3{v[0], v[1], v[2]}
				if !isTangent {
					p = p.Sub(rest.Translation())
				}
				p = inv.Rotate(p).Mul(1 / s)
				vs[i] = [4]float32{p[0], p[1], p[2], 0}
			case gltfAnimPathRotation:
				q := inv.Mul(gltfQuat(v))
				vs[i] = [4]float32{q.V[0], q.V[1], q.V[2], q.W}
			case gltfAnimPathScale:
				vs[i] = [4]float32{v[0] / s, v[1] / s, v[2] / s, 0}
			}
		}
	}

	t.values = append([][4]float32(nil), t.values...)
	apply(t.values, false)
	if t.in != nil {
		apply(t.in, true)
		apply(t.out, true)
	}
}

// curves splits the track into per-component curves under the given data path prefix.
func (t *gltfTrack) curves(prefix, path string) []action.Curve {
	var channel string
	// source component -> array index
	index := []int{0, 1, 2}
	switch path {
	case gltfAnimPathTranslation:
		channel = "location"
	case gltfAnimPathScale:
		channel = "scale"
	case gltfAnimPathRotation:
		channel = "rotation_quaternion"
		index = []int{1, 2, 3, 0}
	}

	out := make([]action.Curve, t.width)
	for c := range t.width {
		keys := make([]curve.Keyframe, len(t.frames))
		for k, f := range t.frames {
			v := float64(t.values[k][c])
			keys[k] = curve.Keyframe{
				Time:          f,
				Value:         v,
				Interpolation: t.interp,
				LeftHandle:    curve.Point{X: f, Y: v},
				RightHandle:   curve.Point{X: f, Y: v},
			}
			if t.interp == curve.InterpBezier {
				t.setHandles(keys, k, c)
			}
		}
		out[c] = action.Curve{DataPath: prefix + channel, ArrayIndex: index[c], Keyframes: keys}
	}
	return out
}

// setHandles places Bezier handles a third of the neighbouring interval away, following the
// Hermite tangents. Tangents are per second, so the value offset uses the interval in seconds.
func (t *gltfTrack) setHandles(keys []curve.Keyframe, k, c int) {
	n := len(t.frames)
	prev, next := 0.0, 0.0
	if k > 0 {
		prev = t.frames[k] - t.frames[k-1]
	}
	if k < n-1 {
		next = t.frames[k+1] - t.frames[k]
	}
	if prev == 0 {
		prev = next
	}
	if next == 0 {
		next = prev
	}

	f, v := keys[k].Time, keys[k].Value
	keys[k].LeftHandle = curve.Point{X: f - prev/3, Y: v - float64(t.in[k][c])*(prev/t.fps)/3}
	keys[k].RightHandle = curve.Point{X: f + next/3, Y: v + float64(t.out[k][c])*(next/t.fps)/3}
}

// restCurves holds the node's rest value on every object channel the animation leaves unkeyed.
func restCurves(existing []action.Curve, rest common.TSR, frame float64) []action.Curve {
	keyed := make(map[string]bool, len(existing))
	for _, c := range existing {
		keyed[c.DataPath] = true
	}

	t, q, s := rest.Translation(), rest.Rotation(), rest.Scale()
	constant := func(path string, index int, v float32) action.Curve {
		return action.Curve{
			DataPath:   path,
			ArrayIndex: index,
			Keyframes: []curve.Keyframe{{
				Time:          frame,
				Value:         float64(v),
				Interpolation: curve.InterpConstant,
				LeftHandle:    curve.Point{X: frame, Y: float64(v)},
				RightHandle:   curve.Point{X: frame, Y: float64(v)},
			}},
		}
	}

	var out []action.Curve
	if !keyed["location"] {
		for i := range 3 {
			out = append(out, constant("location", i, t[i]))
		}
	}
	if !keyed["rotation_quaternion"] {
		out = append(out,
			constant("rotation_quaternion", 0, q.W),
			constant("rotation_quaternion", 1, q.V[0]),
			constant("rotation_quaternion", 2, q.V[1]),
			constant("rotation_quaternion", 3, q.V[2]),
		)
	}
	if !keyed["scale"] {
		for i := range 3 {
			out = append(out, constant("scale", i, s))
		}
	}
	return out
}
