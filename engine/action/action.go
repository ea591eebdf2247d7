package action

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
)

const (
	// ParamTSR is the params key of the object-level transform channel.
	ParamTSR = "tsr"

	// BakedSuffix marks the baked variant of an action name.
	BakedSuffix = "_BAKED"

	// TSRStride is the number of floats in one packed TSR sample.
	TSRStride = 8
)

var boneExp = regexp.MustCompile(`pose\.bones\["(.+?)"\]`)

// Curve is one authored channel of an action.
type Curve struct {
	DataPath   string // e.g. location, rotation_quaternion, pose.bones["Hip"].scale, volume
	ArrayIndex int
	Keyframes  []curve.Keyframe
}

// RawAction is an action as authored, before compilation.
type RawAction struct {
	Name       string
	Source     string // identifier of the asset that declared the action
	FrameRange [2]float64
	Curves     []Curve
}

// Action is an immutable compiled animation clip. Slices returned by its
// getters are shared and must not be modified.
type Action struct {
	name       string
	source     string
	frameRange [2]float64
	step       float64
	numSamples int
	numCurves  int
	params     map[string][]float32
	bones      map[string][]float32
	blended    []bool
}

// Compile samples every curve of raw and packs the results into per-sample
// TSR records (object-level and per-bone) and scalar parameter arrays.
//
// Parameters:
//   - raw: the authored action
//   - opts: curve sampling options
//
// Returns:
//   - *Action: the compiled action
//   - error: ErrFrameRange, ErrChannelIndex, or a sampling error wrapped with the curve's data path
func Compile(raw RawAction, opts curve.Options) (*Action, error) {
	start, end := raw.FrameRange[0], raw.FrameRange[1]
	if end < start {
		return nil, fmt.Errorf("action %q: %w: [%v, %v]", raw.Name, ErrFrameRange, start, end)
	}

	n := curve.NumSamples(start, end, opts.FrameSteps)
	a := &Action{
		name:       raw.Name,
		source:     raw.Source,
		frameRange: raw.FrameRange,
		step:       opts.Step(),
		numSamples: n,
		numCurves:  len(raw.Curves),
		params:     make(map[string][]float32),
		bones:      make(map[string][]float32),
		blended:    make([]bool, n),
	}

	type scaleAcc struct {
		sum    []float32
		count  int
		target []float32
	}
	scales := make(map[string]*scaleAcc)

	for _, c := range raw.Curves {
		if w := channelWidth(c.DataPath); w > 0 && (c.ArrayIndex < 0 || c.ArrayIndex >= w) {
			return nil, fmt.Errorf("action %q curve %s[%d]: %w: want [0, %d)", raw.Name, c.DataPath, c.ArrayIndex, ErrChannelIndex, w)
		}

		samples, err := curve.Sample(c.Keyframes, start, end, opts)
		if err != nil {
			return nil, fmt.Errorf("action %q curve %s[%d]: %w", raw.Name, c.DataPath, c.ArrayIndex, err)
		}

		for i, b := range samples.Blended {
			a.blended[i] = a.blended[i] || b
		}

		key, storage, stride := a.storage(c.DataPath)

		if stride == TSRStride && strings.Contains(channelPath(c.DataPath), "scale") {
			acc, ok := scales[key]
			if !ok {
				acc = &scaleAcc{sum: make([]float32, n), target: storage}
				scales[key] = acc
			}
			for i, v := range samples.Values {
				acc.sum[i] += v
			}
			acc.count++
			continue
		}

		offset := storageOffset(c.DataPath, c.ArrayIndex)
		for i, v := range samples.Values {
			storage[i*stride+offset] = v
		}
	}

	// uniform scale is the mean of the animated scale channels
	for _, acc := range scales {
		for i := 0; i < n; i++ {
			acc.target[i*TSRStride+3] = acc.sum[i] / float32(acc.count)
		}
	}

	for _, arr := range a.bones {
		normalizeQuats(arr, n)
	}
	if arr, ok := a.params[ParamTSR]; ok {
		normalizeQuats(arr, n)
	}

	return a, nil
}

// storage returns a unique key for the packed array a data path writes into,
// the array itself (created with identity TSRs or zeros on first use), and the
// stride of one sample.
func (a *Action) storage(dataPath string) (string, []float32, int) {
	var (
		m    map[string][]float32
		kind string
		name string
		tsr  bool
	)

	if match := boneExp.FindStringSubmatch(dataPath); match != nil {
		m, kind, name, tsr = a.bones, "bone:", match[1], true
	} else {
		m, kind = a.params, "param:"
		switch {
		case strings.Contains(dataPath, "location"),
			strings.Contains(dataPath, "rotation_quaternion"),
			strings.Contains(dataPath, "scale"):
			name, tsr = ParamTSR, true
		default:
			name = dataPath
		}
	}

	if _, ok := m[name]; !ok {
		if tsr {
			arr := make([]float32, a.numSamples*TSRStride)
			id := common.IdentityTSR()
			for i := 0; i < a.numSamples; i++ {
				copy(arr[i*TSRStride:], id[:])
			}
			m[name] = arr
		} else {
			m[name] = make([]float32, a.numSamples)
		}
	}

	if tsr {
		return kind + name, m[name], TSRStride
	}
	return kind + name, m[name], 1
}

// channelPath strips the bone qualifier from a data path.
func channelPath(dataPath string) string {
	if loc := boneExp.FindStringIndex(dataPath); loc != nil {
		return dataPath[loc[1]:]
	}
	return dataPath
}

// channelWidth returns the number of components of a TSR channel, or 0 for a scalar param.
func channelWidth(dataPath string) int {
	path := channelPath(dataPath)
	switch {
	case strings.Contains(path, "location"), strings.Contains(path, "scale"):
		return 3
	case strings.Contains(path, "rotation_quaternion"):
		return 4
	default:
		return 0
	}
}

// storageOffset maps a channel to its component within a packed TSR sample.
// Quaternion components arrive as (w, x, y, z) and are stored as (x, y, z, w).
func storageOffset(dataPath string, arrayIndex int) int {
	path := channelPath(dataPath)
	switch {
	case strings.Contains(path, "location"):
		return arrayIndex
	case strings.Contains(path, "rotation_quaternion"):
		if arrayIndex == 0 {
			return 4 + 3
		}
		return 4 + arrayIndex - 1
	case strings.Contains(path, "scale"):
		return 3
	default:
		return 0
	}
}

func normalizeQuats(arr []float32, n int) {
	for i := 0; i < n; i++ {
		q := arr[i*TSRStride+4 : i*TSRStride+8]
		nq := mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}.Normalize()
		q[0], q[1], q[2], q[3] = nq.V[0], nq.V[1], nq.V[2], nq.W
	}
}

func (a *Action) Name() string {
	return a.name
}

// DisplayName returns the name without the baked suffix.
func (a *Action) DisplayName() string {
	return StripBakedSuffix(a.name)
}

func (a *Action) Source() string {
	return a.source
}

// FrameRange returns the first and last frame.
func (a *Action) FrameRange() (start, end float64) {
	return a.frameRange[0], a.frameRange[1]
}

// Step returns the sampling resolution in frames.
func (a *Action) Step() float64 {
	return a.step
}

func (a *Action) NumSamples() int {
	return a.numSamples
}

func (a *Action) NumCurves() int {
	return a.numCurves
}

// Blended reports per sample whether playback interpolates toward the next sample.
func (a *Action) Blended() []bool {
	return a.blended
}

// Param returns the packed samples of an object-level channel.
func (a *Action) Param(key string) ([]float32, bool) {
	arr, ok := a.params[key]
	return arr, ok
}

// ParamNames returns the sorted object-level channel keys.
func (a *Action) ParamNames() []string {
	return sortedKeys(a.params)
}

// Bone returns the packed TSR samples of a bone.
func (a *Action) Bone(name string) ([]float32, bool) {
	arr, ok := a.bones[name]
	return arr, ok
}

// BoneNames returns the sorted names of the bones this action drives.
func (a *Action) BoneNames() []string {
	return sortedKeys(a.bones)
}

func (a *Action) NumBones() int {
	return len(a.bones)
}

// BoneTSR returns the TSR of a bone at a sample, or identity if the bone is undriven.
//
// Parameters:
//   - name: the bone name
//   - sample: the sample index
//
// Returns:
//   - common.TSR: the bone's basis transform at that sample
func (a *Action) BoneTSR(name string, sample int) common.TSR {
	arr, ok := a.bones[name]
	if !ok {
		return common.IdentityTSR()
	}
	var tsr common.TSR
	copy(tsr[:], arr[sample*TSRStride:(sample+1)*TSRStride])
	return tsr
}

// ObjectTSR returns the object-level TSR at a sample, or identity when the
// action has no transform channel.
func (a *Action) ObjectTSR(sample int) common.TSR {
	arr, ok := a.params[ParamTSR]
	if !ok {
		return common.IdentityTSR()
	}
	var tsr common.TSR
	copy(tsr[:], arr[sample*TSRStride:(sample+1)*TSRStride])
	return tsr
}

// StripBakedSuffix removes BakedSuffix from the end of name.
func StripBakedSuffix(name string) string {
	return strings.TrimSuffix(name, BakedSuffix)
}

func sortedKeys(m map[string][]float32) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
