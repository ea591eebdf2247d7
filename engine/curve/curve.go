package curve

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Interpolation is the outgoing interpolation mode of a keyframe.
type Interpolation int

const (
	InterpBezier Interpolation = iota
	InterpLinear
	InterpConstant
)

const (
	// DefaultTolerance is the Bezier root finder tolerance, in frames.
	DefaultTolerance = 0.02
	// DefaultMaxIterations bounds the Bezier root finder.
	DefaultMaxIterations = 64

	// exactEpsilon decides when a sample lands exactly on a keyframe.
	exactEpsilon = 1e-9
)

func (i Interpolation) String() string {
	switch i {
	case InterpBezier:
		return "BEZIER"
	case InterpLinear:
		return "LINEAR"
	case InterpConstant:
		return "CONSTANT"
	default:
		return "Interpolation(" + strconv.Itoa(int(i)) + ")"
	}
}

// ParseInterpolation parses a mode name (BEZIER, LINEAR, CONSTANT) or its integer code.
//
// Parameters:
//   - s: the mode name or code, case-insensitive
//
// Returns:
//   - Interpolation: the parsed mode
//   - error: ErrUnknownInterpolation if s names no mode
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BEZIER", "0":
		return InterpBezier, nil
	case "LINEAR", "1":
		return InterpLinear, nil
	case "CONSTANT", "2":
		return InterpConstant, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInterpolation, s)
}

// Point is a 2D control point in (frame, value) space.
type Point struct {
	X, Y float64
}

// Keyframe is a single authored curve key. The handles are only read when the
// governing interpolation is InterpBezier.
type Keyframe struct {
	Time          float64
	Value         float64
	Interpolation Interpolation
	LeftHandle    Point
	RightHandle   Point
}

// Options controls curve sampling.
type Options struct {
	FrameSteps    int     // samples per frame
	Tolerance     float64 // Bezier root finder tolerance
	MaxIterations int     // Bezier root finder iteration cap
}

// DefaultOptions returns one sample per frame and the default Bezier settings.
func DefaultOptions() Options {
	return Options{
		FrameSteps:    1,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	}
}

func (o Options) normalized() Options {
	if o.FrameSteps < 1 {
		o.FrameSteps = 1
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxIterations < 1 {
		o.MaxIterations = DefaultMaxIterations
	}
	return o
}

// Step returns the sampling resolution in frames.
func (o Options) Step() float64 {
	return 1 / float64(o.normalized().FrameSteps)
}

// Samples is a dense, uniformly stepped rendition of one curve.
type Samples struct {
	Values  []float32
	Blended []bool // true where playback should interpolate toward the next sample
}

// NumSamples returns the number of samples covering [start, end] at the given
// samples-per-frame resolution: (end-start)*steps + 1.
//
// Parameters:
//   - start: first frame
//   - end: last frame
//   - steps: samples per frame
//
// Returns:
//   - int: the sample count, at least 1
func NumSamples(start, end float64, steps int) int {
	if steps < 1 {
		steps = 1
	}
	n := int(math.Round((end-start)*float64(steps))) + 1
	if n < 1 {
		return 1
	}
	return n
}

// Sample evaluates keys at every step of [start, end]. Values before the first
// key and after the last are held flat. Between two keys the outgoing mode of
// the earlier key applies. A key sharing its rounded frame with the next key is
// skipped.
//
// Parameters:
//   - keys: keyframes ordered by time
//   - start: first sampled frame
//   - end: last sampled frame
//   - opts: sampling options
//
// Returns:
//   - Samples: the sampled values and blend flags
//   - error: ErrNoKeyframes or ErrUnknownInterpolation
func Sample(keys []Keyframe, start, end float64, opts Options) (Samples, error) {
	if len(keys) == 0 {
		return Samples{}, ErrNoKeyframes
	}
	for i, k := range keys {
		if k.Interpolation < InterpBezier || k.Interpolation > InterpConstant {
			return Samples{}, fmt.Errorf("keyframe %d: %w: %d", i, ErrUnknownInterpolation, int(k.Interpolation))
		}
	}

	opts = opts.normalized()
	keys = dropZeroDuration(keys)

	n := NumSamples(start, end, opts.FrameSteps)
	step := opts.Step()
	out := Samples{
		Values:  make([]float32, n),
		Blended: make([]bool, n),
	}

	first, last := keys[0], keys[len(keys)-1]

	for i := 0; i < n; i++ {
		x := start + float64(i)*step

		switch {
		case x < first.Time-exactEpsilon:
			out.Values[i] = float32(first.Value)
		case x >= last.Time-exactEpsilon:
			out.Values[i] = float32(last.Value)
			out.Blended[i] = math.Abs(x-last.Time) <= exactEpsilon && last.Interpolation != InterpConstant
		default:
			// first key with Time > x, minus one
			j := sort.Search(len(keys), func(k int) bool { return keys[k].Time > x+exactEpsilon }) - 1
			a, b := keys[j], keys[j+1]
			out.Values[i] = float32(evalSegment(a, b, x, opts))
			out.Blended[i] = a.Interpolation != InterpConstant
		}
	}

	return out, nil
}

func evalSegment(a, b Keyframe, x float64, opts Options) float64 {
	if math.Abs(x-a.Time) <= exactEpsilon {
		return a.Value
	}

	switch a.Interpolation {
	case InterpConstant:
		return a.Value
	case InterpLinear:
		k := (b.Value - a.Value) / (b.Time - a.Time)
		return a.Value + k*(x-a.Time)
	default:
		v1 := Point{a.Time, a.Value}
		v4 := Point{b.Time, b.Value}
		v2, v3 := CorrectHandles(v1, a.RightHandle, b.LeftHandle, v4)
		t := findRoot(x, v1.X, v2.X, v3.X, v4.X, opts.Tolerance, opts.MaxIterations)
		return bezierParametric(t, v1.Y, v2.Y, v3.Y, v4.Y)
	}
}

// dropZeroDuration removes every key whose rounded frame equals the next key's.
func dropZeroDuration(keys []Keyframe) []Keyframe {
	out := make([]Keyframe, 0, len(keys))
	for i := 0; i < len(keys)-1; i++ {
		if math.Round(keys[i].Time) == math.Round(keys[i+1].Time) {
			continue
		}
		out = append(out, keys[i])
	}
	return append(out, keys[len(keys)-1])
}
