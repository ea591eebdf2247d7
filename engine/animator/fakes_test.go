package animator

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/engine/action"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
)

type fakeTransform struct {
	t       mgl32.Vec3
	q       mgl32.Quat
	s       float32
	updates int
}

func newFakeTransform() *fakeTransform {
	return &fakeTransform{q: mgl32.QuatIdent(), s: 1}
}

func (f *fakeTransform) Translation() mgl32.Vec3 { return f.t }
func (f *fakeTransform) SetTranslation(t mgl32.Vec3) { f.t = t }
func (f *fakeTransform) Rotation() mgl32.Quat { return f.q }
func (f *fakeTransform) SetRotation(q mgl32.Quat) { f.q = q }
func (f *fakeTransform) Scale() float32 { return f.s }
func (f *fakeTransform) SetScale(s float32) { f.s = s }
func (f *fakeTransform) UpdateTransform() { f.updates++ }

type fakePhysics struct {
	syncs int
	last  mgl32.Vec3
}

func (f *fakePhysics) SyncTransform(t mgl32.Vec3, _ mgl32.Quat) {
	f.syncs++
	f.last = t
}

type fakeSpeaker struct {
	volume, rate float64
	playing      bool
	stops        int
}

func (f *fakeSpeaker) SetVolume(v float64) { f.volume = v }
func (f *fakeSpeaker) SetPlaybackRate(r float64) { f.rate = r }
func (f *fakeSpeaker) IsPlaying() bool { return f.playing }
func (f *fakeSpeaker) Stop() {
	f.playing = false
	f.stops++
}

type fakeParticles struct {
	times []float64
}

func (f *fakeParticles) SetTime(sec float64) { f.times = append(f.times, sec) }

func linear(t, v float64) curve.Keyframe {
	return curve.Keyframe{Time: t, Value: v, Interpolation: curve.InterpLinear}
}

func constant(t, v float64) curve.Keyframe {
	return curve.Keyframe{Time: t, Value: v, Interpolation: curve.InterpConstant}
}

func compile(t *testing.T, name string, start, end float64, steps int, curves ...action.Curve) *action.Action {
	t.Helper()
	opts := curve.DefaultOptions()
	opts.FrameSteps = steps
	a, err := action.Compile(action.RawAction{Name: name, Source: "test", FrameRange: [2]float64{start, end}, Curves: curves}, opts)
	require.NoError(t, err)
	return a
}

// slideAction moves along X from 0 to end over frames [0, end].
func slideAction(t *testing.T, name string, end float64) *action.Action {
	return compile(t, name, 0, end, 1,
		action.Curve{DataPath: "location", ArrayIndex: 0, Keyframes: []curve.Keyframe{linear(0, 0), linear(end, end)}},
	)
}
