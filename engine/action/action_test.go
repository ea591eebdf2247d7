package action

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
)

func constKey(t, v float64) curve.Keyframe {
	return curve.Keyframe{Time: t, Value: v, Interpolation: curve.InterpConstant}
}

func linearKey(t, v float64) curve.Keyframe {
	return curve.Keyframe{Time: t, Value: v, Interpolation: curve.InterpLinear}
}

func TestCompile_ObjectTransform(t *testing.T) {
	raw := RawAction{
		Name:       "Walk",
		Source:     "hero.yaml",
		FrameRange: [2]float64{0, 2},
		Curves: []Curve{
			{DataPath: "location", ArrayIndex: 0, Keyframes: []curve.Keyframe{linearKey(0, 0), linearKey(2, 4)}},
			{DataPath: "rotation_quaternion", ArrayIndex: 0, Keyframes: []curve.Keyframe{constKey(0, 2)}},
			{DataPath: "rotation_quaternion", ArrayIndex: 3, Keyframes: []curve.Keyframe{constKey(0, 2)}},
			{DataPath: "scale", ArrayIndex: 0, Keyframes: []curve.Keyframe{constKey(0, 2)}},
			{DataPath: "scale", ArrayIndex: 1, Keyframes: []curve.Keyframe{constKey(0, 4)}},
		},
	}

	a, err := Compile(raw, curve.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "Walk", a.Name())
	assert.Equal(t, "hero.yaml", a.Source())
	assert.Equal(t, 3, a.NumSamples())
	assert.Equal(t, 5, a.NumCurves())
	assert.Equal(t, 1.0, a.Step())
	assert.Zero(t, a.NumBones())
	assert.Equal(t, []string{ParamTSR}, a.ParamNames())

	h := float32(math.Sqrt2 / 2)
	want := []float32{
		0, 0, 0, 3, 0, 0, h, h,
		2, 0, 0, 3, 0, 0, h, h,
		4, 0, 0, 3, 0, 0, h, h,
	}
	got, ok := a.Param(ParamTSR)
	require.True(t, ok)
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("tsr mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []bool{true, true, true}, a.Blended())

	tsr := a.ObjectTSR(1)
	assert.InDelta(t, 2, tsr.Translation()[0], 1e-6)
}

func TestCompile_Bones(t *testing.T) {
	raw := RawAction{
		Name:       "Wave",
		FrameRange: [2]float64{1, 3},
		Curves: []Curve{
			{DataPath: `pose.bones["Hip"].location`, ArrayIndex: 1, Keyframes: []curve.Keyframe{linearKey(1, 0), linearKey(3, 2)}},
			{DataPath: `pose.bones["Arm.L"].rotation_quaternion`, ArrayIndex: 1, Keyframes: []curve.Keyframe{constKey(1, 0)}},
		},
	}

	a, err := Compile(raw, curve.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Arm.L", "Hip"}, a.BoneNames())
	assert.Empty(t, a.ParamNames())

	for i := 0; i < 3; i++ {
		hip := a.BoneTSR("Hip", i)
		want := common.TSR{0, float32(i), 0, 1, 0, 0, 0, 1}
		assert.Equal(t, want, hip, "sample %d", i)
	}
	assert.Equal(t, common.IdentityTSR(), a.BoneTSR("Arm.L", 0))
	assert.Equal(t, common.IdentityTSR(), a.BoneTSR("Missing", 0))
}

func TestCompile_ScalarParams(t *testing.T) {
	raw := RawAction{
		Name:       "Fade",
		FrameRange: [2]float64{0, 2},
		Curves: []Curve{
			{DataPath: "volume", Keyframes: []curve.Keyframe{constKey(0, 0.5)}},
		},
	}

	a, err := Compile(raw, curve.DefaultOptions())
	require.NoError(t, err)

	vol, ok := a.Param("volume")
	require.True(t, ok)
	assert.Equal(t, []float32{0.5, 0.5, 0.5}, vol)
	assert.Equal(t, []bool{false, false, false}, a.Blended())

	_, ok = a.Param("pitch")
	assert.False(t, ok)
}

func TestCompile_FrameSteps(t *testing.T) {
	opts := curve.DefaultOptions()
	opts.FrameSteps = 2

	a, err := Compile(RawAction{
		Name:       "Half",
		FrameRange: [2]float64{0, 1},
		Curves:     []Curve{{DataPath: "location", Keyframes: []curve.Keyframe{linearKey(0, 0), linearKey(1, 1)}}},
	}, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, a.NumSamples())
	assert.Equal(t, 0.5, a.Step())
	assert.InDelta(t, 0.5, a.ObjectTSR(1).Translation()[0], 1e-6)
}

func TestCompile_Empty(t *testing.T) {
	a, err := Compile(RawAction{Name: "Nothing", FrameRange: [2]float64{1, 4}}, curve.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, a.NumCurves())
	assert.Equal(t, 4, a.NumSamples())
	assert.Equal(t, common.IdentityTSR(), a.ObjectTSR(0))
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(RawAction{Name: "Bad", FrameRange: [2]float64{5, 1}}, curve.DefaultOptions())
	assert.ErrorIs(t, err, ErrFrameRange)

	_, err = Compile(RawAction{
		Name:       "NoKeys",
		FrameRange: [2]float64{0, 1},
		Curves:     []Curve{{DataPath: "location"}},
	}, curve.DefaultOptions())
	assert.ErrorIs(t, err, curve.ErrNoKeyframes)
	assert.ErrorContains(t, err, "location[0]")
}

func TestCompile_ChannelIndex(t *testing.T) {
	tests := []struct {
		path  string
		index int
		ok    bool
	}{
		{"location", -1, false},
		{"location", 2, true},
		{"location", 3, false},
		{"rotation_quaternion", 3, true},
		{"rotation_quaternion", 4, false},
		{"rotation_quaternion", 5, false},
		{"scale", 2, true},
		{"scale", 3, false},
		{`pose.bones["hip"].location`, -2, false},
		{`pose.bones["hip"].rotation_quaternion`, 0, true},
		{"influence", 7, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s[%d]", tt.path, tt.index), func(t *testing.T) {
			a, err := Compile(RawAction{
				Name:       "Idx",
				FrameRange: [2]float64{0, 1},
				Curves:     []Curve{{DataPath: tt.path, ArrayIndex: tt.index, Keyframes: []curve.Keyframe{constKey(0, 7)}}},
			}, curve.DefaultOptions())
			if tt.ok {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrChannelIndex)
			assert.Nil(t, a)
		})
	}

	// an out of range location never reaches the scale component
	_, err := Compile(RawAction{
		Name:       "Clobber",
		FrameRange: [2]float64{0, 1},
		Curves: []Curve{
			{DataPath: "scale", ArrayIndex: 0, Keyframes: []curve.Keyframe{constKey(0, 2)}},
			{DataPath: "location", ArrayIndex: 3, Keyframes: []curve.Keyframe{constKey(0, 7)}},
		},
	}, curve.DefaultOptions())
	assert.ErrorIs(t, err, ErrChannelIndex)
	assert.ErrorContains(t, err, "location[3]")
}

func TestStripBakedSuffix(t *testing.T) {
	assert.Equal(t, "Run", StripBakedSuffix("Run_BAKED"))
	assert.Equal(t, "Run", StripBakedSuffix("Run"))
	assert.Equal(t, "Run_BAKED", StripBakedSuffix("Run_BAKED_BAKED"))

	a, err := Compile(RawAction{Name: "Run" + BakedSuffix}, curve.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Run", a.DisplayName())
}
