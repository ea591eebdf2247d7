package particles

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func TestEmitter_SetTime(t *testing.T) {
	tests := []struct {
		name   string
		cyclic bool
		sec    float64
		want   []float64
	}{
		{"before start", false, -0.1, []float64{}},
		{"first birth", false, 0, []float64{0}},
		{"mid window", false, 0.5, []float64{2, 1, 0}},
		{"after window", false, 1.1, []float64{2}},
		{"all expired", false, 1.3, []float64{}},
		{"early frame", false, 0.1, []float64{1, 0}},
		{"cyclic carries tail", true, 0.1, []float64{2, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEmitter(
				WithFrameRange(0, 10),
				WithCount(10),
				WithLifetime(3),
				WithFramerate(10),
				WithCyclic(tt.cyclic),
			)
			e.SetTime(tt.sec)

			assert.InDelta(t, tt.sec*10, e.Frame(), 1e-9)
			assert.Equal(t, len(tt.want), e.Alive())
			if diff := cmp.Diff(tt.want, e.Ages(), cmpopts.EquateApprox(0, 1e-9), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmitter_Degenerate(t *testing.T) {
	e := NewEmitter(WithCount(0))
	e.SetTime(3)
	assert.Zero(t, e.Alive())

	e = NewEmitter(WithLifetime(0))
	e.SetTime(3)
	assert.Zero(t, e.Alive())
}

func TestEmitter_AgesIsCopy(t *testing.T) {
	e := NewEmitter(WithFrameRange(0, 10), WithCount(10), WithLifetime(5), WithFramerate(10))
	e.SetTime(0.3)
	ages := e.Ages()
	ages[0] = 99
	assert.NotEqual(t, 99.0, e.Ages()[0])
}
