package animator

import (
	"math"

	"github.com/Carmen-Shannon/oxy-anim/engine/action"
)

// frameEpsilon keeps a clamped cursor strictly inside [start, start+length).
const frameEpsilon = 1e-6

// animSlot is one binding of an entity. Its payload matches its kind.
type animSlot struct {
	kind     Kind
	name     string
	playing  bool
	behavior Behavior
	speed    float64

	cff    float64
	start  float64
	length float64

	transSmoothPeriod float64
	quatSmoothPeriod  float64

	finishCallback     FinishCallback
	execFinishCallback bool

	payload any
}

// actionBinding is shared by every kind that reads a compiled action.
type actionBinding struct {
	act        *action.Action
	rangeStart float64
	rangeLen   float64
	step       float64
	blended    []bool
	numSamples int
}

type posePayload struct {
	actionBinding
	frames *action.PoseFrames
}

type objectPayload struct {
	actionBinding
	tsr []float32
}

type soundPayload struct {
	actionBinding
	volume []float32
	pitch  []float32
}

type vertexPayload struct {
	frameOffset int
}

type particlePayload struct {
	system ParticleSystem
}

func newSlot() *animSlot {
	return &animSlot{
		behavior: BehaviorFinishReset,
		speed:    1,
	}
}

func newActionBinding(a *action.Action) actionBinding {
	start, end := a.FrameRange()
	return actionBinding{
		act:        a,
		rangeStart: start,
		rangeLen:   end - start,
		step:       a.Step(),
		blended:    a.Blended(),
		numSamples: a.NumSamples(),
	}
}

// action returns the compiled action the slot reads, if any.
func (s *animSlot) action() *action.Action {
	switch p := s.payload.(type) {
	case *posePayload:
		return p.act
	case *objectPayload:
		return p.act
	case *soundPayload:
		return p.act
	}
	return nil
}

// frameInfo returns the pair of samples bracketing cff and the blend factor
// between them. The factor is 0 when the lower sample is not blended.
func (b *actionBinding) frameInfo(cff float64) (int, int, float32) {
	idx := cff - b.rangeStart
	if idx < 0 {
		idx = 0
	}
	if idx >= b.rangeLen {
		idx = b.rangeLen
	}
	idx /= b.step

	frame := int(math.Floor(idx))
	if frame > b.numSamples-1 {
		frame = b.numSamples - 1
	}
	next := min(frame+1, b.numSamples-1)

	var factor float32
	if b.blended[frame] {
		factor = float32(idx - float64(frame))
	}
	return frame, next, factor
}

// vertexFrameInfo returns the bracket into the mesh's vertex animation frames.
// A non-cyclic slot on its last frame holds the previous frame at factor 1.
func (s *animSlot) vertexFrameInfo(cff float64, offset int) (int, int, float32) {
	idx := cff - s.start
	if idx < 0 {
		idx = 0
	}
	if idx >= s.length {
		idx = s.length
	}

	frame := int(math.Floor(idx))
	next := frame + 1
	factor := float32(idx - float64(frame))

	if s.behavior != BehaviorCyclic && float64(next) == s.length {
		frame = frame - 1
		next = frame
		factor = 1
	}

	return frame + offset, next + offset, factor
}

// advance moves the cursor by elapsed seconds and applies the boundary policy.
// It reports whether the slot should be evaluated this tick.
func (s *animSlot) advance(elapsed, framerate float64) bool {
	if !s.playing && elapsed != 0 {
		return false
	}

	cff := s.cff + s.speed*elapsed*framerate
	end := s.start + s.length

	if (s.speed >= 0 && cff >= end) || (s.speed < 0 && cff < s.start) {
		s.execFinishCallback = true

		switch s.behavior {
		case BehaviorCyclic:
			if s.length <= 0 {
				cff = s.start
			} else {
				cff = s.start + floorMod(cff-s.start, s.length)
			}
		case BehaviorFinishReset:
			if s.speed >= 0 {
				cff = s.start
			} else {
				cff = end - frameEpsilon
			}
			s.playing = false
		case BehaviorFinishStop:
			if s.speed >= 0 {
				cff = end - frameEpsilon
			} else {
				cff = s.start
			}
			s.playing = false
		}
	}

	s.cff = cff
	return true
}

func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	if r >= m {
		r = 0
	}
	return r
}
