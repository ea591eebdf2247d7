package animator

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/action"
)

func (a *animator) Update(elapsed float64) error {
	entities := a.Entities()

	var errs []error
	for _, e := range entities {
		for i := range NumSlots {
			if err := a.animate(e, i, elapsed); err != nil {
				errs = append(errs, err)
			}
		}
	}

	// callbacks run after every slot has advanced so they never observe a half-updated tick
	for _, e := range entities {
		for i := range NumSlots {
			handleFinishCallback(e, i)
		}
	}

	return errors.Join(errs...)
}

func (a *animator) UpdateEntity(e *Entity, elapsed float64, slot int) error {
	if slot != SlotAll {
		if !validSlot(slot) {
			return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
		}
		return a.updateSlot(e, slot, elapsed)
	}

	var errs []error
	for i := range NumSlots {
		if err := a.updateSlot(e, i, elapsed); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *animator) updateSlot(e *Entity, i int, elapsed float64) error {
	err := a.animate(e, i, elapsed)
	handleFinishCallback(e, i)
	return err
}

func handleFinishCallback(e *Entity, i int) {
	s := e.slots[i]
	if s == nil {
		return
	}
	if s.finishCallback != nil && s.execFinishCallback {
		s.execFinishCallback = false
		s.finishCallback(e, i)
	}
}

func (a *animator) animate(e *Entity, i int, elapsed float64) error {
	s := e.slots[i]
	if s == nil {
		return nil
	}
	if !s.advance(elapsed, a.framerate) {
		return nil
	}
	return a.evaluate(e, i, s, elapsed)
}

// evaluate writes the pose of s at its current frame into the entity and its collaborators.
func (a *animator) evaluate(e *Entity, i int, s *animSlot, elapsed float64) error {
	switch s.kind {
	case KindArmature, KindSkeletal:
		p, ok := s.payload.(*posePayload)
		if !ok {
			break
		}
		frame, next, factor := p.frameInfo(s.cff)
		e.skin = SkinFrame{
			TransBefore: p.frames.Trans[frame],
			TransAfter:  p.frames.Trans[next],
			QuatsBefore: p.frames.Quats[frame],
			QuatsAfter:  p.frames.Quats[next],
			FrameFactor: factor,
		}
		if s.kind == KindArmature {
			e.updateTransform()
		}
		return nil

	case KindObject:
		p, ok := s.payload.(*objectPayload)
		if !ok {
			break
		}
		a.evaluateObject(e, s, p, elapsed)
		return nil

	case KindVertex:
		p, ok := s.payload.(*vertexPayload)
		if !ok {
			break
		}
		frame, next, factor := s.vertexFrameInfo(s.cff, p.frameOffset)
		e.vertex = VertexFrame{Frame: frame, Next: next, Factor: factor}
		return nil

	case KindSound:
		p, ok := s.payload.(*soundPayload)
		if !ok {
			break
		}
		if e.speaker == nil {
			return nil
		}
		frame, next, factor := p.frameInfo(s.cff)
		if p.volume != nil {
			e.speaker.SetVolume(float64(common.Lerp(p.volume[frame], p.volume[next], factor)))
		}
		if p.pitch != nil {
			e.speaker.SetPlaybackRate(float64(common.Lerp(p.pitch[frame], p.pitch[next], factor)))
		}
		return nil

	case KindParticles:
		p, ok := s.payload.(*particlePayload)
		if !ok {
			break
		}
		if p.system != nil {
			p.system.SetTime(s.cff / a.framerate)
		}
		return nil

	case KindStatic:
		return nil
	}

	return fmt.Errorf("entity %q slot %d: %w: %v", e.name, i, ErrUnknownKind, s.kind)
}

func (a *animator) evaluateObject(e *Entity, s *animSlot, p *objectPayload, elapsed float64) {
	frame, next, factor := p.frameInfo(s.cff)
	before := tsrAt(p.tsr, frame)
	after := tsrAt(p.tsr, next)

	bt, at := before.Translation(), after.Translation()
	trans := bt.Mul(1 - factor).Add(at.Mul(factor))
	quat := common.Slerp(before.Rotation(), after.Rotation(), factor)
	scale := common.Lerp(before.Scale(), after.Scale(), factor)

	if e.transform == nil {
		return
	}

	if s.transSmoothPeriod > 0 {
		trans = smoothVec(trans, e.transform.Translation(), elapsed, s.transSmoothPeriod)
	}
	if s.quatSmoothPeriod > 0 {
		quat = smoothQuat(quat, e.transform.Rotation(), elapsed, s.quatSmoothPeriod)
	}

	e.transform.SetTranslation(trans)
	e.transform.SetRotation(quat)
	e.transform.SetScale(scale)

	e.updateTransform()
	e.syncPhysics()
}

func tsrAt(packed []float32, sample int) common.TSR {
	var tsr common.TSR
	copy(tsr[:], packed[sample*action.TSRStride:(sample+1)*action.TSRStride])
	return tsr
}

// smoothVec moves last toward curr with time constant period.
func smoothVec(curr, last mgl32.Vec3, elapsed, period float64) mgl32.Vec3 {
	e := float32(math.Exp(-elapsed / period))
	return curr.Mul(1 - e).Add(last.Mul(e))
}

// smoothQuat rotates last toward curr with time constant period.
func smoothQuat(curr, last mgl32.Quat, elapsed, period float64) mgl32.Quat {
	e := float32(math.Exp(-elapsed / period))
	return common.Slerp(last, curr, 1-e)
}
