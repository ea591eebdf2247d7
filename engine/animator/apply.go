package animator

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-anim/engine/action"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

func (a *animator) Apply(e *Entity, name string, slot int) error {
	if !validSlot(slot) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	if e.typ == EntityMesh {
		if va, ok := e.findVertexAnim(name); ok {
			return a.bind(e, slot, a.vertexSlot(e, va))
		}
		if ps, ok := e.findParticleSystem(name); ok && ps.Type == ParticleEmitter {
			return a.bind(e, slot, a.particleSlot(ps))
		}
	}

	if act, ok := a.store.Lookup(name); ok {
		s, err := a.actionSlot(e, act)
		if err != nil {
			return err
		}
		return a.bind(e, slot, s)
	}

	a.logger.Error("unsupported object or animation name",
		zap.String("entity", e.name),
		zap.String("animation", name),
		zap.Int("slot", slot),
	)
	return fmt.Errorf("%w: %q", ErrUnresolvedAnimation, name)
}

func (a *animator) ApplyDefault(e *Entity) error {
	var errs []error
	next := Slot0

	behaviorFor := func(cyclic bool) Behavior {
		if cyclic {
			return BehaviorCyclic
		}
		return BehaviorFinishReset
	}
	bindNext := func(s *animSlot, cyclic bool) {
		if next >= NumSlots {
			errs = append(errs, fmt.Errorf("entity %q: %w for %q", e.name, ErrNoEmptySlot, s.name))
			return
		}
		s.behavior = behaviorFor(cyclic)
		if err := a.bind(e, next, s); err != nil {
			errs = append(errs, err)
		}
		next++
	}

	actions := a.defaultActions(e)
	for _, act := range actions {
		s, err := a.actionSlot(e, act)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		bindNext(s, e.cyclic)
	}

	for _, ps := range e.particleSystems {
		if ps.Type != ParticleEmitter {
			continue
		}
		bindNext(a.particleSlot(ps), e.cyclic || ps.Cyclic)
	}

	switch {
	case e.typ == EntityMesh && len(e.vertexAnims) > 0:
		bindNext(a.vertexSlot(e, e.vertexAnims[0]), e.cyclic)
	case len(actions) == 0 && !e.HasAnimatedParticles():
		s := newSlot()
		s.kind = KindStatic
		s.start = a.timelineStart
		s.length = a.timelineEnd - a.timelineStart + 1
		s.cff = s.start
		if err := a.bind(e, Slot0, s); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (a *animator) ApplyToFirstEmptySlot(e *Entity, name string) (int, error) {
	if !e.animated {
		return Slot0, a.Apply(e, name, Slot0)
	}
	for i, s := range e.slots {
		if s == nil {
			return i, a.Apply(e, name, i)
		}
	}
	return -1, fmt.Errorf("entity %q: %w", e.name, ErrNoEmptySlot)
}

// defaultActions resolves the entity's default actions. Actions driving bones
// are only defaults of the armature itself.
func (a *animator) defaultActions(e *Entity) []*action.Action {
	var out []*action.Action
	for _, name := range e.defaultActions {
		act, ok := a.store.Lookup(name)
		if !ok {
			a.logger.Error("default action not found",
				zap.String("entity", e.name),
				zap.String("action", name),
			)
			continue
		}
		if e.typ == EntityArmature || act.NumBones() == 0 {
			out = append(out, act)
		}
	}
	return out
}

// bind installs s, refreshes the transform hierarchy and evaluates the slot at
// its first frame so the pose is visible before playback starts.
func (a *animator) bind(e *Entity, i int, s *animSlot) error {
	e.slots[i] = s
	a.track(e)
	e.updateTransform()
	e.syncPhysics()
	return a.updateSlot(e, i, 0)
}

func (a *animator) vertexSlot(e *Entity, va VertexAnim) *animSlot {
	s := newSlot()
	s.kind = KindVertex
	s.name = va.Name
	s.start = va.FrameStart
	// the last frame is rendered
	s.length = va.FrameEnd - va.FrameStart + 1
	s.cff = s.start
	s.payload = &vertexPayload{frameOffset: e.vertexFrameOffset(va)}
	return s
}

func (a *animator) particleSlot(ps ParticleSystemInfo) *animSlot {
	s := newSlot()
	s.kind = KindParticles
	s.name = ps.Name
	s.start = ps.FrameStart
	s.length = ps.FrameEnd - ps.FrameStart
	if !ps.Cyclic {
		s.length += ps.Lifetime
	}
	s.cff = s.start
	s.payload = &particlePayload{system: ps.System}
	return s
}

// actionSlot picks the slot kind an action drives on this entity and binds its data.
func (a *animator) actionSlot(e *Entity, act *action.Action) (*animSlot, error) {
	if act.NumCurves() == 0 {
		return nil, fmt.Errorf("action %q: %w", act.Name(), ErrEmptyAction)
	}

	start, end := act.FrameRange()
	s := newSlot()
	s.name = act.Name()
	s.start = start
	s.length = end - start
	s.cff = start

	binding := newActionBinding(act)
	volume, hasVolume := act.Param("volume")
	pitch, hasPitch := act.Param("pitch")
	tsr, hasTSR := act.Param(action.ParamTSR)

	switch {
	case e.typ == EntityArmature && e.armature != nil && act.NumBones() > 0:
		frames, err := a.poseFrames(e, e.armature, act)
		if err != nil {
			return nil, err
		}
		s.kind = KindArmature
		s.payload = &posePayload{actionBinding: binding, frames: frames}

	case e.FirstArmature() != nil && act.NumBones() > 0:
		frames, err := a.poseFrames(e, e.FirstArmature(), act)
		if err != nil {
			return nil, err
		}
		s.kind = KindSkeletal
		s.payload = &posePayload{actionBinding: binding, frames: frames}

	case e.typ == EntitySpeaker && (hasVolume || hasPitch):
		s.kind = KindSound
		s.payload = &soundPayload{actionBinding: binding, volume: volume, pitch: pitch}

	case hasTSR:
		s.kind = KindObject
		s.payload = &objectPayload{actionBinding: binding, tsr: tsr}

	default:
		a.logger.Warn("incompatible action applied",
			zap.String("entity", e.name),
			zap.String("action", act.Name()),
		)
		s.kind = KindStatic
	}

	return s, nil
}

// poseFrames returns the cached skinning frames of (e, act), baking them on first use.
func (a *animator) poseFrames(e *Entity, arm *skeleton.Armature, act *action.Action) (*action.PoseFrames, error) {
	frames, err := a.store.PoseOrBake(e.id, act, func() (*action.PoseFrames, error) {
		return a.baker.Bake(arm, act, e.pointers)
	})
	if err != nil {
		return nil, fmt.Errorf("entity %q action %q: %w", e.name, act.Name(), err)
	}
	return frames, nil
}
