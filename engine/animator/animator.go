package animator

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/action"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

// animator is the implementation of the Animator interface.
type animator struct {
	store  *action.Store
	baker  skeleton.Baker
	logger *zap.Logger

	framerate     float64
	timelineStart float64
	timelineEnd   float64

	entities []*Entity
}

// Animator binds compiled animations to entity slots and advances them every tick.
// It is driven from a single goroutine; finish callbacks run on that goroutine.
type Animator interface {
	// Store returns the action registry and pose cache the animator resolves names against.
	//
	// Returns:
	//   - *action.Store: the store
	Store() *action.Store

	// AppendAction registers a compiled action.
	//
	// Parameters:
	//   - a: the compiled action
	AppendAction(a *action.Action)

	// Apply binds the named animation to a slot. Vertex animations and emitter
	// particle systems of meshes are searched first, then the action registry.
	// The new binding is paused at its first frame and evaluated immediately.
	//
	// Parameters:
	//   - e: the entity
	//   - name: the animation name, with or without the baked suffix
	//   - slot: the slot index
	//
	// Returns:
	//   - error: ErrInvalidSlot, ErrUnresolvedAnimation (slot unchanged), ErrEmptyAction, or a bake error
	Apply(e *Entity, name string, slot int) error

	// ApplyDefault binds every default animation of the entity to consecutive slots,
	// falling back to a STATIC slot on the scene timeline when it has none.
	//
	// Parameters:
	//   - e: the entity
	//
	// Returns:
	//   - error: the joined errors of the bindings that failed
	ApplyDefault(e *Entity) error

	// ApplyToFirstEmptySlot binds the named animation to the first unbound slot.
	//
	// Parameters:
	//   - e: the entity
	//   - name: the animation name
	//
	// Returns:
	//   - int: the slot used, or -1 when every slot is bound
	//   - error: ErrNoEmptySlot or any error from Apply
	ApplyToFirstEmptySlot(e *Entity, name string) (int, error)

	// Play starts playback and installs an optional finish callback.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index or SlotAll
	//   - callback: called once after each boundary crossing; may be nil
	Play(e *Entity, slot int, callback FinishCallback)

	// Stop pauses playback and clears the finish callback.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index or SlotAll
	Stop(e *Entity, slot int)

	// IsPlaying reports whether a slot is playing.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index
	//
	// Returns:
	//   - bool: false for unbound slots
	IsPlaying(e *Entity, slot int) bool

	// SetFrame seeks without changing the play state and re-evaluates the pose.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index or SlotAll
	//   - frame: the new frame
	//
	// Returns:
	//   - error: ErrNotAnimated if no slot is bound, ErrUnknownKind if a slot cannot be evaluated
	SetFrame(e *Entity, slot int, frame float64) error

	// Frame returns the current frame of a slot.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index
	//
	// Returns:
	//   - float64: the frame, 0 for unbound slots
	Frame(e *Entity, slot int) float64

	// SetSpeed sets the playback speed. Negative speeds play in reverse.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index or SlotAll
	//   - speed: the speed multiplier
	SetSpeed(e *Entity, slot int, speed float64)

	// Speed returns the playback speed of a slot.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index
	//
	// Returns:
	//   - float64: the speed, 0 for unbound slots
	Speed(e *Entity, slot int) float64

	// SetCyclic switches between CYCLIC and FINISH_RESET.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index or SlotAll
	//   - cyclic: true for CYCLIC
	SetCyclic(e *Entity, slot int, cyclic bool)

	// IsCyclic reports whether a slot loops.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index
	//
	// Returns:
	//   - bool: true for a bound CYCLIC slot
	IsCyclic(e *Entity, slot int) bool

	// SetBehavior sets the boundary policy.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index or SlotAll
	//   - b: the behavior
	SetBehavior(e *Entity, slot int, b Behavior)

	// Behavior returns the boundary policy of a slot.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index
	//
	// Returns:
	//   - Behavior: the behavior
	//   - bool: false for unbound slots
	Behavior(e *Entity, slot int) (Behavior, bool)

	// ApplySmoothing sets the exponential smoothing periods of object transform slots.
	// A period of 0 disables smoothing for that channel.
	//
	// Parameters:
	//   - e: the entity
	//   - transPeriod: translation period in seconds
	//   - quatPeriod: rotation period in seconds
	//   - slot: the slot index or SlotAll
	ApplySmoothing(e *Entity, transPeriod, quatPeriod float64, slot int)

	// RemoveSlot unbinds a slot.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index or SlotAll
	RemoveSlot(e *Entity, slot int)

	// Remove unbinds every slot and drops the entity from the active set.
	//
	// Parameters:
	//   - e: the entity
	Remove(e *Entity)

	// AnimNames lists the animations that can be applied to an entity.
	//
	// Parameters:
	//   - e: the entity
	//
	// Returns:
	//   - []string: vertex animations, registered actions, then emitter particle systems
	AnimNames(e *Entity) []string

	// SlotByAnim finds the slot an animation is bound to.
	//
	// Parameters:
	//   - e: the entity
	//   - name: the animation name, with or without the baked suffix
	//
	// Returns:
	//   - int: the slot index, or -1
	SlotByAnim(e *Entity, name string) int

	// AnimName returns the name bound to a slot without the baked suffix.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index
	//
	// Returns:
	//   - string: the name
	//   - bool: false for unbound or unnamed slots
	AnimName(e *Entity, slot int) (string, bool)

	// AnimType returns the kind of a slot.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index
	//
	// Returns:
	//   - Kind: the kind
	//   - bool: false for unbound slots
	AnimType(e *Entity, slot int) (Kind, bool)

	// StartFrame returns the first frame of a slot.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index
	//
	// Returns:
	//   - float64: the start frame, -1 for unbound slots
	StartFrame(e *Entity, slot int) float64

	// Length returns the length of a slot in frames.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index
	//
	// Returns:
	//   - float64: the length, -1 for unbound slots
	Length(e *Entity, slot int) float64

	// FrameRange returns the first and last frame of a slot.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index
	//
	// Returns:
	//   - float64: the start frame
	//   - float64: the end frame
	//   - bool: false for unbound slots
	FrameRange(e *Entity, slot int) (float64, float64, bool)

	// CurrentAction returns the compiled action a slot reads.
	//
	// Parameters:
	//   - e: the entity
	//   - slot: the slot index
	//
	// Returns:
	//   - *action.Action: the action, nil for unbound and non-action slots
	CurrentAction(e *Entity, slot int) *action.Action

	// IsAnimated reports whether the entity has been bound since it was last removed.
	//
	// Parameters:
	//   - e: the entity
	//
	// Returns:
	//   - bool: true if animated
	IsAnimated(e *Entity) bool

	// BoneTranslation returns a bone's interpolated translation from the first
	// ARMATURE or SKELETAL slot of the entity.
	//
	// Parameters:
	//   - e: the entity
	//   - bone: the bone name
	//
	// Returns:
	//   - mgl32.Vec3: the translation
	//   - bool: false if the bone or a pose slot is missing
	BoneTranslation(e *Entity, bone string) (mgl32.Vec3, bool)

	// Update advances every slot of every active entity, then runs the pending finish callbacks.
	//
	// Parameters:
	//   - elapsed: seconds since the previous update
	//
	// Returns:
	//   - error: the joined per-slot evaluation errors
	Update(elapsed float64) error

	// UpdateEntity advances a single slot and runs its pending finish callback.
	//
	// Parameters:
	//   - e: the entity
	//   - elapsed: seconds since the previous update
	//   - slot: the slot index or SlotAll
	//
	// Returns:
	//   - error: the joined per-slot evaluation errors
	UpdateEntity(e *Entity, elapsed float64, slot int) error

	// FrameToSec converts a frame number to seconds at the animator's framerate.
	//
	// Parameters:
	//   - frame: the frame
	//
	// Returns:
	//   - float64: the time in seconds
	FrameToSec(frame float64) float64

	// Framerate returns the frames per second playback is measured in.
	//
	// Returns:
	//   - float64: the framerate
	Framerate() float64

	// Entities returns a snapshot of the active entities.
	//
	// Returns:
	//   - []*Entity: the entities in activation order
	Entities() []*Entity
}

var _ Animator = &animator{}

// NewAnimator creates an Animator with an empty store unless one is provided.
//
// Parameters:
//   - options: functional options for configuring the animator
//
// Returns:
//   - Animator: the animator
func NewAnimator(options ...AnimatorBuilderOption) Animator {
	a := &animator{
		logger:        zap.NewNop(),
		framerate:     24,
		timelineStart: 1,
		timelineEnd:   250,
	}
	for _, opt := range options {
		opt(a)
	}
	if a.store == nil {
		a.store = action.NewStore()
	}
	if a.baker == nil {
		a.baker = skeleton.NewBaker(skeleton.WithLogger(a.logger))
	}
	return a
}

func (a *animator) Store() *action.Store {
	return a.store
}

func (a *animator) AppendAction(act *action.Action) {
	a.store.Append(act)
}

func (a *animator) Play(e *Entity, slot int, callback FinishCallback) {
	forSlots(e, slot, func(_ int, s *animSlot) {
		s.playing = true
		s.finishCallback = callback
		s.execFinishCallback = false
	})
}

func (a *animator) Stop(e *Entity, slot int) {
	forSlots(e, slot, func(_ int, s *animSlot) {
		s.playing = false
		s.finishCallback = nil
		s.execFinishCallback = false
	})
}

func (a *animator) IsPlaying(e *Entity, slot int) bool {
	s := e.slot(slot)
	return s != nil && s.playing
}

func (a *animator) SetFrame(e *Entity, slot int, frame float64) error {
	if !e.animated {
		return fmt.Errorf("entity %q: %w", e.name, ErrNotAnimated)
	}
	var errs []error
	forSlots(e, slot, func(i int, s *animSlot) {
		s.cff = frame
		if err := a.evaluate(e, i, s, 0); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

func (a *animator) Frame(e *Entity, slot int) float64 {
	if s := e.slot(slot); s != nil {
		return s.cff
	}
	return 0
}

func (a *animator) SetSpeed(e *Entity, slot int, speed float64) {
	forSlots(e, slot, func(_ int, s *animSlot) {
		s.speed = speed
	})
}

func (a *animator) Speed(e *Entity, slot int) float64 {
	if s := e.slot(slot); s != nil {
		return s.speed
	}
	return 0
}

func (a *animator) SetCyclic(e *Entity, slot int, cyclic bool) {
	b := BehaviorFinishReset
	if cyclic {
		b = BehaviorCyclic
	}
	a.SetBehavior(e, slot, b)
}

func (a *animator) IsCyclic(e *Entity, slot int) bool {
	s := e.slot(slot)
	return s != nil && s.behavior == BehaviorCyclic
}

func (a *animator) SetBehavior(e *Entity, slot int, b Behavior) {
	forSlots(e, slot, func(_ int, s *animSlot) {
		s.behavior = b
	})
}

func (a *animator) Behavior(e *Entity, slot int) (Behavior, bool) {
	if s := e.slot(slot); s != nil {
		return s.behavior, true
	}
	return 0, false
}

func (a *animator) ApplySmoothing(e *Entity, transPeriod, quatPeriod float64, slot int) {
	forSlots(e, slot, func(_ int, s *animSlot) {
		s.transSmoothPeriod = max(transPeriod, 0)
		s.quatSmoothPeriod = max(quatPeriod, 0)
	})
}

func (a *animator) RemoveSlot(e *Entity, slot int) {
	if slot == SlotAll {
		for i := range e.slots {
			a.unbind(e, i)
		}
		return
	}
	if validSlot(slot) {
		a.unbind(e, slot)
	}
}

// unbind drops a slot, silencing the speaker a SOUND slot was driving.
func (a *animator) unbind(e *Entity, i int) {
	s := e.slots[i]
	if s == nil {
		return
	}
	if s.kind == KindSound && e.speaker != nil && e.speaker.IsPlaying() {
		e.speaker.Stop()
	}
	e.slots[i] = nil
}

func (a *animator) Remove(e *Entity) {
	for i := range e.slots {
		a.unbind(e, i)
	}
	e.animated = false
	a.entities = slices.DeleteFunc(a.entities, func(x *Entity) bool { return x == e })
}

func (a *animator) AnimNames(e *Entity) []string {
	var names []string
	if e.typ == EntityMesh {
		for _, va := range e.vertexAnims {
			names = append(names, va.Name)
		}
	}
	for _, act := range a.store.Actions() {
		names = append(names, act.DisplayName())
	}
	if e.HasAnimatedParticles() {
		for _, ps := range e.particleSystems {
			names = append(names, ps.Name)
		}
	}
	return names
}

func (a *animator) SlotByAnim(e *Entity, name string) int {
	want := action.StripBakedSuffix(name)
	for i, s := range e.slots {
		if s != nil && action.StripBakedSuffix(s.name) == want {
			return i
		}
	}
	return -1
}

func (a *animator) AnimName(e *Entity, slot int) (string, bool) {
	s := e.slot(slot)
	if s == nil || s.name == "" {
		return "", false
	}
	return action.StripBakedSuffix(s.name), true
}

func (a *animator) AnimType(e *Entity, slot int) (Kind, bool) {
	if s := e.slot(slot); s != nil {
		return s.kind, true
	}
	return 0, false
}

func (a *animator) StartFrame(e *Entity, slot int) float64 {
	if s := e.slot(slot); s != nil {
		return s.start
	}
	return -1
}

func (a *animator) Length(e *Entity, slot int) float64 {
	if s := e.slot(slot); s != nil {
		return s.length
	}
	return -1
}

func (a *animator) FrameRange(e *Entity, slot int) (float64, float64, bool) {
	s := e.slot(slot)
	if s == nil {
		return 0, 0, false
	}
	return s.start, s.start + s.length, true
}

func (a *animator) CurrentAction(e *Entity, slot int) *action.Action {
	if s := e.slot(slot); s != nil {
		return s.action()
	}
	return nil
}

func (a *animator) IsAnimated(e *Entity) bool {
	return e.animated
}

func (a *animator) BoneTranslation(e *Entity, bone string) (mgl32.Vec3, bool) {
	ptr, ok := e.pointers[bone]
	if !ok {
		return mgl32.Vec3{}, false
	}

	for _, s := range e.slots {
		if s == nil {
			continue
		}
		p, ok := s.payload.(*posePayload)
		if !ok {
			continue
		}

		frame, next, factor := p.frameInfo(s.cff)
		d := 4 * ptr.DeformBoneIndex
		before, after := p.frames.Trans[frame], p.frames.Trans[next]
		if d+2 >= len(before) {
			return mgl32.Vec3{}, false
		}
		return mgl32.Vec3{
			common.Lerp(before[d], after[d], factor),
			common.Lerp(before[d+1], after[d+1], factor),
			common.Lerp(before[d+2], after[d+2], factor),
		}, true
	}
	return mgl32.Vec3{}, false
}

func (a *animator) FrameToSec(frame float64) float64 {
	return frame / a.framerate
}

func (a *animator) Framerate() float64 {
	return a.framerate
}

func (a *animator) Entities() []*Entity {
	return slices.Clone(a.entities)
}

// track adds e to the active set once.
func (a *animator) track(e *Entity) {
	e.animated = true
	if !slices.Contains(a.entities, e) {
		a.entities = append(a.entities, e)
	}
}

func validSlot(slot int) bool {
	return slot >= 0 && slot < NumSlots
}

// slot returns the binding at index i, or nil for unbound or invalid slots.
func (e *Entity) slot(i int) *animSlot {
	if !validSlot(i) {
		return nil
	}
	return e.slots[i]
}

// forSlots runs fn on one bound slot, or on every bound slot for SlotAll.
func forSlots(e *Entity, slot int, fn func(i int, s *animSlot)) {
	if slot == SlotAll {
		for i, s := range e.slots {
			if s != nil {
				fn(i, s)
			}
		}
		return
	}
	if s := e.slot(slot); s != nil {
		fn(slot, s)
	}
}
