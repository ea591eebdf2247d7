package loader

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/Carmen-Shannon/oxy-anim/engine/particles"
	"github.com/Carmen-Shannon/oxy-anim/engine/physics"
)

// SpeakerFactory returns the speaker a SPEAKER object plays through, or nil for none.
type SpeakerFactory func(obj Object) animator.Speaker

type entityConfig struct {
	framerate float64
	space     *cp.Space
	speakers  SpeakerFactory
}

// EntityOption is a functional option for NewEntities.
type EntityOption func(*entityConfig)

// WithEntityFramerate sets the framerate particle emitters convert time with.
func WithEntityFramerate(fps float64) EntityOption {
	return func(c *entityConfig) {
		if fps > 0 {
			c.framerate = fps
		}
	}
}

// WithPhysicsSpace adds the kinematic bodies of physics objects to a space.
func WithPhysicsSpace(space *cp.Space) EntityOption {
	return func(c *entityConfig) {
		c.space = space
	}
}

// WithSpeakerFactory sets how SPEAKER objects get their speaker.
func WithSpeakerFactory(f SpeakerFactory) EntityOption {
	return func(c *entityConfig) {
		c.speakers = f
	}
}

// NewEntities builds one animator entity per asset object, with a game object transform,
// a deterministic emitter per particle system and, for physics objects, a kinematic body.
//
// Parameters:
//   - asset: the loaded asset
//   - options: functional options for the collaborators
//
// Returns:
//   - []*animator.Entity: the entities, in object order
//   - error: ErrUnknownArmature if an object names a missing armature
func NewEntities(asset *Asset, options ...EntityOption) ([]*animator.Entity, error) {
	cfg := &entityConfig{framerate: 24}
	for _, opt := range options {
		opt(cfg)
	}

	out := make([]*animator.Entity, 0, len(asset.Objects))
	for _, obj := range asset.Objects {
		opts := []animator.EntityBuilderOption{
			animator.WithType(obj.Type),
			animator.WithCyclic(obj.Cyclic),
			animator.WithDefaultActions(obj.Actions...),
			animator.WithVertexAnims(obj.VertexAnims...),
			animator.WithTransform(game_object.NewGameObject(game_object.WithName(obj.Name))),
		}

		if obj.Armature != "" {
			a, ok := asset.Armatures[obj.Armature]
			if !ok {
				return nil, fmt.Errorf("object %q: %w: %q", obj.Name, ErrUnknownArmature, obj.Armature)
			}
			opts = append(opts, animator.WithArmature(a))
		}

		systems := make([]animator.ParticleSystemInfo, len(obj.ParticleSystems))
		for i, ps := range obj.ParticleSystems {
			systems[i] = animator.ParticleSystemInfo{
				Name:       ps.Name,
				Type:       ps.Type,
				FrameStart: ps.FrameStart,
				FrameEnd:   ps.FrameEnd,
				Lifetime:   ps.Lifetime,
				Cyclic:     ps.Cyclic,
				System: particles.NewEmitter(
					particles.WithFrameRange(ps.FrameStart, ps.FrameEnd),
					particles.WithLifetime(ps.Lifetime),
					particles.WithCount(ps.Count),
					particles.WithFramerate(cfg.framerate),
					particles.WithCyclic(ps.Cyclic),
				),
			}
		}
		opts = append(opts, animator.WithParticleSystems(systems...))

		if obj.Physics {
			var bodyOpts []physics.BodySyncBuilderOption
			if cfg.space != nil {
				bodyOpts = append(bodyOpts, physics.WithSpace(cfg.space))
			}
			opts = append(opts, animator.WithPhysics(physics.NewBodySync(bodyOpts...)))
		}

		if obj.Type == animator.EntitySpeaker && cfg.speakers != nil {
			if s := cfg.speakers(obj); s != nil {
				opts = append(opts, animator.WithSpeaker(s))
			}
		}

		out = append(out, animator.NewEntity(obj.Name, opts...))
	}
	return out, nil
}

// ReleaseEntities takes the kinematic bodies created by NewEntities out of their space
// and stops any speakers. Call it before dropping entities, outside a space step.
//
// Parameters:
//   - entities: the entities to release
func ReleaseEntities(entities []*animator.Entity) {
	for _, e := range entities {
		if b, ok := e.Physics().(physics.BodySync); ok {
			b.Remove()
		}
		if s := e.Speaker(); s != nil {
			s.Stop()
		}
	}
}
