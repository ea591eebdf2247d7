package loader

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/particles"
)

func TestNewEntities(t *testing.T) {
	path := writeAsset(t, "walker.yaml", walkerYAML)
	l := NewLoader()
	asset, err := l.Load(path)
	require.NoError(t, err)

	entities, err := NewEntities(asset, WithEntityFramerate(24), WithPhysicsSpace(cp.NewSpace()))
	require.NoError(t, err)
	require.Len(t, entities, 3)

	hero, skin, crate := entities[0], entities[1], entities[2]
	assert.Equal(t, "hero", hero.Name())
	assert.NotNil(t, hero.Armature())
	assert.Nil(t, skin.Armature())
	assert.NotNil(t, skin.FirstArmature())
	assert.Len(t, skin.VertexAnims(), 1)
	assert.NotNil(t, crate.Transform())

	require.Len(t, crate.ParticleSystems(), 1)
	emitter, ok := crate.ParticleSystems()[0].System.(particles.Emitter)
	require.True(t, ok)

	a := animator.NewAnimator(animator.WithStore(l.Store()))
	require.NoError(t, a.ApplyDefault(crate))
	assert.Equal(t, animator.KindObject, must(a.AnimType(crate, 0)))
	assert.Equal(t, animator.KindParticles, must(a.AnimType(crate, 1)))

	require.NoError(t, a.SetFrame(crate, 0, 3))
	assert.InDelta(t, 2, crate.Transform().Translation().Y(), 1e-6)

	require.NoError(t, a.SetFrame(crate, 1, 12))
	assert.InDelta(t, 12, emitter.Frame(), 1e-9)
	assert.Positive(t, emitter.Alive())
}

func TestNewEntities_UnknownArmature(t *testing.T) {
	asset := &Asset{Objects: []Object{{Name: "a", Type: animator.EntityMesh, Armature: "missing"}}}
	_, err := NewEntities(asset)
	assert.ErrorIs(t, err, ErrUnknownArmature)
}

type stubSpeaker struct {
	volume float64
	stops  int
}

func (s *stubSpeaker) SetVolume(v float64)       { s.volume = v }
func (s *stubSpeaker) SetPlaybackRate(float64) {}
func (s *stubSpeaker) IsPlaying() bool         { return false }
func (s *stubSpeaker) Stop()                   { s.stops++ }

func TestNewEntities_SpeakerFactory(t *testing.T) {
	asset := &Asset{Objects: []Object{
		{Name: "radio", Type: animator.EntitySpeaker},
		{Name: "lamp", Type: animator.EntityEmpty},
	}}
	var asked []string
	entities, err := NewEntities(asset, WithSpeakerFactory(func(obj Object) animator.Speaker {
		asked = append(asked, obj.Name)
		return &stubSpeaker{}
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"radio"}, asked)
	assert.NotNil(t, entities[0].Speaker())
	assert.Nil(t, entities[1].Speaker())
}

func TestReleaseEntities(t *testing.T) {
	path := writeAsset(t, "walker.yaml", walkerYAML)
	asset, err := NewLoader().Load(path)
	require.NoError(t, err)
	asset.Objects = append(asset.Objects, Object{Name: "radio", Type: animator.EntitySpeaker})

	space := cp.NewSpace()
	bodies := func() int {
		n := 0
		space.EachBody(func(*cp.Body) { n++ })
		return n
	}
	speaker := &stubSpeaker{}
	factory := WithSpeakerFactory(func(Object) animator.Speaker { return speaker })

	for range 3 {
		entities, err := NewEntities(asset, WithPhysicsSpace(space), factory)
		require.NoError(t, err)
		require.Equal(t, 1, bodies())
		ReleaseEntities(entities)
		assert.Zero(t, bodies())
	}
	assert.Equal(t, 3, speaker.stops)

	ReleaseEntities(nil)
}

func must[T any](v T, ok bool) T {
	if !ok {
		panic("missing value")
	}
	return v
}
