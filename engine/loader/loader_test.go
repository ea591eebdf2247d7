package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Carmen-Shannon/oxy-anim/engine/action"
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
)

const walkerYAML = `
name: walker
armatures:
  - name: rig
    bones:
      - {name: root, parent: "", translation: [0, 0, 0]}
      - {name: hip, parent: root, translation: [0, 1, 0], rotation: [0, 0, 0, 1], scale: 1}
actions:
  - name: walk
    frame_range: [1, 5]
    curves:
      - data_path: 'pose.bones["hip"].location'
        array_index: 0
        keyframes:
          - {time: 1, value: 0, interpolation: LINEAR}
          - {time: 5, value: 4, interpolation: LINEAR}
  - name: slide
    frame_range: [1, 3]
    curves:
      - data_path: location
        array_index: 1
        keyframes:
          - {time: 1, value: 0, interpolation: 1}
          - {time: 3, value: 2, interpolation: 1}
objects:
  - name: hero
    type: ARMATURE
    armature: rig
    actions: [walk]
    cyclic: true
  - name: skin
    type: mesh
    armature: rig
    vertex_anims: [{name: wave, frame_start: 1, frame_end: 10}]
  - name: crate
    actions: [slide]
    physics: true
    particle_systems: [{name: sparks, frame_start: 1, frame_end: 20, lifetime: 10, count: 100}]
`

func writeAsset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.yaml", FormatYAML, false},
		{"a.YML", FormatYAML, false},
		{"dir/a.gltf", FormatGLTF, false},
		{"a.glb", FormatGLTF, false},
		{"a.fbx", 0, true},
		{"noext", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatForPath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoader_LoadYAML(t *testing.T) {
	path := writeAsset(t, "walker.yaml", walkerYAML)
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLoader(WithLogger(zap.New(core)))

	asset, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "walker", asset.Name)
	assert.Equal(t, path, asset.Source)
	require.Contains(t, asset.Armatures, "rig")
	assert.Equal(t, 2, asset.Armatures["rig"].NumBones())

	walk, ok := asset.Action("walk")
	require.True(t, ok)
	assert.Equal(t, path, walk.Source())
	assert.Equal(t, 5, walk.NumSamples())
	assert.InDelta(t, 2, walk.BoneTSR("hip", 2)[0], 1e-6)

	slide, ok := asset.Action("slide")
	require.True(t, ok)
	assert.InDelta(t, 2, slide.ObjectTSR(2).Translation().Y(), 1e-6)

	stored, ok := l.Store().Lookup("walk")
	require.True(t, ok)
	assert.Same(t, walk, stored)
	assert.Equal(t, 2, l.Store().Len())

	require.Len(t, asset.Objects, 3)
	hero, ok := asset.Object("hero")
	require.True(t, ok)
	assert.Equal(t, animator.EntityArmature, hero.Type)
	assert.Equal(t, []string{"walk"}, hero.Actions)
	assert.True(t, hero.Cyclic)

	skin, _ := asset.Object("skin")
	assert.Equal(t, animator.EntityMesh, skin.Type)
	assert.Equal(t, []animator.VertexAnim{{Name: "wave", FrameStart: 1, FrameEnd: 10}}, skin.VertexAnims)

	crate, _ := asset.Object("crate")
	assert.Equal(t, animator.EntityEmpty, crate.Type)
	assert.True(t, crate.Physics)
	require.Len(t, crate.ParticleSystems, 1)
	assert.Equal(t, animator.ParticleEmitter, crate.ParticleSystems[0].Type)
	assert.Equal(t, 100, crate.ParticleSystems[0].Count)

	assert.Equal(t, 1, logs.FilterMessage("asset loaded").Len())

	again, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, asset, again)
	assert.Equal(t, 2, l.Store().Len())
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	_, err := NewLoader().Load("model.fbx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoader_ReloadAndUnload(t *testing.T) {
	path := writeAsset(t, "walker.yaml", walkerYAML)
	l := NewLoader()

	first, err := l.Load(path)
	require.NoError(t, err)

	edited := strings.Replace(walkerYAML, "frame_range: [1, 5]", "frame_range: [1, 9]", 1)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	second, err := l.Reload(path)
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	walk, ok := l.Store().Lookup("walk")
	require.True(t, ok)
	start, end := walk.FrameRange()
	assert.Equal(t, 1.0, start)
	assert.Equal(t, 9.0, end)
	assert.Equal(t, 2, l.Store().Len())

	assert.Equal(t, 2, l.Unload(path))
	assert.Nil(t, l.Get(path))
	assert.Zero(t, l.Store().Len())
	assert.Empty(t, l.Assets())
}

func TestLoader_LoadReaderErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown armature",
			doc:  "objects:\n  - {name: a, type: MESH, armature: nope}\n",
			want: ErrUnknownArmature,
		},
		{
			name: "empty interpolation",
			doc:  "actions:\n  - name: a\n    frame_range: [1, 2]\n    curves:\n      - {data_path: location, array_index: 0, keyframes: [{time: 1, value: 0, interpolation: ''}]}\n",
			want: curve.ErrUnknownInterpolation,
		},
		{
			name: "location index out of range",
			doc:  "actions:\n  - name: a\n    frame_range: [1, 2]\n    curves:\n      - {data_path: location, array_index: -1, keyframes: [{time: 1, value: 0}]}\n",
			want: action.ErrChannelIndex,
		},
		{
			name: "unknown object type",
			doc:  "objects:\n  - {name: a, type: LAMP}\n",
			want: ErrUnknownObjectType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader()
			_, err := l.LoadReader("mem.yaml", strings.NewReader(tt.doc), FormatYAML)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Nil(t, l.Get("mem.yaml"))
		})
	}
}

func TestLoader_CompileFailureRegistersNothing(t *testing.T) {
	doc := `
actions:
  - name: ok
    frame_range: [1, 2]
    curves:
      - {data_path: location, array_index: 0, keyframes: [{time: 1, value: 0}]}
  - name: broken
    frame_range: [5, 1]
`
	l := NewLoader()
	_, err := l.LoadReader("broken.yaml", strings.NewReader(doc), FormatYAML)
	require.Error(t, err)
	assert.Zero(t, l.Store().Len())
}

func TestLoader_DefaultsAndSound(t *testing.T) {
	doc := `
actions:
  - name: hum
    frame_range: [1, 3]
    curves:
      - {data_path: location, array_index: 0, keyframes: [{time: 1, value: 0}, {time: 3, value: 1}]}
objects:
  - {name: radio, type: SPEAKER, sound: sounds/hum.wav, actions: [hum]}
`
	asset, err := NewLoader().LoadReader("radio.yaml", strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)

	radio, ok := asset.Object("radio")
	require.True(t, ok)
	assert.Equal(t, animator.EntitySpeaker, radio.Type)
	assert.Equal(t, "sounds/hum.wav", radio.Sound)

	// keys without an interpolation are Bezier
	hum, ok := asset.Action("hum")
	require.True(t, ok)
	assert.InDelta(t, 0.5, hum.ObjectTSR(1)[0], 1e-3)
}

func TestLoader_EmptyDocument(t *testing.T) {
	asset, err := NewLoader().LoadReader("empty.yaml", strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "empty", asset.Name)
	assert.Empty(t, asset.Actions)
}
