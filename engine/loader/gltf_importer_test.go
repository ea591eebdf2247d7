package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
)

// waveBuffer holds two keyframe times followed by two VEC3 translations.
func waveBuffer(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range []float32{0, 1, 0, 2, 0, 1, 2, 0} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	return buf.Bytes()
}

// waveDocument is a two-joint skin whose child joint and a free node both slide along X.
func waveDocument(bufferURI string, byteLength int) map[string]any {
	buffer := map[string]any{"byteLength": byteLength}
	if bufferURI != "" {
		buffer["uri"] = bufferURI
	}
	return map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"name": "waver", "nodes": []int{0, 2, 3}}},
		"nodes": []any{
			map[string]any{"name": "root", "translation": []float32{0, 1, 0}, "children": []int{1}},
			map[string]any{"name": "child", "translation": []float32{0, 2, 0}},
			map[string]any{"name": "box"},
			map[string]any{"name": "body", "mesh": 0, "skin": 0},
		},
		"skins": []any{map[string]any{"name": "rig", "joints": []int{0, 1}}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR"},
			map[string]any{"bufferView": 1, "componentType": 5126, "count": 2, "type": "VEC3"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 8},
			map[string]any{"buffer": 0, "byteOffset": 8, "byteLength": 24},
		},
		"buffers": []any{buffer},
		"animations": []any{map[string]any{
			"name": "wave",
			"samplers": []any{
				map[string]any{"input": 0, "output": 1, "interpolation": "LINEAR"},
			},
			"channels": []any{
				map[string]any{"sampler": 0, "target": map[string]any{"node": 1, "path": "translation"}},
				map[string]any{"sampler": 0, "target": map[string]any{"node": 2, "path": "translation"}},
			},
		}},
	}
}

func glb(t *testing.T, jsonChunk, bin []byte) []byte {
	t.Helper()
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	var out bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(bin)
	for _, v := range []uint32{gltfGLBMagic, gltfGLBVersion, uint32(total), uint32(len(jsonChunk)), gltfGLBChunkJSON} {
		require.NoError(t, binary.Write(&out, binary.LittleEndian, v))
	}
	out.Write(jsonChunk)
	for _, v := range []uint32{uint32(len(bin)), gltfGLBChunkBIN} {
		require.NoError(t, binary.Write(&out, binary.LittleEndian, v))
	}
	out.Write(bin)
	return out.Bytes()
}

func assertWaveAsset(t *testing.T, asset *Asset) {
	t.Helper()
	approx := cmpopts.EquateApprox(0, 1e-5)

	assert.Equal(t, "waver", asset.Name)

	rig, ok := asset.Armatures["rig"]
	require.True(t, ok)
	require.Equal(t, 2, rig.NumBones())
	child, ok := rig.BoneIndex("child")
	require.True(t, ok)
	root, _ := rig.BoneIndex("root")
	assert.Equal(t, root, rig.Parent(child))
	if diff := cmp.Diff(mgl32.Vec3{0, 3, 0}, rig.Bones()[child].Rest.Translation(), approx); diff != "" {
		t.Errorf("child rest mismatch (-want +got):\n%s", diff)
	}

	wave, ok := asset.Action("wave")
	require.True(t, ok)
	start, end := wave.FrameRange()
	assert.Equal(t, 0.0, start)
	assert.Equal(t, 24.0, end)
	assert.Equal(t, []string{"child"}, wave.BoneNames())
	for _, tc := range []struct {
		sample int
		want   mgl32.Vec3
	}{
		{0, mgl32.Vec3{0, 0, 0}},
		{12, mgl32.Vec3{0.5, 0, 0}},
		{24, mgl32.Vec3{1, 0, 0}},
	} {
		if diff := cmp.Diff(tc.want, wave.BoneTSR("child", tc.sample).Translation(), approx); diff != "" {
			t.Errorf("sample %d basis mismatch (-want +got):\n%s", tc.sample, diff)
		}
	}

	box, ok := asset.Action("wave_box")
	require.True(t, ok)
	want := common.NewTSR(mgl32.Vec3{1, 2, 0}, 1, mgl32.QuatIdent())
	if diff := cmp.Diff(want, box.ObjectTSR(24), approx); diff != "" {
		t.Errorf("object transform mismatch (-want +got):\n%s", diff)
	}

	rigObj, ok := asset.Object("rig")
	require.True(t, ok)
	assert.Equal(t, animator.EntityArmature, rigObj.Type)
	assert.Equal(t, []string{"wave"}, rigObj.Actions)

	body, ok := asset.Object("body")
	require.True(t, ok)
	assert.Equal(t, animator.EntityMesh, body.Type)
	assert.Equal(t, "rig", body.Armature)

	boxObj, ok := asset.Object("box")
	require.True(t, ok)
	assert.Equal(t, animator.EntityEmpty, boxObj.Type)
	assert.Equal(t, []string{"wave_box"}, boxObj.Actions)
}

func TestLoader_GLTFDataURI(t *testing.T) {
	bin := waveBuffer(t)
	doc, err := json.Marshal(waveDocument("data:application/octet-stream;base64,"+base64.StdEncoding.EncodeToString(bin), len(bin)))
	require.NoError(t, err)

	path := writeAsset(t, "wave.gltf", string(doc))
	asset, err := NewLoader().Load(path)
	require.NoError(t, err)
	assertWaveAsset(t, asset)
}

func TestLoader_GLB(t *testing.T) {
	bin := waveBuffer(t)
	doc, err := json.Marshal(waveDocument("", len(bin)))
	require.NoError(t, err)

	l := NewLoader()
	asset, err := l.LoadReader("wave.glb", bytes.NewReader(glb(t, doc, bin)), FormatGLTF)
	require.NoError(t, err)
	assertWaveAsset(t, asset)
	assert.Equal(t, 2, l.Store().Len())
}

func TestLoader_GLTFFramerate(t *testing.T) {
	bin := waveBuffer(t)
	doc, err := json.Marshal(waveDocument("", len(bin)))
	require.NoError(t, err)

	asset, err := NewLoader(WithFramerate(30)).LoadReader("wave.glb", bytes.NewReader(glb(t, doc, bin)), FormatGLTF)
	require.NoError(t, err)
	wave, ok := asset.Action("wave")
	require.True(t, ok)
	_, end := wave.FrameRange()
	assert.Equal(t, 30.0, end)
}

func TestGLTFParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"bad version", []byte(`{"asset":{"version":"1.0"}}`)},
		{"not json", []byte(`{`)},
		{"missing buffer", []byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":4}]}`)},
		{"short buffer", []byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":64,"uri":"data:application/octet-stream;base64,AAAA"}]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, newGLTFParser().ParseReader(bytes.NewReader(tt.data), ""))
		})
	}
}

func TestGLTFParser_AccessorBounds(t *testing.T) {
	doc := `{"asset":{"version":"2.0"},
		"buffers":[{"byteLength":4,"uri":"data:application/octet-stream;base64,AAAAAA=="}],
		"bufferViews":[{"buffer":0,"byteLength":4}],
		"accessors":[{"bufferView":0,"componentType":5126,"count":2,"type":"SCALAR"}]}`
	p := newGLTFParser()
	require.NoError(t, p.ParseReader(bytes.NewReader([]byte(doc)), ""))

	_, err := p.ReadScalarAccessor(0)
	assert.ErrorIs(t, err, errAccessorBounds)

	_, err = p.ReadVec3Accessor(0)
	assert.Error(t, err)
}

func TestGLTFTrack_CubicSplineHandles(t *testing.T) {
	tr := &gltfTrack{
		interp: curve.InterpBezier,
		frames: []float64{0, 24},
		values: [][4]float32{{0}, {1}},
		in:     [][4]float32{{0}, {3}},
		out:    [][4]float32{{3}, {0}},
		width:  3,
		fps:    24,
	}
	curves := tr.curves("", gltfAnimPathTranslation)
	require.Len(t, curves, 3)
	keys := curves[0].Keyframes
	assert.Equal(t, "location", curves[0].DataPath)

	// one second apart: handles sit 8 frames out, tangent 3/s moves the value by 1
	assert.InDelta(t, 8, keys[0].RightHandle.X, 1e-9)
	assert.InDelta(t, 1, keys[0].RightHandle.Y, 1e-9)
	assert.InDelta(t, 16, keys[1].LeftHandle.X, 1e-9)
	assert.InDelta(t, 0, keys[1].LeftHandle.Y, 1e-9)
}
