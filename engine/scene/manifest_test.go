package scene

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlManifest = `
texture_arrays:
  - name: tiles
    width: 4
    height: 4
    layers: 8
    filter: nearest
    paths: [grass.png, water.png]
sprites:
  - array: tiles
    texture: grass.png
    x: 10
    y: -5
    depth: 1
  - array: tiles
    texture: water.png
    width: 32
    height: 16
    scale_x: 2
`

const tomlManifest = `
[[texture_arrays]]
name = "tiles"
width = 4
height = 4
layers = 8
filter = "nearest"
paths = ["grass.png", "water.png"]

[[sprites]]
array = "tiles"
texture = "grass.png"
x = 10.0
y = -5.0
depth = 1.0

[[sprites]]
array = "tiles"
texture = "water.png"
width = 32.0
height = 16.0
scale_x = 2.0
`

func TestParseManifestYAMLAndTOMLAgree(t *testing.T) {
	fromYAML, err := ParseManifest([]byte(yamlManifest), ManifestFormatYAML)
	require.NoError(t, err)
	fromTOML, err := ParseManifest([]byte(tomlManifest), ManifestFormatTOML)
	require.NoError(t, err)

	assert.Equal(t, fromYAML, fromTOML)
	require.Len(t, fromYAML.TextureArrays, 1)
	assert.Equal(t, []string{"grass.png", "water.png"}, fromYAML.TextureArrays[0].Paths)
	require.Len(t, fromYAML.Sprites, 2)
	assert.Equal(t, float32(2), fromYAML.Sprites[1].ScaleX)
}

func TestParseManifestUnknownFormat(t *testing.T) {
	_, err := ParseManifest([]byte("{}"), "json")
	require.ErrorIs(t, err, ErrUnknownManifestFormat)

	_, err = LoadManifestFile(filepath.Join(t.TempDir(), "scene.json"))
	require.ErrorIs(t, err, ErrUnknownManifestFormat)
}

func TestParseManifestRejectsUnknownTOMLKeys(t *testing.T) {
	_, err := ParseManifest([]byte("[[sprites]]\ncolour = \"red\"\n"), ManifestFormatTOML)
	require.Error(t, err)
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		wantErr  bool
	}{
		{
			name:     "empty",
			manifest: Manifest{},
		},
		{
			name: "valid",
			manifest: Manifest{
				TextureArrays: []TextureArrayManifest{{Name: "a", Width: 4, Height: 4, Layers: 1}},
				Sprites:       []SpriteManifest{{Array: "a", Texture: "x.png"}},
			},
		},
		{
			name: "duplicate array",
			manifest: Manifest{TextureArrays: []TextureArrayManifest{
				{Name: "a", Width: 4, Height: 4, Layers: 1},
				{Name: "a", Width: 4, Height: 4, Layers: 1},
			}},
			wantErr: true,
		},
		{
			name:     "zero layers",
			manifest: Manifest{TextureArrays: []TextureArrayManifest{{Name: "a", Width: 4, Height: 4}}},
			wantErr:  true,
		},
		{
			name: "too many paths",
			manifest: Manifest{TextureArrays: []TextureArrayManifest{
				{Name: "a", Width: 4, Height: 4, Layers: 1, Paths: []string{"x.png", "y.png"}},
			}},
			wantErr: true,
		},
		{
			name: "bad filter",
			manifest: Manifest{TextureArrays: []TextureArrayManifest{
				{Name: "a", Width: 4, Height: 4, Layers: 1, Filter: "cubic"},
			}},
			wantErr: true,
		},
		{
			name:     "unknown array",
			manifest: Manifest{Sprites: []SpriteManifest{{Array: "missing", Texture: "x.png"}}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.manifest.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidManifest)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTextureArrayManifestDescriptor(t *testing.T) {
	desc := TextureArrayManifest{Width: 16, Height: 8, Layers: 3, Filter: "nearest"}.Descriptor()

	assert.Equal(t, uint32(16), desc.Width)
	assert.Equal(t, uint32(8), desc.Height)
	assert.Equal(t, uint32(3), desc.LayerCount)
	assert.Equal(t, common.FilterNearest, desc.Sampler.MagFilter)
	assert.Nil(t, desc.Layout)
}

func TestLoadManifestPopulatesScene(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "grass.png", color.RGBA{G: 255, A: 255})
	writePNG(t, dir, "water.png", color.RGBA{B: 255, A: 255})
	path := filepath.Join(dir, "level.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlManifest), 0o644))

	sc, _, backend := newTestScene(t)
	ids, err := LoadManifest(sc, path)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	arrays := sc.Textures().Arrays()
	require.Len(t, arrays, 1)
	assert.Equal(t, uint32(6), arrays[0].FreeSlots())
	assert.Len(t, backend.Dev.TextureWrites, 2)

	grass := sc.Get(ids[0])
	x, y := grass.Position()
	assert.Equal(t, float32(10), x)
	assert.Equal(t, float32(-5), y)
	w, h := grass.Size()
	assert.Equal(t, float32(4), w)
	assert.Equal(t, float32(4), h)
	assert.Equal(t, float32(1), grass.Depth())

	water := sc.Get(ids[1])
	w, h = water.Size()
	assert.Equal(t, float32(32), w)
	assert.Equal(t, float32(16), h)
	sx, sy := water.Scale()
	assert.Equal(t, float32(2), sx)
	assert.Equal(t, float32(1), sy)
	assert.Equal(t, uint32(1), water.Binding().Slot)
}

func TestApplyManifestKeepsSuccessfulSprites(t *testing.T) {
	dir := t.TempDir()
	grass := writePNG(t, dir, "grass.png", color.RGBA{G: 255, A: 255})

	sc, _, _ := newTestScene(t)
	ids, err := ApplyManifest(sc, &Manifest{
		TextureArrays: []TextureArrayManifest{{Name: "tiles", Width: 4, Height: 4, Layers: 2}},
		Sprites: []SpriteManifest{
			{Array: "tiles", Texture: grass},
			{Array: "tiles", Texture: filepath.Join(dir, "missing.png")},
		},
	})
	require.Error(t, err)
	assert.Len(t, ids, 1)
	assert.Equal(t, 1, sc.Count())
}

func TestApplyManifestAnimatesFrames(t *testing.T) {
	dir := t.TempDir()
	frames := []string{
		writePNG(t, dir, "run0.png", color.RGBA{R: 255, A: 255}),
		writePNG(t, dir, "run1.png", color.RGBA{G: 255, A: 255}),
	}

	sc, _, _ := newTestScene(t)
	ids, err := ApplyManifest(sc, &Manifest{
		TextureArrays: []TextureArrayManifest{{Name: "hero", Width: 4, Height: 4, Layers: 2}},
		Sprites:       []SpriteManifest{{Array: "hero", Frames: frames, FPS: 4}},
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	hero := sc.Get(ids[0])
	assert.Equal(t, uint32(0), hero.Binding().Slot)

	sc.Update(0.25)
	assert.Equal(t, uint32(1), hero.Binding().Slot)

	sc.Update(0.25)
	assert.Equal(t, uint32(0), hero.Binding().Slot)
}

func TestValidateRequiresFrameRate(t *testing.T) {
	m := Manifest{
		TextureArrays: []TextureArrayManifest{{Name: "a", Width: 4, Height: 4, Layers: 1}},
		Sprites:       []SpriteManifest{{Array: "a", Frames: []string{"x.png"}}},
	}
	require.ErrorIs(t, m.Validate(), ErrInvalidManifest)
}
