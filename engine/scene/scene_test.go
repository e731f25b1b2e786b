package scene

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-2d/engine/camera"
	"github.com/Carmen-Shannon/oxy-2d/engine/render_object"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/texture_array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScene(t *testing.T, options ...SceneBuilderOption) (Scene, renderer.Renderer, *renderertest.Backend) {
	t.Helper()
	s, err := shader.Compile(shader.SpriteKey, shader.SpriteSource)
	require.NoError(t, err)

	backend := renderertest.New()
	r, err := renderer.NewRendererWithBackend(backend, 800, 600,
		renderer.WithPipeline(pipeline.NewPipeline(shader.SpriteKey, pipeline.WithShader(s))))
	require.NoError(t, err)

	sc, err := NewScene("test", camera.NewCamera(camera.WithViewport(800, 600)), r, options...)
	require.NoError(t, err)
	return sc, r, backend
}

func writePNG(t *testing.T, dir, name string, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

var smallArray = texture_array.Descriptor{Width: 4, Height: 4, LayerCount: 4}

func TestNewSceneInitializesCameraBindGroup(t *testing.T) {
	sc, _, backend := newTestScene(t)

	assert.Equal(t, 0, sc.(*scene).cameraGroup)
	assert.Equal(t, 1, sc.(*scene).textureGroup)

	require.Len(t, backend.Dev.Buffers, 1)
	camBuf := backend.Dev.Buffers[0]
	assert.Equal(t, uint64(16), camBuf.Desc.Size)

	provider := sc.Camera().BindGroupProvider()
	require.NotNil(t, provider.BindGroup())
	assert.Same(t, camBuf, provider.Buffer(0))

	u := sc.Camera().Uniform()
	assert.Equal(t, u.Marshal(), camBuf.Data)
}

func TestNewSceneMissingPipeline(t *testing.T) {
	r, err := renderer.NewRendererWithBackend(renderertest.New(), 800, 600)
	require.NoError(t, err)

	_, err = NewScene("empty", camera.NewCamera(), r)
	require.ErrorIs(t, err, renderer.ErrPipelineNotFound)
}

func TestNewScenePanicsOnNilArguments(t *testing.T) {
	r, err := renderer.NewRendererWithBackend(renderertest.New(), 800, 600)
	require.NoError(t, err)

	assert.Panics(t, func() { _, _ = NewScene("a", nil, r) })
	assert.Panics(t, func() { _, _ = NewScene("a", camera.NewCamera(), nil) })
}

func TestSceneObjectRegistry(t *testing.T) {
	preset := render_object.NewRenderObject()
	sc, _, _ := newTestScene(t, WithObjects(preset), WithActive(true))

	assert.True(t, sc.Active())
	assert.Equal(t, uint64(1), preset.ID())

	a := render_object.NewRenderObject()
	b := render_object.NewRenderObject(render_object.WithID(42))
	assert.Equal(t, uint64(2), sc.Add(a))
	assert.Equal(t, uint64(42), sc.Add(b))
	assert.Equal(t, 3, sc.Count())
	assert.Same(t, b, sc.Get(42))

	sc.Remove(2)
	sc.Remove(99)
	assert.Nil(t, sc.Get(2))
	assert.Equal(t, 2, sc.Count())

	sc.Clear()
	assert.Zero(t, sc.Count())
}

func TestAddTextureUsesPipelineLayout(t *testing.T) {
	sc, r, backend := newTestScene(t)
	path := writePNG(t, t.TempDir(), "red.png", color.RGBA{R: 255, A: 255})

	binding, err := sc.AddTexture(path, smallArray)
	require.NoError(t, err)
	require.NotNil(t, binding.Array)

	layout := r.Pipeline(shader.SpriteKey).Effect().BindGroupLayout(1)
	assert.Same(t, layout, binding.Array.Descriptor().Layout)
	assert.NotNil(t, binding.Array.BindGroupProvider().BindGroup())
	assert.Len(t, backend.Dev.BindGroups, 2)

	again, err := sc.AddTexture(path, smallArray)
	require.NoError(t, err)
	assert.Equal(t, binding, again)
	assert.Len(t, sc.Textures().Arrays(), 1)
}

func TestPrepareBatchesByArray(t *testing.T) {
	sc, r, backend := newTestScene(t)
	dir := t.TempDir()
	red := writePNG(t, dir, "red.png", color.RGBA{R: 255, A: 255})
	blue := writePNG(t, dir, "blue.png", color.RGBA{B: 255, A: 255})

	bindings, err := sc.AddTextures([]string{red, blue}, smallArray)
	require.NoError(t, err)
	other, err := sc.AddTexture(red, texture_array.Descriptor{Width: 8, Height: 8, LayerCount: 2})
	require.NoError(t, err)

	sc.Add(render_object.NewRenderObject(render_object.WithBinding(bindings[0])))
	sc.Add(render_object.NewRenderObject(render_object.WithBinding(bindings[1])))
	sc.Add(render_object.NewRenderObject(render_object.WithBinding(other)))
	sc.Add(render_object.NewRenderObject(render_object.WithBinding(other), render_object.WithEnabled(false)))

	require.NoError(t, sc.Prepare())
	require.NoError(t, r.BeginFrame())
	require.NoError(t, sc.DrawCalls())

	require.Len(t, backend.Draws, 2)
	drawCalls, sprites := sc.DrawStats()
	assert.Equal(t, 2, drawCalls)
	assert.Equal(t, 3, sprites)
	assert.Equal(t, 12, backend.Draws[0].IndexCount)
	assert.Equal(t, 6, backend.Draws[1].IndexCount)

	camProvider := sc.Camera().BindGroupProvider()
	for i, array := range []texture_array.TextureArray{bindings[0].Array, other.Array} {
		draw := backend.Draws[i]
		require.Len(t, draw.BindGroups, 2)
		assert.Same(t, camProvider, draw.BindGroups[0])
		assert.Same(t, array.BindGroupProvider(), draw.BindGroups[1])
	}
}

func TestPrepareSortsByDepthThenID(t *testing.T) {
	sc, _, _ := newTestScene(t)
	binding, err := sc.AddTexture(writePNG(t, t.TempDir(), "a.png", color.RGBA{A: 255}), smallArray)
	require.NoError(t, err)

	back := render_object.NewRenderObject(render_object.WithBinding(binding), render_object.WithDepth(-1))
	first := render_object.NewRenderObject(render_object.WithBinding(binding))
	second := render_object.NewRenderObject(render_object.WithBinding(binding))
	sc.Add(first)
	sc.Add(second)
	sc.Add(back)

	require.NoError(t, sc.Prepare())

	impl := sc.(*scene)
	require.Len(t, impl.batchOrder, 1)
	objects := impl.batches[impl.batchOrder[0]].objects
	assert.Equal(t, []render_object.RenderObject{back, first, second}, objects)
}

func TestPrepareReusesBuffersWhenSizeIsUnchanged(t *testing.T) {
	sc, _, backend := newTestScene(t)
	binding, err := sc.AddTexture(writePNG(t, t.TempDir(), "a.png", color.RGBA{G: 255, A: 255}), smallArray)
	require.NoError(t, err)

	obj := render_object.NewRenderObject(render_object.WithBinding(binding))
	sc.Add(obj)

	require.NoError(t, sc.Prepare())
	buffers := len(backend.Dev.Buffers)

	obj.SetPosition(10, 20)
	require.NoError(t, sc.Prepare())
	assert.Len(t, backend.Dev.Buffers, buffers)

	sc.Add(render_object.NewRenderObject(render_object.WithBinding(binding)))
	require.NoError(t, sc.Prepare())
	assert.Len(t, backend.Dev.Buffers, buffers+2)
	assert.True(t, backend.Dev.Buffers[buffers-2].Released)
	assert.True(t, backend.Dev.Buffers[buffers-1].Released)
}

func TestDrawCallsSkipsEmptyBatches(t *testing.T) {
	sc, r, backend := newTestScene(t)
	binding, err := sc.AddTexture(writePNG(t, t.TempDir(), "a.png", color.RGBA{A: 255}), smallArray)
	require.NoError(t, err)

	obj := render_object.NewRenderObject(render_object.WithBinding(binding))
	sc.Add(obj)
	require.NoError(t, sc.Prepare())

	obj.SetEnabled(false)
	require.NoError(t, sc.Prepare())
	require.NoError(t, r.BeginFrame())
	require.NoError(t, sc.DrawCalls())
	assert.Empty(t, backend.Draws)
}

func TestDrawCallsSkipsObjectsWithoutArray(t *testing.T) {
	sc, _, backend := newTestScene(t)
	sc.Add(render_object.NewRenderObject())

	require.NoError(t, sc.Prepare())
	require.NoError(t, sc.DrawCalls())
	assert.Empty(t, backend.Draws)
}

func TestPrepareWritesCamera(t *testing.T) {
	sc, _, backend := newTestScene(t)
	sc.Camera().SetPosition(100, 50)

	require.NoError(t, sc.Prepare())

	u := sc.Camera().Uniform()
	assert.Equal(t, u.Marshal(), backend.Dev.Buffers[0].Data)
}

func TestSceneRelease(t *testing.T) {
	sc, _, backend := newTestScene(t)
	binding, err := sc.AddTexture(writePNG(t, t.TempDir(), "a.png", color.RGBA{A: 255}), smallArray)
	require.NoError(t, err)
	sc.Add(render_object.NewRenderObject(render_object.WithBinding(binding)))
	require.NoError(t, sc.Prepare())

	sc.Release()

	for _, buf := range backend.Dev.Buffers {
		assert.True(t, buf.Released)
	}
	for _, bg := range backend.Dev.BindGroups {
		assert.True(t, bg.Released)
	}
	for _, tex := range backend.Dev.Textures {
		assert.True(t, tex.Released)
	}
	assert.Empty(t, sc.Textures().Arrays())
}
