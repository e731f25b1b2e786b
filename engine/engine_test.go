package engine

import (
	"image"
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
	"github.com/Carmen-Shannon/oxy-2d/engine/scene"
	"github.com/Carmen-Shannon/oxy-2d/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow is a Window that never opens; it only records the resize callback.
type fakeWindow struct {
	onResize func(width, height int)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(func())                                            {}
func (w *fakeWindow) SetResizeCallback(cb func(width, height int))                        { w.onResize = cb }
func (w *fakeWindow) SetScrollCallback(func(float32))                                     {}
func (w *fakeWindow) SetKeyDownCallback(func(window.Key))                                 {}
func (w *fakeWindow) SetKeyUpCallback(func(window.Key))                                   {}
func (w *fakeWindow) SetMouseButtonCallback(func(window.MouseButton, bool, int32, int32)) {}
func (w *fakeWindow) SetMouseMoveCallback(func(int32, int32))                             {}
func (w *fakeWindow) SetTitle(string)                                                     {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor                          { return nil }
func (w *fakeWindow) IsRunning() bool                                                     { return false }
func (w *fakeWindow) Close() error                                                        { return nil }
func (w *fakeWindow) ProcessMessages()                                                    {}
func (w *fakeWindow) Width() int                                                          { return 800 }
func (w *fakeWindow) Height() int                                                         { return 600 }

func newTestRenderer(t *testing.T) (renderer.Renderer, *renderertest.Backend) {
	t.Helper()
	s, err := shader.Compile(shader.SpriteKey, shader.SpriteSource)
	require.NoError(t, err)
	backend := renderertest.New()
	r, err := renderer.NewRendererWithBackend(backend, 800, 600,
		renderer.WithPipeline(pipeline.NewPipeline(shader.SpriteKey, pipeline.WithShader(s))))
	require.NoError(t, err)
	return r, backend
}

func newSpriteScene(t *testing.T, name string, r renderer.Renderer, active bool) scene.Scene {
	t.Helper()
	sc, err := scene.NewScene(name, camera.NewCamera(camera.WithViewport(800, 600)), r, scene.WithActive(active))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), name+".png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, f.Close())

	binding, err := sc.AddTexture(path, texture_array.Descriptor{Width: 2, Height: 2, LayerCount: 1})
	require.NoError(t, err)
	sc.Add(render_object.NewRenderObject(render_object.WithBinding(binding)))
	return sc
}

func TestRenderFrameDrawsActiveScenesOnce(t *testing.T) {
	r, backend := newTestRenderer(t)
	active := newSpriteScene(t, "active", r, true)
	inactive := newSpriteScene(t, "inactive", r, false)

	var rendered float32
	e := NewEngine(WithScene(1, active), WithScene(0, inactive), WithProfiling(true)).(*engine)
	e.SetRenderCallback(func(dt float32) { rendered = dt })

	e.renderFrame(0.5)

	assert.Equal(t, 1, backend.Frames)
	assert.Equal(t, 1, backend.Presented)
	require.Len(t, backend.Draws, 1)
	assert.Same(t, active.Camera().BindGroupProvider(), backend.Draws[0].BindGroups[0])
	assert.Equal(t, float32(0.5), rendered)
}

func TestRenderFrameWithoutScenes(t *testing.T) {
	called := false
	e := NewEngine().(*engine)
	e.SetRenderCallback(func(float32) { called = true })

	e.renderFrame(0)
	assert.True(t, called)
}

func TestResizeUpdatesRenderersAndCameras(t *testing.T) {
	r, backend := newTestRenderer(t)
	sc := newSpriteScene(t, "main", r, true)
	w := &fakeWindow{}

	NewEngine(WithWindow(w), WithScene(0, sc))
	require.NotNil(t, w.onResize)

	w.onResize(1024, 768)

	assert.Equal(t, [2]int{1024, 768}, backend.Configured[len(backend.Configured)-1])
	width, height := sc.Camera().Viewport()
	assert.Equal(t, float32(1024), width)
	assert.Equal(t, float32(768), height)
}

func TestSceneRegistry(t *testing.T) {
	r, _ := newTestRenderer(t)
	sc := newSpriteScene(t, "main", r, true)
	e := NewEngine()

	e.AddScene(3, sc)
	assert.Same(t, sc, e.Scene(3))

	scenes := e.Scenes()
	delete(scenes, 3)
	assert.Len(t, e.Scenes(), 1)

	e.RemoveScene(3)
	assert.Nil(t, e.Scene(3))
}

func TestRunReturnsAfterQuit(t *testing.T) {
	e := NewEngine(WithTickRate(1000), WithRenderFrameLimit(1000))
	ticks := 0
	e.SetTickCallback(func(float32) {
		ticks++
		if ticks == 3 {
			e.Quit()
		}
	})

	e.Run()
	e.Quit()
	assert.GreaterOrEqual(t, ticks, 3)
}
