package camera

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/bind_group_provider"
)

// cameraCount is an atomic counter used to generate unique bind group provider names for each camera instance.
var cameraCount atomic.Uint64

type cameraImpl struct {
	mu *sync.Mutex

	position [2]float32
	zoom     float32
	width    float32
	height   float32

	uniform GPUCameraUniform

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera defines the interface for the 2D camera.
// The camera looks at a world position through a viewport of fixed pixel size, scaled by a zoom factor,
// and produces the world-to-clip transform consumed by the sprite shader.
type Camera interface {
	// Position returns the world-space point at the center of the view.
	//
	// Returns:
	//   - x, y: the view center
	Position() (x, y float32)

	// Zoom returns the zoom factor. 1 shows one world unit per viewport pixel.
	//
	// Returns:
	//   - float32: the zoom factor
	Zoom() float32

	// Viewport returns the viewport size in pixels.
	//
	// Returns:
	//   - width, height: the viewport size
	Viewport() (width, height float32)

	// Bounds returns the world rectangle currently visible.
	//
	// Returns:
	//   - left, right, bottom, top: the visible world bounds
	Bounds() (left, right, bottom, top float32)

	// Uniform returns the GPU uniform for the current view.
	//
	// Returns:
	//   - GPUCameraUniform: the world-to-clip scale and offset
	Uniform() GPUCameraUniform

	// ScreenToWorld converts a viewport pixel coordinate (origin top-left, y down) to world space.
	//
	// Parameters:
	//   - sx, sy: the pixel coordinate
	//
	// Returns:
	//   - x, y: the world coordinate
	ScreenToWorld(sx, sy float32) (x, y float32)

	// BindGroupProvider returns the camera's bind group provider for GPU resources.
	// Returns nil if not set.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider or nil
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPosition moves the view center.
	//
	// Parameters:
	//   - x, y: the new view center
	SetPosition(x, y float32)

	// Pan moves the view center by a world-space delta.
	//
	// Parameters:
	//   - dx, dy: the offset to apply
	Pan(dx, dy float32)

	// SetZoom sets the zoom factor. Values <= 0 are ignored.
	//
	// Parameters:
	//   - zoom: the new zoom factor
	SetZoom(zoom float32)

	// SetViewport sets the viewport size in pixels, typically from a window resize.
	//
	// Parameters:
	//   - width, height: the new viewport size
	SetViewport(width, height float32)

	// SetBindGroupProvider sets the camera's bind group provider.
	//
	// Parameters:
	//   - provider: the bind group provider to set
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new 2D Camera centered on the origin with a zoom of 1 and a 1x1 viewport.
// Use WithViewport to match the window size.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		zoom:   1,
		width:  1,
		height: 1,
		bindGroupProvider: bind_group_provider.NewBindGroupProvider(
			"camera_" + strconv.FormatUint(cameraCount.Load(), 10),
		),
	}
	for _, option := range options {
		option(c)
	}
	c.updateUniform()
	cameraCount.Add(1)
	return c
}

func (c *cameraImpl) Position() (x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[0], c.position[1]
}

func (c *cameraImpl) Zoom() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *cameraImpl) Viewport() (width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *cameraImpl) Bounds() (left, right, bottom, top float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds()
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uniform
}

func (c *cameraImpl) ScreenToWorld(sx, sy float32) (x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	left, _, _, top := c.bounds()
	return left + sx/c.zoom, top - sy/c.zoom
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindGroupProvider
}

func (c *cameraImpl) SetPosition(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [2]float32{x, y}
	c.updateUniform()
}

func (c *cameraImpl) Pan(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position[0] += dx
	c.position[1] += dy
	c.updateUniform()
}

func (c *cameraImpl) SetZoom(zoom float32) {
	if zoom <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = zoom
	c.updateUniform()
}

func (c *cameraImpl) SetViewport(width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = width
	c.height = height
	c.updateUniform()
}

func (c *cameraImpl) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindGroupProvider = provider
}

// bounds returns the visible world rectangle. Caller must hold the mutex.
func (c *cameraImpl) bounds() (left, right, bottom, top float32) {
	hw := c.width / (2 * c.zoom)
	hh := c.height / (2 * c.zoom)
	return c.position[0] - hw, c.position[0] + hw, c.position[1] - hh, c.position[1] + hh
}

// updateUniform recomputes the world-to-clip transform. Caller must hold the mutex.
func (c *cameraImpl) updateUniform() {
	so := common.Ortho2D(c.bounds())
	c.uniform = GPUCameraUniform{
		Scale:  [2]float32{so[0], so[1]},
		Offset: [2]float32{so[2], so[3]},
	}
}
