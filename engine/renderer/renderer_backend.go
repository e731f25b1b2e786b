package renderer

import (
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the graphics API backend used by the renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display.
type PresentMode int

const (
	// PresentModeVSync synchronizes presentation with the display refresh rate (Fifo).
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical sync.
	PresentModeUncapped
)

// MSAASampleCount is the number of samples per pixel of the main render pass.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisampling.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisampling. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the GPU API specific half of the renderer. It owns the surface, the
// device and the per-frame command state, while the Renderer owns the pipeline cache and
// resource initialization.
type RendererBackend interface {
	// ConfigureSurface (re)configures the swapchain and the multisample target.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	ConfigureSurface(width, height int)

	SetPresentMode(mode PresentMode)

	SetClearColor(color wgpu.Color)

	// Device returns the device capability used for resource creation.
	//
	// Returns:
	//   - device.Device: the device
	Device() device.Device

	// Queue returns the queue capability used for resource uploads.
	//
	// Returns:
	//   - device.Queue: the queue
	Queue() device.Queue

	// RegisterRenderPipeline compiles the pipeline's shader and creates the GPU pipeline
	// against the layout held by the pipeline's effect.
	//
	// Parameters:
	//   - p: the pipeline, with its shader and effect set
	//
	// Returns:
	//   - error: an error if the shader module or the pipeline could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	BeginFrame() error

	// DrawCall records an indexed draw of a mesh with the given bind groups bound in order.
	//
	// Parameters:
	//   - p: the pipeline to draw with
	//   - meshProvider: the provider holding the vertex and index buffers
	//   - bindGroups: the providers whose bind groups are bound at indices 0..n-1
	//
	// Returns:
	//   - error: an error if no frame is active or a resource is not a GPU handle
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	EndFrame() error

	Present()

	Release()
}
