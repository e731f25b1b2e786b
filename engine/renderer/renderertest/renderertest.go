// Package renderertest provides a recording renderer.RendererBackend backed by a devicetest device.
package renderertest

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Draw records a single DrawCall.
type Draw struct {
	PipelineKey string
	Mesh        bind_group_provider.BindGroupProvider
	IndexCount  int
	BindGroups  []bind_group_provider.BindGroupProvider
}

// Backend records every backend call. Resources are created on Dev.
type Backend struct {
	mu sync.Mutex

	Dev *devicetest.Device

	Configured  [][2]int
	PresentMode renderer.PresentMode
	ClearColor  wgpu.Color
	Registered  []string
	Draws       []Draw
	Frames      int
	Presented   int
	Released    bool

	// RegisterErr, when set, is returned by RegisterRenderPipeline.
	RegisterErr error
}

var _ renderer.RendererBackend = &Backend{}

// New creates a Backend on a fresh recording device.
//
// Returns:
//   - *Backend: the backend
func New() *Backend {
	return &Backend{Dev: devicetest.New()}
}

func (b *Backend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Configured = append(b.Configured, [2]int{width, height})
}

func (b *Backend) SetPresentMode(mode renderer.PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.PresentMode = mode
}

func (b *Backend) SetClearColor(color wgpu.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ClearColor = color
}

func (b *Backend) Device() device.Device {
	return b.Dev
}

func (b *Backend) Queue() device.Queue {
	return b.Dev
}

func (b *Backend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.RegisterErr != nil {
		return b.RegisterErr
	}
	b.Registered = append(b.Registered, p.PipelineKey())
	return nil
}

func (b *Backend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Frames++
	return nil
}

func (b *Backend) DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Draws = append(b.Draws, Draw{
		PipelineKey: p.PipelineKey(),
		Mesh:        meshProvider,
		IndexCount:  meshProvider.IndexCount(),
		BindGroups:  append([]bind_group_provider.BindGroupProvider(nil), bindGroups...),
	})
	return nil
}

func (b *Backend) EndFrame() error {
	return nil
}

func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Presented++
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Released = true
}
