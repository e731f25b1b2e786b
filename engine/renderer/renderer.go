package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/shader_effect"
	"github.com/Carmen-Shannon/oxy-2d/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrPipelineNotFound is returned when a draw call names a pipeline key that was never registered.
var ErrPipelineNotFound = errors.New("render pipeline not found")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	// pipelineCache maps pipeline keys to registered pipelines.
	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Options applied when the backend is created.
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *wgpu.Color
	pendingPipelines     []pipeline.Pipeline
}

// Renderer owns the GPU backend, the pipeline cache and the creation of mesh and bind group resources.
// A frame is recorded with BeginFrame, any number of DrawCall invocations, EndFrame and Present.
type Renderer interface {
	// Device returns the device capability. Texture arrays and shader effects are created against it.
	//
	// Returns:
	//   - device.Device: the device
	Device() device.Device

	// Queue returns the queue capability used for uploads.
	//
	// Returns:
	//   - device.Queue: the queue
	Queue() device.Queue

	// Pipeline retrieves a registered pipeline by key.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline, or nil if not registered
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: the registered pipelines keyed by pipeline key
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines reflects each pipeline's shader, synthesizes its bind group and pipeline layouts,
	// and creates the GPU pipeline. Keys that are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: the first registration failure; earlier pipelines stay registered
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface for a new framebuffer size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	SetPresentMode(mode PresentMode)

	SetClearColor(color wgpu.Color)

	// InitMeshBuffers creates the vertex and index buffers of a mesh and uploads their contents.
	// Buffers previously held by the provider are released.
	//
	// Parameters:
	//   - provider: the mesh provider that receives the buffers
	//   - vertexData: the packed vertex bytes
	//   - indexData: the packed uint32 index bytes
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if a buffer could not be created or written
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the buffers a bind group needs and the bind group itself. Buffer bindings
	// are created on demand, sized from bufferSizes and falling back to the entry's MinBindingSize.
	// Texture and sampler bindings must already be present on the provider.
	//
	// Parameters:
	//   - provider: the provider that receives the buffers and the bind group
	//   - layout: the bind group layout, typically taken from a shader effect
	//   - entries: the layout entries of the group
	//   - bufferSizes: buffer sizes keyed by binding index
	//
	// Returns:
	//   - error: an error if a resource is missing or could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, layout device.BindGroupLayout, entries []wgpu.BindGroupLayoutEntry, bufferSizes map[int]uint64) error

	// WriteBuffers applies a batch of buffer writes. Writes to bindings without a buffer are skipped.
	//
	// Parameters:
	//   - writes: the writes to apply
	//
	// Returns:
	//   - error: the joined errors of every write that failed
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	BeginFrame() error

	// DrawCall records an indexed draw using a registered pipeline.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered pipeline
	//   - meshProvider: the provider holding the vertex and index buffers
	//   - bindGroups: one provider per bind group of the pipeline, in group order
	//
	// Returns:
	//   - error: an error wrapping ErrPipelineNotFound for an unknown key, or a bind group count mismatch
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	EndFrame() error

	Present()

	// Release frees every registered pipeline and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for a window.
//
// Parameters:
//   - backendType: the graphics backend to use
//   - window: the window whose surface is rendered to
//   - options: builder options
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if a pipeline passed with WithPipeline could not be registered
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	return r, r.init(window.Width(), window.Height())
}

// NewRendererWithBackend creates a Renderer on top of an existing backend, for hosts that manage
// their own surface or have no window at all.
//
// Parameters:
//   - backend: the backend to render with
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - options: builder options; WithMSAA and WithForceSoftwareRenderer are ignored
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if a pipeline passed with WithPipeline could not be registered
func NewRendererWithBackend(backend RendererBackend, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backend:       backend,
	}
	for _, opt := range options {
		opt(r)
	}
	return r, r.init(width, height)
}

func (r *renderer) init(width, height int) error {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}
	r.backend.ConfigureSurface(width, height)

	pending := r.pendingPipelines
	r.pendingPipelines = nil
	return r.RegisterPipelines(pending...)
}

func (r *renderer) Device() device.Device {
	return r.backend.Device()
}

func (r *renderer) Queue() device.Queue {
	return r.backend.Queue()
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(color wgpu.Color) {
	r.backend.SetClearColor(color)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.registerPipeline(p); err != nil {
			common.Logger().Error("pipeline registration failed", "pipeline", key, "error", err)
			return err
		}
		r.pipelineCache[key] = p
		common.Logger().Debug("pipeline registered", "pipeline", key, "groups", len(p.Effect().BindGroupLayouts()))
	}
	return nil
}

func (r *renderer) registerPipeline(p pipeline.Pipeline) error {
	if p.Shader() == nil {
		return fmt.Errorf("pipeline %q: no shader set", p.PipelineKey())
	}

	reflected, err := shader.Reflect(p.Shader())
	if err != nil {
		return fmt.Errorf("pipeline %q: %w", p.PipelineKey(), err)
	}

	effect, err := shader_effect.NewShaderEffect(r.backend.Device(), reflected, shader_effect.WithLabel(p.PipelineKey()))
	if err != nil {
		return fmt.Errorf("pipeline %q: %w", p.PipelineKey(), err)
	}
	p.SetEffect(effect)

	if err := r.backend.RegisterRenderPipeline(p); err != nil {
		p.SetEffect(nil)
		effect.Release()
		return err
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	dev, queue := r.backend.Device(), r.backend.Queue()

	if len(vertexData) > 0 {
		buf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Vertex Buffer",
			Size:  uint64(len(vertexData)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("mesh %s: vertex buffer: %w", provider.Label(), err)
		}
		if err := queue.WriteBuffer(buf, 0, vertexData); err != nil {
			buf.Release()
			return fmt.Errorf("mesh %s: vertex upload: %w", provider.Label(), err)
		}
		if old := provider.VertexBuffer(); old != nil {
			old.Release()
		}
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("mesh %s: index buffer: %w", provider.Label(), err)
		}
		if err := queue.WriteBuffer(buf, 0, indexData); err != nil {
			buf.Release()
			return fmt.Errorf("mesh %s: index upload: %w", provider.Label(), err)
		}
		if old := provider.IndexBuffer(); old != nil {
			old.Release()
		}
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)
	return nil
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, layout device.BindGroupLayout, entries []wgpu.BindGroupLayoutEntry, bufferSizes map[int]uint64) error {
	if len(entries) == 0 {
		return nil
	}
	if layout == nil {
		return fmt.Errorf("bind group %s: no layout", provider.Label())
	}
	dev := r.backend.Device()

	groupEntries := make([]device.BindGroupEntry, len(entries))
	for i, entry := range entries {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined ||
			entry.StorageTexture.Format != wgpu.TextureFormatUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		switch {
		case isTexture:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("bind group %s: texture binding %d has no texture view", provider.Label(), binding)
			}
			groupEntries[i] = device.BindGroupEntry{Binding: entry.Binding, TextureView: tv}
		case isSampler:
			s := provider.Sampler(binding)
			if s == nil {
				return fmt.Errorf("bind group %s: sampler binding %d has no sampler", provider.Label(), binding)
			}
			groupEntries[i] = device.BindGroupEntry{Binding: entry.Binding, Sampler: s}
		default:
			buf := provider.Buffer(binding)
			if buf == nil {
				usage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
				if entry.Buffer.Type == wgpu.BufferBindingTypeUniform {
					usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
				}
				size := entry.Buffer.MinBindingSize
				if override, ok := bufferSizes[binding]; ok {
					size = override
				}
				if size == 0 {
					return fmt.Errorf("bind group %s: buffer binding %d has no size", provider.Label(), binding)
				}
				var err error
				buf, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
					Size:  size,
					Usage: usage,
				})
				if err != nil {
					return fmt.Errorf("bind group %s: buffer binding %d: %w", provider.Label(), binding, err)
				}
				provider.SetBuffer(binding, buf)
			}
			groupEntries[i] = device.BindGroupEntry{Binding: entry.Binding, Buffer: buf}
		}
	}

	bg, err := dev.CreateBindGroup(&device.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: groupEntries,
	})
	if err != nil {
		return fmt.Errorf("bind group %s: %w", provider.Label(), err)
	}
	if old := provider.BindGroup(); old != nil {
		old.Release()
	}
	provider.SetBindGroupLayout(layout)
	provider.SetBindGroup(bg)
	return nil
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	queue := r.backend.Queue()

	var errs []error
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		if err := queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			errs = append(errs, fmt.Errorf("%s binding %d: %w", w.Provider.Label(), w.Binding, err))
		}
	}
	return errors.Join(errs...)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()
	if !exists {
		return fmt.Errorf("%w: %q", ErrPipelineNotFound, pipelineKey)
	}
	if want := len(p.Effect().BindGroupLayouts()); len(bindGroups) != want {
		return fmt.Errorf("pipeline %q: got %d bind groups, want %d", pipelineKey, len(bindGroups), want)
	}
	return r.backend.DrawCall(p, meshProvider, bindGroups)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.backend.Release()
}
