// Package device defines the GPU capabilities consumed by the binding and texture-array layers.
// The renderer passes a Device and a Queue explicitly to every component that allocates GPU
// objects, so the same code runs against the WebGPU adapter in this package or against the
// recording fake in devicetest.
package device

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupLayout is an opaque handle to a created bind group layout.
type BindGroupLayout interface {
	Release()
}

// PipelineLayout is an opaque handle to a created pipeline layout.
type PipelineLayout interface {
	Release()
}

// TextureView is an opaque handle to a view over a texture.
type TextureView interface {
	Release()
}

// Sampler is an opaque handle to a created sampler.
type Sampler interface {
	Release()
}

// BindGroup is an opaque handle to a bind group.
type BindGroup interface {
	Release()
}

// Buffer is an opaque handle to a GPU buffer.
type Buffer interface {
	Release()
}

// Texture is a handle to a GPU texture that can produce views of itself.
type Texture interface {
	// CreateView creates a view over the texture.
	//
	// Parameters:
	//   - desc: the view descriptor, or nil for a default view
	//
	// Returns:
	//   - TextureView: the created view
	//   - error: error if the device rejects the view
	CreateView(desc *wgpu.TextureViewDescriptor) (TextureView, error)

	Release()
}

// PipelineLayoutDescriptor describes a pipeline layout in terms of device handles.
type PipelineLayoutDescriptor struct {
	Label string

	// BindGroupLayouts are the layouts in group-index order.
	BindGroupLayouts []BindGroupLayout

	// ImmediateSize is the number of push-constant bytes reserved for the vertex and fragment stages.
	ImmediateSize uint32
}

// BindGroupEntry binds one resource to a slot. Exactly one of Buffer, Sampler or TextureView is set.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	Offset      uint64
	Size        uint64
	Sampler     Sampler
	TextureView TextureView
}

// BindGroupDescriptor describes a bind group created against a layout.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// TextureCopy identifies the destination of a texture write.
type TextureCopy struct {
	Texture  Texture
	MipLevel uint32
	Origin   wgpu.Origin3D
	Aspect   wgpu.TextureAspect
}

// Device is the resource-allocation capability of a GPU device.
type Device interface {
	// CreateBindGroupLayout creates a bind group layout from a wgpu descriptor.
	//
	// Parameters:
	//   - desc: the layout descriptor
	//
	// Returns:
	//   - BindGroupLayout: the created layout
	//   - error: error if the device rejects the layout, e.g. when binding limits are exceeded
	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (BindGroupLayout, error)

	// CreatePipelineLayout creates a pipeline layout from bind group layouts in group order.
	//
	// Parameters:
	//   - desc: the pipeline layout descriptor
	//
	// Returns:
	//   - PipelineLayout: the created layout
	//   - error: error if the device rejects the layout
	CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayout, error)

	// CreateTexture allocates a texture.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - Texture: the created texture
	//   - error: error if allocation fails
	CreateTexture(desc *wgpu.TextureDescriptor) (Texture, error)

	// CreateSampler creates a sampler.
	//
	// Parameters:
	//   - desc: the sampler descriptor
	//
	// Returns:
	//   - Sampler: the created sampler
	//   - error: error if creation fails
	CreateSampler(desc *wgpu.SamplerDescriptor) (Sampler, error)

	// CreateBindGroup creates a bind group from a layout and a resource list.
	//
	// Parameters:
	//   - desc: the bind group descriptor
	//
	// Returns:
	//   - BindGroup: the created bind group
	//   - error: error if the resources do not match the layout
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)

	// CreateBuffer allocates a buffer.
	//
	// Parameters:
	//   - desc: the buffer descriptor
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: error if allocation fails
	CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error)
}

// Queue is the data-transfer capability of a GPU queue.
type Queue interface {
	// WriteTexture copies data into a region of a texture.
	//
	// Parameters:
	//   - dst: the destination texture, mip level, origin and aspect
	//   - data: the source bytes
	//   - layout: the layout of data in memory
	//   - size: the extent of the region written
	//
	// Returns:
	//   - error: error if the write is rejected
	WriteTexture(dst *TextureCopy, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error

	// WriteBuffer copies data into a buffer at the given byte offset.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the byte offset into the buffer
	//   - data: the source bytes
	//
	// Returns:
	//   - error: error if the write is rejected
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
}
