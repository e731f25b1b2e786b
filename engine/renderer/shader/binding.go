package shader

import (
	"cmp"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ResourceKindType tags the variant held by a ResourceKind.
type ResourceKindType int

const (
	// ResourceKindUniformBuffer is an aggregate bound in the uniform address space.
	ResourceKindUniformBuffer ResourceKindType = iota
	// ResourceKindStorageBuffer is an aggregate bound in the storage address space.
	ResourceKindStorageBuffer
	// ResourceKindSampledTexture is a sampled (non-depth, non-storage) texture.
	ResourceKindSampledTexture
	// ResourceKindStorageTexture is a storage texture.
	ResourceKindStorageTexture
	// ResourceKindSampler is a sampler.
	ResourceKindSampler
	// ResourceKindDepth is a depth texture.
	ResourceKindDepth
)

func (t ResourceKindType) String() string {
	switch t {
	case ResourceKindUniformBuffer:
		return "uniform_buffer"
	case ResourceKindStorageBuffer:
		return "storage_buffer"
	case ResourceKindSampledTexture:
		return "sampled_texture"
	case ResourceKindStorageTexture:
		return "storage_texture"
	case ResourceKindSampler:
		return "sampler"
	case ResourceKindDepth:
		return "depth"
	default:
		return fmt.Sprintf("ResourceKindType(%d)", int(t))
	}
}

// ResourceKind is the classified shape of a bound resource. Only the fields belonging
// to Type are meaningful; build values with the constructor functions below.
type ResourceKind struct {
	Type ResourceKindType

	// ReadOnly applies to storage buffers.
	ReadOnly bool

	// Dimension applies to sampled, storage and depth textures.
	Dimension wgpu.TextureViewDimension

	// SampleType applies to sampled textures.
	SampleType wgpu.TextureSampleType

	// Multisampled applies to sampled and depth textures.
	Multisampled bool

	// Access and Format apply to storage textures.
	Access wgpu.StorageTextureAccess
	Format wgpu.TextureFormat

	// Filtering applies to samplers.
	Filtering bool
}

// UniformBuffer returns the uniform buffer kind.
func UniformBuffer() ResourceKind {
	return ResourceKind{Type: ResourceKindUniformBuffer}
}

// StorageBuffer returns a storage buffer kind.
func StorageBuffer(readOnly bool) ResourceKind {
	return ResourceKind{Type: ResourceKindStorageBuffer, ReadOnly: readOnly}
}

// SampledTexture returns a sampled texture kind.
func SampledTexture(dim wgpu.TextureViewDimension, sampleType wgpu.TextureSampleType, multisampled bool) ResourceKind {
	return ResourceKind{Type: ResourceKindSampledTexture, Dimension: dim, SampleType: sampleType, Multisampled: multisampled}
}

// StorageTexture returns a storage texture kind.
func StorageTexture(access wgpu.StorageTextureAccess, format wgpu.TextureFormat, dim wgpu.TextureViewDimension) ResourceKind {
	return ResourceKind{Type: ResourceKindStorageTexture, Access: access, Format: format, Dimension: dim}
}

// Sampler returns a sampler kind.
func Sampler(filtering bool) ResourceKind {
	return ResourceKind{Type: ResourceKindSampler, Filtering: filtering}
}

// Depth returns a depth texture kind.
func Depth(dim wgpu.TextureViewDimension, multisampled bool) ResourceKind {
	return ResourceKind{Type: ResourceKindDepth, Dimension: dim, Multisampled: multisampled}
}

// Entry converts the kind into a bind group layout entry.
//
// Parameters:
//   - slot: the binding index of the entry
//   - visibility: the shader stages that can access the binding
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the populated layout entry
func (k ResourceKind) Entry(slot uint32, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    slot,
		Visibility: visibility,
	}

	switch k.Type {
	case ResourceKindUniformBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case ResourceKindStorageBuffer:
		if k.ReadOnly {
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		} else {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	case ResourceKindSampledTexture:
		entry.Texture.SampleType = k.SampleType
		entry.Texture.ViewDimension = k.Dimension
		entry.Texture.Multisampled = k.Multisampled
	case ResourceKindStorageTexture:
		entry.StorageTexture.Access = k.Access
		entry.StorageTexture.Format = k.Format
		entry.StorageTexture.ViewDimension = k.Dimension
	case ResourceKindSampler:
		if k.Filtering {
			entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		} else {
			entry.Sampler.Type = wgpu.SamplerBindingTypeNonFiltering
		}
	case ResourceKindDepth:
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = k.Dimension
		entry.Texture.Multisampled = k.Multisampled
	}

	return entry
}

func (k ResourceKind) String() string {
	switch k.Type {
	case ResourceKindStorageBuffer:
		return fmt.Sprintf("storage_buffer{read_only=%t}", k.ReadOnly)
	case ResourceKindSampledTexture:
		return fmt.Sprintf("sampled_texture{dim=%v sample=%v ms=%t}", k.Dimension, k.SampleType, k.Multisampled)
	case ResourceKindStorageTexture:
		return fmt.Sprintf("storage_texture{access=%v format=%v dim=%v}", k.Access, k.Format, k.Dimension)
	case ResourceKindSampler:
		return fmt.Sprintf("sampler{filtering=%t}", k.Filtering)
	case ResourceKindDepth:
		return fmt.Sprintf("depth{dim=%v ms=%t}", k.Dimension, k.Multisampled)
	default:
		return k.Type.String()
	}
}

// BindingInfo is one reflected resource binding.
type BindingInfo struct {
	Group   uint32
	Binding uint32
	Kind    ResourceKind
}

// compareBindings orders bindings by group, then binding.
func compareBindings(a, b BindingInfo) int {
	if c := cmp.Compare(a.Group, b.Group); c != 0 {
		return c
	}
	return cmp.Compare(a.Binding, b.Binding)
}
