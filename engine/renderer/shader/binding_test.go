package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestResourceKindEntry(t *testing.T) {
	vis := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

	tests := []struct {
		name  string
		kind  ResourceKind
		check func(t *testing.T, e wgpu.BindGroupLayoutEntry)
	}{
		{"uniform", UniformBuffer(), func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.BufferBindingTypeUniform, e.Buffer.Type)
		}},
		{"storage read only", StorageBuffer(true), func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, e.Buffer.Type)
		}},
		{"storage writable", StorageBuffer(false), func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.BufferBindingTypeStorage, e.Buffer.Type)
		}},
		{"sampled", SampledTexture(wgpu.TextureViewDimension2DArray, wgpu.TextureSampleTypeUint, false), func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.TextureSampleTypeUint, e.Texture.SampleType)
			assert.Equal(t, wgpu.TextureViewDimension2DArray, e.Texture.ViewDimension)
			assert.False(t, e.Texture.Multisampled)
		}},
		{"storage texture", StorageTexture(wgpu.StorageTextureAccessWriteOnly, wgpu.TextureFormatR8Unorm, wgpu.TextureViewDimension2D), func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.StorageTextureAccessWriteOnly, e.StorageTexture.Access)
			assert.Equal(t, wgpu.TextureFormatR8Unorm, e.StorageTexture.Format)
		}},
		{"sampler", Sampler(true), func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.SamplerBindingTypeFiltering, e.Sampler.Type)
		}},
		{"depth", Depth(wgpu.TextureViewDimension2D, true), func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
			assert.Equal(t, wgpu.TextureSampleTypeDepth, e.Texture.SampleType)
			assert.True(t, e.Texture.Multisampled)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.kind.Entry(7, vis)
			assert.Equal(t, uint32(7), e.Binding)
			assert.Equal(t, vis, e.Visibility)
			tt.check(t, e)
		})
	}
}

func TestNewReflectedShaderCopiesAndSorts(t *testing.T) {
	in := []BindingInfo{
		{Group: 2, Binding: 1, Kind: UniformBuffer()},
		{Group: 0, Binding: 3, Kind: Sampler(true)},
		{Group: 2, Binding: 0, Kind: UniformBuffer()},
	}
	r := NewReflectedShader(nil, in)

	assert.Equal(t, uint32(2), in[0].Group, "input must not be reordered")

	out := r.Bindings()
	assert.Equal(t, uint32(0), out[0].Group)
	assert.Equal(t, [2]uint32{2, 0}, [2]uint32{out[1].Group, out[1].Binding})
	assert.Equal(t, [2]uint32{2, 1}, [2]uint32{out[2].Group, out[2].Binding})

	out[0].Group = 9
	assert.Equal(t, uint32(0), r.Bindings()[0].Group)
}
