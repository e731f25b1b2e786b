package renderer_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/shader_effect"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, opts ...renderer.RendererBuilderOption) (renderer.Renderer, *renderertest.Backend) {
	t.Helper()
	backend := renderertest.New()
	r, err := renderer.NewRendererWithBackend(backend, 800, 600, opts...)
	require.NoError(t, err)
	return r, backend
}

func spritePipeline(t *testing.T) pipeline.Pipeline {
	t.Helper()
	s, err := shader.Compile(shader.SpriteKey, shader.SpriteSource)
	require.NoError(t, err)
	return pipeline.NewPipeline(shader.SpriteKey, pipeline.WithShader(s))
}

func TestNewRendererAppliesOptions(t *testing.T) {
	color := wgpu.Color{R: 1, A: 1}
	r, backend := newTestRenderer(t,
		renderer.WithPresentMode(renderer.PresentModeUncapped),
		renderer.WithClearColor(color),
		renderer.WithPipeline(spritePipeline(t)),
	)

	assert.Equal(t, [][2]int{{800, 600}}, backend.Configured)
	assert.Equal(t, renderer.PresentModeUncapped, backend.PresentMode)
	assert.Equal(t, color, backend.ClearColor)
	assert.Equal(t, []string{shader.SpriteKey}, backend.Registered)
	assert.NotNil(t, r.Pipeline(shader.SpriteKey))

	r.Resize(1024, 768)
	assert.Equal(t, [2]int{1024, 768}, backend.Configured[1])
}

func TestRegisterPipelinesBuildsEffect(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := spritePipeline(t)

	require.NoError(t, r.RegisterPipelines(p))

	require.NotNil(t, p.Effect())
	assert.Len(t, p.Effect().BindGroupLayouts(), 2)
	assert.Equal(t, shader.SpriteKey, p.Effect().Label())
	assert.Len(t, backend.Dev.BindGroupLayouts, 2)
	assert.Len(t, backend.Dev.PipelineLayouts, 1)
	assert.Same(t, p, r.Pipeline(shader.SpriteKey))
	assert.Len(t, r.Pipelines(), 1)

	require.NoError(t, r.RegisterPipelines(spritePipeline(t)))
	assert.Equal(t, []string{shader.SpriteKey}, backend.Registered)
	assert.Len(t, backend.Dev.PipelineLayouts, 1)
}

func TestRegisterPipelinesReleasesEffectOnBackendFailure(t *testing.T) {
	r, backend := newTestRenderer(t)
	backend.RegisterErr = errors.New("pipeline creation failed")
	p := spritePipeline(t)

	err := r.RegisterPipelines(p)
	require.ErrorIs(t, err, backend.RegisterErr)

	assert.Nil(t, p.Effect())
	assert.Nil(t, r.Pipeline(shader.SpriteKey))
	for _, l := range backend.Dev.BindGroupLayouts {
		assert.True(t, l.Released)
	}
	assert.True(t, backend.Dev.PipelineLayouts[0].Released)
}

func TestRegisterPipelinesWithoutShader(t *testing.T) {
	r, backend := newTestRenderer(t)

	err := r.RegisterPipelines(pipeline.NewPipeline("empty"))
	require.Error(t, err)
	assert.Empty(t, backend.Registered)
	assert.Nil(t, r.Pipeline("empty"))
}

func TestRegisterPipelinesLayoutFailure(t *testing.T) {
	r, backend := newTestRenderer(t)
	fail := errors.New("out of memory")
	backend.Dev.FailOn(devicetest.OpCreateBindGroupLayout, fail)

	err := r.RegisterPipelines(spritePipeline(t))
	require.ErrorIs(t, err, fail)
	assert.Empty(t, backend.Registered)
}

func TestDrawCallUnknownPipeline(t *testing.T) {
	r, backend := newTestRenderer(t)

	err := r.DrawCall("missing", bind_group_provider.NewBindGroupProvider("mesh"), nil)
	require.ErrorIs(t, err, renderer.ErrPipelineNotFound)
	assert.Contains(t, err.Error(), `"missing"`)
	assert.Empty(t, backend.Draws)
}

func TestDrawCallChecksBindGroupCount(t *testing.T) {
	r, backend := newTestRenderer(t, renderer.WithPipeline(spritePipeline(t)))
	mesh := bind_group_provider.NewBindGroupProvider("mesh")
	cam := bind_group_provider.NewBindGroupProvider("camera")
	tex := bind_group_provider.NewBindGroupProvider("texture")

	err := r.DrawCall(shader.SpriteKey, mesh, []bind_group_provider.BindGroupProvider{cam})
	require.Error(t, err)
	assert.NotErrorIs(t, err, renderer.ErrPipelineNotFound)
	assert.Empty(t, backend.Draws)

	require.NoError(t, r.DrawCall(shader.SpriteKey, mesh, []bind_group_provider.BindGroupProvider{cam, tex}))
	require.Len(t, backend.Draws, 1)
	assert.Equal(t, shader.SpriteKey, backend.Draws[0].PipelineKey)
	assert.Same(t, mesh, backend.Draws[0].Mesh)
}

func TestInitMeshBuffers(t *testing.T) {
	r, backend := newTestRenderer(t)
	provider := bind_group_provider.NewBindGroupProvider("quad")

	require.NoError(t, r.InitMeshBuffers(provider, make([]byte, 80), make([]byte, 24), 6))

	require.Len(t, backend.Dev.Buffers, 2)
	vb, ib := backend.Dev.Buffers[0], backend.Dev.Buffers[1]
	assert.Equal(t, uint64(80), vb.Desc.Size)
	assert.Equal(t, wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, vb.Desc.Usage)
	assert.Equal(t, uint64(24), ib.Desc.Size)
	assert.Equal(t, wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst, ib.Desc.Usage)
	assert.Same(t, vb, provider.VertexBuffer())
	assert.Same(t, ib, provider.IndexBuffer())
	assert.Equal(t, 6, provider.IndexCount())
	assert.Len(t, backend.Dev.BufferWrites, 2)

	require.NoError(t, r.InitMeshBuffers(provider, make([]byte, 40), make([]byte, 12), 3))
	assert.True(t, vb.Released)
	assert.True(t, ib.Released)
	assert.Equal(t, 3, provider.IndexCount())
}

func TestInitMeshBuffersWriteFailure(t *testing.T) {
	r, backend := newTestRenderer(t)
	backend.Dev.FailOn(devicetest.OpWriteBuffer, errors.New("queue lost"))
	provider := bind_group_provider.NewBindGroupProvider("quad")

	require.Error(t, r.InitMeshBuffers(provider, make([]byte, 20), nil, 0))
	assert.Nil(t, provider.VertexBuffer())
	assert.True(t, backend.Dev.Buffers[0].Released)
}

func TestInitBindGroupCreatesUniformBuffer(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := spritePipeline(t)
	require.NoError(t, r.RegisterPipelines(p))

	buckets, err := shader_effect.Buckets(p.Effect().Reflected())
	require.NoError(t, err)
	entries := buckets[0]
	size := p.Shader().BufferSize(0, 0)
	require.Equal(t, uint64(16), size)

	provider := bind_group_provider.NewBindGroupProvider("camera")
	require.NoError(t, r.InitBindGroup(provider, p.Effect().BindGroupLayout(0), entries, map[int]uint64{0: size}))

	require.Len(t, backend.Dev.Buffers, 1)
	buf := backend.Dev.Buffers[0]
	assert.Equal(t, uint64(16), buf.Desc.Size)
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, buf.Desc.Usage)
	assert.Same(t, buf, provider.Buffer(0))

	require.Len(t, backend.Dev.BindGroups, 1)
	bg := backend.Dev.BindGroups[0]
	assert.Same(t, p.Effect().BindGroupLayout(0), bg.Desc.Layout)
	require.Len(t, bg.Desc.Entries, 1)
	assert.Same(t, buf, bg.Desc.Entries[0].Buffer)
	assert.Same(t, bg, provider.BindGroup())
}

func TestInitBindGroupMissingTextureView(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := spritePipeline(t)
	require.NoError(t, r.RegisterPipelines(p))

	buckets, err := shader_effect.Buckets(p.Effect().Reflected())
	require.NoError(t, err)
	entries := buckets[1]
	provider := bind_group_provider.NewBindGroupProvider("texture")

	err = r.InitBindGroup(provider, p.Effect().BindGroupLayout(1), entries, nil)
	require.Error(t, err)
	assert.Empty(t, backend.Dev.BindGroups)
}

func TestInitBindGroupNoEntries(t *testing.T) {
	r, backend := newTestRenderer(t)

	require.NoError(t, r.InitBindGroup(bind_group_provider.NewBindGroupProvider("empty"), nil, nil, nil))
	assert.Empty(t, backend.Dev.BindGroups)
}

func TestWriteBuffers(t *testing.T) {
	r, backend := newTestRenderer(t)
	provider := bind_group_provider.NewBindGroupProvider("camera")
	buf, err := backend.Dev.CreateBuffer(&wgpu.BufferDescriptor{Size: 4})
	require.NoError(t, err)
	provider.SetBuffer(0, buf)

	require.NoError(t, r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: provider, Binding: 0, Data: []byte{1, 2, 3, 4}},
		{Provider: provider, Binding: 7, Data: []byte{9}},
	}))
	require.Len(t, backend.Dev.BufferWrites, 1)
	assert.Equal(t, []byte{1, 2, 3, 4}, backend.Dev.Buffers[0].Data)

	fail := errors.New("queue lost")
	backend.Dev.FailOn(devicetest.OpWriteBuffer, fail)
	err = r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: provider, Binding: 0, Data: []byte{0}}})
	require.ErrorIs(t, err, fail)
}

func TestReleaseReleasesPipelines(t *testing.T) {
	r, backend := newTestRenderer(t, renderer.WithPipeline(spritePipeline(t)))

	r.Release()

	assert.True(t, backend.Released)
	assert.Empty(t, r.Pipelines())
	assert.True(t, backend.Dev.PipelineLayouts[0].Released)
}
