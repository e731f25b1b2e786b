package mesh

import (
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/bind_group_provider"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name         string
	vertices     []GPUVertex
	indices      []uint32
	meshProvider bind_group_provider.BindGroupProvider
}

// Mesh defines a 2D triangle list held on the CPU together with the provider that owns its GPU buffers.
// The Renderer uploads VertexData and IndexData into the provider's vertex and index buffers.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Vertices returns the CPU-side vertices.
	//
	// Returns:
	//   - []GPUVertex: the vertices
	Vertices() []GPUVertex

	// Indices returns the CPU-side triangle indices.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// VertexData returns the packed vertex buffer contents.
	//
	// Returns:
	//   - []byte: the vertex bytes
	VertexData() []byte

	// IndexData returns the packed index buffer contents.
	//
	// Returns:
	//   - []byte: the index bytes
	IndexData() []byte

	// IndexCount returns the number of indices to draw.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// MeshProvider returns the provider holding the GPU vertex and index buffers.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider

	// SetGeometry replaces the vertices and indices. The Renderer must re-upload the buffers afterwards.
	//
	// Parameters:
	//   - vertices: the new vertices
	//   - indices: the new indices
	SetGeometry(vertices []GPUVertex, indices []uint32)
}

var _ Mesh = &mesh{}

// NewMesh creates a new Mesh with the specified options applied.
//
// Parameters:
//   - name: the mesh identifier, also used as the provider label
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the new mesh
func NewMesh(name string, options ...MeshBuilderOption) Mesh {
	m := &mesh{name: name}
	for _, opt := range options {
		opt(m)
	}
	if m.meshProvider == nil {
		m.meshProvider = bind_group_provider.NewBindGroupProvider("mesh_" + name)
	}
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Vertices() []GPUVertex {
	return m.vertices
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) VertexData() []byte {
	return MarshalVertices(m.vertices)
}

func (m *mesh) IndexData() []byte {
	return MarshalIndices(m.indices)
}

func (m *mesh) IndexCount() int {
	return len(m.indices)
}

func (m *mesh) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *mesh) SetGeometry(vertices []GPUVertex, indices []uint32) {
	m.vertices = vertices
	m.indices = indices
}
