package mesh

import (
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/bind_group_provider"
)

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithGeometry sets the initial vertices and indices of the Mesh.
//
// Parameters:
//   - vertices: the vertices
//   - indices: the triangle indices
//
// Returns:
//   - MeshBuilderOption: a function that applies the geometry to a mesh
func WithGeometry(vertices []GPUVertex, indices []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.vertices = vertices
		m.indices = indices
	}
}

// WithQuad sets the geometry of the Mesh to a single sprite quad.
//
// Parameters:
//   - q: the quad to build
//
// Returns:
//   - MeshBuilderOption: a function that applies the quad geometry to a mesh
func WithQuad(q Quad) MeshBuilderOption {
	return func(m *mesh) {
		m.vertices, m.indices = AppendQuad(nil, nil, q)
	}
}

// WithMeshProvider overrides the provider that owns the mesh's GPU buffers.
//
// Parameters:
//   - provider: the provider
//
// Returns:
//   - MeshBuilderOption: a function that sets the mesh provider
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) MeshBuilderOption {
	return func(m *mesh) {
		m.meshProvider = provider
	}
}
