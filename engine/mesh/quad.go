package mesh

import (
	"github.com/Carmen-Shannon/oxy-2d/common"
)

// Quad describes one textured rectangle centered on its transform origin.
type Quad struct {
	// Width and Height are the local-space size before the transform's scale.
	Width, Height float32
	// Layer is the texture array slot sampled by the quad.
	Layer uint32
	// Transform places the quad in world space.
	Transform common.Transform2D
	// UVMin and UVMax select a sub-rectangle of the layer. Both zero selects the whole layer.
	UVMin, UVMax [2]float32
}

// quadIndices is the triangle list for one quad relative to its first vertex.
var quadIndices = [6]uint32{0, 1, 2, 2, 3, 0}

// AppendQuad appends the four vertices and six indices of a quad to the given slices.
// Vertices are emitted counter-clockwise starting at the bottom-left corner.
//
// Parameters:
//   - vertices: the vertex slice to extend
//   - indices: the index slice to extend
//   - q: the quad to append
//
// Returns:
//   - []GPUVertex: the extended vertex slice
//   - []uint32: the extended index slice
func AppendQuad(vertices []GPUVertex, indices []uint32, q Quad) ([]GPUVertex, []uint32) {
	uvMin, uvMax := q.UVMin, q.UVMax
	if uvMin == [2]float32{} && uvMax == [2]float32{} {
		uvMax = [2]float32{1, 1}
	}

	hw, hh := q.Width/2, q.Height/2
	corners := [4][4]float32{
		{-hw, -hh, uvMin[0], uvMax[1]},
		{hw, -hh, uvMax[0], uvMax[1]},
		{hw, hh, uvMax[0], uvMin[1]},
		{-hw, hh, uvMin[0], uvMin[1]},
	}

	base := uint32(len(vertices))
	for _, c := range corners {
		x, y := q.Transform.Apply(c[0], c[1])
		vertices = append(vertices, GPUVertex{
			Position: [2]float32{x, y},
			UV:       [2]float32{c[2], c[3]},
			Layer:    q.Layer,
		})
	}
	for _, i := range quadIndices {
		indices = append(indices, base+i)
	}
	return vertices, indices
}

// NewQuadBatch builds a single mesh from many quads so they can be drawn with one call.
//
// Parameters:
//   - name: the mesh identifier
//   - quads: the quads to batch
//
// Returns:
//   - Mesh: the batched mesh
func NewQuadBatch(name string, quads []Quad) Mesh {
	vertices := make([]GPUVertex, 0, len(quads)*4)
	indices := make([]uint32, 0, len(quads)*6)
	for _, q := range quads {
		vertices, indices = AppendQuad(vertices, indices, q)
	}
	return NewMesh(name, WithGeometry(vertices, indices))
}
