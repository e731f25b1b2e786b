package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (16 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraUniform struct layout exactly (see GPUCameraUniformSource).
// A world position p maps to clip space as p*Scale + Offset.
// Size: 16 bytes.
type GPUCameraUniform struct {
	Scale  [2]float32 // offset 0: world-to-clip scale (vec2<f32>)
	Offset [2]float32 // offset 8: world-to-clip offset (vec2<f32>)
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.Scale[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.Scale[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.Offset[0]))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Offset[1]))
	return buf
}
