package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// Transform2D describes the placement of a 2D object in world space.
type Transform2D struct {
	// X and Y are the world-space translation.
	X, Y float32
	// Rotation is the counter-clockwise rotation in radians.
	Rotation float32
	// ScaleX and ScaleY are the per-axis scale factors. Zero is treated as 1.
	ScaleX, ScaleY float32
}

// Apply transforms a local-space point into world space, applying scale, then rotation, then translation.
//
// Parameters:
//   - px: the local x coordinate
//   - py: the local y coordinate
//
// Returns:
//   - float32: the world x coordinate
//   - float32: the world y coordinate
func (t Transform2D) Apply(px, py float32) (float32, float32) {
	sx := Coalesce(t.ScaleX, 1)
	sy := Coalesce(t.ScaleY, 1)
	x := px * sx
	y := py * sy
	if t.Rotation != 0 {
		s, c := math32.Sin(t.Rotation), math32.Cos(t.Rotation)
		x, y = x*c-y*s, x*s+y*c
	}
	return x + t.X, y + t.Y
}

// Ortho2D computes the scale and offset that map the world rectangle [left,right]x[bottom,top]
// to WebGPU clip space [-1,1]x[-1,1]. The result is laid out as (scaleX, scaleY, offsetX, offsetY).
//
// Parameters:
//   - left, right: the horizontal world bounds
//   - bottom, top: the vertical world bounds
//
// Returns:
//   - [4]float32: scale and offset such that clip = world*scale + offset
func Ortho2D(left, right, bottom, top float32) [4]float32 {
	w := right - left
	h := top - bottom
	if math32.Abs(w) < 1e-6 || math32.Abs(h) < 1e-6 {
		return [4]float32{1, 1, 0, 0}
	}
	return [4]float32{
		2 / w,
		2 / h,
		-(right + left) / w,
		-(top + bottom) / h,
	}
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}
