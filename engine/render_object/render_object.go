package render_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/Carmen-Shannon/oxy-2d/engine/mesh"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/texture_array"
)

// renderObject is the implementation of the RenderObject interface.
type renderObject struct {
	mu *sync.RWMutex

	id      uint64
	enabled atomic.Bool

	// pipelineKey names the pipeline the object is drawn with.
	pipelineKey string

	// binding is the texture array slot sampled by the object.
	binding texture_array.RenderableBinding

	width, height float32
	transform     common.Transform2D
	uvMin, uvMax  [2]float32
	depth         float32
}

// RenderObject is a textured quad placed in the 2D world. Objects that share a pipeline and a
// texture array are batched into a single mesh by the scene.
type RenderObject interface {
	// ID returns the scene-assigned identifier, or 0 before the object is added to a scene.
	ID() uint64

	SetID(id uint64)

	Enabled() bool

	SetEnabled(enabled bool)

	PipelineKey() string

	// Binding returns the texture array slot the object samples.
	//
	// Returns:
	//   - texture_array.RenderableBinding: the array and layer index
	Binding() texture_array.RenderableBinding

	SetBinding(b texture_array.RenderableBinding)

	// Size returns the unscaled width and height of the quad in world units.
	Size() (width, height float32)

	SetSize(width, height float32)

	Position() (x, y float32)

	SetPosition(x, y float32)

	// Translate moves the object by a world-space delta.
	//
	// Parameters:
	//   - dx: the horizontal delta
	//   - dy: the vertical delta
	Translate(dx, dy float32)

	Rotation() float32

	SetRotation(radians float32)

	Scale() (sx, sy float32)

	SetScale(sx, sy float32)

	Transform() common.Transform2D

	// SetUV restricts the quad to a sub-rectangle of its texture layer. Zero values select the full layer.
	//
	// Parameters:
	//   - uvMin: the top-left texture coordinate
	//   - uvMax: the bottom-right texture coordinate
	SetUV(uvMin, uvMax [2]float32)

	// Depth returns the draw order key. Objects with a lower depth are drawn first within a batch.
	Depth() float32

	SetDepth(depth float32)

	// Quad returns the geometry of the object for batching.
	//
	// Returns:
	//   - mesh.Quad: the quad with the binding slot as its layer
	Quad() mesh.Quad
}

var _ RenderObject = &renderObject{}

// NewRenderObject creates an enabled RenderObject drawn with the built-in sprite pipeline and a
// 1x1 quad, unless overridden by options.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - RenderObject: the new object
func NewRenderObject(options ...RenderObjectBuilderOption) RenderObject {
	obj := &renderObject{
		mu:          &sync.RWMutex{},
		pipelineKey: shader.SpriteKey,
		width:       1,
		height:      1,
		transform:   common.Transform2D{ScaleX: 1, ScaleY: 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (o *renderObject) ID() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.id
}

func (o *renderObject) SetID(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.id = id
}

func (o *renderObject) Enabled() bool {
	return o.enabled.Load()
}

func (o *renderObject) SetEnabled(enabled bool) {
	o.enabled.Store(enabled)
}

func (o *renderObject) PipelineKey() string {
	return o.pipelineKey
}

func (o *renderObject) Binding() texture_array.RenderableBinding {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.binding
}

func (o *renderObject) SetBinding(b texture_array.RenderableBinding) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.binding = b
}

func (o *renderObject) Size() (float32, float32) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.width, o.height
}

func (o *renderObject) SetSize(width, height float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.width, o.height = width, height
}

func (o *renderObject) Position() (float32, float32) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.transform.X, o.transform.Y
}

func (o *renderObject) SetPosition(x, y float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transform.X, o.transform.Y = x, y
}

func (o *renderObject) Translate(dx, dy float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transform.X += dx
	o.transform.Y += dy
}

func (o *renderObject) Rotation() float32 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.transform.Rotation
}

func (o *renderObject) SetRotation(radians float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transform.Rotation = radians
}

func (o *renderObject) Scale() (float32, float32) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.transform.ScaleX, o.transform.ScaleY
}

func (o *renderObject) SetScale(sx, sy float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transform.ScaleX, o.transform.ScaleY = sx, sy
}

func (o *renderObject) Transform() common.Transform2D {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.transform
}

func (o *renderObject) SetUV(uvMin, uvMax [2]float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.uvMin, o.uvMax = uvMin, uvMax
}

func (o *renderObject) Depth() float32 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.depth
}

func (o *renderObject) SetDepth(depth float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.depth = depth
}

func (o *renderObject) Quad() mesh.Quad {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return mesh.Quad{
		Width:     o.width,
		Height:    o.height,
		Layer:     o.binding.Slot,
		Transform: o.transform,
		UVMin:     o.uvMin,
		UVMax:     o.uvMax,
	}
}
