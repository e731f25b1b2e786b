package render_object

import (
	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/texture_array"
)

// RenderObjectBuilderOption is a functional option for configuring a RenderObject during construction.
type RenderObjectBuilderOption func(*renderObject)

// WithID sets the ID of the RenderObject.
//
// Parameters:
//   - id: unique identifier for the RenderObject
//
// Returns:
//   - RenderObjectBuilderOption: functional option to set the ID
func WithID(id uint64) RenderObjectBuilderOption {
	return func(obj *renderObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the RenderObject is drawn.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - RenderObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) RenderObjectBuilderOption {
	return func(obj *renderObject) {
		obj.enabled.Store(enabled)
	}
}

// WithPipelineKey sets the pipeline the object is drawn with.
//
// Parameters:
//   - key: a registered pipeline key
//
// Returns:
//   - RenderObjectBuilderOption: functional option to set the pipeline key
func WithPipelineKey(key string) RenderObjectBuilderOption {
	return func(obj *renderObject) {
		obj.pipelineKey = key
	}
}

// WithBinding sets the texture array slot the object samples.
//
// Parameters:
//   - b: the binding returned by a texture array upload
//
// Returns:
//   - RenderObjectBuilderOption: functional option to set the binding
func WithBinding(b texture_array.RenderableBinding) RenderObjectBuilderOption {
	return func(obj *renderObject) {
		obj.binding = b
	}
}

// WithSize sets the unscaled quad size in world units.
func WithSize(width, height float32) RenderObjectBuilderOption {
	return func(obj *renderObject) {
		obj.width, obj.height = width, height
	}
}

// WithPosition sets the initial world position.
//
// Parameters:
//   - x: the world x coordinate
//   - y: the world y coordinate
//
// Returns:
//   - RenderObjectBuilderOption: functional option to set the position
func WithPosition(x, y float32) RenderObjectBuilderOption {
	return func(obj *renderObject) {
		obj.transform.X, obj.transform.Y = x, y
	}
}

// WithRotation sets the initial counter-clockwise rotation in radians.
func WithRotation(radians float32) RenderObjectBuilderOption {
	return func(obj *renderObject) {
		obj.transform.Rotation = radians
	}
}

// WithScale sets the initial scale.
func WithScale(sx, sy float32) RenderObjectBuilderOption {
	return func(obj *renderObject) {
		obj.transform.ScaleX, obj.transform.ScaleY = sx, sy
	}
}

// WithTransform replaces the whole initial transform.
//
// Parameters:
//   - t: the transform
//
// Returns:
//   - RenderObjectBuilderOption: functional option to set the transform
func WithTransform(t common.Transform2D) RenderObjectBuilderOption {
	return func(obj *renderObject) {
		obj.transform = t
	}
}

// WithUV restricts the quad to a sub-rectangle of its texture layer.
func WithUV(uvMin, uvMax [2]float32) RenderObjectBuilderOption {
	return func(obj *renderObject) {
		obj.uvMin, obj.uvMax = uvMin, uvMax
	}
}

// WithDepth sets the draw order key.
func WithDepth(depth float32) RenderObjectBuilderOption {
	return func(obj *renderObject) {
		obj.depth = depth
	}
}
