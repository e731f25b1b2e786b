package render_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/texture_array"
	"github.com/stretchr/testify/assert"
)

func TestNewRenderObjectDefaults(t *testing.T) {
	obj := NewRenderObject()

	assert.Zero(t, obj.ID())
	assert.True(t, obj.Enabled())
	assert.Equal(t, shader.SpriteKey, obj.PipelineKey())
	w, h := obj.Size()
	assert.Equal(t, float32(1), w)
	assert.Equal(t, float32(1), h)
	sx, sy := obj.Scale()
	assert.Equal(t, float32(1), sx)
	assert.Equal(t, float32(1), sy)
	assert.Nil(t, obj.Binding().Array)
}

func TestRenderObjectOptions(t *testing.T) {
	binding := texture_array.RenderableBinding{Slot: 3}
	obj := NewRenderObject(
		WithID(9),
		WithEnabled(false),
		WithPipelineKey("custom"),
		WithBinding(binding),
		WithSize(32, 16),
		WithPosition(10, -4),
		WithRotation(0.5),
		WithScale(2, 3),
		WithUV([2]float32{0, 0}, [2]float32{0.5, 0.5}),
		WithDepth(1),
	)

	assert.Equal(t, uint64(9), obj.ID())
	assert.False(t, obj.Enabled())
	assert.Equal(t, "custom", obj.PipelineKey())
	assert.Equal(t, binding, obj.Binding())
	assert.Equal(t, common.Transform2D{X: 10, Y: -4, Rotation: 0.5, ScaleX: 2, ScaleY: 3}, obj.Transform())
	assert.Equal(t, float32(1), obj.Depth())

	q := obj.Quad()
	assert.Equal(t, float32(32), q.Width)
	assert.Equal(t, float32(16), q.Height)
	assert.Equal(t, uint32(3), q.Layer)
	assert.Equal(t, [2]float32{0.5, 0.5}, q.UVMax)
}

func TestRenderObjectSetters(t *testing.T) {
	obj := NewRenderObject(WithTransform(common.Transform2D{X: 1, Y: 1}))

	obj.Translate(2, -3)
	x, y := obj.Position()
	assert.Equal(t, float32(3), x)
	assert.Equal(t, float32(-2), y)

	obj.SetPosition(0, 0)
	obj.SetRotation(1)
	obj.SetScale(4, 4)
	obj.SetSize(8, 8)
	obj.SetDepth(-1)
	obj.SetID(5)
	obj.SetEnabled(false)
	obj.SetBinding(texture_array.RenderableBinding{Slot: 7})

	assert.Equal(t, float32(1), obj.Rotation())
	assert.Equal(t, uint64(5), obj.ID())
	assert.False(t, obj.Enabled())
	assert.Equal(t, float32(-1), obj.Depth())
	assert.Equal(t, uint32(7), obj.Quad().Layer)
	assert.Equal(t, float32(8), obj.Quad().Width)
}
