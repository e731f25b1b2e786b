package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-2d/engine/render_object"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/texture_array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// walk has three frames at 8 fps, so one pass lasts 0.375s and every step below is exact in binary.
var walk = Clip{
	Name:   "walk",
	Frames: []texture_array.RenderableBinding{{Slot: 4}, {Slot: 5}, {Slot: 6}},
	FPS:    8,
}

func TestAddClipValidates(t *testing.T) {
	a := NewAnimator()

	_, err := a.AddClip(Clip{Name: "empty", FPS: 8})
	require.ErrorIs(t, err, ErrInvalidClip)
	_, err = a.AddClip(Clip{Name: "still", Frames: walk.Frames})
	require.ErrorIs(t, err, ErrInvalidClip)

	index, err := a.AddClip(walk)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), index)

	_, err = a.AddClip(walk)
	require.ErrorIs(t, err, ErrInvalidClip)

	got, ok := a.ClipIndex("walk")
	require.True(t, ok)
	assert.Equal(t, index, got)
	clip, ok := a.Clip(index)
	require.True(t, ok)
	assert.Equal(t, float32(0.375), clip.Duration())
}

func TestWithClipsPanicsOnInvalidClip(t *testing.T) {
	assert.Panics(t, func() { NewAnimator(WithClips(Clip{})) })
}

func TestPrepareFrameLoops(t *testing.T) {
	a := NewAnimator(WithClips(walk))
	obj := render_object.NewRenderObject()
	i := a.AddInstance(obj)

	a.PlayAnimation(i, 0, true)
	assert.Equal(t, uint32(4), obj.Binding().Slot)

	a.PrepareFrame(0.125)
	assert.Equal(t, 1, a.Frame(i))
	assert.Equal(t, uint32(5), obj.Binding().Slot)

	a.PrepareFrame(0.25)
	assert.Equal(t, 0, a.Frame(i))
	assert.Equal(t, uint32(4), obj.Binding().Slot)
	assert.True(t, a.Playing(i))
}

func TestPrepareFrameStopsOnLastFrame(t *testing.T) {
	a := NewAnimator(WithClips(walk))
	obj := render_object.NewRenderObject()
	i := a.AddInstance(obj)
	a.PlayAnimation(i, 0, false)

	a.PrepareFrame(1)
	assert.False(t, a.Playing(i))
	assert.Equal(t, 2, a.Frame(i))
	assert.Equal(t, uint32(6), obj.Binding().Slot)

	a.PrepareFrame(1)
	assert.Equal(t, uint32(6), obj.Binding().Slot)
}

func TestSpeedAndSeek(t *testing.T) {
	a := NewAnimator(WithClips(walk))
	obj := render_object.NewRenderObject()
	i := a.AddInstance(obj)
	a.PlayAnimation(i, 0, true)

	a.SetAnimationSpeed(i, 2)
	a.PrepareFrame(0.125)
	assert.Equal(t, 2, a.Frame(i))

	a.SetAnimationSpeed(i, -1)
	a.PrepareFrame(0.375)
	assert.Equal(t, 2, a.Frame(i))

	a.SetAnimationTime(i, 0.125)
	assert.Equal(t, 1, a.Frame(i))
}

func TestInstancesWithoutClipAreUntouched(t *testing.T) {
	a := NewAnimator(WithClips(walk))
	obj := render_object.NewRenderObject(render_object.WithBinding(texture_array.RenderableBinding{Slot: 9}))
	i := a.AddInstance(obj)

	a.PrepareFrame(1)
	assert.Equal(t, uint32(9), obj.Binding().Slot)
	assert.False(t, a.Playing(i))

	a.PlayAnimation(i, 7, true)
	assert.False(t, a.Playing(i))
}

func TestRemoveInstanceSwapsLast(t *testing.T) {
	a := NewAnimator(WithClips(walk))
	first := render_object.NewRenderObject()
	last := render_object.NewRenderObject()
	a.AddInstance(first)
	a.AddInstance(render_object.NewRenderObject())
	a.AddInstance(last)

	old, swapped := a.RemoveInstance(0)
	assert.True(t, swapped)
	assert.Equal(t, uint32(2), old)
	assert.Equal(t, uint32(2), a.InstanceCount())

	a.PlayAnimation(0, 0, false)
	assert.Equal(t, uint32(4), last.Binding().Slot)
	assert.Zero(t, first.Binding().Slot)

	_, swapped = a.RemoveInstance(1)
	assert.False(t, swapped)
	_, swapped = a.RemoveInstance(5)
	assert.False(t, swapped)
}
