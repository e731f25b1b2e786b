package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaultsToUnitView(t *testing.T) {
	c := NewCamera(WithViewport(800, 600))

	left, right, bottom, top := c.Bounds()
	assert.Equal(t, float32(-400), left)
	assert.Equal(t, float32(400), right)
	assert.Equal(t, float32(-300), bottom)
	assert.Equal(t, float32(300), top)

	u := c.Uniform()
	assert.InDelta(t, 2.0/800, u.Scale[0], 1e-7)
	assert.InDelta(t, 2.0/600, u.Scale[1], 1e-7)
	assert.InDelta(t, 0, u.Offset[0], 1e-7)
	assert.InDelta(t, 0, u.Offset[1], 1e-7)
}

func TestUniformMapsBoundsToClipSpace(t *testing.T) {
	c := NewCamera(WithViewport(200, 100), WithPosition(50, -20), WithZoom(2))

	left, right, bottom, top := c.Bounds()
	u := c.Uniform()
	clip := func(x, y float32) (float32, float32) {
		return x*u.Scale[0] + u.Offset[0], y*u.Scale[1] + u.Offset[1]
	}

	x, y := clip(left, bottom)
	assert.InDelta(t, -1, x, 1e-5)
	assert.InDelta(t, -1, y, 1e-5)
	x, y = clip(right, top)
	assert.InDelta(t, 1, x, 1e-5)
	assert.InDelta(t, 1, y, 1e-5)
	x, y = clip(50, -20)
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
}

func TestPanAndZoomUpdateUniform(t *testing.T) {
	c := NewCamera(WithViewport(100, 100))
	before := c.Uniform()

	c.Pan(10, 5)
	x, y := c.Position()
	assert.Equal(t, float32(10), x)
	assert.Equal(t, float32(5), y)
	assert.NotEqual(t, before.Offset, c.Uniform().Offset)

	c.SetZoom(0)
	assert.Equal(t, float32(1), c.Zoom())
	c.SetZoom(4)
	assert.Equal(t, float32(4), c.Zoom())
	assert.InDelta(t, 4*2.0/100, c.Uniform().Scale[0], 1e-6)
}

func TestScreenToWorld(t *testing.T) {
	c := NewCamera(WithViewport(100, 50))

	x, y := c.ScreenToWorld(0, 0)
	assert.Equal(t, float32(-50), x)
	assert.Equal(t, float32(25), y)

	x, y = c.ScreenToWorld(50, 25)
	assert.Equal(t, float32(0), x)
	assert.Equal(t, float32(0), y)
}

func TestGPUCameraUniformMarshal(t *testing.T) {
	u := GPUCameraUniform{Scale: [2]float32{1, 2}, Offset: [2]float32{3, 4}}
	buf := u.Marshal()
	require.Len(t, buf, 16)
	for i, want := range []float32{1, 2, 3, 4} {
		assert.Equal(t, want, math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
	}
}

func TestCameraProviderLabelsAreUnique(t *testing.T) {
	a := NewCamera()
	b := NewCamera()
	assert.NotEqual(t, a.BindGroupProvider().Label(), b.BindGroupProvider().Label())
}
