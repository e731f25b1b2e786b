package texture_array

import (
	"errors"
	"strconv"
	"testing"

	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/device/devicetest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixels(w, h uint32, fill byte) common.TextureStagingData {
	buf := make([]byte, w*h*4)
	for i := range buf {
		buf[i] = fill
	}
	return common.TextureStagingData{Pixels: buf, Width: w, Height: h}
}

func newArray(t *testing.T, dev *devicetest.Device, layers uint32) TextureArray {
	t.Helper()
	a, err := New(dev, Descriptor{Width: 4, Height: 4, LayerCount: layers})
	require.NoError(t, err)
	return a
}

func TestNewAllocatesArrayResources(t *testing.T) {
	dev := devicetest.New()
	layout := &devicetest.BindGroupLayout{}

	a, err := New(dev, Descriptor{Width: 32, Height: 16, LayerCount: 8, Layout: layout})
	require.NoError(t, err)

	require.Len(t, dev.Textures, 1)
	td := dev.Textures[0].Desc
	assert.Equal(t, wgpu.Extent3D{Width: 32, Height: 16, DepthOrArrayLayers: 8}, td.Size)
	assert.Equal(t, DefaultFormat, td.Format)
	assert.Equal(t, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst, td.Usage)

	require.Len(t, dev.Views, 1)
	assert.Equal(t, wgpu.TextureViewDimension2DArray, dev.Views[0].Desc.Dimension)
	assert.Equal(t, uint32(8), dev.Views[0].Desc.ArrayLayerCount)

	require.Len(t, dev.Samplers, 1)
	assert.Equal(t, wgpu.AddressModeClampToEdge, dev.Samplers[0].Desc.AddressModeU)
	assert.Equal(t, wgpu.FilterModeLinear, dev.Samplers[0].Desc.MagFilter)

	require.Len(t, dev.BindGroups, 1)
	bg := dev.BindGroups[0].Desc
	assert.Same(t, layout, bg.Layout)
	require.Len(t, bg.Entries, 2)
	assert.Equal(t, uint32(TextureBinding), bg.Entries[0].Binding)
	assert.Same(t, dev.Views[0], bg.Entries[0].TextureView)
	assert.Equal(t, uint32(SamplerBinding), bg.Entries[1].Binding)
	assert.Same(t, dev.Samplers[0], bg.Entries[1].Sampler)

	assert.Equal(t, uint32(8), a.Capacity())
	assert.Equal(t, uint32(8), a.FreeSlots())
	assert.Equal(t, uint32(0), a.Assigned())
	assert.Same(t, dev.BindGroups[0], a.BindGroupProvider().BindGroup())
}

func TestNewCreatesRequestedSampler(t *testing.T) {
	dev := devicetest.New()

	_, err := New(dev, Descriptor{Width: 4, Height: 4, LayerCount: 1, Sampler: common.SamplerStagingData{
		MagFilter:    common.FilterNearest,
		MinFilter:    common.FilterNearest,
		MipmapFilter: common.FilterNearest,
		AddressModeU: common.AddressRepeat,
		AddressModeV: common.AddressMirrorRepeat,
	}})
	require.NoError(t, err)

	require.Len(t, dev.Samplers, 1)
	sd := dev.Samplers[0].Desc
	assert.Equal(t, wgpu.FilterModeNearest, sd.MagFilter)
	assert.Equal(t, wgpu.FilterModeNearest, sd.MinFilter)
	assert.Equal(t, wgpu.MipmapFilterModeNearest, sd.MipmapFilter)
	assert.Equal(t, wgpu.AddressModeRepeat, sd.AddressModeU)
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, sd.AddressModeV)
	assert.Equal(t, wgpu.AddressModeClampToEdge, sd.AddressModeW)
	assert.Equal(t, float32(32), sd.LodMaxClamp)
	assert.Equal(t, uint16(1), sd.MaxAnisotropy)
}

func TestNewWithoutLayoutSkipsBindGroup(t *testing.T) {
	dev := devicetest.New()
	a := newArray(t, dev, 2)

	assert.Equal(t, 0, dev.Calls(devicetest.OpCreateBindGroup))
	assert.Nil(t, a.BindGroupProvider().BindGroup())
	assert.NotNil(t, a.View())
}

func TestNewRejectsEmptyDescriptor(t *testing.T) {
	dev := devicetest.New()
	for _, d := range []Descriptor{
		{Width: 0, Height: 4, LayerCount: 1},
		{Width: 4, Height: 0, LayerCount: 1},
		{Width: 4, Height: 4, LayerCount: 0},
	} {
		_, err := New(dev, d)
		assert.ErrorIs(t, err, ErrDescriptorInvalid)
	}
	assert.Equal(t, 0, dev.Calls(devicetest.OpCreateTexture))
}

func TestNewReleasesOnFailure(t *testing.T) {
	dev := devicetest.New()
	dev.FailOn(devicetest.OpCreateSampler, errors.New("out of samplers"))

	_, err := New(dev, Descriptor{Width: 4, Height: 4, LayerCount: 1})
	require.Error(t, err)
	assert.True(t, dev.Textures[0].Released)
	assert.True(t, dev.Views[0].Released)
}

func TestUploadAssignsSlotsInOrderUntilFull(t *testing.T) {
	dev := devicetest.New()
	a := newArray(t, dev, 5)

	var slots []uint32
	for i := range 5 {
		slot, err := a.Upload(dev, "", pixels(4, 4, byte(i)))
		require.NoError(t, err)
		slots = append(slots, slot)
	}
	assert.Equal(t, []uint32{0, 1, 2, 3, 4}, slots)
	assert.Equal(t, uint32(0), a.FreeSlots())
	assert.Equal(t, uint32(5), a.Assigned())

	_, err := a.Upload(dev, "", pixels(4, 4, 9))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 5, dev.Calls(devicetest.OpWriteTexture))
}

func TestUploadSlotsAreExclusive(t *testing.T) {
	dev := devicetest.New()
	a := newArray(t, dev, 16)

	seen := make(map[uint32]bool)
	for i := range 10 {
		slot, err := a.Upload(dev, "", pixels(4, 4, byte(i)))
		require.NoError(t, err)
		assert.False(t, seen[slot], "slot %d handed out twice", slot)
		assert.Less(t, slot, uint32(16))
		seen[slot] = true
		assert.Equal(t, a.Capacity(), a.FreeSlots()+a.Assigned())
	}
}

func TestUploadWritesLayer(t *testing.T) {
	dev := devicetest.New()
	a := newArray(t, dev, 3)
	_, err := a.Upload(dev, "", pixels(4, 4, 1))
	require.NoError(t, err)

	slot, err := a.Upload(dev, "", pixels(2, 3, 7))
	require.NoError(t, err)
	require.Equal(t, uint32(1), slot)

	w := dev.TextureWrites[1]
	assert.Same(t, a.Texture(), w.Dst.Texture)
	assert.Equal(t, wgpu.Origin3D{X: 0, Y: 0, Z: 1}, w.Dst.Origin)
	assert.Equal(t, uint32(8), w.Layout.BytesPerRow)
	assert.Equal(t, uint32(3), w.Layout.RowsPerImage)
	assert.Equal(t, wgpu.Extent3D{Width: 2, Height: 3, DepthOrArrayLayers: 1}, w.Size)
	assert.Len(t, w.Data, 2*3*4)
}

func TestUploadCacheHitSkipsWrite(t *testing.T) {
	dev := devicetest.New()
	a := newArray(t, dev, 4)

	first, err := a.Upload(dev, "hero.png", pixels(4, 4, 1))
	require.NoError(t, err)
	second, err := a.Upload(dev, "hero.png", pixels(4, 4, 2))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, dev.Calls(devicetest.OpWriteTexture))
	assert.Equal(t, byte(1), dev.TextureWrites[0].Data[0], "cache is keyed by identity, not content")

	slot, ok := a.Slot("hero.png")
	assert.True(t, ok)
	assert.Equal(t, first, slot)
	_, ok = a.Slot("villain.png")
	assert.False(t, ok)
}

func TestUploadEmptyKeyIsNotCached(t *testing.T) {
	dev := devicetest.New()
	a := newArray(t, dev, 4)

	first, err := a.Upload(dev, "", pixels(4, 4, 1))
	require.NoError(t, err)
	second, err := a.Upload(dev, "", pixels(4, 4, 1))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	_, ok := a.Slot("")
	assert.False(t, ok)
}

func TestUploadRejectsInvalidPixels(t *testing.T) {
	dev := devicetest.New()
	a := newArray(t, dev, 2)

	bad := []common.TextureStagingData{
		{Pixels: make([]byte, 10), Width: 4, Height: 4},
		{Pixels: nil, Width: 0, Height: 4},
		pixels(8, 4, 0),
	}
	for i, data := range bad {
		_, err := a.Upload(dev, "bad"+strconv.Itoa(i), data)
		assert.ErrorIs(t, err, ErrInvalidPixels)
	}
	assert.Equal(t, uint32(2), a.FreeSlots())
	assert.Equal(t, 0, dev.Calls(devicetest.OpWriteTexture))
}

func TestUploadWriteFailureRestoresSlot(t *testing.T) {
	dev := devicetest.New()
	a := newArray(t, dev, 3)
	dev.FailAfter(devicetest.OpWriteTexture, 1, errors.New("queue lost"))

	slot, err := a.Upload(dev, "a", pixels(4, 4, 1))
	require.NoError(t, err)
	require.Equal(t, uint32(0), slot)

	_, err = a.Upload(dev, "b", pixels(4, 4, 1))
	require.Error(t, err)
	assert.Equal(t, uint32(2), a.FreeSlots())
	_, ok := a.Slot("b")
	assert.False(t, ok)

	dev.Recover(devicetest.OpWriteTexture)
	slot, err = a.Upload(dev, "b", pixels(4, 4, 1))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), slot)
}

func TestReleaseReleasesResources(t *testing.T) {
	dev := devicetest.New()
	a, err := New(dev, Descriptor{Width: 4, Height: 4, LayerCount: 1, Layout: &devicetest.BindGroupLayout{}})
	require.NoError(t, err)

	a.Release()
	assert.True(t, dev.Textures[0].Released)
	assert.True(t, dev.Views[0].Released)
	assert.True(t, dev.Samplers[0].Released)
	assert.True(t, dev.BindGroups[0].Released)
}
