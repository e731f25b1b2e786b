// Package texture_array packs many same-sized images into the layers of one GPU texture array.
// Each array hands out layer slots from a fixed pool and remembers which content key owns which
// slot, so loading the same file twice costs one upload.
package texture_array

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrCapacityExceeded is returned by Upload when every layer of the array is assigned.
	ErrCapacityExceeded = errors.New("texture array is full")

	// ErrInvalidPixels is returned by Upload when the payload is not tightly packed RGBA8 or does
	// not fit in a layer.
	ErrInvalidPixels = errors.New("invalid texture pixels")

	// ErrDescriptorInvalid is returned by New when the descriptor has a zero extent or layer count.
	ErrDescriptorInvalid = errors.New("invalid texture array descriptor")

	// ErrNotConfigured is returned by Registry lookups for a descriptor that was never created.
	ErrNotConfigured = errors.New("texture array not configured")
)

// DefaultFormat is the texel format used when a Descriptor leaves Format unset.
const DefaultFormat = wgpu.TextureFormatRGBA8UnormSrgb

// Bindings of the array's bind group.
const (
	// TextureBinding is the slot of the texture_2d_array view.
	TextureBinding = 0
	// SamplerBinding is the slot of the sampler.
	SamplerBinding = 1
)

// Descriptor identifies a texture array. It is a comparable value: two descriptors with equal
// fields request the same array, and arrays that differ only in sampler or layout are distinct.
type Descriptor struct {
	// Width and Height are the size of every layer in pixels.
	Width, Height uint32
	// LayerCount is the number of layers, which is the slot capacity of the array.
	LayerCount uint32
	// Format is the texel format. Zero means DefaultFormat.
	Format wgpu.TextureFormat
	// Sampler configures the sampler bound next to the array.
	Sampler common.SamplerStagingData
	// Layout is the bind group layout the array's bind group is created against. A nil layout
	// skips bind group creation.
	Layout device.BindGroupLayout
}

// Normalized returns the descriptor with defaults applied. Registry lookups compare normalized
// descriptors, so an unset field and its explicit default select the same array.
//
// Returns:
//   - Descriptor: the descriptor with Format and sampler defaults made explicit
func (d Descriptor) Normalized() Descriptor {
	d.Format = common.Coalesce(d.Format, DefaultFormat)
	d.Sampler = d.Sampler.Resolved()
	return d
}

func (d Descriptor) validate() error {
	if d.Width == 0 || d.Height == 0 || d.LayerCount == 0 {
		return fmt.Errorf("%w: %dx%d with %d layers", ErrDescriptorInvalid, d.Width, d.Height, d.LayerCount)
	}
	return nil
}

// textureArray is the implementation of the TextureArray interface.
type textureArray struct {
	desc     Descriptor
	label    string
	texture  device.Texture
	view     device.TextureView
	sampler  device.Sampler
	provider bind_group_provider.BindGroupProvider

	// free holds unassigned slots in FIFO order.
	free []uint32
	// cache maps a content key to the slot its pixels were uploaded to.
	cache map[string]uint32
	// assigned counts slots handed out by Upload.
	assigned uint32
}

// TextureArray owns a fixed-capacity 2D texture array and the slot table for its layers.
//
// Slots are never freed: once a layer is assigned it stays assigned for the array's lifetime, and
// Upload fails with ErrCapacityExceeded when the pool runs dry. The upload cache is keyed by
// identity, so re-uploading different pixels under a known key returns the original slot and the
// stale layer content.
//
// A TextureArray is not safe for concurrent use; callers serialize Upload.
type TextureArray interface {
	// Descriptor returns the normalized descriptor the array was created from.
	//
	// Returns:
	//   - Descriptor: the descriptor
	Descriptor() Descriptor

	// Capacity returns the number of layers.
	//
	// Returns:
	//   - uint32: the layer count
	Capacity() uint32

	// FreeSlots returns the number of unassigned layers.
	//
	// Returns:
	//   - uint32: the free slot count
	FreeSlots() uint32

	// Assigned returns the number of layers handed out.
	//
	// Returns:
	//   - uint32: the assigned slot count
	Assigned() uint32

	// Slot looks up the slot cached for a content key.
	//
	// Parameters:
	//   - key: the content key
	//
	// Returns:
	//   - uint32: the slot
	//   - bool: true if the key has been uploaded
	Slot(key string) (uint32, bool)

	// Upload writes an image into the next free layer and returns its slot.
	// A non-empty key that was uploaded before returns the cached slot without writing.
	//
	// Parameters:
	//   - queue: the queue to issue the texture write on
	//   - key: the content key, usually the source path, or "" to skip caching
	//   - data: tightly packed RGBA8 pixels no larger than a layer
	//
	// Returns:
	//   - uint32: the slot holding the image
	//   - error: ErrInvalidPixels, ErrCapacityExceeded, or the queue's error
	Upload(queue device.Queue, key string, data common.TextureStagingData) (uint32, error)

	// UploadImage decodes an image, scales it to the layer size and uploads it with its path as key.
	// A cached path returns its slot without decoding.
	//
	// Parameters:
	//   - queue: the queue to issue the texture write on
	//   - src: the image to decode
	//
	// Returns:
	//   - uint32: the slot holding the image
	//   - error: a decode error or any error from Upload
	UploadImage(queue device.Queue, src common.ImageSource) (uint32, error)

	// BindGroupProvider returns the provider holding the texture, view, sampler and bind group.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// Texture returns the array texture.
	//
	// Returns:
	//   - device.Texture: the texture
	Texture() device.Texture

	// View returns the 2D array view over every layer.
	//
	// Returns:
	//   - device.TextureView: the view
	View() device.TextureView

	// Sampler returns the sampler bound next to the array.
	//
	// Returns:
	//   - device.Sampler: the sampler
	Sampler() device.Sampler

	// Release releases the texture, view, sampler and bind group.
	Release()
}

var _ TextureArray = &textureArray{}

// New creates a texture array, its 2D array view, its sampler and, when the descriptor carries a
// layout, a bind group with the view at TextureBinding and the sampler at SamplerBinding.
// All LayerCount slots start free in ascending order.
//
// Parameters:
//   - dev: the device to allocate on
//   - desc: the array descriptor
//
// Returns:
//   - TextureArray: the new array
//   - error: ErrDescriptorInvalid, or the device error of the first failed allocation
func New(dev device.Device, desc Descriptor) (TextureArray, error) {
	desc = desc.Normalized()
	if err := desc.validate(); err != nil {
		return nil, err
	}

	label := fmt.Sprintf("texture array %dx%dx%d", desc.Width, desc.Height, desc.LayerCount)
	a := &textureArray{
		desc:     desc,
		label:    label,
		provider: bind_group_provider.NewBindGroupProvider(label),
		free:     make([]uint32, desc.LayerCount),
		cache:    make(map[string]uint32),
	}
	for i := range a.free {
		a.free[i] = uint32(i)
	}

	if err := a.allocate(dev); err != nil {
		a.Release()
		common.Logger().Error("texture array allocation failed", "array", label, "error", err)
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	common.Logger().Debug("texture array created", "array", label, "format", desc.Format)
	return a, nil
}

func (a *textureArray) allocate(dev device.Device) error {
	tex, err := dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:     a.label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              a.desc.Width,
			Height:             a.desc.Height,
			DepthOrArrayLayers: a.desc.LayerCount,
		},
		Format:        a.desc.Format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to create texture: %w", err)
	}
	a.texture = tex
	a.provider.SetTexture(tex)

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           a.label + " view",
		Format:          a.desc.Format,
		Dimension:       wgpu.TextureViewDimension2DArray,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: a.desc.LayerCount,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return fmt.Errorf("failed to create view: %w", err)
	}
	a.view = view
	a.provider.SetTextureView(TextureBinding, view)

	samp, err := dev.CreateSampler(a.desc.Sampler.SamplerDescriptor(a.label + " sampler"))
	if err != nil {
		return fmt.Errorf("failed to create sampler: %w", err)
	}
	a.sampler = samp
	a.provider.SetSampler(SamplerBinding, samp)

	if a.desc.Layout == nil {
		return nil
	}
	bg, err := dev.CreateBindGroup(&device.BindGroupDescriptor{
		Label:  a.label + " bind group",
		Layout: a.desc.Layout,
		Entries: []device.BindGroupEntry{
			{Binding: TextureBinding, TextureView: view},
			{Binding: SamplerBinding, Sampler: samp},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group: %w", err)
	}
	a.provider.SetBindGroupLayout(a.desc.Layout)
	a.provider.SetBindGroup(bg)
	return nil
}

func (a *textureArray) Descriptor() Descriptor {
	return a.desc
}

func (a *textureArray) Capacity() uint32 {
	return a.desc.LayerCount
}

func (a *textureArray) FreeSlots() uint32 {
	return uint32(len(a.free))
}

func (a *textureArray) Assigned() uint32 {
	return a.assigned
}

func (a *textureArray) Slot(key string) (uint32, bool) {
	slot, ok := a.cache[key]
	return slot, ok
}

func (a *textureArray) Upload(queue device.Queue, key string, data common.TextureStagingData) (uint32, error) {
	if key != "" {
		if slot, ok := a.cache[key]; ok {
			return slot, nil
		}
	}

	if err := data.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPixels, err)
	}
	if data.Width > a.desc.Width || data.Height > a.desc.Height {
		return 0, fmt.Errorf("%w: %dx%d does not fit a %dx%d layer", ErrInvalidPixels, data.Width, data.Height, a.desc.Width, a.desc.Height)
	}

	if len(a.free) == 0 {
		return 0, fmt.Errorf("%s: %w (capacity %d)", a.label, ErrCapacityExceeded, a.desc.LayerCount)
	}
	slot := a.free[0]
	a.free = a.free[1:]

	err := queue.WriteTexture(
		&device.TextureCopy{
			Texture:  a.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: slot},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		a.free = append([]uint32{slot}, a.free...)
		return 0, fmt.Errorf("%s: failed to write layer %d: %w", a.label, slot, err)
	}

	a.assigned++
	if key != "" {
		a.cache[key] = slot
	}
	return slot, nil
}

func (a *textureArray) UploadImage(queue device.Queue, src common.ImageSource) (uint32, error) {
	if src.Path != "" {
		if slot, ok := a.cache[src.Path]; ok {
			return slot, nil
		}
	}
	data, err := src.Decode(a.desc.Width, a.desc.Height)
	if err != nil {
		return 0, err
	}
	return a.Upload(queue, src.Path, data)
}

func (a *textureArray) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return a.provider
}

func (a *textureArray) Texture() device.Texture {
	return a.texture
}

func (a *textureArray) View() device.TextureView {
	return a.view
}

func (a *textureArray) Sampler() device.Sampler {
	return a.sampler
}

func (a *textureArray) Release() {
	a.provider.Release()
	a.texture = nil
	a.view = nil
	a.sampler = nil
}

// RenderableBinding is the non-owning reference a drawable holds into a texture array.
// It must not outlive the array it points to.
type RenderableBinding struct {
	Array TextureArray
	Slot  uint32
}
