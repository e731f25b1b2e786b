package device

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUDeviceOption configures a WGPUDevice.
type WGPUDeviceOption func(*wgpuDevice)

// WithPushConstants enables mapping PipelineLayoutDescriptor.ImmediateSize to a push-constant range.
// Only enable this when the device was requested with the native push-constant feature; otherwise
// the immediate budget is dropped from the created layout.
//
// Parameters:
//   - enabled: whether push-constant ranges are emitted
//
// Returns:
//   - WGPUDeviceOption: a function that applies the setting
func WithPushConstants(enabled bool) WGPUDeviceOption {
	return func(d *wgpuDevice) {
		d.pushConstants = enabled
	}
}

// WGPUDevice adapts a *wgpu.Device and its *wgpu.Queue to the Device and Queue capabilities.
type WGPUDevice interface {
	Device
	Queue

	// Raw returns the underlying wgpu device for operations outside the Device capability
	// such as shader module and render pipeline creation.
	//
	// Returns:
	//   - *wgpu.Device: the wrapped device
	Raw() *wgpu.Device

	// RawQueue returns the underlying wgpu queue for command submission.
	//
	// Returns:
	//   - *wgpu.Queue: the wrapped queue
	RawQueue() *wgpu.Queue
}

type wgpuDevice struct {
	device        *wgpu.Device
	queue         *wgpu.Queue
	pushConstants bool
}

var _ WGPUDevice = &wgpuDevice{}

// NewWGPUDevice wraps a wgpu device and queue.
//
// Parameters:
//   - d: the wgpu device
//   - q: the wgpu queue obtained from d
//   - opts: adapter options
//
// Returns:
//   - WGPUDevice: the adapter
func NewWGPUDevice(d *wgpu.Device, q *wgpu.Queue, opts ...WGPUDeviceOption) WGPUDevice {
	w := &wgpuDevice{device: d, queue: q}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *wgpuDevice) Raw() *wgpu.Device {
	return w.device
}

func (w *wgpuDevice) RawQueue() *wgpu.Queue {
	return w.queue
}

func (w *wgpuDevice) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (BindGroupLayout, error) {
	l, err := w.device.CreateBindGroupLayout(desc)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (w *wgpuDevice) CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayout, error) {
	layouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		raw, ok := l.(*wgpu.BindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("bind group layout %d is %T, not a wgpu layout", i, l)
		}
		layouts[i] = raw
	}

	wd := &wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	}
	if desc.ImmediateSize > 0 {
		if w.pushConstants {
			wd.PushConstantRanges = []wgpu.PushConstantRange{{
				Stages: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Start:  0,
				End:    desc.ImmediateSize,
			}}
		} else {
			common.Logger().Debug("push constants disabled, dropping immediate budget",
				"layout", desc.Label, "bytes", desc.ImmediateSize)
		}
	}

	l, err := w.device.CreatePipelineLayout(wd)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (w *wgpuDevice) CreateTexture(desc *wgpu.TextureDescriptor) (Texture, error) {
	t, err := w.device.CreateTexture(desc)
	if err != nil {
		return nil, err
	}
	return &wgpuTexture{texture: t}, nil
}

func (w *wgpuDevice) CreateSampler(desc *wgpu.SamplerDescriptor) (Sampler, error) {
	s, err := w.device.CreateSampler(desc)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (w *wgpuDevice) CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error) {
	layout, ok := desc.Layout.(*wgpu.BindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("bind group %q: layout is %T, not a wgpu layout", desc.Label, desc.Layout)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{
			Binding: e.Binding,
			Offset:  e.Offset,
			Size:    e.Size,
		}
		switch {
		case e.Buffer != nil:
			buf, ok := e.Buffer.(*wgpu.Buffer)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: buffer is %T", desc.Label, e.Binding, e.Buffer)
			}
			entry.Buffer = buf
			if entry.Size == 0 {
				entry.Size = wgpu.WholeSize
			}
		case e.Sampler != nil:
			s, ok := e.Sampler.(*wgpu.Sampler)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: sampler is %T", desc.Label, e.Binding, e.Sampler)
			}
			entry.Sampler = s
		case e.TextureView != nil:
			v, ok := e.TextureView.(*wgpu.TextureView)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: texture view is %T", desc.Label, e.Binding, e.TextureView)
			}
			entry.TextureView = v
		default:
			return nil, fmt.Errorf("bind group %q binding %d: no resource set", desc.Label, e.Binding)
		}
		entries = append(entries, entry)
	}

	bg, err := w.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return bg, nil
}

func (w *wgpuDevice) CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error) {
	b, err := w.device.CreateBuffer(desc)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (w *wgpuDevice) WriteTexture(dst *TextureCopy, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error {
	tex, ok := dst.Texture.(*wgpuTexture)
	if !ok {
		return fmt.Errorf("texture write: destination is %T, not a wgpu texture", dst.Texture)
	}
	w.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex.texture,
			MipLevel: dst.MipLevel,
			Origin:   dst.Origin,
			Aspect:   dst.Aspect,
		},
		data,
		layout,
		size,
	)
	return nil
}

func (w *wgpuDevice) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	raw, ok := buf.(*wgpu.Buffer)
	if !ok {
		return fmt.Errorf("buffer write: destination is %T, not a wgpu buffer", buf)
	}
	return w.queue.WriteBuffer(raw, offset, data)
}

// wgpuTexture wraps *wgpu.Texture so CreateView returns the TextureView capability.
type wgpuTexture struct {
	texture *wgpu.Texture
}

var _ Texture = &wgpuTexture{}

func (t *wgpuTexture) CreateView(desc *wgpu.TextureViewDescriptor) (TextureView, error) {
	v, err := t.texture.CreateView(desc)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (t *wgpuTexture) Release() {
	t.texture.Release()
}

// RawTexture returns the wgpu texture behind a Texture created by a WGPUDevice.
//
// Parameters:
//   - t: the texture handle
//
// Returns:
//   - *wgpu.Texture: the wrapped texture, or nil if t was not created by a WGPUDevice
func RawTexture(t Texture) *wgpu.Texture {
	if wt, ok := t.(*wgpuTexture); ok {
		return wt.texture
	}
	return nil
}
