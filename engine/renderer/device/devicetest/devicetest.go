// Package devicetest provides a recording in-memory implementation of device.Device and device.Queue.
package devicetest

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
)

// Op names a recorded device or queue call.
type Op string

const (
	OpCreateBindGroupLayout Op = "CreateBindGroupLayout"
	OpCreatePipelineLayout  Op = "CreatePipelineLayout"
	OpCreateTexture         Op = "CreateTexture"
	OpCreateTextureView     Op = "CreateTextureView"
	OpCreateSampler         Op = "CreateSampler"
	OpCreateBindGroup       Op = "CreateBindGroup"
	OpCreateBuffer          Op = "CreateBuffer"
	OpWriteTexture          Op = "WriteTexture"
	OpWriteBuffer           Op = "WriteBuffer"
)

// Handle is the fake GPU object returned for every created resource.
type Handle struct {
	Op       Op
	Label    string
	ID       int
	Released bool
}

func (h *Handle) Release() {
	h.Released = true
}

// BindGroupLayout records the descriptor a layout was created from.
type BindGroupLayout struct {
	Handle
	Desc wgpu.BindGroupLayoutDescriptor
}

// PipelineLayout records the descriptor a pipeline layout was created from.
type PipelineLayout struct {
	Handle
	Desc device.PipelineLayoutDescriptor
}

// Texture records the descriptor a texture was created from.
type Texture struct {
	Handle
	Desc wgpu.TextureDescriptor
	dev  *Device
}

func (t *Texture) CreateView(desc *wgpu.TextureViewDescriptor) (device.TextureView, error) {
	t.dev.mu.Lock()
	defer t.dev.mu.Unlock()
	if err := t.dev.fail(OpCreateTextureView); err != nil {
		return nil, err
	}
	v := &TextureView{Texture: t}
	if desc != nil {
		v.Desc = *desc
		v.Label = desc.Label
	}
	v.Op = OpCreateTextureView
	v.ID = t.dev.next()
	t.dev.Views = append(t.dev.Views, v)
	return v, nil
}

// TextureView records the texture and descriptor a view was created from.
type TextureView struct {
	Handle
	Texture *Texture
	Desc    wgpu.TextureViewDescriptor
}

// Sampler records the descriptor a sampler was created from.
type Sampler struct {
	Handle
	Desc wgpu.SamplerDescriptor
}

// BindGroup records the descriptor a bind group was created from.
type BindGroup struct {
	Handle
	Desc device.BindGroupDescriptor
}

// Buffer records the descriptor a buffer was created from and the bytes written to it.
type Buffer struct {
	Handle
	Desc wgpu.BufferDescriptor
	Data []byte
}

// TextureWrite records a single WriteTexture call.
type TextureWrite struct {
	Dst    device.TextureCopy
	Data   []byte
	Layout wgpu.TextureDataLayout
	Size   wgpu.Extent3D
}

// BufferWrite records a single WriteBuffer call.
type BufferWrite struct {
	Buffer device.Buffer
	Offset uint64
	Data   []byte
}

// Device is a fake device and queue that records every call. It is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	ids      int
	failures map[Op]failure

	BindGroupLayouts []*BindGroupLayout
	PipelineLayouts  []*PipelineLayout
	Textures         []*Texture
	Views            []*TextureView
	Samplers         []*Sampler
	BindGroups       []*BindGroup
	Buffers          []*Buffer
	TextureWrites    []TextureWrite
	BufferWrites     []BufferWrite
}

type failure struct {
	err   error
	after int
}

var (
	_ device.Device = &Device{}
	_ device.Queue  = &Device{}
)

// New creates an empty recording device.
//
// Returns:
//   - *Device: the fake device, usable as both device.Device and device.Queue
func New() *Device {
	return &Device{failures: make(map[Op]failure)}
}

// FailOn makes every call of op return err.
//
// Parameters:
//   - op: the operation to fail
//   - err: the error to return
func (d *Device) FailOn(op Op, err error) {
	d.FailAfter(op, 0, err)
}

// FailAfter lets n calls of op succeed, then makes every later call return err.
//
// Parameters:
//   - op: the operation to fail
//   - n: the number of calls that succeed first
//   - err: the error to return
func (d *Device) FailAfter(op Op, n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[op] = failure{err: err, after: n}
}

// Recover removes any failure injected for op.
//
// Parameters:
//   - op: the operation to restore
func (d *Device) Recover(op Op) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.failures, op)
}

// Calls returns the number of successful calls recorded for op.
//
// Parameters:
//   - op: the operation to count
//
// Returns:
//   - int: the call count
func (d *Device) Calls(op Op) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch op {
	case OpCreateBindGroupLayout:
		return len(d.BindGroupLayouts)
	case OpCreatePipelineLayout:
		return len(d.PipelineLayouts)
	case OpCreateTexture:
		return len(d.Textures)
	case OpCreateTextureView:
		return len(d.Views)
	case OpCreateSampler:
		return len(d.Samplers)
	case OpCreateBindGroup:
		return len(d.BindGroups)
	case OpCreateBuffer:
		return len(d.Buffers)
	case OpWriteTexture:
		return len(d.TextureWrites)
	case OpWriteBuffer:
		return len(d.BufferWrites)
	}
	return 0
}

func (d *Device) fail(op Op) error {
	f, ok := d.failures[op]
	if !ok {
		return nil
	}
	if f.after > 0 {
		f.after--
		d.failures[op] = f
		return nil
	}
	return f.err
}

func (d *Device) next() int {
	d.ids++
	return d.ids
}

func (d *Device) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (device.BindGroupLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(OpCreateBindGroupLayout); err != nil {
		return nil, err
	}
	l := &BindGroupLayout{Handle: Handle{Op: OpCreateBindGroupLayout, Label: desc.Label, ID: d.next()}, Desc: *desc}
	d.BindGroupLayouts = append(d.BindGroupLayouts, l)
	return l, nil
}

func (d *Device) CreatePipelineLayout(desc *device.PipelineLayoutDescriptor) (device.PipelineLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(OpCreatePipelineLayout); err != nil {
		return nil, err
	}
	l := &PipelineLayout{Handle: Handle{Op: OpCreatePipelineLayout, Label: desc.Label, ID: d.next()}, Desc: *desc}
	d.PipelineLayouts = append(d.PipelineLayouts, l)
	return l, nil
}

func (d *Device) CreateTexture(desc *wgpu.TextureDescriptor) (device.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(OpCreateTexture); err != nil {
		return nil, err
	}
	t := &Texture{Handle: Handle{Op: OpCreateTexture, Label: desc.Label, ID: d.next()}, Desc: *desc, dev: d}
	d.Textures = append(d.Textures, t)
	return t, nil
}

func (d *Device) CreateSampler(desc *wgpu.SamplerDescriptor) (device.Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(OpCreateSampler); err != nil {
		return nil, err
	}
	s := &Sampler{Handle: Handle{Op: OpCreateSampler, Label: desc.Label, ID: d.next()}, Desc: *desc}
	d.Samplers = append(d.Samplers, s)
	return s, nil
}

func (d *Device) CreateBindGroup(desc *device.BindGroupDescriptor) (device.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(OpCreateBindGroup); err != nil {
		return nil, err
	}
	bg := &BindGroup{Handle: Handle{Op: OpCreateBindGroup, Label: desc.Label, ID: d.next()}, Desc: *desc}
	d.BindGroups = append(d.BindGroups, bg)
	return bg, nil
}

func (d *Device) CreateBuffer(desc *wgpu.BufferDescriptor) (device.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(OpCreateBuffer); err != nil {
		return nil, err
	}
	b := &Buffer{Handle: Handle{Op: OpCreateBuffer, Label: desc.Label, ID: d.next()}, Desc: *desc, Data: make([]byte, desc.Size)}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

func (d *Device) WriteTexture(dst *device.TextureCopy, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(OpWriteTexture); err != nil {
		return err
	}
	d.TextureWrites = append(d.TextureWrites, TextureWrite{
		Dst:    *dst,
		Data:   append([]byte(nil), data...),
		Layout: *layout,
		Size:   *size,
	})
	return nil
}

func (d *Device) WriteBuffer(buf device.Buffer, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail(OpWriteBuffer); err != nil {
		return err
	}
	if b, ok := buf.(*Buffer); ok && offset+uint64(len(data)) <= uint64(len(b.Data)) {
		copy(b.Data[offset:], data)
	}
	d.BufferWrites = append(d.BufferWrites, BufferWrite{Buffer: buf, Offset: offset, Data: append([]byte(nil), data...)})
	return nil
}
