// Package shader_effect derives the bind group layouts and pipeline layout of a shader from its
// reflected bindings, so pipelines never declare layouts by hand.
package shader_effect

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultImmediateSize is the push-constant budget, in bytes, reserved for small per-draw scalars.
const DefaultImmediateSize uint32 = 12

// MaxBindGroups bounds the group indices a shader may use. Group indices at or above it fail synthesis.
const MaxBindGroups uint32 = 8

// ErrTooManyBindGroups is returned when a reflected binding uses a group index at or above MaxBindGroups.
var ErrTooManyBindGroups = errors.New("bind group index exceeds limit")

// BindingVisibility is the stage set given to every synthesized entry. Reflection does not record
// which stage declared a binding.
const BindingVisibility = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

// shaderEffect is the implementation of the ShaderEffect interface.
type shaderEffect struct {
	label            string
	immediateSize    uint32
	reflected        shader.ReflectedShader
	bindGroupLayouts []device.BindGroupLayout
	pipelineLayout   device.PipelineLayout
}

// ShaderEffect owns the layouts synthesized for one reflected shader. Layout i belongs to group i;
// groups without bindings still get an empty layout so indices stay positional.
type ShaderEffect interface {
	// Label returns the debug label used for the created layouts.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Reflected returns the reflected shader the layouts were synthesized from.
	//
	// Returns:
	//   - shader.ReflectedShader: the reflected shader
	Reflected() shader.ReflectedShader

	// PipelineLayout returns the pipeline layout.
	//
	// Returns:
	//   - device.PipelineLayout: the pipeline layout
	PipelineLayout() device.PipelineLayout

	// BindGroupLayouts returns the bind group layouts in group-index order.
	//
	// Returns:
	//   - []device.BindGroupLayout: one layout per group from 0 to the highest group used
	BindGroupLayouts() []device.BindGroupLayout

	// BindGroupLayout returns the layout of a single group.
	//
	// Parameters:
	//   - group: the group index
	//
	// Returns:
	//   - device.BindGroupLayout: the layout, or nil if group is out of range
	BindGroupLayout(group uint32) device.BindGroupLayout

	// ImmediateSize returns the push-constant budget of the pipeline layout in bytes.
	//
	// Returns:
	//   - uint32: the budget
	ImmediateSize() uint32

	// Release releases the pipeline layout and every bind group layout.
	Release()
}

var _ ShaderEffect = &shaderEffect{}

// NewShaderEffect synthesizes the bind group layouts and pipeline layout for a reflected shader.
//
// Bindings are bucketed by group into g_max+1 layouts, keeping each binding's slot and giving it
// vertex and fragment visibility. A shader without bindings yields a pipeline layout with no bind
// group layouts. A group index at or above MaxBindGroups fails before any device call. Any device
// failure fails the whole call and releases whatever was already created.
//
// Parameters:
//   - dev: the device the layouts are created on
//   - reflected: the reflected shader
//   - options: functional options to configure the effect
//
// Returns:
//   - ShaderEffect: the synthesized layouts
//   - error: ErrTooManyBindGroups, or the device error wrapped with the group it occurred on
func NewShaderEffect(dev device.Device, reflected shader.ReflectedShader, options ...ShaderEffectBuilderOption) (ShaderEffect, error) {
	e := &shaderEffect{
		immediateSize: DefaultImmediateSize,
		reflected:     reflected,
	}
	if s := reflected.Shader(); s != nil {
		e.label = s.Key()
	}
	for _, opt := range options {
		opt(e)
	}

	buckets, err := Buckets(reflected)
	if err != nil {
		common.Logger().Error("bind group layout synthesis failed", "effect", e.label, "error", err)
		return nil, fmt.Errorf("shader effect %s: %w", e.label, err)
	}
	e.bindGroupLayouts = make([]device.BindGroupLayout, 0, len(buckets))
	for g, entries := range buckets {
		layout, err := dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   e.label + " group " + strconv.Itoa(g),
			Entries: entries,
		})
		if err != nil {
			e.Release()
			common.Logger().Error("bind group layout creation failed", "effect", e.label, "group", g, "error", err)
			return nil, fmt.Errorf("shader effect %s: failed to create bind group layout for group %d: %w", e.label, g, err)
		}
		e.bindGroupLayouts = append(e.bindGroupLayouts, layout)
	}

	pipelineLayout, err := dev.CreatePipelineLayout(&device.PipelineLayoutDescriptor{
		Label:            e.label,
		BindGroupLayouts: e.bindGroupLayouts,
		ImmediateSize:    e.immediateSize,
	})
	if err != nil {
		e.Release()
		common.Logger().Error("pipeline layout creation failed", "effect", e.label, "error", err)
		return nil, fmt.Errorf("shader effect %s: failed to create pipeline layout: %w", e.label, err)
	}
	e.pipelineLayout = pipelineLayout

	common.Logger().Debug("shader effect created", "effect", e.label, "groups", len(e.bindGroupLayouts))
	return e, nil
}

// Buckets distributes reflected bindings into per-group layout entries. The result has one bucket
// per group from 0 to the highest group used; groups without bindings hold an empty slice.
//
// Parameters:
//   - reflected: the reflected shader
//
// Returns:
//   - [][]wgpu.BindGroupLayoutEntry: the entries of each group, or nil when there are no bindings
//   - error: ErrTooManyBindGroups if the highest group is at or above MaxBindGroups
func Buckets(reflected shader.ReflectedShader) ([][]wgpu.BindGroupLayoutEntry, error) {
	gMax, ok := reflected.MaxGroup()
	if !ok {
		return nil, nil
	}
	if gMax >= MaxBindGroups {
		return nil, fmt.Errorf("%w: group %d, limit %d", ErrTooManyBindGroups, gMax, MaxBindGroups)
	}
	buckets := make([][]wgpu.BindGroupLayoutEntry, gMax+1)
	for g := range buckets {
		buckets[g] = []wgpu.BindGroupLayoutEntry{}
	}
	for _, b := range reflected.Bindings() {
		buckets[b.Group] = append(buckets[b.Group], b.Kind.Entry(b.Binding, BindingVisibility))
	}
	return buckets, nil
}

func (e *shaderEffect) Label() string {
	return e.label
}

func (e *shaderEffect) Reflected() shader.ReflectedShader {
	return e.reflected
}

func (e *shaderEffect) PipelineLayout() device.PipelineLayout {
	return e.pipelineLayout
}

func (e *shaderEffect) BindGroupLayouts() []device.BindGroupLayout {
	return e.bindGroupLayouts
}

func (e *shaderEffect) BindGroupLayout(group uint32) device.BindGroupLayout {
	if int(group) >= len(e.bindGroupLayouts) {
		return nil
	}
	return e.bindGroupLayouts[group]
}

func (e *shaderEffect) ImmediateSize() uint32 {
	return e.immediateSize
}

func (e *shaderEffect) Release() {
	if e.pipelineLayout != nil {
		e.pipelineLayout.Release()
		e.pipelineLayout = nil
	}
	for _, l := range e.bindGroupLayouts {
		l.Release()
	}
	e.bindGroupLayouts = nil
}
