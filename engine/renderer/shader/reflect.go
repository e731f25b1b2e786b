package shader

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga/ir"
)

var (
	// ErrUnsupportedStorageFormat is returned by Reflect when a storage texture uses a texel
	// format outside the supported set. The offending binding is omitted from the result.
	ErrUnsupportedStorageFormat = errors.New("unsupported storage texture format")

	// errUnclassifiable marks a global that is not a bindable resource. Such globals are logged and skipped.
	errUnclassifiable = errors.New("unclassifiable binding")
)

// supportedStorageFormats is the allow-list of storage texture formats.
var supportedStorageFormats = map[ir.StorageFormat]wgpu.TextureFormat{
	ir.StorageFormatR8Unorm:    wgpu.TextureFormatR8Unorm,
	ir.StorageFormatRgba8Unorm: wgpu.TextureFormatRGBA8Unorm,
	ir.StorageFormatRgba8Snorm: wgpu.TextureFormatRGBA8Snorm,
}

// ReflectedShader pairs a compiled shader with its resource bindings sorted by (group, binding).
// It is immutable and safe to share between pipelines.
type ReflectedShader struct {
	shader   Shader
	bindings []BindingInfo
}

// NewReflectedShader builds a ReflectedShader from an explicit binding list. The bindings are
// copied and sorted by (group, binding).
//
// Parameters:
//   - s: the shader the bindings belong to (may be nil)
//   - bindings: the resource bindings in any order
//
// Returns:
//   - ReflectedShader: the sorted, immutable result
func NewReflectedShader(s Shader, bindings []BindingInfo) ReflectedShader {
	sorted := slices.Clone(bindings)
	slices.SortFunc(sorted, compareBindings)
	return ReflectedShader{shader: s, bindings: sorted}
}

// Shader returns the reflected shader.
func (r ReflectedShader) Shader() Shader {
	return r.shader
}

// Bindings returns a copy of the sorted binding list.
func (r ReflectedShader) Bindings() []BindingInfo {
	return slices.Clone(r.bindings)
}

// MaxGroup returns the highest group index used by any binding.
//
// Returns:
//   - uint32: the highest group index
//   - bool: false when there are no bindings
func (r ReflectedShader) MaxGroup() (uint32, bool) {
	if len(r.bindings) == 0 {
		return 0, false
	}
	return r.bindings[len(r.bindings)-1].Group, true
}

// Reflect classifies every global resource of the shader that carries a @group/@binding pair.
//
// Globals that are not bindable resources (non-aggregate buffers, unknown image classes, other
// address spaces) are logged and skipped. A storage texture with a format outside the supported
// set is a hard failure for that binding: it is omitted and reported through the returned error,
// which wraps ErrUnsupportedStorageFormat. The partial result is returned alongside the error so
// callers can inspect it, but they must treat the reflection as invalid when the error is non-nil.
//
// Parameters:
//   - s: the compiled shader
//
// Returns:
//   - ReflectedShader: the bindings sorted by (group, binding)
//   - error: the joined errors of every binding that failed with an unsupported format
func Reflect(s Shader) (ReflectedShader, error) {
	module := s.Module()
	if module == nil {
		return NewReflectedShader(s, nil), nil
	}

	bindings := make([]BindingInfo, 0, len(module.GlobalVariables))
	var errs []error
	for _, gv := range module.GlobalVariables {
		if gv.Binding == nil {
			continue
		}

		kind, err := classifyGlobal(module, gv)
		if err != nil {
			if errors.Is(err, ErrUnsupportedStorageFormat) {
				errs = append(errs, fmt.Errorf("shader %s: %s @group(%d) @binding(%d): %w",
					s.Key(), gv.Name, gv.Binding.Group, gv.Binding.Binding, err))
				continue
			}
			common.Logger().Warn("skipping shader global",
				"shader", s.Key(),
				"name", gv.Name,
				"group", gv.Binding.Group,
				"binding", gv.Binding.Binding,
				"reason", err)
			continue
		}

		bindings = append(bindings, BindingInfo{
			Group:   gv.Binding.Group,
			Binding: gv.Binding.Binding,
			Kind:    kind,
		})
	}

	return NewReflectedShader(s, bindings), errors.Join(errs...)
}

// classifyGlobal maps a global variable to a ResourceKind using its address space, access mode and IR type.
func classifyGlobal(module *ir.Module, gv ir.GlobalVariable) (ResourceKind, error) {
	if int(gv.Type) >= len(module.Types) {
		return ResourceKind{}, fmt.Errorf("%w: type handle %d out of range", errUnclassifiable, gv.Type)
	}
	inner := module.Types[gv.Type].Inner

	switch gv.Space {
	case ir.SpaceUniform:
		if !isAggregate(inner) {
			return ResourceKind{}, fmt.Errorf("%w: uniform of non-aggregate type %T", errUnclassifiable, inner)
		}
		return UniformBuffer(), nil
	case ir.SpaceStorage:
		if !isAggregate(inner) {
			return ResourceKind{}, fmt.Errorf("%w: storage of non-aggregate type %T", errUnclassifiable, inner)
		}
		return StorageBuffer(gv.Access == ir.StorageRead), nil
	case ir.SpaceHandle:
		switch t := inner.(type) {
		case ir.SamplerType:
			return Sampler(true), nil
		case ir.ImageType:
			return classifyImage(t)
		}
		return ResourceKind{}, fmt.Errorf("%w: opaque type %T", errUnclassifiable, inner)
	}

	return ResourceKind{}, fmt.Errorf("%w: address space %v", errUnclassifiable, gv.Space)
}

func classifyImage(t ir.ImageType) (ResourceKind, error) {
	dim := viewDimension(t.Dim, t.Arrayed)

	switch t.Class {
	case ir.ImageClassDepth:
		return Depth(dim, t.Multisampled), nil
	case ir.ImageClassStorage:
		format, ok := supportedStorageFormats[t.StorageFormat]
		if !ok {
			return ResourceKind{}, fmt.Errorf("%w: %v", ErrUnsupportedStorageFormat, t.StorageFormat)
		}
		return StorageTexture(storageAccess(t.StorageAccess), format, dim), nil
	case ir.ImageClassSampled:
		return SampledTexture(dim, sampleType(t.SampledKind), t.Multisampled), nil
	}

	return ResourceKind{}, fmt.Errorf("%w: image class %v", errUnclassifiable, t.Class)
}

func storageAccess(access ir.StorageAccess) wgpu.StorageTextureAccess {
	switch access {
	case ir.StorageAccessReadWrite:
		return wgpu.StorageTextureAccessReadWrite
	case ir.StorageAccessWrite:
		return wgpu.StorageTextureAccessWriteOnly
	default:
		return wgpu.StorageTextureAccessReadOnly
	}
}

func sampleType(kind ir.ScalarKind) wgpu.TextureSampleType {
	switch kind {
	case ir.ScalarSint:
		return wgpu.TextureSampleTypeSint
	case ir.ScalarUint:
		return wgpu.TextureSampleTypeUint
	default:
		return wgpu.TextureSampleTypeFloat
	}
}

// viewDimension maps an image dimension to a view dimension. 1D and 3D keep their own view
// dimensions regardless of arrayed, since WebGPU has no 1D or 3D array views.
func viewDimension(dim ir.ImageDimension, arrayed bool) wgpu.TextureViewDimension {
	switch {
	case dim == ir.Dim1D:
		return wgpu.TextureViewDimension1D
	case dim == ir.Dim2D && arrayed:
		return wgpu.TextureViewDimension2DArray
	case dim == ir.DimCube && !arrayed:
		return wgpu.TextureViewDimensionCube
	case dim == ir.DimCube && arrayed:
		return wgpu.TextureViewDimensionCubeArray
	case dim == ir.Dim3D:
		return wgpu.TextureViewDimension3D
	default:
		return wgpu.TextureViewDimension2D
	}
}

func isAggregate(inner ir.TypeInner) bool {
	switch inner.(type) {
	case ir.StructType, ir.ArrayType:
		return true
	}
	return false
}
