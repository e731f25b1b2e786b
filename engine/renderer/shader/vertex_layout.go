package shader

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga/ir"
)

// vertexFormatKey identifies a vertex attribute type by scalar kind, scalar width and component count.
type vertexFormatKey struct {
	kind       ir.ScalarKind
	width      uint8
	components uint8
}

// vertexFormatInfo holds the wgpu vertex format and its byte size for offset calculation.
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

var vertexFormats = map[vertexFormatKey]vertexFormatInfo{
	{ir.ScalarFloat, 4, 1}: {wgpu.VertexFormatFloat32, 4},
	{ir.ScalarFloat, 4, 2}: {wgpu.VertexFormatFloat32x2, 8},
	{ir.ScalarFloat, 4, 3}: {wgpu.VertexFormatFloat32x3, 12},
	{ir.ScalarFloat, 4, 4}: {wgpu.VertexFormatFloat32x4, 16},
	{ir.ScalarSint, 4, 1}:  {wgpu.VertexFormatSint32, 4},
	{ir.ScalarSint, 4, 2}:  {wgpu.VertexFormatSint32x2, 8},
	{ir.ScalarSint, 4, 3}:  {wgpu.VertexFormatSint32x3, 12},
	{ir.ScalarSint, 4, 4}:  {wgpu.VertexFormatSint32x4, 16},
	{ir.ScalarUint, 4, 1}:  {wgpu.VertexFormatUint32, 4},
	{ir.ScalarUint, 4, 2}:  {wgpu.VertexFormatUint32x2, 8},
	{ir.ScalarUint, 4, 3}:  {wgpu.VertexFormatUint32x3, 12},
	{ir.ScalarUint, 4, 4}:  {wgpu.VertexFormatUint32x4, 16},
	{ir.ScalarFloat, 2, 2}: {wgpu.VertexFormatFloat16x2, 4},
	{ir.ScalarFloat, 2, 4}: {wgpu.VertexFormatFloat16x4, 8},
}

// stageShaderTypes maps IR entry point stages to the stages a pipeline can use.
var stageShaderTypes = map[ir.ShaderStage]ShaderType{
	ir.StageVertex:   ShaderTypeVertex,
	ir.StageFragment: ShaderTypeFragment,
	ir.StageCompute:  ShaderTypeCompute,
}

// moduleEntryPoints returns the first entry point name of each stage declared in the module.
//
// Parameters:
//   - module: the lowered module (may be nil)
//
// Returns:
//   - map[ShaderType]string: entry point names keyed by stage
func moduleEntryPoints(module *ir.Module) map[ShaderType]string {
	entries := make(map[ShaderType]string, 3)
	if module == nil {
		return entries
	}
	for _, ep := range module.EntryPoints {
		stage, ok := stageShaderTypes[ep.Stage]
		if !ok {
			continue
		}
		if _, seen := entries[stage]; !seen {
			entries[stage] = ep.Name
		}
	}
	return entries
}

// moduleVertexLayouts derives vertex buffer layouts from the arguments of the module's vertex entry point.
// A struct argument whose members are all @location-bound becomes one buffer layout; a bare
// @location argument becomes a single-attribute layout. Built-in arguments are skipped, as are
// arguments with a type that has no vertex format. Attributes are packed tightly in member order.
//
// Parameters:
//   - module: the lowered module (may be nil)
//
// Returns:
//   - []wgpu.VertexBufferLayout: the layouts in argument order
func moduleVertexLayouts(module *ir.Module) []wgpu.VertexBufferLayout {
	if module == nil {
		return nil
	}

	var result []wgpu.VertexBufferLayout
	for _, ep := range module.EntryPoints {
		if ep.Stage != ir.StageVertex {
			continue
		}
		for _, arg := range ep.Function.Arguments {
			var (
				layout wgpu.VertexBufferLayout
				ok     bool
			)
			if arg.Binding != nil {
				layout, ok = buildVertexBufferLayout(module, []ir.StructMember{{Type: arg.Type, Binding: arg.Binding}})
			} else if st, isStruct := typeInner(module, arg.Type).(ir.StructType); isStruct {
				layout, ok = buildVertexBufferLayout(module, st.Members)
			}
			if ok {
				result = append(result, layout)
			}
		}
		break
	}
	return result
}

// buildVertexBufferLayout packs @location-bound fields into a wgpu.VertexBufferLayout with sequential offsets.
// Returns false if any field is unbound, built-in, or has a type that does not map to a vertex format.
func buildVertexBufferLayout(module *ir.Module, fields []ir.StructMember) (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(fields))
	var offset uint64

	for _, f := range fields {
		if f.Binding == nil {
			return wgpu.VertexBufferLayout{}, false
		}
		loc, ok := (*f.Binding).(ir.LocationBinding)
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		info, ok := vertexFormatOf(module, f.Type)
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}

		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: loc.Location,
		})
		offset += info.size
	}
	if len(attrs) == 0 {
		return wgpu.VertexBufferLayout{}, false
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

func vertexFormatOf(module *ir.Module, handle ir.TypeHandle) (vertexFormatInfo, bool) {
	var key vertexFormatKey
	switch t := typeInner(module, handle).(type) {
	case ir.ScalarType:
		key = vertexFormatKey{kind: t.Kind, width: t.Width, components: 1}
	case ir.VectorType:
		key = vertexFormatKey{kind: t.Scalar.Kind, width: t.Scalar.Width, components: uint8(t.Size)}
	default:
		return vertexFormatInfo{}, false
	}
	info, ok := vertexFormats[key]
	return info, ok
}

func typeInner(module *ir.Module, handle ir.TypeHandle) ir.TypeInner {
	if int(handle) >= len(module.Types) {
		return nil
	}
	return module.Types[handle].Inner
}
