package shader

import (
	"errors"
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/wgsl"
)

// ShaderType identifies a shader stage entry point.
type ShaderType int

const (
	// ShaderTypeCompute indicates a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex indicates a @vertex entry point.
	ShaderTypeVertex

	// ShaderTypeFragment indicates a @fragment entry point.
	ShaderTypeFragment
)

// ErrCompile is returned when WGSL source fails to pre-process, parse or lower.
var ErrCompile = errors.New("shader compilation failed")

// shader is the implementation of the Shader interface.
type shader struct {
	key           string
	source        string
	module        *ir.Module
	descriptor    *wgpu.ShaderModuleDescriptor
	entryPoints   map[ShaderType]string
	vertexLayouts []wgpu.VertexBufferLayout
	annotations   []Annotation
}

// Shader is a compiled WGSL module. It holds the pre-processed source, the lowered IR used for
// binding reflection, and the metadata needed to build a render pipeline from it.
// A Shader is immutable after Compile returns and may be shared by any number of pipelines.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source.
	//
	// Returns:
	//   - string: the WGSL source code with @oxy annotations expanded
	Source() string

	// Module returns the lowered IR of the shader.
	//
	// Returns:
	//   - *ir.Module: the compiled module
	Module() *ir.Module

	// Descriptor returns the wgpu shader module descriptor for GPU module creation.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor carrying the WGSL code and label
	Descriptor() *wgpu.ShaderModuleDescriptor

	// EntryPoint returns the entry point function name for a stage.
	//
	// Parameters:
	//   - stage: the shader stage
	//
	// Returns:
	//   - string: the function name, or an empty string if the stage has no entry point
	EntryPoint(stage ShaderType) string

	// VertexLayouts returns the vertex buffer layouts derived from the vertex entry point's inputs, in argument order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupVarName retrieves the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding uint32) string

	// BufferSize returns the minimum byte size of the buffer declared at a group and binding,
	// taken from the lowered struct or array layout. Runtime-sized arrays count one element.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - uint64: the size in bytes, or 0 if the binding is not a buffer or its type could not be resolved
	BufferSize(group, binding uint32) uint64

	// Declarations returns the @oxy group and provider annotations found in the original source.
	//
	// Returns:
	//   - []Annotation: the annotations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// Compile pre-processes WGSL source and compiles it with the naga front end.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the GPU module label
//   - source: the WGSL source, optionally containing @oxy annotations
//
// Returns:
//   - Shader: the compiled shader
//   - error: an error wrapping ErrCompile if any stage fails
func Compile(key, source string) (Shader, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: pre-process: %w", ErrCompile, key, err)
	}

	tokens, err := wgsl.NewLexer(processed).Tokenize()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: tokenize: %w", ErrCompile, key, err)
	}
	ast, err := wgsl.NewParser(tokens).Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: parse: %w", ErrCompile, key, err)
	}
	module, err := wgsl.LowerWithSource(ast, processed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: lower: %w", ErrCompile, key, err)
	}

	return newShader(key, processed, module, pp.Declarations()), nil
}

// NewShaderFromPath reads a WGSL file and compiles it.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - path: the file path to read WGSL source from
//
// Returns:
//   - Shader: the compiled shader
//   - error: an error if the file cannot be read or compilation fails
func NewShaderFromPath(key, path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to read source file %q: %w", key, path, err)
	}
	return Compile(key, string(data))
}

// NewShaderFromModule wraps an already-lowered module. The source is only carried into the
// module descriptor and may be empty.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: the WGSL source the module was lowered from, or ""
//   - module: the lowered module
//
// Returns:
//   - Shader: the wrapped shader
func NewShaderFromModule(key, source string, module *ir.Module) Shader {
	return newShader(key, source, module, nil)
}

func newShader(key, source string, module *ir.Module, annotations []Annotation) *shader {
	s := &shader{
		key:    key,
		source: source,
		module: module,
		descriptor: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
		entryPoints:   moduleEntryPoints(module),
		vertexLayouts: moduleVertexLayouts(module),
		annotations:   annotations,
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Module() *ir.Module {
	return s.module
}

func (s *shader) Descriptor() *wgpu.ShaderModuleDescriptor {
	return s.descriptor
}

func (s *shader) EntryPoint(stage ShaderType) string {
	return s.entryPoints[stage]
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) BindGroupVarName(group, binding uint32) string {
	if s.module == nil {
		return ""
	}
	for _, gv := range s.module.GlobalVariables {
		if gv.Binding != nil && gv.Binding.Group == group && gv.Binding.Binding == binding {
			return gv.Name
		}
	}
	return ""
}

func (s *shader) BufferSize(group, binding uint32) uint64 {
	if s.module == nil {
		return 0
	}
	for _, gv := range s.module.GlobalVariables {
		if gv.Binding == nil || gv.Binding.Group != group || gv.Binding.Binding != binding {
			continue
		}
		if gv.Space != ir.SpaceUniform && gv.Space != ir.SpaceStorage {
			return 0
		}
		return bufferTypeSize(s.module, gv.Type)
	}
	return 0
}

// bufferTypeSize returns the byte size of an aggregate buffer type, or 0 for any other type.
func bufferTypeSize(module *ir.Module, handle ir.TypeHandle) uint64 {
	switch t := typeInner(module, handle).(type) {
	case ir.StructType:
		return uint64(t.Span)
	case ir.ArrayType:
		if t.Size.Constant != nil {
			return uint64(t.Stride) * uint64(*t.Size.Constant)
		}
		return uint64(t.Stride)
	}
	return 0
}

func (s *shader) Declarations() []Annotation {
	return s.annotations
}
