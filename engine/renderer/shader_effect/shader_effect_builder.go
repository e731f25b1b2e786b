package shader_effect

// ShaderEffectBuilderOption is a functional option for configuring a ShaderEffect via NewShaderEffect.
type ShaderEffectBuilderOption func(*shaderEffect)

// WithLabel sets the debug label of the created layouts. Defaults to the shader key.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - ShaderEffectBuilderOption: a function that sets the label
func WithLabel(label string) ShaderEffectBuilderOption {
	return func(e *shaderEffect) {
		e.label = label
	}
}

// WithImmediateSize overrides the push-constant budget of the pipeline layout.
//
// Parameters:
//   - size: the budget in bytes, 0 to reserve none
//
// Returns:
//   - ShaderEffectBuilderOption: a function that sets the budget
func WithImmediateSize(size uint32) ShaderEffectBuilderOption {
	return func(e *shaderEffect) {
		e.immediateSize = size
	}
}
