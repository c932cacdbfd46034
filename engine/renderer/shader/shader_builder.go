package shader

// ShaderBuilderOption is a functional option applied by NewShader before parsing.
type ShaderBuilderOption func(*shaderOptions)

type shaderOptions struct {
	preProcessor PreProcessor
}

// WithPreProcessor runs pp over the loaded source before it is parsed and compiled.
//
// Parameters:
//   - pp: the pre-processor expanding slot annotations
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(o *shaderOptions) {
		o.preProcessor = pp
	}
}
