package pipeline

import "github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

func withStage(stage shader.ShaderType, s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		if s == nil {
			delete(p.shaders, stage)
			return
		}
		p.shaders[stage] = s
	}
}

// WithVertexShader sets the vertex stage of a render pipeline.
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return withStage(shader.ShaderTypeVertex, s)
}

// WithFragmentShader sets the fragment stage of a render pipeline.
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return withStage(shader.ShaderTypeFragment, s)
}

// WithComputeShader sets the shader of a compute pipeline.
//
// Parameters:
//   - s: a shader with a @compute entry point
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithComputeShader(s shader.Shader) PipelineBuilderOption {
	return withStage(shader.ShaderTypeCompute, s)
}

// WithRaster replaces the fixed-function state of a render pipeline.
//
// Parameters:
//   - r: the raster state, typically OpaqueTriangles with fields overridden
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithRaster(r Raster) PipelineBuilderOption {
	return func(p *pipeline) {
		p.raster = r
	}
}
