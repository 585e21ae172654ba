package renderer

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
)

const (
	// RaytracePipelineKey is the pipeline key of the compute program.
	RaytracePipelineKey = "raytrace"

	// PresentPipelineKey is the pipeline key of the fullscreen blit.
	PresentPipelineKey = "present"
)

// RaytraceShaderSource is the default compute program: a sky gradient with nearest-sphere hits.
//
//go:embed assets/raytrace.wgsl
var RaytraceShaderSource string

//go:embed assets/present.wgsl
var presentShaderSource string

// newPresentPipeline builds the pipeline description of the fullscreen blit from the embedded source.
func newPresentPipeline() pipeline.Pipeline {
	return pipeline.NewPipeline(PresentPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(shader.NewShaderFromSource(PresentPipelineKey, shader.ShaderTypeVertex, presentShaderSource)),
		pipeline.WithFragmentShader(shader.NewShaderFromSource(PresentPipelineKey, shader.ShaderTypeFragment, presentShaderSource)),
		pipeline.WithRaster(pipeline.OpaqueTriangles),
	)
}
