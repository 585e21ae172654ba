package renderer

import (
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/charmbracelet/log"
)

// FramePipelineBuilderOption is a functional option applied to a frame pipeline during construction.
type FramePipelineBuilderOption func(*framePipeline)

// WithComputeShader replaces the embedded raytracing program.
//
// Parameters:
//   - s: a compute shader honoring the render target, camera and spheres bindings
//
// Returns:
//   - FramePipelineBuilderOption: a function that sets the compute shader
func WithComputeShader(s shader.Shader) FramePipelineBuilderOption {
	return func(f *framePipeline) {
		f.computeShader = s
	}
}

// WithStorageSlack sets how many extra sphere records a grown spheres buffer has room for.
// Negative values are treated as 0.
//
// Parameters:
//   - records: the headroom in records
//
// Returns:
//   - FramePipelineBuilderOption: a function that sets the slack
func WithStorageSlack(records int) FramePipelineBuilderOption {
	return func(f *framePipeline) {
		f.slack = max(records, 0)
	}
}

// WithBlockOnSubmit selects whether Render waits for the GPU after submitting. Defaults to true.
//
// Parameters:
//   - block: true to wait
//
// Returns:
//   - FramePipelineBuilderOption: a function that sets the submit policy
func WithBlockOnSubmit(block bool) FramePipelineBuilderOption {
	return func(f *framePipeline) {
		f.blockOnSubmit.Store(block)
	}
}

// WithStoragePacker sets the packer used to serialize spheres. The caller keeps ownership.
// Without it the pipeline creates and releases its own.
//
// Parameters:
//   - p: the packer
//
// Returns:
//   - FramePipelineBuilderOption: a function that sets the packer
func WithStoragePacker(p scene.StoragePacker) FramePipelineBuilderOption {
	return func(f *framePipeline) {
		f.packer = p
	}
}

// WithFramePipelineLogger replaces the pipeline's component logger.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - FramePipelineBuilderOption: a function that sets the logger
func WithFramePipelineLogger(logger *log.Logger) FramePipelineBuilderOption {
	return func(f *framePipeline) {
		if logger != nil {
			f.logger = logger
		}
	}
}
