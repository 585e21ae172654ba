package renderer

import (
	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency. This is the default.
	PresentModeUncapped
)

// ParsePresentMode maps a configuration name to a PresentMode. Unknown names return false.
//
// Parameters:
//   - name: "vsync" or "uncapped"
//
// Returns:
//   - PresentMode: the parsed mode
//   - bool: whether the name was recognized
func ParsePresentMode(name string) (PresentMode, bool) {
	switch name {
	case "vsync":
		return PresentModeVSync, true
	case "uncapped":
		return PresentModeUncapped, true
	default:
		return PresentModeUncapped, false
	}
}

// RendererBackend is the GPU API seam of the Renderer. Every GPU object the engine creates,
// binds or releases goes through one of these calls.
type RendererBackend interface {
	// ConfigureSurface (re)configures the presentation surface for a new size.
	ConfigureSurface(width, height int)

	// SetPresentMode selects the surface present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// RegisterComputePipeline creates the GPU compute pipeline for p and stores it on p.
	RegisterComputePipeline(p pipeline.Pipeline) error

	// RegisterRenderPipeline creates the GPU render pipeline for p and stores it on p.
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitStorageTexture creates a texture that compute shaders write and fragment shaders
	// sample, and stores the texture and its view on the provider at binding.
	InitStorageTexture(provider bind_group_provider.BindGroupProvider, binding int, data common.StorageTextureStagingData) error

	// InitTextureView creates a new view of an existing texture at binding. The provider owns
	// the view but not the texture.
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, texture *wgpu.Texture) error

	// InitBuffer creates a buffer of size bytes at binding. When contents is non-empty the
	// buffer is created initialized with it.
	InitBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64, usage wgpu.BufferUsage, contents []byte) error

	// InitSampler creates a sampler at binding.
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, data common.SamplerStagingData) error

	// InitBindGroup builds the bind group for the provider from a layout descriptor. Every
	// resource the descriptor names must already exist on the provider.
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers queues buffer writes.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginComputeFrame opens the command encoder that collects the frame's compute passes.
	BeginComputeFrame() error

	// DispatchCompute encodes one compute pass binding each provider at its group.
	DispatchCompute(p pipeline.Pipeline, providers []bind_group_provider.BindGroupProvider, workgroups [3]uint32) error

	// EndComputeFrame finishes and submits the compute encoder, returning the submission index.
	EndComputeFrame() (wgpu.SubmissionIndex, error)

	// WaitForSubmission blocks until the GPU has finished the given submission.
	WaitForSubmission(index wgpu.SubmissionIndex) error

	// BeginFrame acquires the surface texture and opens the main render pass.
	BeginFrame() error

	// Draw encodes a non-indexed draw of vertexCount vertices binding each provider at its group.
	Draw(p pipeline.Pipeline, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame closes the render pass and submits it.
	EndFrame() error

	// Present presents the surface texture acquired by BeginFrame.
	Present()

	// DiscardFrame drops the frame opened by BeginFrame without presenting it.
	DiscardFrame()

	// ReleaseProvider releases every GPU object held by the provider.
	ReleaseProvider(provider bind_group_provider.BindGroupProvider)

	// Release releases the device, surface and everything else the backend created.
	Release()
}
