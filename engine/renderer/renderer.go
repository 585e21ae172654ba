package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend
	logger      *log.Logger

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
}

// Renderer defines the interface for the rendering system.
//
// It owns a cache of registered pipelines and forwards resource creation, compute dispatch
// and presentation to a RendererBackend.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines validates one or more pipelines, creates the corresponding GPU
	// pipeline objects via the backend, then caches them by PipelineKey.
	// Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if validation or pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// ReplacePipeline creates the GPU pipeline for p and swaps it in under p's key, releasing
	// the previously registered pipeline. On failure the previous pipeline stays registered.
	//
	// Parameters:
	//   - p: the new pipeline description
	//
	// Returns:
	//   - error: an error if validation or pipeline creation fails
	ReplacePipeline(p pipeline.Pipeline) error

	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode and reconfigures nothing until the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// InitStorageTexture creates a compute-writable, sampleable texture and its view on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider that will own the texture
	//   - binding: the binding index of the texture
	//   - data: the texture dimensions and format
	//
	// Returns:
	//   - error: an error wrapping ErrResourceAllocation if creation fails
	InitStorageTexture(provider bind_group_provider.BindGroupProvider, binding int, data common.StorageTextureStagingData) error

	// InitTextureView creates a view of a texture owned elsewhere and stores it on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider that will own the view
	//   - binding: the binding index of the view
	//   - texture: the texture to view
	//
	// Returns:
	//   - error: an error wrapping ErrResourceAllocation if creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, texture *wgpu.Texture) error

	// InitBuffer creates a GPU buffer on the provider, initialized with contents when given.
	//
	// Parameters:
	//   - provider: the BindGroupProvider that will own the buffer
	//   - binding: the binding index of the buffer
	//   - size: the buffer size in bytes
	//   - usage: the buffer usage flags
	//   - contents: the initial contents, or nil
	//
	// Returns:
	//   - error: an error wrapping ErrResourceAllocation if creation fails
	InitBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64, usage wgpu.BufferUsage, contents []byte) error

	// InitSampler creates a GPU sampler on the provider. Zero fields of data take linear, clamp-to-edge defaults.
	//
	// Parameters:
	//   - provider: the BindGroupProvider that will own the sampler
	//   - binding: the binding index of the sampler
	//   - data: the sampler configuration
	//
	// Returns:
	//   - error: an error wrapping ErrResourceAllocation if creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, data common.SamplerStagingData) error

	// InitBindGroup creates the bind group of the provider from a layout descriptor.
	// Buffers, texture views and samplers must be created first.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//
	// Returns:
	//   - error: an error wrapping ErrResourceAllocation if creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginComputeFrame creates the command encoder that batches the frame's compute dispatches
	// into one submission.
	//
	// Returns:
	//   - error: an error if the command encoder could not be created
	BeginComputeFrame() error

	// DispatchCompute looks up the cached compute Pipeline by key and encodes a compute pass
	// within the frame opened by BeginComputeFrame.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached compute Pipeline to use
	//   - providers: the BindGroupProviders bound at their groups for the pass
	//   - workgroups: the number of workgroups to dispatch in x, y and z
	//
	// Returns:
	//   - error: ErrPipelineNotRegistered, or an encoding error
	DispatchCompute(pipelineKey string, providers []bind_group_provider.BindGroupProvider, workgroups [3]uint32) error

	// EndComputeFrame finishes the compute command encoder and submits it to the GPU queue.
	//
	// Returns:
	//   - wgpu.SubmissionIndex: the index of the submission
	//   - error: an error if the command buffer could not be finished
	EndComputeFrame() (wgpu.SubmissionIndex, error)

	// WaitForSubmission blocks until the given submission has finished executing on the GPU.
	//
	// Parameters:
	//   - index: the submission index returned by EndComputeFrame
	//
	// Returns:
	//   - error: an error if the device could not be polled
	WaitForSubmission(index wgpu.SubmissionIndex) error

	// BeginFrame acquires the swapchain texture and begins the main render pass.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// Draw encodes a non-indexed draw call with the cached render Pipeline.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached render Pipeline to use
	//   - vertexCount: the number of vertices to draw
	//   - bindGroups: the BindGroupProviders bound at their groups for the draw
	//
	// Returns:
	//   - error: ErrPipelineNotRegistered, or an encoding error
	Draw(pipelineKey string, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface. Call Present after EndFrame to display the frame.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// DiscardFrame releases the swapchain texture acquired by BeginFrame without presenting it.
	// A no-op when no frame is open.
	DiscardFrame()

	// ReleaseProvider releases the GPU objects held by a BindGroupProvider.
	//
	// Parameters:
	//   - provider: the provider to release
	ReleaseProvider(provider bind_group_provider.BindGroupProvider)

	// Release releases every registered pipeline and then the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type for the given window.
// GPU adapter and device creation failures panic.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window whose surface the renderer presents to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	// Options are applied first so forceFallbackAdapter is known before the adapter request.
	r := newRenderer(backendType, options...)

	var backend RendererBackend
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend = newWGPUBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter)
	}

	r.attach(backend, win.Width(), win.Height())
	return r
}

func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		presentMode:   PresentModeUncapped,
		logger:        common.NewLogger("renderer"),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// attach binds the backend and configures the surface at the initial size.
func (r *renderer) attach(backend RendererBackend, width, height int) {
	r.backend = backend
	r.backend.SetPresentMode(r.presentMode)
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Resize(width, height int) {
	r.logger.Debug("configuring surface", "width", width, "height", height)
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	r.presentMode = mode
	r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.createPipeline(p); err != nil {
			return err
		}
		r.pipelineCache[key] = p
		r.logger.Debug("registered pipeline", "key", key)
	}
	return nil
}

func (r *renderer) ReplacePipeline(p pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.createPipeline(p); err != nil {
		return err
	}
	key := p.PipelineKey()
	old, exists := r.pipelineCache[key]
	r.pipelineCache[key] = p
	if exists && old != p {
		old.Release()
	}
	r.logger.Info("replaced pipeline", "key", key)
	return nil
}

// createPipeline must be called with r.mu held.
func (r *renderer) createPipeline(p pipeline.Pipeline) error {
	if err := p.Validate(); err != nil {
		return err
	}
	var err error
	switch p.Type() {
	case pipeline.PipelineTypeCompute:
		err = r.backend.RegisterComputePipeline(p)
	case pipeline.PipelineTypeRender:
		err = r.backend.RegisterRenderPipeline(p)
	}
	if err != nil {
		return fmt.Errorf("pipeline %s: %w", p.PipelineKey(), err)
	}
	return nil
}

func (r *renderer) InitStorageTexture(provider bind_group_provider.BindGroupProvider, binding int, data common.StorageTextureStagingData) error {
	if err := r.backend.InitStorageTexture(provider, binding, data); err != nil {
		return fmt.Errorf("%w: %s texture %dx%d: %v", ErrResourceAllocation, provider.Label(), data.Width, data.Height, err)
	}
	return nil
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, texture *wgpu.Texture) error {
	if err := r.backend.InitTextureView(provider, binding, texture); err != nil {
		return fmt.Errorf("%w: %s texture view: %v", ErrResourceAllocation, provider.Label(), err)
	}
	return nil
}

func (r *renderer) InitBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64, usage wgpu.BufferUsage, contents []byte) error {
	if err := r.backend.InitBuffer(provider, binding, size, usage, contents); err != nil {
		return fmt.Errorf("%w: %s buffer of %d bytes: %v", ErrResourceAllocation, provider.Label(), size, err)
	}
	return nil
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, data common.SamplerStagingData) error {
	if err := r.backend.InitSampler(provider, binding, data); err != nil {
		return fmt.Errorf("%w: %s sampler: %v", ErrResourceAllocation, provider.Label(), err)
	}
	return nil
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	if err := r.backend.InitBindGroup(provider, descriptor); err != nil {
		return fmt.Errorf("%w: %s bind group: %v", ErrResourceAllocation, provider.Label(), err)
	}
	return nil
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginComputeFrame() error {
	return r.backend.BeginComputeFrame()
}

func (r *renderer) DispatchCompute(pipelineKey string, providers []bind_group_provider.BindGroupProvider, workgroups [3]uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.pipelineCache[pipelineKey]
	if !exists || p.Type() != pipeline.PipelineTypeCompute {
		return fmt.Errorf("%w: compute %q", ErrPipelineNotRegistered, pipelineKey)
	}

	return r.backend.DispatchCompute(p, providers, workgroups)
}

func (r *renderer) EndComputeFrame() (wgpu.SubmissionIndex, error) {
	return r.backend.EndComputeFrame()
}

func (r *renderer) WaitForSubmission(index wgpu.SubmissionIndex) error {
	return r.backend.WaitForSubmission(index)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) Draw(pipelineKey string, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists || p.Type() != pipeline.PipelineTypeRender {
		return fmt.Errorf("%w: render %q", ErrPipelineNotRegistered, pipelineKey)
	}

	return r.backend.Draw(p, vertexCount, bindGroups)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) DiscardFrame() {
	r.backend.DiscardFrame()
}

func (r *renderer) ReleaseProvider(provider bind_group_provider.BindGroupProvider) {
	if provider == nil {
		return
	}
	r.backend.ReleaseProvider(provider)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.backend.Release()
}
