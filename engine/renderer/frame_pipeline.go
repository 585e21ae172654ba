package renderer

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultWorkgroupTile is the workgroup edge used when the compute shader declares none.
const DefaultWorkgroupTile = 16

// FrameState is the phase of the frame a FramePipeline is in.
type FrameState int32

const (
	FrameStateIdle FrameState = iota
	FrameStateResizing
	FrameStateUploading
	FrameStateDispatching
	FrameStateSubmitted
)

func (s FrameState) String() string {
	switch s {
	case FrameStateIdle:
		return "idle"
	case FrameStateResizing:
		return "resizing"
	case FrameStateUploading:
		return "uploading"
	case FrameStateDispatching:
		return "dispatching"
	case FrameStateSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("FrameState(%d)", int32(s))
	}
}

// FrameStats describes one Render call.
type FrameStats struct {
	// Width and Height are the render target size the frame was traced at.
	Width, Height int
	// Resized is true when the render target was reallocated this frame.
	Resized bool
	// StorageGrown is true when the spheres buffer was reallocated this frame.
	StorageGrown bool
	// Spheres is the number of spheres uploaded.
	Spheres int
	// Workgroups is the dispatch size.
	Workgroups [3]uint32
	// Blocked is true when Render waited for the GPU to finish the submission.
	Blocked bool
	// RenderTime is the wall time of Render. It includes GPU execution only when Blocked.
	RenderTime time.Duration
}

// FramePipeline turns the scene into one compute dispatch per frame whose output is the
// render target.
type FramePipeline interface {
	// Render resizes the render target, uploads the camera and spheres, dispatches the compute
	// program and submits it. A width or height of 0 keeps the previous target.
	//
	// Parameters:
	//   - width: the viewport width in pixels
	//   - height: the viewport height in pixels
	//   - s: the scene to trace
	//
	// Returns:
	//   - FrameStats: what the frame did
	//   - error: an allocation, encoding or submission error; nothing was dispatched
	Render(width, height int, s scene.Scene) (FrameStats, error)

	// State returns the current phase.
	//
	// Returns:
	//   - FrameState: the phase
	State() FrameState

	// WorkgroupCount returns the dispatch size of the last frame.
	//
	// Returns:
	//   - [3]uint32: the workgroup counts in x, y and z
	WorkgroupCount() [3]uint32

	// StorageCapacity returns the allocated size of the spheres buffer in bytes.
	//
	// Returns:
	//   - uint64: the capacity
	StorageCapacity() uint64

	// RenderTarget returns the render target manager.
	//
	// Returns:
	//   - RenderTargetManager: the render target
	RenderTarget() RenderTargetManager

	// SetBlockOnSubmit selects whether Render waits for the GPU after submitting.
	//
	// Parameters:
	//   - block: true to wait
	SetBlockOnSubmit(block bool)

	// BlockOnSubmit reports whether Render waits for the GPU after submitting.
	//
	// Returns:
	//   - bool: true when blocking
	BlockOnSubmit() bool

	// ReloadShader swaps in a new compute program. The program must declare the same
	// bindings as the current one.
	//
	// Parameters:
	//   - s: the new compute shader
	//
	// Returns:
	//   - error: an error wrapping ErrBindingContract, or a pipeline creation error; the
	//     current program keeps running
	ReloadShader(s shader.Shader) error

	// Shader returns the compute shader in use.
	//
	// Returns:
	//   - shader.Shader: the compute shader
	Shader() shader.Shader

	// Release releases the render target, camera buffer, spheres buffer and packer.
	Release()
}

type framePipeline struct {
	renderer Renderer
	logger   *log.Logger

	computeShader shader.Shader
	bindings      computeBindings

	packer     scene.StoragePacker
	ownsPacker bool
	packBuf    []byte
	slack      int

	target        *renderTargetManager
	cameraProv    bind_group_provider.BindGroupProvider
	cameraStaging []byte
	storage       *storageBuffer

	blockOnSubmit atomic.Bool
	state         atomic.Int32
	workgroups    [3]uint32
}

var _ FramePipeline = &framePipeline{}

// NewFramePipeline registers the compute pipeline and allocates the 1x1 render target, the
// camera uniform buffer and the minimum spheres buffer. Without WithComputeShader the
// embedded raytracing program is used.
//
// Parameters:
//   - r: the renderer that owns the GPU
//   - options: variadic FramePipelineBuilderOption functions
//
// Returns:
//   - FramePipeline: the pipeline
//   - error: ErrBindingContract, a pipeline error, or ErrResourceAllocation
func NewFramePipeline(r Renderer, options ...FramePipelineBuilderOption) (FramePipeline, error) {
	f := &framePipeline{
		renderer:      r,
		logger:        common.NewLogger("renderer"),
		cameraStaging: make([]byte, camera.GPUCameraUniformSize),
	}
	f.blockOnSubmit.Store(true)
	for _, opt := range options {
		opt(f)
	}

	if f.computeShader == nil {
		f.computeShader = shader.NewShaderFromSource(RaytracePipelineKey, shader.ShaderTypeCompute, RaytraceShaderSource)
	}
	if f.computeShader.ShaderType() != shader.ShaderTypeCompute {
		return nil, fmt.Errorf("%w: %s is a %s shader", ErrBindingContract, f.computeShader.Key(), f.computeShader.ShaderType())
	}
	if f.packer == nil {
		f.packer = scene.NewStoragePacker()
		f.ownsPacker = true
	}

	if err := f.init(); err != nil {
		f.Release()
		return nil, err
	}
	return f, nil
}

func (f *framePipeline) init() error {
	bindings, err := resolveComputeBindings(f.computeShader)
	if err != nil {
		return err
	}
	f.bindings = bindings

	present, err := resolvePresentBindings(newPresentPipeline())
	if err != nil {
		return err
	}

	compute := pipeline.NewPipeline(RaytracePipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(f.computeShader))
	if err := f.renderer.RegisterPipelines(compute); err != nil {
		return err
	}

	f.target, err = newRenderTargetManager(f.renderer, renderTargetLayout{
		compute:       bindings.target,
		computeLayout: bindings.layouts[bindings.target.group],
		present:       present,
		format:        RenderTargetFormat,
		samplerStaging: common.SamplerStagingData{
			MagFilter: wgpu.FilterModeLinear,
			MinFilter: wgpu.FilterModeLinear,
		},
	}, f.logger)
	if err != nil {
		return err
	}

	f.cameraProv = bind_group_provider.NewBindGroupProvider("Camera", bind_group_provider.WithGroup(bindings.camera.group))
	if err := f.renderer.InitBuffer(f.cameraProv, bindings.camera.binding, camera.GPUCameraUniformSize, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, nil); err != nil {
		return fmt.Errorf("camera uniform: %w", err)
	}
	if err := f.renderer.InitBindGroup(f.cameraProv, bindings.layouts[bindings.camera.group]); err != nil {
		return fmt.Errorf("camera uniform: %w", err)
	}

	f.storage, err = newStorageBuffer(f.renderer, bindings.spheres, bindings.layouts[bindings.spheres.group], f.slack, f.logger)
	return err
}

func (f *framePipeline) Render(width, height int, s scene.Scene) (FrameStats, error) {
	start := time.Now()
	var stats FrameStats
	defer f.setState(FrameStateIdle)

	f.setState(FrameStateResizing)
	resized, err := f.target.EnsureSize(width, height)
	if err != nil {
		return stats, err
	}
	if resized {
		f.logger.Info("render target resized", "width", width, "height", height, "generation", f.target.Generation())
	}
	stats.Resized = resized
	stats.Width, stats.Height = f.target.Size()

	f.setState(FrameStateUploading)
	uniform := camera.NewGPUCameraUniform(s.Camera().State())
	uniform.MarshalTo(f.cameraStaging)
	write := f.cameraProv.Write(f.bindings.camera.binding, 0, f.cameraStaging)
	if !write.InBounds() {
		panic(fmt.Sprintf("camera uniform: packed %d bytes overflow the uniform buffer", len(f.cameraStaging)))
	}
	f.renderer.WriteBuffers([]bind_group_provider.BufferWrite{write})

	spheres := s.Spheres()
	stats.Spheres = len(spheres)
	grown, err := f.storage.Ensure(f.pack(spheres))
	if err != nil {
		return stats, err
	}
	stats.StorageGrown = grown

	f.setState(FrameStateDispatching)
	groups := workgroupCount(stats.Width, stats.Height, f.computeShader.WorkgroupSize())
	if err := f.renderer.BeginComputeFrame(); err != nil {
		return stats, fmt.Errorf("begin compute frame: %w", err)
	}
	providers := []bind_group_provider.BindGroupProvider{f.target.BindForCompute(), f.cameraProv, f.storage.Provider()}
	if err := f.renderer.DispatchCompute(RaytracePipelineKey, providers, groups); err != nil {
		// Close the encoder so the next frame can open one; it holds no dispatch.
		_, endErr := f.renderer.EndComputeFrame()
		return stats, errors.Join(fmt.Errorf("dispatch: %w", err), endErr)
	}

	f.setState(FrameStateSubmitted)
	index, err := f.renderer.EndComputeFrame()
	if err != nil {
		return stats, fmt.Errorf("submit: %w", err)
	}
	if f.blockOnSubmit.Load() {
		if err := f.renderer.WaitForSubmission(index); err != nil {
			return stats, fmt.Errorf("wait for submission %d: %w", index, err)
		}
		stats.Blocked = true
	}

	f.workgroups = groups
	stats.Workgroups = groups
	stats.RenderTime = time.Since(start)
	return stats, nil
}

// pack serializes spheres into the reused pack buffer.
func (f *framePipeline) pack(spheres []scene.Sphere) []byte {
	need := scene.SpheresBufferSize(len(spheres))
	if cap(f.packBuf) < need {
		f.packBuf = make([]byte, need)
	}
	return f.packer.PackTo(f.packBuf[:need], spheres)
}

// workgroupCount covers width x height with tiles of the shader's workgroup size.
func workgroupCount(width, height int, tile [3]uint32) [3]uint32 {
	tx, ty := tile[0], tile[1]
	if tx == 0 {
		tx = DefaultWorkgroupTile
	}
	if ty == 0 {
		ty = DefaultWorkgroupTile
	}
	return [3]uint32{common.DivCeil(uint32(width), tx), common.DivCeil(uint32(height), ty), 1}
}

func (f *framePipeline) setState(s FrameState) {
	f.state.Store(int32(s))
}

func (f *framePipeline) State() FrameState {
	return FrameState(f.state.Load())
}

func (f *framePipeline) WorkgroupCount() [3]uint32 {
	return f.workgroups
}

func (f *framePipeline) StorageCapacity() uint64 {
	if f.storage == nil {
		return 0
	}
	return f.storage.Capacity()
}

func (f *framePipeline) RenderTarget() RenderTargetManager {
	return f.target
}

func (f *framePipeline) SetBlockOnSubmit(block bool) {
	f.blockOnSubmit.Store(block)
}

func (f *framePipeline) BlockOnSubmit() bool {
	return f.blockOnSubmit.Load()
}

func (f *framePipeline) Shader() shader.Shader {
	return f.computeShader
}

func (f *framePipeline) ReloadShader(s shader.Shader) error {
	if s == nil || s.ShaderType() != shader.ShaderTypeCompute {
		return fmt.Errorf("%w: reload needs a compute shader", ErrBindingContract)
	}
	bindings, err := resolveComputeBindings(s)
	if err != nil {
		return err
	}
	if !f.bindings.compatible(bindings) {
		return fmt.Errorf("%w: %s moved its bindings", ErrBindingContract, s.Key())
	}

	p := pipeline.NewPipeline(RaytracePipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(s))
	if err := f.renderer.ReplacePipeline(p); err != nil {
		return err
	}
	f.computeShader = s
	f.bindings = bindings
	f.logger.Info("compute shader reloaded", "key", s.Key(), "path", s.Path(), "workgroup", s.WorkgroupSize())
	return nil
}

func (f *framePipeline) Release() {
	if f.storage != nil {
		f.storage.Release()
		f.storage = nil
	}
	if f.cameraProv != nil {
		f.renderer.ReleaseProvider(f.cameraProv)
		f.cameraProv = nil
	}
	if f.target != nil {
		f.target.Release()
	}
	if f.ownsPacker && f.packer != nil {
		f.packer.Release()
		f.packer = nil
	}
}
