package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// RenderTargetManager owns the image the compute program writes each frame, together with the
// compute bind group that exposes it as a storage texture and the presentation bind group that
// exposes it to the blit.
type RenderTargetManager interface {
	// EnsureSize reallocates the target when the requested size differs from the current one
	// and both dimensions are non-zero. The replacement is fully built before the old target
	// is released. A zero dimension or an unchanged size is a no-op.
	//
	// Parameters:
	//   - width: the requested width in pixels
	//   - height: the requested height in pixels
	//
	// Returns:
	//   - bool: true when a reallocation happened
	//   - error: an error wrapping ErrResourceAllocation; the current target is kept
	EnsureSize(width, height int) (bool, error)

	// BindForCompute returns the provider bound at the render target group of the compute program.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the compute provider
	BindForCompute() bind_group_provider.BindGroupProvider

	// Presentation returns the provider the presenter binds to sample the target.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the presentation provider
	Presentation() bind_group_provider.BindGroupProvider

	// Size returns the current size in pixels.
	//
	// Returns:
	//   - int: the width
	//   - int: the height
	Size() (int, int)

	// ID returns the identity of the current allocation. It changes on every reallocation.
	//
	// Returns:
	//   - uuid.UUID: the allocation identity
	ID() uuid.UUID

	// Generation returns how many allocations the manager has made.
	//
	// Returns:
	//   - uint64: the allocation count
	Generation() uint64

	// Release releases the current target.
	Release()
}

// renderTargetLayout is where the target is bound in the compute and blit programs.
type renderTargetLayout struct {
	compute        slot
	computeLayout  wgpu.BindGroupLayoutDescriptor
	present        presentBindings
	format         wgpu.TextureFormat
	samplerStaging common.SamplerStagingData
}

type renderTargetManager struct {
	renderer Renderer
	layout   renderTargetLayout
	logger   *log.Logger

	width, height int
	id            uuid.UUID
	generation    uint64

	compute      bind_group_provider.BindGroupProvider
	presentation bind_group_provider.BindGroupProvider
}

var _ RenderTargetManager = &renderTargetManager{}

// newRenderTargetManager creates the manager and eagerly allocates a 1x1 target.
func newRenderTargetManager(r Renderer, layout renderTargetLayout, logger *log.Logger) (*renderTargetManager, error) {
	m := &renderTargetManager{
		renderer: r,
		layout:   layout,
		logger:   logger,
	}
	if _, err := m.EnsureSize(1, 1); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *renderTargetManager) EnsureSize(width, height int) (bool, error) {
	if width <= 0 || height <= 0 {
		return false, nil
	}
	if width == m.width && height == m.height {
		return false, nil
	}

	compute, presentation, err := m.build(width, height)
	if err != nil {
		return false, err
	}

	oldCompute, oldPresentation := m.compute, m.presentation
	m.compute, m.presentation = compute, presentation
	m.width, m.height = width, height
	m.id = uuid.New()
	m.generation++

	m.renderer.ReleaseProvider(oldPresentation)
	m.renderer.ReleaseProvider(oldCompute)

	m.logger.Debug("render target allocated", "width", width, "height", height, "generation", m.generation, "id", m.id)
	return true, nil
}

// build creates a complete target. A partial build is released before returning the error.
func (m *renderTargetManager) build(width, height int) (bind_group_provider.BindGroupProvider, bind_group_provider.BindGroupProvider, error) {
	compute := bind_group_provider.NewBindGroupProvider("Render Target", bind_group_provider.WithGroup(m.layout.compute.group))
	presentation := bind_group_provider.NewBindGroupProvider("Render Target Presentation", bind_group_provider.WithGroup(m.layout.present.group))

	fail := func(err error) (bind_group_provider.BindGroupProvider, bind_group_provider.BindGroupProvider, error) {
		m.renderer.ReleaseProvider(presentation)
		m.renderer.ReleaseProvider(compute)
		return nil, nil, fmt.Errorf("render target %dx%d: %w", width, height, err)
	}

	binding := m.layout.compute.binding
	if err := m.renderer.InitStorageTexture(compute, binding, common.StorageTextureStagingData{
		Width:  uint32(width),
		Height: uint32(height),
		Format: m.layout.format,
	}); err != nil {
		return fail(err)
	}
	if err := m.renderer.InitBindGroup(compute, m.layout.computeLayout); err != nil {
		return fail(err)
	}

	storage, _ := compute.Binding(binding)
	if err := m.renderer.InitTextureView(presentation, m.layout.present.texture, storage.Texture); err != nil {
		return fail(err)
	}
	if err := m.renderer.InitSampler(presentation, m.layout.present.sampler, m.layout.samplerStaging); err != nil {
		return fail(err)
	}
	if err := m.renderer.InitBindGroup(presentation, m.layout.present.layout); err != nil {
		return fail(err)
	}

	return compute, presentation, nil
}

func (m *renderTargetManager) BindForCompute() bind_group_provider.BindGroupProvider {
	return m.compute
}

func (m *renderTargetManager) Presentation() bind_group_provider.BindGroupProvider {
	return m.presentation
}

func (m *renderTargetManager) Size() (int, int) {
	return m.width, m.height
}

func (m *renderTargetManager) ID() uuid.UUID {
	return m.id
}

func (m *renderTargetManager) Generation() uint64 {
	return m.generation
}

func (m *renderTargetManager) Release() {
	m.renderer.ReleaseProvider(m.presentation)
	m.renderer.ReleaseProvider(m.compute)
	m.presentation, m.compute = nil, nil
	m.width, m.height = 0, 0
}
