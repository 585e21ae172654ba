package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
)

// fullscreenTriangleVertices is the vertex count of the blit; the vertex shader derives
// positions from the vertex index.
const fullscreenTriangleVertices = 3

// Presenter draws the render target to the window surface.
type Presenter interface {
	// BeginFrame acquires the surface texture and begins the render pass.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// Draw blits the render target's presentation bind group over the whole surface.
	//
	// Parameters:
	//   - target: the render target to present
	//
	// Returns:
	//   - error: an error if the target has no presentation bind group or the draw fails
	Draw(target RenderTargetManager) error

	// EndFrame ends the render pass and submits it.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present shows the frame.
	Present()

	// DiscardFrame drops a frame that failed after BeginFrame so the next one can acquire
	// the surface.
	DiscardFrame()
}

type presenter struct {
	renderer Renderer
}

var _ Presenter = &presenter{}

// NewPresenter registers the fullscreen blit pipeline with the renderer.
//
// Parameters:
//   - r: the renderer whose surface is presented to
//
// Returns:
//   - Presenter: the presenter
//   - error: an error if the blit pipeline could not be created
func NewPresenter(r Renderer) (Presenter, error) {
	p := newPresentPipeline()
	if _, err := resolvePresentBindings(p); err != nil {
		return nil, err
	}
	if err := r.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("presenter: %w", err)
	}
	return &presenter{renderer: r}, nil
}

func (p *presenter) BeginFrame() error {
	return p.renderer.BeginFrame()
}

func (p *presenter) Draw(target RenderTargetManager) error {
	presentation := target.Presentation()
	if presentation == nil {
		return fmt.Errorf("presenter: render target has no presentation bind group")
	}
	return p.renderer.Draw(PresentPipelineKey, fullscreenTriangleVertices, []bind_group_provider.BindGroupProvider{presentation})
}

func (p *presenter) EndFrame() error {
	return p.renderer.EndFrame()
}

func (p *presenter) Present() {
	p.renderer.Present()
}

func (p *presenter) DiscardFrame() {
	p.renderer.DiscardFrame()
}
