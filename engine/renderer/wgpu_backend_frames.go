package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var clearColor = wgpu.Color{R: 0, G: 0, B: 0, A: 1}

// surfaceFrame is a presentation frame from BeginFrame to Present or DiscardFrame. The
// encoder and pass are dropped at EndFrame; the surface texture and its view live until
// the frame is presented or discarded.
type surfaceFrame struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
}

func (f *surfaceFrame) releaseEncoder() {
	if f.encoder != nil {
		f.encoder.Release()
		f.encoder = nil
	}
	f.pass = nil
}

func (f *surfaceFrame) release() {
	f.releaseEncoder()
	if f.view != nil {
		f.view.Release()
		f.view = nil
	}
	if f.texture != nil {
		f.texture.Release()
		f.texture = nil
	}
}

func (b *wgpuBackend) BeginComputeFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeEncoder != nil {
		return errors.New("previous compute frame not yet submitted")
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.computeEncoder = encoder
	return nil
}

func (b *wgpuBackend) DispatchCompute(p pipeline.Pipeline, providers []bind_group_provider.BindGroupProvider, workgroups [3]uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeEncoder == nil {
		return errors.New("DispatchCompute called outside BeginComputeFrame/EndComputeFrame")
	}
	gpu, ok := p.Pipeline().(*wgpu.ComputePipeline)
	if !ok || gpu == nil {
		return fmt.Errorf("pipeline %q has no GPU compute pipeline", p.PipelineKey())
	}

	pass := b.computeEncoder.BeginComputePass(nil)
	pass.SetPipeline(gpu)
	for _, provider := range providers {
		pass.SetBindGroup(uint32(provider.Group()), provider.BindGroup(), nil)
	}
	pass.DispatchWorkgroups(workgroups[0], workgroups[1], workgroups[2])
	pass.End()
	return nil
}

// EndComputeFrame releases the encoder whether or not it could be finished, so a failed
// frame never blocks the next BeginComputeFrame.
func (b *wgpuBackend) EndComputeFrame() (wgpu.SubmissionIndex, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoder := b.computeEncoder
	if encoder == nil {
		return 0, errors.New("no compute frame in progress")
	}
	b.computeEncoder = nil
	defer encoder.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return 0, err
	}
	defer commands.Release()
	return b.queue.Submit(commands), nil
}

// WaitForSubmission does not take mu: it blocks on the device, not on backend state.
func (b *wgpuBackend) WaitForSubmission(index wgpu.SubmissionIndex) error {
	b.device.Poll(true, &wgpu.WrappedSubmissionIndex{
		Queue:           b.queue,
		SubmissionIndex: index,
	})
	return nil
}

func (b *wgpuBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// wgpu-native rejects acquiring a second surface texture before the first is presented.
	if b.frame != nil {
		return errors.New("previous frame surface not yet presented")
	}
	if b.surfaceFormat == nil {
		return errors.New("surface not configured")
	}

	frame := &surfaceFrame{}
	texture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	frame.texture = texture

	if frame.view, err = texture.CreateView(nil); err != nil {
		frame.release()
		return err
	}
	if frame.encoder, err = b.device.CreateCommandEncoder(nil); err != nil {
		frame.release()
		return err
	}
	frame.pass = frame.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       frame.view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clearColor,
		}},
	})

	b.frame = frame
	return nil
}

func (b *wgpuBackend) Draw(p pipeline.Pipeline, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame == nil || b.frame.pass == nil {
		return errors.New("Draw called outside BeginFrame/EndFrame")
	}
	gpu, ok := p.Pipeline().(*wgpu.RenderPipeline)
	if !ok || gpu == nil {
		return fmt.Errorf("pipeline %q has no GPU render pipeline", p.PipelineKey())
	}

	pass := b.frame.pass
	pass.SetPipeline(gpu)
	for _, bg := range bindGroups {
		pass.SetBindGroup(uint32(bg.Group()), bg.BindGroup(), nil)
	}
	pass.Draw(vertexCount, 1, 0, 0)
	return nil
}

// EndFrame submits the render pass. A frame that fails to finish is dropped entirely and
// nothing is presented.
func (b *wgpuBackend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame == nil || b.frame.pass == nil {
		return errors.New("no frame in progress")
	}
	frame := b.frame
	frame.pass.End()

	commands, err := frame.encoder.Finish(nil)
	if err != nil {
		frame.release()
		b.frame = nil
		return err
	}
	b.queue.Submit(commands)
	commands.Release()
	frame.releaseEncoder()
	return nil
}

func (b *wgpuBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame == nil {
		return
	}
	b.surface.Present()
	b.frame.release()
	b.frame = nil
}

func (b *wgpuBackend) DiscardFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame == nil {
		return
	}
	if b.frame.pass != nil {
		b.frame.pass.End()
	}
	b.frame.release()
	b.frame = nil
}
