package renderer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipelineObjects are the modules and layouts a pipeline is built from. wgpu keeps what the
// pipeline needs alive, so they are released once creation returns.
type pipelineObjects struct {
	modules      []*wgpu.ShaderModule
	groupLayouts []*wgpu.BindGroupLayout
	layout       *wgpu.PipelineLayout
}

// release frees every object. Group layout gaps are nil.
func (o *pipelineObjects) release() {
	for _, m := range o.modules {
		if m != nil {
			m.Release()
		}
	}
	for _, bgl := range o.groupLayouts {
		if bgl != nil {
			bgl.Release()
		}
	}
	if o.layout != nil {
		o.layout.Release()
	}
	*o = pipelineObjects{}
}

// programmableStage compiles s into a shader module.
func (b *wgpuBackend) programmableStage(s shader.Shader) (*wgpu.ShaderModule, string, error) {
	if s == nil {
		return nil, "", errors.New("missing shader stage")
	}
	module, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return nil, "", fmt.Errorf("%s shader %s: %w", s.ShaderType(), s.Key(), err)
	}
	return module, s.EntryPoint(), nil
}

func (b *wgpuBackend) RegisterComputePipeline(p pipeline.Pipeline) error {
	var objects pipelineObjects
	defer objects.release()

	module, entry, err := b.programmableStage(p.Shader(shader.ShaderTypeCompute))
	if err != nil {
		return err
	}
	objects.modules = append(objects.modules, module)
	layout, err := b.pipelineLayout(&objects, p.PipelineKey(), p.BindGroupLayouts())
	if err != nil {
		return err
	}

	gpu, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:   p.PipelineKey() + " compute pipeline",
		Layout:  layout,
		Compute: wgpu.ProgrammableStageDescriptor{Module: module, EntryPoint: entry},
	})
	if err != nil {
		return err
	}
	p.SetComputePipeline(gpu)
	return nil
}

// RegisterRenderPipeline targets the surface format, so the surface must be configured first.
func (b *wgpuBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if b.surfaceFormat == nil {
		return errors.New("surface must be configured before registering a render pipeline")
	}
	var objects pipelineObjects
	defer objects.release()

	vs, vsEntry, err := b.programmableStage(p.Shader(shader.ShaderTypeVertex))
	if err != nil {
		return err
	}
	objects.modules = append(objects.modules, vs)
	fs, fsEntry, err := b.programmableStage(p.Shader(shader.ShaderTypeFragment))
	if err != nil {
		return err
	}
	objects.modules = append(objects.modules, fs)
	layout, err := b.pipelineLayout(&objects, p.PipelineKey(), p.BindGroupLayouts())
	if err != nil {
		return err
	}

	raster := p.Raster()
	gpu, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " render pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{Module: vs, EntryPoint: vsEntry},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fsEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    *b.surfaceFormat,
				Blend:     raster.Blend,
				WriteMask: raster.WriteMask,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  raster.Topology,
			FrontFace: raster.FrontFace,
			CullMode:  raster.CullMode,
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: ^uint32(0)},
	})
	if err != nil {
		return err
	}
	p.SetRenderPipeline(gpu)
	return nil
}

// pipelineLayout creates one bind group layout per declared group. Undeclared groups below
// the highest one stay nil. Everything created is recorded in objects.
func (b *wgpuBackend) pipelineLayout(objects *pipelineObjects, label string, descriptors map[int]wgpu.BindGroupLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	groups := make([]int, 0, len(descriptors))
	for g := range descriptors {
		groups = append(groups, g)
	}
	slices.Sort(groups)

	var layouts []*wgpu.BindGroupLayout
	if len(groups) > 0 {
		layouts = make([]*wgpu.BindGroupLayout, groups[len(groups)-1]+1)
	}
	objects.groupLayouts = layouts
	for _, g := range groups {
		desc := descriptors[g]
		bgl, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, fmt.Errorf("bind group layout %d: %w", g, err)
		}
		layouts[g] = bgl
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, err
	}
	objects.layout = layout
	return layout, nil
}
