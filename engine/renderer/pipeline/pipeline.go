package pipeline

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute is a pipeline with a single compute entry point.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender is a pipeline with vertex and fragment entry points.
	PipelineTypeRender
)

// ErrMissingShader is returned by Validate when a pipeline lacks a shader its type requires.
var ErrMissingShader = errors.New("pipeline: missing shader")

// Raster is the fixed-function state of a render pipeline. A nil Blend writes fragments
// opaquely.
type Raster struct {
	Topology  wgpu.PrimitiveTopology
	FrontFace wgpu.FrontFace
	CullMode  wgpu.CullMode
	WriteMask wgpu.ColorWriteMask
	Blend     *wgpu.BlendState
}

// OpaqueTriangles is the raster state of a pipeline drawing unculled, unblended triangles,
// such as the fullscreen present pass.
var OpaqueTriangles = Raster{
	Topology:  wgpu.PrimitiveTopologyTriangleList,
	FrontFace: wgpu.FrontFaceCCW,
	CullMode:  wgpu.CullModeNone,
	WriteMask: wgpu.ColorWriteMaskAll,
}

type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string
	raster       Raster

	shaders map[shader.ShaderType]shader.Shader

	renderPipeline  *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline
}

// Pipeline describes a GPU pipeline, either a render pipeline (vertex + fragment shaders)
// or a compute pipeline (compute shader), and holds the GPU object once a backend has
// created it.
type Pipeline interface {
	// Type returns whether this is a render or compute pipeline.
	Type() PipelineType

	// PipelineKey returns the key the pipeline is registered under.
	PipelineKey() string

	// Shader returns the shader bound to the given stage, or nil.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - shader.Shader: the stage's shader, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// Validate reports whether the shaders required by the pipeline type are present.
	//
	// Returns:
	//   - error: an error wrapping ErrMissingShader, or nil
	Validate() error

	// BindGroupLayouts returns the bind group layout descriptors of the pipeline keyed by
	// group index. For render pipelines the vertex and fragment layouts are merged.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor

	// Raster returns the fixed-function state used when creating a render pipeline.
	// Compute pipelines ignore it.
	Raster() Raster

	// Pipeline returns the GPU object, a *wgpu.RenderPipeline or *wgpu.ComputePipeline
	// depending on Type. Callers type assert the result.
	Pipeline() any

	SetRenderPipeline(p *wgpu.RenderPipeline)
	SetComputePipeline(p *wgpu.ComputePipeline)

	// Release releases the GPU pipeline object, if any. The description stays usable and
	// can be registered again.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates an unregistered pipeline description. Render pipelines default to
// OpaqueTriangles.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - pipelineType: render or compute
//   - opts: options setting shaders and raster state
//
// Returns:
//   - Pipeline: the pipeline description
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		pipelineType: pipelineType,
		raster:       OpaqueTriangles,
		shaders:      make(map[shader.ShaderType]shader.Shader, 2),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Raster() Raster {
	return p.raster
}

// requiredStages lists the stages a pipeline of type t cannot be created without.
func requiredStages(t PipelineType) []shader.ShaderType {
	switch t {
	case PipelineTypeCompute:
		return []shader.ShaderType{shader.ShaderTypeCompute}
	case PipelineTypeRender:
		return []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment}
	default:
		return nil
	}
}

func (p *pipeline) Validate() error {
	stages := requiredStages(p.pipelineType)
	if stages == nil {
		return fmt.Errorf("pipeline: %s has unknown type %d", p.pipelineKey, p.pipelineType)
	}
	for _, st := range stages {
		if p.shaders[st] == nil {
			return fmt.Errorf("%w: %s has no %s shader", ErrMissingShader, p.pipelineKey, st)
		}
	}
	return nil
}

func (p *pipeline) BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor {
	var merged map[int]wgpu.BindGroupLayoutDescriptor
	for _, st := range requiredStages(p.pipelineType) {
		s := p.shaders[st]
		if s == nil {
			continue
		}
		merged = mergeBindGroupLayouts(merged, s.BindGroupLayoutDescriptors())
	}
	return merged
}

func (p *pipeline) Pipeline() any {
	switch p.pipelineType {
	case PipelineTypeRender:
		return p.renderPipeline
	case PipelineTypeCompute:
		return p.computePipeline
	default:
		return nil
	}
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	return p.shaders[shaderType]
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	p.computePipeline = cp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.computePipeline != nil {
		p.computePipeline.Release()
		p.computePipeline = nil
	}
}

// mergeBindGroupLayouts folds the layouts of a second stage into those of a first. A binding
// declared by both stages has its visibility ORed. Merged entries are sorted by binding.
func mergeBindGroupLayouts(into, from map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(into)+len(from))
	maps.Copy(merged, into)

	for group, desc := range from {
		existing, ok := merged[group]
		if !ok {
			merged[group] = desc
			continue
		}

		byBinding := make(map[uint32]wgpu.BindGroupLayoutEntry, len(existing.Entries)+len(desc.Entries))
		for _, e := range existing.Entries {
			byBinding[e.Binding] = e
		}
		for _, e := range desc.Entries {
			if prev, dup := byBinding[e.Binding]; dup {
				prev.Visibility |= e.Visibility
				e = prev
			}
			byBinding[e.Binding] = e
		}

		entries := slices.Collect(maps.Values(byBinding))
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		merged[group] = wgpu.BindGroupLayoutDescriptor{
			Label:   existing.Label,
			Entries: entries,
		}
	}

	return merged
}
