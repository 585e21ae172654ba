package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// Group indices every compute program must use.
const (
	renderTargetGroup = 0
	cameraGroup       = 1
	spheresGroup      = 2
)

// RenderTargetFormat is the texel format of the render target and of the compute program's
// storage texture.
const RenderTargetFormat = wgpu.TextureFormatRGBA8Unorm

// slot is a resolved @group/@binding pair.
type slot struct {
	group, binding int
}

// computeBindings is where a compute program expects the render target, camera and spheres.
type computeBindings struct {
	target, camera, spheres slot
	layouts                 map[int]wgpu.BindGroupLayoutDescriptor
}

// presentBindings is where the blit program expects the render target view and sampler.
type presentBindings struct {
	group, texture, sampler int
	layout                  wgpu.BindGroupLayoutDescriptor
}

// resolveComputeBindings finds the three resources of the compute program through its @oxy
// declarations and checks their reflected layout entries.
func resolveComputeBindings(s shader.Shader) (computeBindings, error) {
	decls := s.Declarations()
	cb := computeBindings{layouts: s.BindGroupLayoutDescriptors()}

	var err error
	if cb.target, err = declaredSlot(decls, shader.AnnotationArgRenderTarget, renderTargetGroup); err != nil {
		return computeBindings{}, err
	}
	if cb.camera, err = declaredSlot(decls, shader.AnnotationArgCamera, cameraGroup); err != nil {
		return computeBindings{}, err
	}
	if cb.spheres, err = declaredSlot(decls, shader.AnnotationArgSpheresProvider, spheresGroup); err != nil {
		return computeBindings{}, err
	}

	entry, err := layoutEntry(cb.layouts, cb.target)
	if err != nil {
		return computeBindings{}, err
	}
	st := entry.StorageTexture
	if st.Access != wgpu.StorageTextureAccessWriteOnly || st.Format != RenderTargetFormat || st.ViewDimension != wgpu.TextureViewDimension2D {
		return computeBindings{}, fmt.Errorf("%w: render target must be texture_storage_2d<rgba8unorm, write>", ErrBindingContract)
	}

	if entry, err = layoutEntry(cb.layouts, cb.camera); err != nil {
		return computeBindings{}, err
	}
	if entry.Buffer.Type != wgpu.BufferBindingTypeUniform || entry.Buffer.MinBindingSize != camera.GPUCameraUniformSize {
		return computeBindings{}, fmt.Errorf("%w: camera must be a %d byte uniform, shader declares %d bytes",
			ErrBindingContract, camera.GPUCameraUniformSize, entry.Buffer.MinBindingSize)
	}

	if entry, err = layoutEntry(cb.layouts, cb.spheres); err != nil {
		return computeBindings{}, err
	}
	if entry.Buffer.Type != wgpu.BufferBindingTypeReadOnlyStorage || entry.Buffer.MinBindingSize > uint64(scene.SpheresBufferSize(1)) {
		return computeBindings{}, fmt.Errorf("%w: spheres must be read-only storage of at most %d bytes minimum, shader declares %d",
			ErrBindingContract, scene.SpheresBufferSize(1), entry.Buffer.MinBindingSize)
	}

	return cb, nil
}

// compatible reports whether two programs can share the same bind groups.
func (cb computeBindings) compatible(other computeBindings) bool {
	return cb.target == other.target && cb.camera == other.camera && cb.spheres == other.spheres
}

// resolvePresentBindings finds the source texture and sampler of the blit program.
func resolvePresentBindings(p pipeline.Pipeline) (presentBindings, error) {
	fs := p.Shader(shader.ShaderTypeFragment)
	if fs == nil {
		return presentBindings{}, fmt.Errorf("%w: %s has no fragment shader", ErrBindingContract, p.PipelineKey())
	}

	pb := presentBindings{group: -1, texture: -1, sampler: -1}
	for _, d := range fs.Declarations() {
		if d.Type != shader.AnnotationTypeProvider || len(d.Args) < 2 || d.Args[0] != shader.AnnotationArgPresentation {
			continue
		}
		if pb.group >= 0 && d.Group != pb.group {
			return presentBindings{}, fmt.Errorf("%w: presentation bindings span groups %d and %d", ErrBindingContract, pb.group, d.Group)
		}
		pb.group = d.Group
		switch d.Args[1] {
		case shader.AnnotationArgSourceTexture:
			pb.texture = d.Binding
		case shader.AnnotationArgSourceSampler:
			pb.sampler = d.Binding
		}
	}
	if pb.texture < 0 || pb.sampler < 0 {
		return presentBindings{}, fmt.Errorf("%w: %s must declare a presentation source_texture and source_sampler", ErrBindingContract, p.PipelineKey())
	}

	pb.layout = p.BindGroupLayouts()[pb.group]
	return pb, nil
}

func declaredSlot(decls []shader.Annotation, key shader.AnnotationArg, group int) (slot, error) {
	d, ok := shader.FindDeclaration(decls, key)
	if !ok {
		return slot{}, fmt.Errorf("%w: no @oxy declaration for %s", ErrBindingContract, key)
	}
	if d.Group != group {
		return slot{}, fmt.Errorf("%w: %s declared at group %d, expected group %d", ErrBindingContract, key, d.Group, group)
	}
	return slot{group: d.Group, binding: d.Binding}, nil
}

func layoutEntry(layouts map[int]wgpu.BindGroupLayoutDescriptor, s slot) (wgpu.BindGroupLayoutEntry, error) {
	for _, e := range layouts[s.group].Entries {
		if int(e.Binding) == s.binding {
			return e, nil
		}
	}
	return wgpu.BindGroupLayoutEntry{}, fmt.Errorf("%w: @group(%d) @binding(%d) is declared but never bound", ErrBindingContract, s.group, s.binding)
}
