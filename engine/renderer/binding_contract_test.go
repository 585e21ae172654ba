package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveComputeBindings_EmbeddedProgram(t *testing.T) {
	s := shader.NewShaderFromSource(RaytracePipelineKey, shader.ShaderTypeCompute, RaytraceShaderSource)

	cb, err := resolveComputeBindings(s)
	require.NoError(t, err)
	assert.Equal(t, slot{group: renderTargetGroup, binding: 0}, cb.target)
	assert.Equal(t, slot{group: cameraGroup, binding: 0}, cb.camera)
	assert.Equal(t, slot{group: spheresGroup, binding: 0}, cb.spheres)
	assert.Len(t, cb.layouts, 3)
	assert.True(t, cb.compatible(cb))
}

func TestResolveComputeBindings_Violations(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
	}{
		{
			name: "missing render target declaration",
			from: "//@oxy:provider 0 0 render_target\n",
			to:   "",
		},
		{
			name: "spheres in the wrong group",
			from: "//@oxy:group 2 0 storage_read spheres spheres",
			to:   "//@oxy:group 3 0 storage_read spheres spheres",
		},
		{
			name: "camera not a uniform",
			from: "//@oxy:group 1 0 storage_uniform camera camera",
			to:   "//@oxy:group 1 0 storage_read camera camera",
		},
		{
			name: "spheres writable",
			from: "//@oxy:group 2 0 storage_read spheres spheres",
			to:   "//@oxy:group 2 0 storage_read_write spheres spheres",
		},
		{
			name: "render target wrong format",
			from: "texture_storage_2d<rgba8unorm, write>",
			to:   "texture_storage_2d<rgba16float, write>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := modifiedRaytraceSource(t, tt.from, tt.to)
			s, err := shader.ParseShader(RaytracePipelineKey, shader.ShaderTypeCompute, source)
			require.NoError(t, err)

			_, err = resolveComputeBindings(s)
			assert.ErrorIs(t, err, ErrBindingContract)
		})
	}
}

func TestComputeBindings_Compatible(t *testing.T) {
	base := computeBindings{target: slot{0, 0}, camera: slot{1, 0}, spheres: slot{2, 0}}

	moved := base
	moved.spheres = slot{2, 1}
	assert.False(t, base.compatible(moved))

	same := base
	same.layouts = nil
	assert.True(t, base.compatible(same))
}

func TestResolvePresentBindings(t *testing.T) {
	pb, err := resolvePresentBindings(newPresentPipeline())
	require.NoError(t, err)
	assert.Equal(t, 0, pb.group)
	assert.Equal(t, 0, pb.texture)
	assert.Equal(t, 1, pb.sampler)
	assert.Len(t, pb.layout.Entries, 2)
}

func TestResolvePresentBindings_MissingSampler(t *testing.T) {
	const source = `//@oxy:provider 0 0 presentation source_texture
@group(0) @binding(0) var source_texture: texture_2d<f32>;

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return textureLoad(source_texture, vec2<i32>(0, 0), 0);
}
`
	p := pipeline.NewPipeline("blit", pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(shader.NewShaderFromSource("blit", shader.ShaderTypeVertex, source)),
		pipeline.WithFragmentShader(shader.NewShaderFromSource("blit", shader.ShaderTypeFragment, source)),
	)

	_, err := resolvePresentBindings(p)
	assert.ErrorIs(t, err, ErrBindingContract)

	_, err = resolvePresentBindings(pipeline.NewPipeline("empty", pipeline.PipelineTypeRender))
	assert.ErrorIs(t, err, ErrBindingContract)
}
