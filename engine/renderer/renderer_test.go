package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computePipeline(key string) pipeline.Pipeline {
	return pipeline.NewPipeline(key, pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(shader.NewShaderFromSource(key, shader.ShaderTypeCompute, RaytraceShaderSource)))
}

func TestNewRenderer_ConfiguresSurface(t *testing.T) {
	_, fake := newTestRenderer()
	assert.Equal(t, [][2]int{{800, 600}}, fake.surfaceSizes)
	assert.Equal(t, PresentModeUncapped, fake.presentMode)

	_, fake = newTestRenderer(WithPresentMode(PresentModeVSync))
	assert.Equal(t, PresentModeVSync, fake.presentMode)
}

func TestRenderer_ResizeAndPresentMode(t *testing.T) {
	r, fake := newTestRenderer()

	r.Resize(1024, 768)
	r.SetPresentMode(PresentModeVSync)

	assert.Equal(t, [][2]int{{800, 600}, {1024, 768}}, fake.surfaceSizes)
	assert.Equal(t, PresentModeVSync, fake.presentMode)
}

func TestRenderer_RegisterPipelines(t *testing.T) {
	r, fake := newTestRenderer()
	first := computePipeline("trace")

	require.NoError(t, r.RegisterPipelines(first, newPresentPipeline()))
	assert.Same(t, first, r.Pipeline("trace"))
	assert.Equal(t, []string{"trace"}, fake.computePipelines)
	assert.Equal(t, []string{PresentPipelineKey}, fake.renderPipelines)

	// Registered keys are skipped.
	require.NoError(t, r.RegisterPipelines(computePipeline("trace")))
	assert.Same(t, first, r.Pipeline("trace"))
	assert.Len(t, fake.computePipelines, 1)

	assert.Nil(t, r.Pipeline("missing"))
}

func TestRenderer_RegisterPipelinesValidates(t *testing.T) {
	r, fake := newTestRenderer()

	err := r.RegisterPipelines(pipeline.NewPipeline("empty", pipeline.PipelineTypeCompute))
	assert.ErrorIs(t, err, pipeline.ErrMissingShader)
	assert.Empty(t, fake.computePipelines)
	assert.Nil(t, r.Pipeline("empty"))

	fake.failWith("RegisterComputePipeline")
	assert.Error(t, r.RegisterPipelines(computePipeline("trace")))
	assert.Nil(t, r.Pipeline("trace"))
}

func TestRenderer_PipelinesReturnsCopy(t *testing.T) {
	r, _ := newTestRenderer()
	require.NoError(t, r.RegisterPipelines(computePipeline("trace")))

	pipelines := r.Pipelines()
	require.Len(t, pipelines, 1)
	delete(pipelines, "trace")

	assert.NotNil(t, r.Pipeline("trace"))
	assert.Len(t, r.Pipelines(), 1)
}

func TestRenderer_ReplacePipeline(t *testing.T) {
	r, fake := newTestRenderer()
	old := computePipeline("trace")
	require.NoError(t, r.RegisterPipelines(old))

	replacement := computePipeline("trace")
	require.NoError(t, r.ReplacePipeline(replacement))
	assert.Same(t, replacement, r.Pipeline("trace"))
	assert.Len(t, fake.computePipelines, 2)

	fake.failWith("RegisterComputePipeline")
	assert.Error(t, r.ReplacePipeline(computePipeline("trace")))
	assert.Same(t, replacement, r.Pipeline("trace"))
}

func TestRenderer_DispatchComputeUnknownPipeline(t *testing.T) {
	r, fake := newTestRenderer()
	require.NoError(t, r.RegisterPipelines(newPresentPipeline()))

	require.NoError(t, r.BeginComputeFrame())
	err := r.DispatchCompute("missing", nil, [3]uint32{1, 1, 1})
	assert.ErrorIs(t, err, ErrPipelineNotRegistered)

	err = r.DispatchCompute(PresentPipelineKey, nil, [3]uint32{1, 1, 1})
	assert.ErrorIs(t, err, ErrPipelineNotRegistered)
	assert.Empty(t, fake.dispatches)

	_, err = r.EndComputeFrame()
	require.NoError(t, err)
}

func TestRenderer_DrawUnknownPipeline(t *testing.T) {
	r, fake := newTestRenderer()
	require.NoError(t, r.RegisterPipelines(computePipeline("trace")))

	assert.ErrorIs(t, r.Draw("missing", 3, nil), ErrPipelineNotRegistered)
	assert.ErrorIs(t, r.Draw("trace", 3, nil), ErrPipelineNotRegistered)
	assert.Empty(t, fake.draws)
}

func TestRenderer_InitFailuresWrapAllocationError(t *testing.T) {
	r, fake := newTestRenderer()
	provider := bind_group_provider.NewBindGroupProvider("Test")

	fake.failWith("InitBuffer")
	err := r.InitBuffer(provider, 0, 64, wgpu.BufferUsageUniform, nil)
	assert.ErrorIs(t, err, ErrResourceAllocation)
	assert.ErrorContains(t, err, "Test")

	fake.failWith("InitSampler")
	assert.ErrorIs(t, r.InitSampler(provider, 1, common.SamplerStagingData{}), ErrResourceAllocation)

	fake.failWith("InitBindGroup")
	assert.ErrorIs(t, r.InitBindGroup(provider, wgpu.BindGroupLayoutDescriptor{}), ErrResourceAllocation)
}

func TestRenderer_ReleaseProviderIgnoresNil(t *testing.T) {
	r, fake := newTestRenderer()
	r.ReleaseProvider(nil)
	assert.Empty(t, fake.released)
}

func TestRenderer_Release(t *testing.T) {
	r, fake := newTestRenderer()
	require.NoError(t, r.RegisterPipelines(computePipeline("trace"), newPresentPipeline()))

	r.Release()
	assert.Empty(t, r.Pipelines())
	assert.True(t, fake.backendReleased)
}

func TestParsePresentMode(t *testing.T) {
	mode, ok := ParsePresentMode("vsync")
	assert.True(t, ok)
	assert.Equal(t, PresentModeVSync, mode)

	mode, ok = ParsePresentMode("uncapped")
	assert.True(t, ok)
	assert.Equal(t, PresentModeUncapped, mode)

	_, ok = ParsePresentMode("triple")
	assert.False(t, ok)
}

func TestPresenter_DrawsRenderTarget(t *testing.T) {
	fp, r, fake := newTestFramePipeline(t)
	p, err := NewPresenter(r)
	require.NoError(t, err)
	assert.Equal(t, []string{PresentPipelineKey}, fake.renderPipelines)

	require.NoError(t, p.BeginFrame())
	require.NoError(t, p.Draw(fp.RenderTarget()))
	require.NoError(t, p.EndFrame())
	p.Present()

	require.Len(t, fake.draws, 1)
	assert.Equal(t, drawCall{key: PresentPipelineKey, vertexCount: 3, groups: []int{0}}, fake.draws[0])
	assert.Equal(t, 1, fake.presents)
}

func TestPresenter_ReleasedTarget(t *testing.T) {
	r, _ := newTestRenderer()
	fp, err := NewFramePipeline(r, WithFramePipelineLogger(quietLogger()))
	require.NoError(t, err)
	p, err := NewPresenter(r)
	require.NoError(t, err)

	fp.Release()
	assert.Error(t, p.Draw(fp.RenderTarget()))
}

func TestPresenter_DiscardFrameFreesSurface(t *testing.T) {
	r, fake := newTestRenderer()
	fp, err := NewFramePipeline(r, WithFramePipelineLogger(quietLogger()))
	require.NoError(t, err)
	p, err := NewPresenter(r)
	require.NoError(t, err)
	fp.Release()

	require.NoError(t, p.BeginFrame())
	require.Error(t, p.Draw(fp.RenderTarget()))
	require.NoError(t, p.EndFrame())
	assert.Error(t, p.BeginFrame(), "an unpresented frame still holds the surface")

	p.DiscardFrame()
	p.DiscardFrame()
	assert.Equal(t, 1, fake.discards)
	assert.Zero(t, fake.presents)

	require.NoError(t, p.BeginFrame())
	require.NoError(t, p.EndFrame())
	p.Present()
	assert.Equal(t, 1, fake.presents)
}

func TestNewPresenter_PipelineFailure(t *testing.T) {
	r, fake := newTestRenderer()
	fake.failWith("RegisterRenderPipeline")

	_, err := NewPresenter(r)
	assert.Error(t, err)
}
