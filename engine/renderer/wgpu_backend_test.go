package renderer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestPipelineObjects_ReleaseSkipsGaps(t *testing.T) {
	objects := pipelineObjects{
		modules:      []*wgpu.ShaderModule{nil},
		groupLayouts: make([]*wgpu.BindGroupLayout, 3),
	}

	assert.NotPanics(t, objects.release)
	assert.Empty(t, objects.modules)
	assert.Empty(t, objects.groupLayouts)
	assert.Nil(t, objects.layout)

	assert.NotPanics(t, objects.release)
}
