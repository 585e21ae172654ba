package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("camera", WithGroup(1))

	assert.Equal(t, "camera", p.Label())
	assert.Equal(t, 1, p.Group())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
	assert.Empty(t, p.Bindings())

	_, ok := p.Binding(0)
	assert.False(t, ok)
}

func TestBindGroupProvider_DefaultGroupIsZero(t *testing.T) {
	assert.Equal(t, 0, NewBindGroupProvider("render_target").Group())
}

func TestBindGroupProvider_SetBufferRecordsSize(t *testing.T) {
	p := NewBindGroupProvider("spheres", WithGroup(2))
	p.SetBuffer(0, nil, 48)

	r, ok := p.Binding(0)
	require.True(t, ok)
	assert.Equal(t, uint64(48), r.BufferSize)

	p.SetBuffer(0, nil, 112)
	r, _ = p.Binding(0)
	assert.Equal(t, uint64(112), r.BufferSize)
}

func TestBindGroupProvider_BindingsSorted(t *testing.T) {
	p := NewBindGroupProvider("presentation")
	p.SetSampler(1, nil)
	p.SetTextureView(0, nil)
	p.SetTexture(0, nil)

	assert.Equal(t, []int{0, 1}, p.Bindings())
}

func TestBindGroupProvider_ReleaseDetachesBindings(t *testing.T) {
	p := NewBindGroupProvider("presentation")
	p.SetBuffer(0, nil, 64)
	p.SetTextureView(1, nil)
	p.SetSampler(2, nil)

	p.Release()

	assert.Empty(t, p.Bindings())
	_, ok := p.Binding(0)
	assert.False(t, ok)

	// Releasing twice is harmless.
	assert.NotPanics(t, p.Release)
}

func TestBindGroupProvider_SettersOnZeroValue(t *testing.T) {
	p := &bindGroupProvider{}
	assert.NotPanics(t, func() {
		p.SetBuffer(3, nil, 16)
		p.SetTexture(3, nil)
		p.SetTextureView(3, nil)
		p.SetSampler(3, nil)
	})
	r, ok := p.Binding(3)
	require.True(t, ok)
	assert.Equal(t, uint64(16), r.BufferSize)
}

func TestBufferWrite_InBounds(t *testing.T) {
	p := NewBindGroupProvider("camera", WithGroup(1))
	p.SetBuffer(0, nil, 112)

	assert.True(t, p.Write(0, 0, make([]byte, 112)).InBounds())
	assert.True(t, p.Write(0, 100, make([]byte, 12)).InBounds())
	assert.False(t, p.Write(0, 100, make([]byte, 13)).InBounds())
	assert.False(t, p.Write(1, 0, []byte{1}).InBounds())
	assert.False(t, BufferWrite{Data: []byte{1}}.InBounds())
}
