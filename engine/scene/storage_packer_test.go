package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manySpheres(n int) []Sphere {
	out := make([]Sphere, n)
	for i := range out {
		f := float32(i)
		out[i] = Sphere{Position: mgl32.Vec3{f, -f, f * 0.5}, Radius: f + 0.5, Color: mgl32.Vec3{f / 10, 0.5, 1}}
	}
	return out
}

func TestStoragePacker_Defaults(t *testing.T) {
	p := NewStoragePacker()
	defer p.Release()
	assert.GreaterOrEqual(t, p.Workers(), 1)
	assert.Equal(t, 4096, p.ParallelThreshold())
}

func TestStoragePacker_ParallelMatchesSerial(t *testing.T) {
	p := NewStoragePacker(WithPackWorkers(4), WithParallelThreshold(8), WithChunkSize(7))
	defer p.Release()

	for _, n := range []int{0, 1, 7, 8, 9, 100, 1001} {
		spheres := manySpheres(n)
		assert.Equalf(t, MarshalSpheres(spheres), p.Pack(spheres), "n=%d", n)
	}
}

func TestStoragePacker_PackToReturnsPrefix(t *testing.T) {
	p := NewStoragePacker(WithPackWorkers(2), WithParallelThreshold(1), WithChunkSize(3))
	defer p.Release()

	spheres := manySpheres(10)
	dst := make([]byte, SpheresBufferSize(20))
	out := p.PackTo(dst, spheres)
	require.Len(t, out, SpheresBufferSize(10))
	assert.Equal(t, MarshalSpheres(spheres), out)
}

func TestStoragePacker_ShortDestinationPanics(t *testing.T) {
	p := NewStoragePacker(WithPackWorkers(2), WithParallelThreshold(1))
	defer p.Release()

	assert.Panics(t, func() {
		p.PackTo(make([]byte, 16), manySpheres(4))
	})
}

func TestStoragePacker_SerialAfterRelease(t *testing.T) {
	p := NewStoragePacker(WithPackWorkers(2), WithParallelThreshold(1))
	p.Release()
	p.Release()

	spheres := manySpheres(50)
	assert.Equal(t, MarshalSpheres(spheres), p.Pack(spheres))
}
