package scene

import (
	"encoding/binary"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSpheresBufferSize(t *testing.T) {
	assert.Equal(t, 16, SpheresBufferSize(0))
	assert.Equal(t, 48, SpheresBufferSize(1))
	assert.Equal(t, 16+32*1000, SpheresBufferSize(1000))
	assert.Equal(t, 16, SpheresBufferSize(-3))
}

func TestMarshalSpheres_Empty(t *testing.T) {
	buf := MarshalSpheres(nil)
	assert.Equal(t, make([]byte, 16), buf)
}

func TestMarshalSpheres_Layout(t *testing.T) {
	spheres := []Sphere{
		DefaultSphere(),
		{Position: mgl32.Vec3{1, 2, 3}, Radius: 0.25, Color: mgl32.Vec3{0.1, 0.2, 0.3}},
	}
	buf := MarshalSpheres(spheres)

	assert.Len(t, buf, 80)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[0:]))
	assert.Equal(t, make([]byte, 12), buf[4:16])

	assert.Equal(t, [3]float32{0, 0, 0}, common.Vec3At(buf, 16))
	assert.Equal(t, float32(1), common.Float32At(buf, 28))
	assert.Equal(t, [3]float32{1, 1, 1}, common.Vec3At(buf, 32))

	assert.Equal(t, [3]float32{1, 2, 3}, common.Vec3At(buf, 48))
	assert.Equal(t, float32(0.25), common.Float32At(buf, 60))
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, common.Vec3At(buf, 64))
	assert.Zero(t, common.Float32At(buf, 76))
}

func TestMarshalSpheresTo_ShortBufferPanics(t *testing.T) {
	assert.PanicsWithValue(t, "scene: spheres buffer: destination holds 47 bytes, need 80", func() {
		MarshalSpheresTo(make([]byte, 47), []Sphere{DefaultSphere(), DefaultSphere()})
	})
}

func TestMarshalSpheresTo_OverwritesStaleHeaderPadding(t *testing.T) {
	dst := make([]byte, 64)
	for i := range dst {
		dst[i] = 0xFF
	}
	MarshalSpheresTo(dst, []Sphere{DefaultSphere()})

	assert.Equal(t, MarshalSpheres([]Sphere{DefaultSphere()}), dst[:48])
	assert.Equal(t, byte(0xFF), dst[48])
}

func TestWGSLSources(t *testing.T) {
	assert.Contains(t, GPUSphereSource, "struct Sphere {")
	assert.Contains(t, GPUSpheresBufferSource, "struct SpheresBuffer {")
	assert.Contains(t, GPUSpheresBufferSource, "array<Sphere>")
}
