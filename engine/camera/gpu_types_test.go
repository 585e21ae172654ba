package camera

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUCameraUniform_Size(t *testing.T) {
	var u GPUCameraUniform
	assert.Equal(t, GPUCameraUniformSize, u.Size())
	assert.Len(t, u.Marshal(), GPUCameraUniformSize)
}

func TestGPUCameraUniform_DefaultCameraLayout(t *testing.T) {
	u := NewGPUCameraUniform(NewCamera().State())
	buf := u.Marshal()

	assert.Equal(t, [3]float32{0, 0, -3}, common.Vec3At(buf, 0))
	assert.Equal(t, [3]float32{0, 0, 1}, common.Vec3At(buf, 16))
	assert.Equal(t, [3]float32{1, 0, 0}, common.Vec3At(buf, 32))
	assert.Equal(t, [3]float32{0, 1, 0}, common.Vec3At(buf, 48))
	assert.Equal(t, [3]float32{1, 1, 1}, common.Vec3At(buf, 64))
	assert.Equal(t, [3]float32{0.5, 0.7, 1.0}, common.Vec3At(buf, 80))
	assert.Equal(t, float32(0.001), common.Float32At(buf, 92))
	assert.Equal(t, float32(1000), common.Float32At(buf, 96))

	for _, off := range []int{12, 28, 44, 60, 76, 100, 104, 108} {
		assert.Zerof(t, common.Float32At(buf, off), "padding at %d", off)
	}
}

func TestGPUCameraUniform_RotatedBasis(t *testing.T) {
	c := NewCamera()
	c.Rotate(90, 0, 0)
	u := NewGPUCameraUniform(c.State())
	buf := u.Marshal()

	fwd := mgl32.Vec3(common.Vec3At(buf, 16))
	assert.True(t, fwd.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, eps))
}

func TestGPUCameraUniform_MarshalToLongerBuffer(t *testing.T) {
	u := NewGPUCameraUniform(NewCamera().State())
	dst := make([]byte, GPUCameraUniformSize+8)
	dst[GPUCameraUniformSize] = 0xAB

	u.MarshalTo(dst)
	assert.Equal(t, u.Marshal(), dst[:GPUCameraUniformSize])
	assert.Equal(t, byte(0xAB), dst[GPUCameraUniformSize])
}

func TestGPUCameraUniform_MarshalToShortBufferPanics(t *testing.T) {
	u := NewGPUCameraUniform(NewCamera().State())
	assert.PanicsWithValue(t, "camera uniform: destination holds 96 bytes, need 112", func() {
		u.MarshalTo(make([]byte, 96))
	})
}

func TestGPUCameraUniformSource_DeclaresEveryField(t *testing.T) {
	require.Contains(t, GPUCameraUniformSource, "struct CameraUniform")
	for _, f := range []string{"position", "forward", "right", "up", "up_sky_color", "down_sky_color", "min_distance", "max_distance"} {
		assert.True(t, strings.Contains(GPUCameraUniformSource, f+":"), f)
	}
}
