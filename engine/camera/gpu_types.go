package camera

import (
	_ "embed"
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-rt/common"
)

// GPUCameraUniformSize is the byte size of the WGSL CameraUniform struct.
const GPUCameraUniformSize = 112

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (112 bytes, uniform address space aligned).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Each vec3<f32> is 16-byte aligned; min_distance occupies the fourth lane of down_sky_color.
type GPUCameraUniform struct {
	Position     [3]float32 // offset  0
	_pad0        float32    // offset 12
	Forward      [3]float32 // offset 16
	_pad1        float32    // offset 28
	Right        [3]float32 // offset 32
	_pad2        float32    // offset 44
	Up           [3]float32 // offset 48
	_pad3        float32    // offset 60
	UpSkyColor   [3]float32 // offset 64
	_pad4        float32    // offset 76
	DownSkyColor [3]float32 // offset 80
	MinDistance  float32    // offset 92
	MaxDistance  float32    // offset 96
	_pad5        [3]float32 // offset 100: struct size rounds up to 16
}

// Field offsets inside the CameraUniform struct.
const (
	cameraPositionOffset     = 0
	cameraForwardOffset      = 16
	cameraRightOffset        = 32
	cameraUpOffset           = 48
	cameraUpSkyColorOffset   = 64
	cameraDownSkyColorOffset = 80
	cameraMinDistanceOffset  = 92
	cameraMaxDistanceOffset  = 96
)

// NewGPUCameraUniform flattens a camera state into its GPU representation. The basis is
// derived from the rotation at call time.
//
// Parameters:
//   - s: the camera state to pack
//
// Returns:
//   - GPUCameraUniform: the packed uniform
func NewGPUCameraUniform(s State) GPUCameraUniform {
	b := s.Basis()
	return GPUCameraUniform{
		Position:     s.Position,
		Forward:      b.Forward,
		Right:        b.Right,
		Up:           b.Up,
		UpSkyColor:   s.UpSkyColor,
		DownSkyColor: s.DownSkyColor,
		MinDistance:  s.MinDistance,
		MaxDistance:  s.MaxDistance,
	}
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer, padding zeroed
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, GPUCameraUniformSize)
	g.MarshalTo(buf)
	return buf
}

// MarshalTo writes the uniform into dst[0:112]. Padding bytes are left as they are, so reuse
// of a zeroed staging buffer keeps them zero. Panics if dst is shorter than 112 bytes.
//
// Parameters:
//   - dst: the destination buffer
func (g *GPUCameraUniform) MarshalTo(dst []byte) {
	if n := g.Size(); n != GPUCameraUniformSize {
		panic(fmt.Sprintf("camera uniform: Go layout is %d bytes, WGSL layout is %d", n, GPUCameraUniformSize))
	}
	common.MustFit(dst, GPUCameraUniformSize, "camera uniform")
	common.PutVec3(dst, cameraPositionOffset, g.Position)
	common.PutVec3(dst, cameraForwardOffset, g.Forward)
	common.PutVec3(dst, cameraRightOffset, g.Right)
	common.PutVec3(dst, cameraUpOffset, g.Up)
	common.PutVec3(dst, cameraUpSkyColorOffset, g.UpSkyColor)
	common.PutVec3(dst, cameraDownSkyColorOffset, g.DownSkyColor)
	common.PutFloat32(dst, cameraMinDistanceOffset, g.MinDistance)
	common.PutFloat32(dst, cameraMaxDistanceOffset, g.MaxDistance)
}
