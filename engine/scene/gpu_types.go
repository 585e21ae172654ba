package scene

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-rt/common"
)

const (
	// GPUSphereSize is the byte size of one WGSL Sphere record inside a storage array.
	GPUSphereSize = 32

	// GPUSpheresHeaderSize is the byte offset of the first record in SpheresBuffer. The u32 count
	// is padded out to the 16-byte alignment of the Sphere array.
	GPUSpheresHeaderSize = 16
)

// GPUSphereSource is the canonical WGSL definition of the Sphere struct.
//
//go:embed assets/sphere.wgsl
var GPUSphereSource string

// GPUSpheresBufferSource is the canonical WGSL definition of the SpheresBuffer struct. It
// references Sphere, so GPUSphereSource must precede it in a shader.
//
//go:embed assets/spheres.wgsl
var GPUSpheresBufferSource string

// GPUSphere is the GPU-aligned representation of a Sphere.
type GPUSphere struct {
	Position [3]float32 // offset  0
	Radius   float32    // offset 12
	Color    [3]float32 // offset 16
	_pad     float32    // offset 28
}

// GPUSpheresHeader is the fixed prefix of SpheresBuffer.
type GPUSpheresHeader struct {
	Count uint32    // offset 0
	_pad  [3]uint32 // offset 4: array<Sphere> starts at 16
}

// NewGPUSphere converts a Sphere to its GPU record.
//
// Parameters:
//   - s: the sphere
//
// Returns:
//   - GPUSphere: the GPU record
func NewGPUSphere(s Sphere) GPUSphere {
	return GPUSphere{Position: s.Position, Radius: s.Radius, Color: s.Color}
}

// MarshalTo writes the record into dst[0:32]. Panics if dst is too short.
//
// Parameters:
//   - dst: the destination buffer
func (g *GPUSphere) MarshalTo(dst []byte) {
	common.MustFit(dst, GPUSphereSize, "scene: sphere record")
	common.PutVec3(dst, 0, g.Position)
	common.PutFloat32(dst, 12, g.Radius)
	common.PutVec3(dst, 16, g.Color)
	common.PutFloat32(dst, 28, 0)
}

// SpheresBufferSize returns the serialized size of a SpheresBuffer holding n spheres. Callers
// size GPU buffers with it before any bytes are produced.
//
// Parameters:
//   - n: the number of spheres
//
// Returns:
//   - int: 16 + 32*n
func SpheresBufferSize(n int) int {
	if n < 0 {
		n = 0
	}
	return GPUSpheresHeaderSize + GPUSphereSize*n
}

// MarshalSpheres serializes the sphere list into a new buffer of exactly
// SpheresBufferSize(len(spheres)) bytes.
//
// Parameters:
//   - spheres: the spheres in scene order
//
// Returns:
//   - []byte: the serialized SpheresBuffer
func MarshalSpheres(spheres []Sphere) []byte {
	buf := make([]byte, SpheresBufferSize(len(spheres)))
	MarshalSpheresTo(buf, spheres)
	return buf
}

// MarshalSpheresTo serializes the sphere list into dst. The header count always equals
// len(spheres) and records are never truncated: a dst shorter than
// SpheresBufferSize(len(spheres)) panics.
//
// Parameters:
//   - dst: the destination buffer
//   - spheres: the spheres in scene order
func MarshalSpheresTo(dst []byte, spheres []Sphere) {
	checkLayout()
	common.MustFit(dst, SpheresBufferSize(len(spheres)), "scene: spheres buffer")
	putHeader(dst, len(spheres))
	marshalRecords(dst, spheres, 0)
}

// putHeader writes the count and zeroes the header padding.
func putHeader(dst []byte, n int) {
	binary.LittleEndian.PutUint32(dst[0:], uint32(n))
	clear(dst[4:GPUSpheresHeaderSize])
}

// marshalRecords writes spheres as records starting at record index first.
func marshalRecords(dst []byte, spheres []Sphere, first int) {
	off := GPUSpheresHeaderSize + first*GPUSphereSize
	for i := range spheres {
		rec := NewGPUSphere(spheres[i])
		rec.MarshalTo(dst[off:])
		off += GPUSphereSize
	}
}

func checkLayout() {
	if n := int(unsafe.Sizeof(GPUSphere{})); n != GPUSphereSize {
		panic(fmt.Sprintf("scene: Go sphere record is %d bytes, WGSL record is %d", n, GPUSphereSize))
	}
	if n := int(unsafe.Sizeof(GPUSpheresHeader{})); n != GPUSpheresHeaderSize {
		panic(fmt.Sprintf("scene: Go spheres header is %d bytes, WGSL header is %d", n, GPUSpheresHeaderSize))
	}
}
