package common

import (
	"encoding/binary"
	"math"
)

// Unsigned is the set of unsigned integer types accepted by DivCeil.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// DivCeil returns a / b rounded up. Used to size compute dispatches so that every
// pixel is covered by at least one invocation.
//
// Parameters:
//   - a: the dividend
//   - b: the divisor, must be non-zero
//
// Returns:
//   - T: ceil(a / b)
func DivCeil[T Unsigned](a, b T) T {
	if b == 0 {
		panic("common: DivCeil by zero")
	}
	return (a + b - 1) / b
}

// PutFloat32 writes v as little-endian IEEE-754 bits at buf[offset:].
//
// Parameters:
//   - buf: destination buffer
//   - offset: byte offset of the field
//   - v: the value to write
func PutFloat32(buf []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
}

// PutVec3 writes three consecutive little-endian float32 values at buf[offset:].
// WGSL vec3<f32> occupies 12 bytes; any trailing alignment padding is left untouched.
//
// Parameters:
//   - buf: destination buffer
//   - offset: byte offset of the vector field
//   - v: the vector components
func PutVec3(buf []byte, offset int, v [3]float32) {
	for i := range 3 {
		PutFloat32(buf, offset+i*4, v[i])
	}
}

// Float32At reads a little-endian float32 from buf[offset:].
//
// Parameters:
//   - buf: source buffer
//   - offset: byte offset of the field
//
// Returns:
//   - float32: the decoded value
func Float32At(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

// Vec3At reads three consecutive little-endian float32 values from buf[offset:].
//
// Parameters:
//   - buf: source buffer
//   - offset: byte offset of the vector field
//
// Returns:
//   - [3]float32: the decoded vector
func Vec3At(buf []byte, offset int) [3]float32 {
	return [3]float32{
		Float32At(buf, offset),
		Float32At(buf, offset+4),
		Float32At(buf, offset+8),
	}
}
