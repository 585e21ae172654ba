package common

import "fmt"

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// MustFit panics when buf cannot hold n bytes. GPU serializers call it before writing so a
// short destination is reported as a layout contract violation instead of an index panic
// deep inside encoding/binary.
//
// Parameters:
//   - buf: the destination buffer
//   - n: the number of bytes the caller is about to write
//   - what: a short description of the payload used in the panic message
func MustFit(buf []byte, n int, what string) {
	if len(buf) < n {
		panic(fmt.Sprintf("%s: destination holds %d bytes, need %d", what, len(buf), n))
	}
}
