package scene

import "github.com/go-gl/mathgl/mgl32"

// Sphere is one primitive of the raytraced scene.
type Sphere struct {
	Position mgl32.Vec3
	Radius   float32
	Color    mgl32.Vec3
}

// DefaultSphere returns a white unit sphere at the origin.
//
// Returns:
//   - Sphere: the default sphere
func DefaultSphere() Sphere {
	return Sphere{
		Position: mgl32.Vec3{0, 0, 0},
		Radius:   1,
		Color:    mgl32.Vec3{1, 1, 1},
	}
}
