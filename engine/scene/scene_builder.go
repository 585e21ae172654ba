package scene

import "github.com/Carmen-Shannon/oxy-rt/engine/camera"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithCamera sets the scene camera. Without it NewScene creates camera.NewCamera().
//
// Parameters:
//   - cam: the camera to attach
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cam = cam
	}
}

// WithSpheres appends initial spheres in order.
//
// Parameters:
//   - spheres: the spheres to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSpheres(spheres ...Sphere) SceneBuilderOption {
	return func(s *scene) {
		s.spheres = append(s.spheres, spheres...)
	}
}

// WithDefaultSphere appends one DefaultSphere, the startup scene of the raytracer.
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDefaultSphere() SceneBuilderOption {
	return WithSpheres(DefaultSphere())
}
