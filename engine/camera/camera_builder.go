package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option applied to a camera during NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the initial world-space position.
//
// Parameters:
//   - p: the camera position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(p mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = p
	}
}

// WithRotation sets the initial orientation. The quaternion is normalized.
//
// Parameters:
//   - q: the camera orientation
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's rotation
func WithRotation(q mgl32.Quat) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.rotation = normalizeRotation(q)
	}
}

// WithSkyColors sets the gradient the shader draws for rays that hit nothing.
//
// Parameters:
//   - up: the color looking straight up
//   - down: the color looking straight down
//
// Returns:
//   - CameraBuilderOption: a function that sets both sky colors
func WithSkyColors(up, down mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.upSkyColor = up
		c.downSkyColor = down
	}
}

// WithDistances sets the ray distance range. Both ends are clamped like the setters.
//
// Parameters:
//   - minDistance: ray start distance, at least MinDistanceFloor
//   - maxDistance: ray end distance, at least MaxDistanceFloor
//
// Returns:
//   - CameraBuilderOption: a function that sets the distance range
func WithDistances(minDistance, maxDistance float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.minDistance = clampFloor(minDistance, MinDistanceFloor)
		c.maxDistance = clampFloor(maxDistance, MaxDistanceFloor)
	}
}
