package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithMoveSpeed sets the translation speed.
//
// Parameters:
//   - speed: world units per second
//
// Returns:
//   - CameraControllerOption: functional option to set move speed
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.moveSpeed = speed
	}
}

// WithTurnSpeed sets the keyboard rotation speed.
//
// Parameters:
//   - degPerSecond: degrees per second for yaw, pitch and roll keys
//
// Returns:
//   - CameraControllerOption: functional option to set turn speed
func WithTurnSpeed(degPerSecond float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.turnSpeed = degPerSecond
	}
}

// WithMouseSensitivity sets the mouse look sensitivity.
//
// Parameters:
//   - degPerPixel: degrees of rotation per pixel of cursor motion
//
// Returns:
//   - CameraControllerOption: functional option to set mouse sensitivity
func WithMouseSensitivity(degPerPixel float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseSensitivity = degPerPixel
	}
}
