package camera

// CameraController turns raw window input into camera motion. Input callbacks only record
// key and mouse state; the camera is moved once per frame in Update, scaled by the frame
// delta, so motion speed does not depend on the event rate.
type CameraController interface {
	// Camera returns the camera this controller drives.
	//
	// Returns:
	//   - Camera: the controlled camera
	Camera() Camera

	// KeyDown records a key press.
	//
	// Parameters:
	//   - keyCode: the virtual key code (see common key codes)
	KeyDown(keyCode uint32)

	// KeyUp records a key release.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	KeyUp(keyCode uint32)

	// IsPressed reports whether a key is currently held.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	//
	// Returns:
	//   - bool: true while the key is down
	IsPressed(keyCode uint32) bool

	// SecondaryMouseDown starts mouse look at the given cursor position.
	//
	// Parameters:
	//   - x, y: cursor position in window pixels
	SecondaryMouseDown(x, y int32)

	// SecondaryMouseUp ends mouse look and discards any unapplied cursor motion.
	//
	// Parameters:
	//   - x, y: cursor position in window pixels
	SecondaryMouseUp(x, y int32)

	// MouseMove accumulates cursor motion while mouse look is active.
	//
	// Parameters:
	//   - x, y: cursor position in window pixels
	MouseMove(x, y int32)

	// Update applies the accumulated mouse look, then keyboard rotation, then keyboard
	// translation along the rotated basis.
	//
	// Parameters:
	//   - dt: seconds since the previous frame
	Update(dt float32)

	// MoveSpeed returns the translation speed in world units per second.
	//
	// Returns:
	//   - float32: the move speed
	MoveSpeed() float32

	// TurnSpeed returns the keyboard rotation speed in degrees per second.
	//
	// Returns:
	//   - float32: the turn speed
	TurnSpeed() float32

	// MouseSensitivity returns degrees of rotation per pixel of cursor motion.
	//
	// Returns:
	//   - float32: the sensitivity
	MouseSensitivity() float32
}
