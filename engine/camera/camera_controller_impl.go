package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/common"
)

// cameraControllerImpl is a free-flight controller. Arrow keys yaw and pitch, Q/E roll,
// WASD moves in the camera plane, Space/Ctrl move along the camera up axis, and dragging
// with the secondary mouse button looks around.
type cameraControllerImpl struct {
	mu *sync.Mutex

	camera Camera

	pressed map[uint32]bool

	looking    bool
	lastX      int32
	lastY      int32
	pendingDX  float32
	pendingDY  float32
	haveCursor bool

	moveSpeed        float32
	turnSpeed        float32
	mouseSensitivity float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a fly controller for cam. It moves at 2 units/s, turns at
// 90 degrees/s and rotates one degree per pixel of mouse drag.
//
// Parameters:
//   - cam: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(cam Camera, options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:               &sync.Mutex{},
		camera:           cam,
		pressed:          make(map[uint32]bool),
		moveSpeed:        2.0,
		turnSpeed:        90.0,
		mouseSensitivity: 1.0,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Camera() Camera {
	return cc.camera
}

func (cc *cameraControllerImpl) KeyDown(keyCode uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pressed[keyCode] = true
}

func (cc *cameraControllerImpl) KeyUp(keyCode uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.pressed, keyCode)
}

func (cc *cameraControllerImpl) IsPressed(keyCode uint32) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.pressed[keyCode]
}

func (cc *cameraControllerImpl) SecondaryMouseDown(x, y int32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.looking = true
	cc.lastX, cc.lastY = x, y
	cc.haveCursor = true
}

func (cc *cameraControllerImpl) SecondaryMouseUp(x, y int32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.looking = false
	cc.pendingDX, cc.pendingDY = 0, 0
	cc.lastX, cc.lastY = x, y
}

func (cc *cameraControllerImpl) MouseMove(x, y int32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.looking && cc.haveCursor {
		cc.pendingDX += float32(x - cc.lastX)
		cc.pendingDY += float32(y - cc.lastY)
	}
	cc.lastX, cc.lastY = x, y
	cc.haveCursor = true
}

func (cc *cameraControllerImpl) Update(dt float32) {
	cc.mu.Lock()
	dx, dy := cc.pendingDX, cc.pendingDY
	cc.pendingDX, cc.pendingDY = 0, 0
	looking := cc.looking
	held := func(codes ...uint32) bool {
		for _, c := range codes {
			if cc.pressed[c] {
				return true
			}
		}
		return false
	}

	var yaw, pitch, roll float32
	turn := cc.turnSpeed * dt
	if held(common.KeyLeft) {
		yaw = -turn
	} else if held(common.KeyRight) {
		yaw = turn
	}
	if held(common.KeyUp) {
		pitch = -turn
	} else if held(common.KeyDown) {
		pitch = turn
	}
	if held(common.KeyQ) {
		roll = turn
	} else if held(common.KeyE) {
		roll = -turn
	}

	var fwd, right, up float32
	step := cc.moveSpeed * dt
	if held(common.KeyW) {
		fwd += step
	}
	if held(common.KeyS) {
		fwd -= step
	}
	if held(common.KeyD) {
		right += step
	}
	if held(common.KeyA) {
		right -= step
	}
	if held(common.KeySpace) {
		up += step
	}
	if held(common.KeyLeftControl, common.KeyRightControl) {
		up -= step
	}
	sensitivity := cc.mouseSensitivity
	cc.mu.Unlock()

	// Camera calls take the camera lock; never hold both.
	if looking && (dx != 0 || dy != 0) {
		cc.camera.Rotate(dx*sensitivity, dy*sensitivity, 0)
	}
	if yaw != 0 || pitch != 0 || roll != 0 {
		cc.camera.Rotate(yaw, pitch, roll)
	}
	if fwd != 0 || right != 0 || up != 0 {
		cc.camera.Move(fwd, right, up)
	}
}

func (cc *cameraControllerImpl) MoveSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.moveSpeed
}

func (cc *cameraControllerImpl) TurnSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.turnSpeed
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.mouseSensitivity
}
