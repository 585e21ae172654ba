package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func newOriginController(options ...CameraControllerOption) CameraController {
	return NewCameraController(NewCamera(WithPosition(mgl32.Vec3{})), options...)
}

func TestController_Defaults(t *testing.T) {
	cc := newOriginController()
	assert.Equal(t, float32(2), cc.MoveSpeed())
	assert.Equal(t, float32(90), cc.TurnSpeed())
	assert.Equal(t, float32(1), cc.MouseSensitivity())

	cc = newOriginController(WithMoveSpeed(5), WithTurnSpeed(45), WithMouseSensitivity(0.25))
	assert.Equal(t, float32(5), cc.MoveSpeed())
	assert.Equal(t, float32(45), cc.TurnSpeed())
	assert.Equal(t, float32(0.25), cc.MouseSensitivity())
}

func TestController_KeyState(t *testing.T) {
	cc := newOriginController()
	cc.KeyDown(common.KeyW)
	assert.True(t, cc.IsPressed(common.KeyW))
	cc.KeyUp(common.KeyW)
	assert.False(t, cc.IsPressed(common.KeyW))
}

func TestController_Translation(t *testing.T) {
	tests := []struct {
		name string
		keys []uint32
		want mgl32.Vec3
	}{
		{"forward", []uint32{common.KeyW}, mgl32.Vec3{0, 0, 1}},
		{"back", []uint32{common.KeyS}, mgl32.Vec3{0, 0, -1}},
		{"right", []uint32{common.KeyD}, mgl32.Vec3{1, 0, 0}},
		{"left", []uint32{common.KeyA}, mgl32.Vec3{-1, 0, 0}},
		{"up", []uint32{common.KeySpace}, mgl32.Vec3{0, 1, 0}},
		{"down", []uint32{common.KeyLeftControl}, mgl32.Vec3{0, -1, 0}},
		{"opposing cancel", []uint32{common.KeyW, common.KeyS}, mgl32.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := newOriginController()
			for _, k := range tt.keys {
				cc.KeyDown(k)
			}
			cc.Update(0.5)
			assertVec3(t, tt.want, cc.Camera().Position())
		})
	}
}

func TestController_KeyboardRotation(t *testing.T) {
	cc := newOriginController()
	cc.KeyDown(common.KeyRight)
	cc.Update(1)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, cc.Camera().Basis().Forward)

	// Left takes precedence over Right.
	cc.KeyDown(common.KeyLeft)
	cc.Update(1)
	assertVec3(t, mgl32.Vec3{0, 0, 1}, cc.Camera().Basis().Forward)
}

func TestController_PitchAndRoll(t *testing.T) {
	cc := newOriginController()
	cc.KeyDown(common.KeyUp)
	cc.Update(1)
	// Up arrow pitches by -90 degrees about local X, which tilts forward toward +Y.
	assertVec3(t, mgl32.Vec3{0, 1, 0}, cc.Camera().Basis().Forward)

	cc = newOriginController()
	cc.KeyDown(common.KeyQ)
	cc.Update(1)
	assertVec3(t, mgl32.Vec3{0, 0, 1}, cc.Camera().Basis().Forward)
	assertVec3(t, mgl32.Vec3{0, 1, 0}, cc.Camera().Basis().Right)
}

func TestController_MouseLookOnlyWhileHeld(t *testing.T) {
	cc := newOriginController()

	cc.MouseMove(0, 0)
	cc.MouseMove(90, 0)
	cc.Update(0.016)
	assertVec3(t, mgl32.Vec3{0, 0, 1}, cc.Camera().Basis().Forward)

	cc.SecondaryMouseDown(90, 0)
	cc.MouseMove(135, 0)
	cc.MouseMove(180, 0)
	cc.Update(0.016)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, cc.Camera().Basis().Forward)

	cc.SecondaryMouseUp(180, 0)
	cc.MouseMove(400, 0)
	cc.Update(0.016)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, cc.Camera().Basis().Forward)
}

func TestController_ReleaseDropsPendingMotion(t *testing.T) {
	cc := newOriginController()
	cc.SecondaryMouseDown(0, 0)
	cc.MouseMove(90, 0)
	cc.SecondaryMouseUp(90, 0)
	cc.Update(0.016)
	assertVec3(t, mgl32.Vec3{0, 0, 1}, cc.Camera().Basis().Forward)
}
