package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MinDistanceFloor is the smallest accepted ray start distance. Lower values are clamped up.
	MinDistanceFloor float32 = 0.0001

	// MaxDistanceFloor is the smallest accepted ray end distance. Lower values are clamped up.
	MaxDistanceFloor float32 = 0
)

// Local axes rotated by the camera orientation to derive its basis.
var (
	localForward = mgl32.Vec3{0, 0, 1}
	localRight   = mgl32.Vec3{1, 0, 0}
	localUp      = mgl32.Vec3{0, 1, 0}
)

// Basis is the orthonormal frame derived from the camera rotation.
type Basis struct {
	Forward mgl32.Vec3
	Right   mgl32.Vec3
	Up      mgl32.Vec3
}

// State is a consistent copy of every camera field, taken under a single lock.
type State struct {
	Position     mgl32.Vec3
	Rotation     mgl32.Quat
	UpSkyColor   mgl32.Vec3
	DownSkyColor mgl32.Vec3
	MinDistance  float32
	MaxDistance  float32
}

// Basis derives forward, right and up from the state's rotation. It is recomputed on every
// call and never cached.
//
// Returns:
//   - Basis: the derived frame
func (s State) Basis() Basis {
	return Basis{
		Forward: s.Rotation.Rotate(localForward),
		Right:   s.Rotation.Rotate(localRight),
		Up:      s.Rotation.Rotate(localUp),
	}
}

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	rotation mgl32.Quat

	upSkyColor   mgl32.Vec3
	downSkyColor mgl32.Vec3

	minDistance float32
	maxDistance float32
}

// Camera is the raytracing camera: a position, a unit orientation, the two sky gradient colors
// and the ray distance range. All methods are safe for concurrent use; input callbacks mutate
// the camera while the render loop snapshots it once per frame.
type Camera interface {
	// State returns a copy of every camera field taken under one lock.
	//
	// Returns:
	//   - State: the camera state
	State() State

	// Position returns the world-space camera position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Rotation returns the camera orientation.
	//
	// Returns:
	//   - mgl32.Quat: the unit rotation quaternion
	Rotation() mgl32.Quat

	// Basis derives forward/right/up from the current rotation.
	//
	// Returns:
	//   - Basis: the camera frame
	Basis() Basis

	// UpSkyColor returns the sky color seen when looking straight up.
	//
	// Returns:
	//   - mgl32.Vec3: linear RGB color
	UpSkyColor() mgl32.Vec3

	// DownSkyColor returns the sky color seen when looking straight down.
	//
	// Returns:
	//   - mgl32.Vec3: linear RGB color
	DownSkyColor() mgl32.Vec3

	// MinDistance returns the distance at which rays start.
	//
	// Returns:
	//   - float32: the minimum ray distance, never below MinDistanceFloor
	MinDistance() float32

	// MaxDistance returns the distance after which rays miss.
	//
	// Returns:
	//   - float32: the maximum ray distance, never below MaxDistanceFloor
	MaxDistance() float32

	// SetPosition moves the camera to p.
	//
	// Parameters:
	//   - p: the new world-space position
	SetPosition(p mgl32.Vec3)

	// SetRotation replaces the orientation. The quaternion is normalized before it is stored.
	//
	// Parameters:
	//   - q: the new orientation
	SetRotation(q mgl32.Quat)

	// SetUpSkyColor sets the sky color seen when looking straight up.
	//
	// Parameters:
	//   - c: linear RGB color
	SetUpSkyColor(c mgl32.Vec3)

	// SetDownSkyColor sets the sky color seen when looking straight down.
	//
	// Parameters:
	//   - c: linear RGB color
	SetDownSkyColor(c mgl32.Vec3)

	// SetMinDistance sets the ray start distance, clamped to at least MinDistanceFloor.
	//
	// Parameters:
	//   - d: the requested distance
	SetMinDistance(d float32)

	// SetMaxDistance sets the ray end distance, clamped to at least MaxDistanceFloor.
	//
	// Parameters:
	//   - d: the requested distance
	SetMaxDistance(d float32)

	// Translate offsets the position by delta in world space.
	//
	// Parameters:
	//   - delta: the world-space offset
	Translate(delta mgl32.Vec3)

	// Move offsets the position along the current basis.
	//
	// Parameters:
	//   - forward: distance along Basis().Forward
	//   - right: distance along Basis().Right
	//   - up: distance along Basis().Up
	Move(forward, right, up float32)

	// Rotate applies yaw about the local Y axis, then pitch about the local X axis, then roll
	// about the local Z axis. Each rotation is post-multiplied so it happens in camera space.
	//
	// Parameters:
	//   - yawDeg: rotation about local Y in degrees
	//   - pitchDeg: rotation about local X in degrees
	//   - rollDeg: rotation about local Z in degrees
	Rotate(yawDeg, pitchDeg, rollDeg float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera at (0, 0, -3) looking down +Z with a white-to-light-blue sky
// and a ray range of [0.001, 1000].
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:           &sync.Mutex{},
		position:     mgl32.Vec3{0, 0, -3},
		rotation:     mgl32.QuatIdent(),
		upSkyColor:   mgl32.Vec3{1, 1, 1},
		downSkyColor: mgl32.Vec3{0.5, 0.7, 1.0},
		minDistance:  0.001,
		maxDistance:  1000,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Position:     c.position,
		Rotation:     c.rotation,
		UpSkyColor:   c.upSkyColor,
		DownSkyColor: c.downSkyColor,
		MinDistance:  c.minDistance,
		MaxDistance:  c.maxDistance,
	}
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Rotation() mgl32.Quat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotation
}

func (c *cameraImpl) Basis() Basis {
	return c.State().Basis()
}

func (c *cameraImpl) UpSkyColor() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upSkyColor
}

func (c *cameraImpl) DownSkyColor() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.downSkyColor
}

func (c *cameraImpl) MinDistance() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minDistance
}

func (c *cameraImpl) MaxDistance() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxDistance
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

func (c *cameraImpl) SetRotation(q mgl32.Quat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotation = normalizeRotation(q)
}

func (c *cameraImpl) SetUpSkyColor(col mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upSkyColor = col
}

func (c *cameraImpl) SetDownSkyColor(col mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.downSkyColor = col
}

func (c *cameraImpl) SetMinDistance(d float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minDistance = clampFloor(d, MinDistanceFloor)
}

func (c *cameraImpl) SetMaxDistance(d float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxDistance = clampFloor(d, MaxDistanceFloor)
}

func (c *cameraImpl) Translate(delta mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.position.Add(delta)
}

func (c *cameraImpl) Move(forward, right, up float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if forward != 0 {
		c.position = c.position.Add(c.rotation.Rotate(localForward).Mul(forward))
	}
	if right != 0 {
		c.position = c.position.Add(c.rotation.Rotate(localRight).Mul(right))
	}
	if up != 0 {
		c.position = c.position.Add(c.rotation.Rotate(localUp).Mul(up))
	}
}

func (c *cameraImpl) Rotate(yawDeg, pitchDeg, rollDeg float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.rotation
	if yawDeg != 0 {
		r = r.Mul(mgl32.QuatRotate(mgl32.DegToRad(yawDeg), localUp))
	}
	if pitchDeg != 0 {
		r = r.Mul(mgl32.QuatRotate(mgl32.DegToRad(pitchDeg), localRight))
	}
	if rollDeg != 0 {
		r = r.Mul(mgl32.QuatRotate(mgl32.DegToRad(rollDeg), localForward))
	}
	c.rotation = normalizeRotation(r)
}

// clampFloor returns floor when v is below it or NaN.
func clampFloor(v, floor float32) float32 {
	if !(v >= floor) {
		return floor
	}
	return v
}

// normalizeRotation renormalizes q so accumulated per-frame rotations do not drift off the unit
// sphere. A zero quaternion falls back to identity.
func normalizeRotation(q mgl32.Quat) mgl32.Quat {
	if q.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return q.Normalize()
}
