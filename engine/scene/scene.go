package scene

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
)

// Scene is the CPU-side world: one camera plus an ordered list of spheres. It is the only
// state the frame pipeline reads, once per frame. All methods are safe for concurrent use.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Camera returns the scene camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// AddSphere appends DefaultSphere and returns its index.
	//
	// Returns:
	//   - int: the index of the new sphere
	AddSphere() int

	// AppendSphere appends s and returns its index.
	//
	// Parameters:
	//   - s: the sphere to append
	//
	// Returns:
	//   - int: the index of the new sphere
	AppendSphere(s Sphere) int

	// Sphere returns a copy of the sphere at index i.
	//
	// Parameters:
	//   - i: the sphere index
	//
	// Returns:
	//   - Sphere: the sphere
	//   - error: ErrSphereIndexOutOfRange if i is invalid
	Sphere(i int) (Sphere, error)

	// UpdateSphere calls fn with a pointer to the sphere at index i while the scene is locked.
	// fn must not call back into the scene.
	//
	// Parameters:
	//   - i: the sphere index
	//   - fn: the mutation
	//
	// Returns:
	//   - error: ErrSphereIndexOutOfRange if i is invalid
	UpdateSphere(i int, fn func(s *Sphere)) error

	// SetSpherePosition moves the sphere at index i.
	//
	// Parameters:
	//   - i: the sphere index
	//   - p: the new center
	//
	// Returns:
	//   - error: ErrSphereIndexOutOfRange if i is invalid
	SetSpherePosition(i int, p mgl32.Vec3) error

	// SetSphereRadius sets the radius of the sphere at index i.
	//
	// Parameters:
	//   - i: the sphere index
	//   - r: the new radius
	//
	// Returns:
	//   - error: ErrSphereIndexOutOfRange if i is invalid
	SetSphereRadius(i int, r float32) error

	// SetSphereColor sets the color of the sphere at index i.
	//
	// Parameters:
	//   - i: the sphere index
	//   - c: linear RGB color
	//
	// Returns:
	//   - error: ErrSphereIndexOutOfRange if i is invalid
	SetSphereColor(i int, c mgl32.Vec3) error

	// RemoveSphere deletes the sphere at index i. Later spheres shift down by one.
	//
	// Parameters:
	//   - i: the sphere index
	//
	// Returns:
	//   - error: ErrSphereIndexOutOfRange if i is invalid
	RemoveSphere(i int) error

	// Spheres returns a snapshot copy of the sphere list in order.
	//
	// Returns:
	//   - []Sphere: the spheres
	Spheres() []Sphere

	// SphereCount returns the number of spheres.
	//
	// Returns:
	//   - int: the count
	SphereCount() int
}

type scene struct {
	mu *sync.RWMutex

	name    string
	cam     camera.Camera
	spheres []Sphere
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates an empty Scene with a default camera.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:   &sync.RWMutex{},
		name: name,
	}
	for _, option := range options {
		option(s)
	}
	if s.cam == nil {
		s.cam = camera.NewCamera()
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) AddSphere() int {
	return s.AppendSphere(DefaultSphere())
}

func (s *scene) AppendSphere(sp Sphere) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spheres = append(s.spheres, sp)
	return len(s.spheres) - 1
}

func (s *scene) Sphere(i int) (Sphere, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkIndex(i); err != nil {
		return Sphere{}, err
	}
	return s.spheres[i], nil
}

func (s *scene) UpdateSphere(i int, fn func(sp *Sphere)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	fn(&s.spheres[i])
	return nil
}

func (s *scene) SetSpherePosition(i int, p mgl32.Vec3) error {
	return s.UpdateSphere(i, func(sp *Sphere) { sp.Position = p })
}

func (s *scene) SetSphereRadius(i int, r float32) error {
	return s.UpdateSphere(i, func(sp *Sphere) { sp.Radius = r })
}

func (s *scene) SetSphereColor(i int, c mgl32.Vec3) error {
	return s.UpdateSphere(i, func(sp *Sphere) { sp.Color = c })
}

func (s *scene) RemoveSphere(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.spheres = slices.Delete(s.spheres, i, i+1)
	return nil
}

func (s *scene) Spheres() []Sphere {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.spheres)
}

func (s *scene) SphereCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.spheres)
}

// checkIndex reports whether i addresses a sphere. Caller must hold the mutex.
func (s *scene) checkIndex(i int) error {
	if i < 0 || i >= len(s.spheres) {
		return fmt.Errorf("%w: index %d, length %d", ErrSphereIndexOutOfRange, i, len(s.spheres))
	}
	return nil
}
