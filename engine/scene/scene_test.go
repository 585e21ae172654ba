package scene

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sphereAt(x float32) Sphere {
	return Sphere{Position: mgl32.Vec3{x, 0, 0}, Radius: x + 1, Color: mgl32.Vec3{x, x, x}}
}

func TestNewScene_Defaults(t *testing.T) {
	s := NewScene("empty")
	assert.Equal(t, "empty", s.Name())
	assert.NotNil(t, s.Camera())
	assert.Zero(t, s.SphereCount())

	cam := camera.NewCamera()
	s = NewScene("startup", WithCamera(cam), WithDefaultSphere())
	assert.Same(t, cam, s.Camera())
	require.Equal(t, 1, s.SphereCount())
	sp, err := s.Sphere(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSphere(), sp)
}

func TestAddSphere_ReturnsIndex(t *testing.T) {
	s := NewScene("s")
	assert.Equal(t, 0, s.AddSphere())
	assert.Equal(t, 1, s.AppendSphere(sphereAt(4)))
	assert.Equal(t, []Sphere{DefaultSphere(), sphereAt(4)}, s.Spheres())
}

func TestRemoveSphere_ShiftsLaterSpheres(t *testing.T) {
	s := NewScene("s", WithSpheres(sphereAt(0), sphereAt(1), sphereAt(2)))

	require.NoError(t, s.RemoveSphere(1))
	assert.Equal(t, []Sphere{sphereAt(0), sphereAt(2)}, s.Spheres())

	buf := MarshalSpheres(s.Spheres())
	assert.Len(t, buf, 80)
}

func TestIndexErrors_DoNotMutate(t *testing.T) {
	s := NewScene("s", WithSpheres(sphereAt(0), sphereAt(1)))
	before := s.Spheres()

	for _, i := range []int{-1, 2, 100} {
		_, err := s.Sphere(i)
		assert.True(t, errors.Is(err, ErrSphereIndexOutOfRange))
		assert.ErrorIs(t, s.RemoveSphere(i), ErrSphereIndexOutOfRange)
		assert.ErrorIs(t, s.SetSphereRadius(i, 9), ErrSphereIndexOutOfRange)
		assert.ErrorIs(t, s.SetSpherePosition(i, mgl32.Vec3{9, 9, 9}), ErrSphereIndexOutOfRange)
		assert.ErrorIs(t, s.SetSphereColor(i, mgl32.Vec3{9, 9, 9}), ErrSphereIndexOutOfRange)
	}
	assert.Equal(t, before, s.Spheres())

	_, err := s.Sphere(5)
	assert.EqualError(t, err, "scene: sphere index out of range: index 5, length 2")
}

func TestSetters(t *testing.T) {
	s := NewScene("s", WithDefaultSphere())
	require.NoError(t, s.SetSpherePosition(0, mgl32.Vec3{1, 2, 3}))
	require.NoError(t, s.SetSphereRadius(0, 0.5))
	require.NoError(t, s.SetSphereColor(0, mgl32.Vec3{1, 0, 0}))
	require.NoError(t, s.UpdateSphere(0, func(sp *Sphere) { sp.Position[1] = 7 }))

	sp, err := s.Sphere(0)
	require.NoError(t, err)
	assert.Equal(t, Sphere{Position: mgl32.Vec3{1, 7, 3}, Radius: 0.5, Color: mgl32.Vec3{1, 0, 0}}, sp)
}

func TestSpheres_ReturnsCopy(t *testing.T) {
	s := NewScene("s", WithDefaultSphere())
	snap := s.Spheres()
	snap[0].Radius = 42

	sp, _ := s.Sphere(0)
	assert.Equal(t, float32(1), sp.Radius)
}

func TestConcurrentEdits(t *testing.T) {
	s := NewScene("s")
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				s.AddSphere()
				_ = s.Spheres()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 400, s.SphereCount())
}
