package main

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditScene(t *testing.T) {
	red := scene.Sphere{Position: mgl32.Vec3{2, 0, 0}, Radius: 0.5, Color: mgl32.Vec3{1, 0, 0}}
	sc := scene.NewScene("edit", scene.WithSpheres(red))
	edit := editScene(sc)

	edit(common.KeyN)
	require.Equal(t, 2, sc.SphereCount())
	last, err := sc.Sphere(1)
	require.NoError(t, err)
	assert.Equal(t, scene.DefaultSphere(), last)

	edit(common.KeyBackspace)
	assert.Equal(t, []scene.Sphere{red}, sc.Spheres())

	edit(common.KeyW)
	assert.Equal(t, 1, sc.SphereCount())
}

func TestEditScene_BackspaceOnEmptyScene(t *testing.T) {
	sc := scene.NewScene("empty")
	edit := editScene(sc)

	assert.NotPanics(t, func() { edit(common.KeyBackspace) })
	assert.Zero(t, sc.SphereCount())
}
