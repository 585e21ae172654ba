package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, "uncapped", cfg.Renderer.PresentMode)
	assert.True(t, cfg.Renderer.BlockOnSubmit)
	assert.Equal(t, 0, cfg.Renderer.StorageSlack)
	assert.Equal(t, 60.0, cfg.Simulation.TickRate)
	assert.Equal(t, Duration(time.Second), cfg.Profiler.Interval)
	assert.Empty(t, cfg.Metrics.Listen)
	assert.Equal(t, []scene.Sphere{scene.DefaultSphere()}, cfg.SceneSpheres())
}

func TestDefault_MatchesComponentDefaults(t *testing.T) {
	cfg := Default()
	fromConfig := camera.NewCamera(cfg.CameraOptions()...).State()
	assert.Equal(t, camera.NewCamera().State(), fromConfig)
}

func TestDecode_EmptyIsDefault(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecode_Overrides(t *testing.T) {
	const source = `
[window]
title = "spheres"
width = 1280
height = 720

[renderer]
present_mode = "vsync"
block_on_submit = false
storage_slack = 16
shader_path = "shaders/raytrace.wgsl"
hot_reload = true

[simulation]
tick_rate = 120.0

[camera]
position = [1.0, 2.0, 3.0]
move_speed = 5.0

[[spheres]]
position = [0.0, 0.0, 0.0]
radius = 0.5
color = [1.0, 0.0, 0.0]

[[spheres]]
position = [2.0, 0.0, 0.0]
radius = 1.5
color = [0.0, 1.0, 0.0]

[log]
level = "debug"

[metrics]
listen = ":9090"

[profiler]
interval = "250ms"
`
	cfg, err := Decode(strings.NewReader(source))
	require.NoError(t, err)

	assert.Equal(t, WindowConfig{Title: "spheres", Width: 1280, Height: 720}, cfg.Window)
	assert.Equal(t, "vsync", cfg.Renderer.PresentMode)
	assert.False(t, cfg.Renderer.BlockOnSubmit)
	assert.Equal(t, 16, cfg.Renderer.StorageSlack)
	assert.True(t, cfg.Renderer.HotReload)
	assert.Equal(t, 120.0, cfg.Simulation.TickRate)
	assert.Equal(t, 8, cfg.Simulation.MaxTicksPerFrame)
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Camera.Position)
	assert.Equal(t, float32(5), cfg.Camera.MoveSpeed)
	assert.Equal(t, float32(90), cfg.Camera.RotateSpeed)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.Metrics.Listen)
	assert.True(t, cfg.Profiler.Enabled)
	assert.Equal(t, Duration(250*time.Millisecond), cfg.Profiler.Interval)

	assert.Equal(t, []scene.Sphere{
		{Position: mgl32.Vec3{0, 0, 0}, Radius: 0.5, Color: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{2, 0, 0}, Radius: 1.5, Color: mgl32.Vec3{0, 1, 0}},
	}, cfg.SceneSpheres())
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("[renderer]\npresent_mod = \"vsync\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "present_mod")
}

func TestDecode_RejectsMalformedDuration(t *testing.T) {
	_, err := Decode(strings.NewReader("[profiler]\ninterval = \"soon\"\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero window", func(c *Config) { c.Window.Width = 0 }},
		{"unknown present mode", func(c *Config) { c.Renderer.PresentMode = "mailbox" }},
		{"negative slack", func(c *Config) { c.Renderer.StorageSlack = -1 }},
		{"hot reload without path", func(c *Config) { c.Renderer.HotReload = true }},
		{"zero tick rate", func(c *Config) { c.Simulation.TickRate = 0 }},
		{"negative tick limit", func(c *Config) { c.Simulation.MaxTicksPerFrame = -1 }},
		{"inverted distances", func(c *Config) { c.Camera.MinDistance, c.Camera.MaxDistance = 10, 1 }},
		{"negative speed", func(c *Config) { c.Camera.MoveSpeed = -1 }},
		{"negative radius", func(c *Config) { c.Spheres[0].Radius = -1 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"zero profiler interval", func(c *Config) { c.Profiler.Interval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Window.Height = -1
	cfg.Simulation.TickRate = -1

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "window size")
	assert.Contains(t, err.Error(), "tick_rate")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raytracer.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\nwidth = 1024\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestControllerOptions(t *testing.T) {
	cfg := Default()
	cfg.Camera.MoveSpeed = 4
	cfg.Camera.RotateSpeed = 45
	cfg.Camera.MouseSensitivity = 0.5

	cc := camera.NewCameraController(camera.NewCamera(), cfg.ControllerOptions()...)
	assert.Equal(t, float32(4), cc.MoveSpeed())
	assert.Equal(t, float32(45), cc.TurnSpeed())
	assert.Equal(t, float32(0.5), cc.MouseSensitivity())
}
