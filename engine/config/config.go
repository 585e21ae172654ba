// Package config loads the raytracer's TOML configuration file.
//
// Every field has a default, so an empty file or a missing section is valid. Unknown keys are
// rejected. Vector and float fields take TOML floats (1.0, not 1).
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every error Validate reports.
var ErrInvalidConfig = errors.New("config: invalid")

// Config is the full configuration of the raytracer host.
type Config struct {
	Window     WindowConfig     `toml:"window"`
	Renderer   RendererConfig   `toml:"renderer"`
	Simulation SimulationConfig `toml:"simulation"`
	Camera     CameraConfig     `toml:"camera"`
	Spheres    []SphereConfig   `toml:"spheres"`
	Log        LogConfig        `toml:"log"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Profiler   ProfilerConfig   `toml:"profiler"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode   string `toml:"present_mode"`
	BlockOnSubmit bool   `toml:"block_on_submit"`
	// StorageSlack is the number of extra sphere records a grown buffer has room for.
	StorageSlack  int  `toml:"storage_slack"`
	ForceFallback bool `toml:"force_fallback"`
	// ShaderPath replaces the embedded compute program when set.
	ShaderPath string `toml:"shader_path"`
	HotReload  bool   `toml:"hot_reload"`
}

type SimulationConfig struct {
	TickRate         float64 `toml:"tick_rate"`
	MaxTicksPerFrame int     `toml:"max_ticks_per_frame"`
}

type CameraConfig struct {
	Position     [3]float32 `toml:"position"`
	UpSkyColor   [3]float32 `toml:"up_sky_color"`
	DownSkyColor [3]float32 `toml:"down_sky_color"`
	MinDistance  float32    `toml:"min_distance"`
	MaxDistance  float32    `toml:"max_distance"`
	MoveSpeed    float32    `toml:"move_speed"`
	// RotateSpeed is in degrees per second.
	RotateSpeed      float32 `toml:"rotate_speed"`
	MouseSensitivity float32 `toml:"mouse_sensitivity"`
}

type SphereConfig struct {
	Position [3]float32 `toml:"position"`
	Radius   float32    `toml:"radius"`
	Color    [3]float32 `toml:"color"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type MetricsConfig struct {
	// Listen is the address the Prometheus handler is served on. Empty disables it.
	Listen string `toml:"listen"`
}

type ProfilerConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval Duration `toml:"interval"`
}

// Duration is a time.Duration written as a Go duration string such as "1s" or "250ms".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is given: an 800x600 uncapped window,
// blocking submits, a 60 Hz simulation and one white unit sphere in front of the camera.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	def := scene.DefaultSphere()
	return Config{
		Window: WindowConfig{
			Title:  "oxy-rt",
			Width:  800,
			Height: 600,
		},
		Renderer: RendererConfig{
			PresentMode:   "uncapped",
			BlockOnSubmit: true,
		},
		Simulation: SimulationConfig{
			TickRate:         60,
			MaxTicksPerFrame: 8,
		},
		Camera: CameraConfig{
			Position:         [3]float32{0, 0, -3},
			UpSkyColor:       [3]float32{1, 1, 1},
			DownSkyColor:     [3]float32{0.5, 0.7, 1.0},
			MinDistance:      0.001,
			MaxDistance:      1000,
			MoveSpeed:        2,
			RotateSpeed:      90,
			MouseSensitivity: 1,
		},
		Spheres: []SphereConfig{{
			Position: def.Position,
			Radius:   def.Radius,
			Color:    def.Color,
		}},
		Log: LogConfig{Level: "info"},
		Profiler: ProfilerConfig{
			Enabled:  true,
			Interval: Duration(time.Second),
		},
	}
}

// Load reads and decodes the file at path on top of Default.
//
// Parameters:
//   - path: the TOML file to read
//
// Returns:
//   - Config: the decoded and validated configuration
//   - error: an error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	logger().Info("loaded configuration", "path", path, "spheres", len(cfg.Spheres), "present_mode", cfg.Renderer.PresentMode)
	return cfg, nil
}

// Decode decodes TOML from r on top of Default. A [[spheres]] list replaces the default
// sphere rather than extending it.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Config: the decoded and validated configuration
//   - error: a decode error, an unknown key, or an error wrapping ErrInvalidConfig
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	defaults := cfg.Spheres
	cfg.Spheres = nil

	d := toml.NewDecoder(r)
	d.DisallowUnknownFields()
	if err := d.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return Config{}, err
	}
	if cfg.Spheres == nil {
		cfg.Spheres = defaults
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out of range value at once.
//
// Returns:
//   - error: nil, or the joined problems each wrapping ErrInvalidConfig
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		invalid("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	switch c.Renderer.PresentMode {
	case "vsync", "uncapped":
	default:
		invalid("renderer.present_mode %q must be \"vsync\" or \"uncapped\"", c.Renderer.PresentMode)
	}
	if c.Renderer.StorageSlack < 0 {
		invalid("renderer.storage_slack %d must not be negative", c.Renderer.StorageSlack)
	}
	if c.Renderer.HotReload && c.Renderer.ShaderPath == "" {
		invalid("renderer.hot_reload needs renderer.shader_path")
	}
	if c.Simulation.TickRate <= 0 {
		invalid("simulation.tick_rate %g must be positive", c.Simulation.TickRate)
	}
	if c.Simulation.MaxTicksPerFrame < 0 {
		invalid("simulation.max_ticks_per_frame %d must not be negative", c.Simulation.MaxTicksPerFrame)
	}
	if c.Camera.MinDistance >= c.Camera.MaxDistance {
		invalid("camera.min_distance %g must be below camera.max_distance %g", c.Camera.MinDistance, c.Camera.MaxDistance)
	}
	if c.Camera.MoveSpeed < 0 || c.Camera.RotateSpeed < 0 || c.Camera.MouseSensitivity < 0 {
		invalid("camera speeds must not be negative")
	}
	for i, s := range c.Spheres {
		if s.Radius < 0 {
			invalid("spheres[%d].radius %g must not be negative", i, s.Radius)
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		invalid("log.level %q: %v", c.Log.Level, err)
	}
	if c.Profiler.Interval <= 0 {
		invalid("profiler.interval %s must be positive", time.Duration(c.Profiler.Interval))
	}

	return errors.Join(errs...)
}

// CameraOptions converts the camera section into camera builder options.
//
// Returns:
//   - []camera.CameraBuilderOption: position, sky colors and distances
func (c *Config) CameraOptions() []camera.CameraBuilderOption {
	return []camera.CameraBuilderOption{
		camera.WithPosition(mgl32.Vec3(c.Camera.Position)),
		camera.WithSkyColors(mgl32.Vec3(c.Camera.UpSkyColor), mgl32.Vec3(c.Camera.DownSkyColor)),
		camera.WithDistances(c.Camera.MinDistance, c.Camera.MaxDistance),
	}
}

// ControllerOptions converts the camera section into fly controller options.
//
// Returns:
//   - []camera.CameraControllerOption: move speed, turn speed and mouse sensitivity
func (c *Config) ControllerOptions() []camera.CameraControllerOption {
	return []camera.CameraControllerOption{
		camera.WithMoveSpeed(c.Camera.MoveSpeed),
		camera.WithTurnSpeed(c.Camera.RotateSpeed),
		camera.WithMouseSensitivity(c.Camera.MouseSensitivity),
	}
}

// SceneSpheres converts the spheres list into scene spheres.
//
// Returns:
//   - []scene.Sphere: the initial spheres in file order
func (c *Config) SceneSpheres() []scene.Sphere {
	out := make([]scene.Sphere, 0, len(c.Spheres))
	for _, s := range c.Spheres {
		out = append(out, scene.Sphere{
			Position: mgl32.Vec3(s.Position),
			Radius:   s.Radius,
			Color:    mgl32.Vec3(s.Color),
		})
	}
	return out
}

var logger = sync.OnceValue(func() *log.Logger {
	return common.NewLogger("config")
})
