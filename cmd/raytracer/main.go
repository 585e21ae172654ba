// Command raytracer opens a window and traces a sphere scene on the GPU every frame.
//
// Usage:
//
//	raytracer [-config raytracer.toml]
//
// Controls: W/S/A/D and Q/E move, the arrow keys turn, holding the right mouse button looks
// around. N adds a sphere, Backspace removes the last one, Escape quits.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine"
	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/clock"
	"github.com/Carmen-Shannon/oxy-rt/engine/config"
	"github.com/Carmen-Shannon/oxy-rt/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	flag.Parse()

	logger := common.NewLogger("raytracer")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal("invalid configuration", "err", err)
		}
		cfg = loaded
	}
	if err := common.SetLogLevel(cfg.Log.Level); err != nil {
		logger.Fatal("invalid log level", "err", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("raytracer stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *log.Logger) error {
	// ── Window + Renderer ───────────────────────────────────────────────
	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)

	presentMode, _ := renderer.ParsePresentMode(cfg.Renderer.PresentMode)
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceFallback),
	)

	// ── Scene ───────────────────────────────────────────────────────────
	cam := camera.NewCamera(cfg.CameraOptions()...)
	sc := scene.NewScene("raytracer",
		scene.WithCamera(cam),
		scene.WithSpheres(cfg.SceneSpheres()...),
	)
	controller := camera.NewCameraController(cam, cfg.ControllerOptions()...)

	// ── Frame pipeline ──────────────────────────────────────────────────
	pipelineOptions := []renderer.FramePipelineBuilderOption{
		renderer.WithStorageSlack(cfg.Renderer.StorageSlack),
		renderer.WithBlockOnSubmit(cfg.Renderer.BlockOnSubmit),
	}
	if path := cfg.Renderer.ShaderPath; path != "" {
		compute, err := shader.LoadShader(renderer.RaytracePipelineKey, shader.ShaderTypeCompute, path)
		if err != nil {
			r.Release()
			win.Close()
			return err
		}
		pipelineOptions = append(pipelineOptions, renderer.WithComputeShader(compute))
	}

	frames, err := renderer.NewFramePipeline(r, pipelineOptions...)
	if err != nil {
		r.Release()
		win.Close()
		return err
	}
	presenter, err := renderer.NewPresenter(r)
	if err != nil {
		frames.Release()
		r.Release()
		win.Close()
		return err
	}

	var watcher shader.Watcher
	if cfg.Renderer.HotReload {
		watcher, err = shader.NewWatcher(renderer.RaytracePipelineKey, shader.ShaderTypeCompute, cfg.Renderer.ShaderPath)
		if err != nil {
			logger.Warn("shader hot reload disabled", "path", cfg.Renderer.ShaderPath, "err", err)
			watcher = nil
		}
	}

	// ── Profiler + metrics ──────────────────────────────────────────────
	profilerOptions := []profiler.ProfilerBuilderOption{
		profiler.WithInterval(time.Duration(cfg.Profiler.Interval)),
	}
	var metricsServer *http.Server
	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		profilerOptions = append(profilerOptions, profiler.WithRegistry(reg))
		metricsServer = profiler.NewMetricsServer(cfg.Metrics.Listen, reg)
		go func() {
			logger.Info("serving metrics", "addr", cfg.Metrics.Listen)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server exited", "err", err)
			}
		}()
	}

	// ── Engine ──────────────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithScene(sc),
		engine.WithFramePipeline(frames),
		engine.WithPresenter(presenter),
		engine.WithController(controller),
		engine.WithShaderWatcher(watcher),
		engine.WithClock(clock.NewFixedStep(
			clock.WithTickRate(cfg.Simulation.TickRate),
			clock.WithMaxTicksPerAdvance(cfg.Simulation.MaxTicksPerFrame),
		)),
		engine.WithProfiler(profiler.NewProfiler(profilerOptions...)),
		engine.WithProfiling(cfg.Profiler.Enabled),
		engine.WithKeyDownHandler(editScene(sc)),
	)

	logger.Info("starting",
		"width", cfg.Window.Width,
		"height", cfg.Window.Height,
		"spheres", sc.SphereCount(),
		"present_mode", cfg.Renderer.PresentMode,
	)
	runErr := eng.Run()

	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown", "err", err)
		}
	}
	return runErr
}

// editScene returns the key handler for scene editing: N appends a default sphere and
// Backspace removes the last one.
func editScene(sc scene.Scene) func(keyCode uint32) {
	logger := common.NewLogger("scene")
	return func(keyCode uint32) {
		switch keyCode {
		case common.KeyN:
			i := sc.AddSphere()
			logger.Info("added sphere", "index", i, "spheres", sc.SphereCount())
		case common.KeyBackspace:
			n := sc.SphereCount()
			if n == 0 {
				return
			}
			if err := sc.RemoveSphere(n - 1); err != nil {
				logger.Warn("remove sphere", "err", err)
				return
			}
			logger.Info("removed sphere", "index", n-1, "spheres", n-1)
		}
	}
}
