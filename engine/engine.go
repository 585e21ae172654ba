package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/clock"
	"github.com/Carmen-Shannon/oxy-rt/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
	"github.com/charmbracelet/log"
)

// ErrNotConfigured is returned by Run when a required component was not supplied.
var ErrNotConfigured = errors.New("engine: not configured")

// surface is the part of the renderer the engine drives directly.
type surface interface {
	Resize(width, height int)
	Release()
}

// engine implements the Engine interface.
// The window message loop runs on the calling thread; frames are traced and presented on
// the render goroutine.
type engine struct {
	logger *log.Logger

	wg          sync.WaitGroup
	quitChannel chan struct{}
	quitOnce    sync.Once

	window     window.Window
	scene      scene.Scene
	pipeline   renderer.FramePipeline
	presenter  renderer.Presenter
	renderer   surface
	clock      clock.FixedStep
	controller camera.CameraController
	watcher    shader.Watcher
	keyDown    func(keyCode uint32)

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	renderFrameLimit atomic.Int64 // minimum frame duration; 0 = uncapped

	// viewport is the latest non-zero framebuffer size, packed as width<<32 | height.
	// appliedViewport is owned by the render goroutine.
	viewport        atomic.Uint64
	appliedViewport uint64

	now func() time.Time
}

// Engine owns the frame loop: it advances the simulation clock, applies camera input,
// traces the scene with the frame pipeline and presents the result.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the traced scene.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// FramePipeline returns the frame pipeline.
	//
	// Returns:
	//   - renderer.FramePipeline: the pipeline
	FramePipeline() renderer.FramePipeline

	// Clock returns the fixed-step simulation clock.
	//
	// Returns:
	//   - clock.FixedStep: the clock
	Clock() clock.FixedStep

	// Viewport returns the size frames are traced at.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Viewport() (int, int)

	// EnableProfiler enables frame statistics.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the render goroutine and blocks in the window message loop until the window
	// closes or Quit is called. GPU resources and the window are released before it returns.
	//
	// Returns:
	//   - error: ErrNotConfigured if the window, scene or pipeline is missing, or a window close error
	Run() error

	// Quit stops the render goroutine and makes Run return.
	// Safe to call multiple times and from any goroutine.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// A missing clock defaults to 60 Hz; profiling without a profiler gets a default one.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	return newEngine(options...)
}

func newEngine(options ...EngineBuilderOption) *engine {
	e := &engine{
		quitChannel: make(chan struct{}),
		now:         time.Now,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.logger == nil {
		e.logger = common.NewLogger("engine")
	}
	if e.clock == nil {
		e.clock = clock.NewFixedStep()
	}
	if e.profilingEnabled.Load() && e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	if e.window != nil {
		e.storeViewport(e.window.Width(), e.window.Height())
		e.appliedViewport = e.viewport.Load()
		e.bindWindow()
	}

	return e
}

// bindWindow routes window input to the controller and resize events to the viewport.
func (e *engine) bindWindow() {
	e.window.SetResizeCallback(e.storeViewport)
	e.window.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			e.window.RequestClose()
		default:
		}
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		if e.controller != nil {
			e.controller.KeyDown(keyCode)
		}
		if e.keyDown != nil {
			e.keyDown(keyCode)
		}
	})
	if e.controller == nil {
		return
	}
	e.window.SetKeyUpCallback(e.controller.KeyUp)
	e.window.SetSecondaryMouseDownCallback(e.controller.SecondaryMouseDown)
	e.window.SetSecondaryMouseUpCallback(e.controller.SecondaryMouseUp)
	e.window.SetMouseMoveCallback(e.controller.MouseMove)
}

// storeViewport records a framebuffer size. A minimized window reports 0x0, which keeps the
// previous size.
func (e *engine) storeViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.viewport.Store(uint64(uint32(width))<<32 | uint64(uint32(height)))
}

func unpackViewport(v uint64) (int, int) {
	return int(v >> 32), int(uint32(v))
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) FramePipeline() renderer.FramePipeline {
	return e.pipeline
}

func (e *engine) Clock() clock.FixedStep {
	return e.clock
}

func (e *engine) Viewport() (int, int) {
	return unpackViewport(e.viewport.Load())
}

func (e *engine) EnableProfiler() {
	if e.profiler == nil {
		e.logger.Warn("profiling requested without a profiler")
		return
	}
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit.Store(int64(frameDuration(fps)))
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *engine) Run() error {
	if e.window == nil || e.scene == nil || e.pipeline == nil {
		return fmt.Errorf("%w: window, scene and frame pipeline are required", ErrNotConfigured)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if e.watcher != nil {
		if err := e.watcher.Start(ctx); err != nil {
			e.logger.Warn("shader hot reload disabled", "err", err)
			e.watcher = nil
		}
	}

	e.wg.Add(1)
	go e.handleRender()

	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	e.release()
	return e.window.Close()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// release frees GPU resources in dependency order. The render goroutine has exited.
func (e *engine) release() {
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			e.logger.Warn("closing shader watcher", "err", err)
		}
	}
	e.pipeline.Release()
	if e.renderer != nil {
		e.renderer.Release()
	}
	e.logger.Info("released GPU resources")
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := e.now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		frameStart := e.now()
		dt := frameStart.Sub(lastRender)
		lastRender = frameStart

		e.renderFrame(dt)

		if limit := time.Duration(e.renderFrameLimit.Load()); limit > 0 {
			if remaining := limit - e.now().Sub(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// renderFrame runs one frame. A frame that fails to trace is not presented and ends the loop.
func (e *engine) renderFrame(dt time.Duration) {
	e.clock.Advance(dt)
	if e.controller != nil {
		e.controller.Update(float32(dt.Seconds()))
	}
	e.drainReloads()

	width, height := e.applyViewport()
	stats, err := e.pipeline.Render(width, height, e.scene)
	if err != nil {
		e.logger.Error("frame failed, stopping", "err", err)
		e.signalQuit()
		return
	}
	if e.presenter != nil {
		e.present()
	}

	if e.profilingEnabled.Load() && e.profiler != nil {
		e.profiler.Record(profiler.Sample{
			Delta:  dt,
			Render: stats.RenderTime,
			Fixed:  e.clock.LastTickDuration(),
		})
	}
}

// applyViewport reconfigures the surface when the viewport changed since the last frame.
func (e *engine) applyViewport() (int, int) {
	v := e.viewport.Load()
	width, height := unpackViewport(v)
	if v != e.appliedViewport {
		if e.renderer != nil {
			e.renderer.Resize(width, height)
		}
		e.appliedViewport = v
	}
	return width, height
}

// drainReloads applies every pending shader reload. A rejected program is logged and the
// running one is kept.
func (e *engine) drainReloads() {
	if e.watcher == nil {
		return
	}
	for {
		select {
		case s := <-e.watcher.Reloads():
			if err := e.pipeline.ReloadShader(s); err != nil {
				e.logger.Error("shader reload rejected", "key", s.Key(), "err", err)
				continue
			}
			e.logger.Info("shader reloaded", "key", s.Key(), "path", s.Path())
		default:
			return
		}
	}
}

func (e *engine) present() {
	if err := e.presenter.BeginFrame(); err != nil {
		e.logger.Warn("surface unavailable", "err", err)
		return
	}
	drawErr := e.presenter.Draw(e.pipeline.RenderTarget())
	if err := errors.Join(drawErr, e.presenter.EndFrame()); err != nil {
		e.logger.Error("present failed", "err", err)
		e.presenter.DiscardFrame()
		return
	}
	e.presenter.Present()
}
