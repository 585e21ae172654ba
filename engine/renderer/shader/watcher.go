package shader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDebounce is how long the watcher waits after the last write before reparsing.
const DefaultReloadDebounce = 150 * time.Millisecond

// Watcher reparses a shader file whenever it changes on disk and publishes the result.
// Only successfully parsed shaders are published; parse failures are logged and the
// previous shader stays in use.
type Watcher interface {
	// Start begins watching. The watcher stops when ctx is cancelled or Close is called.
	//
	// Parameters:
	//   - ctx: controls the lifetime of the watch goroutine
	//
	// Returns:
	//   - error: an error if the file's directory cannot be watched
	Start(ctx context.Context) error

	// Reloads delivers freshly parsed shaders. At most one pending shader is buffered;
	// a newer reload replaces an unread one.
	//
	// Returns:
	//   - <-chan Shader: the reload channel
	Reloads() <-chan Shader

	// Close stops watching and releases the underlying fsnotify watcher. Safe to call more than once.
	//
	// Returns:
	//   - error: an error from closing the fsnotify watcher
	Close() error
}

type watcherImpl struct {
	mu *sync.Mutex

	key        string
	shaderType ShaderType
	path       string
	debounce   time.Duration
	logger     *log.Logger

	fs      *fsnotify.Watcher
	reloads chan Shader
	closed  bool
}

var _ Watcher = &watcherImpl{}

// NewWatcher creates a Watcher for the shader file at path.
//
// Parameters:
//   - key: the key given to reparsed shaders
//   - shaderType: the stage reparsed shaders are reflected for
//   - path: the WGSL file to watch
//   - options: functional options to configure the watcher
//
// Returns:
//   - Watcher: the watcher, not yet started
//   - error: an error if the fsnotify watcher cannot be created
func NewWatcher(key string, shaderType ShaderType, path string, options ...WatcherBuilderOption) (Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("shader watcher: %w", err)
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader watcher: failed to create file watcher: %w", err)
	}
	w := &watcherImpl{
		mu:         &sync.Mutex{},
		key:        key,
		shaderType: shaderType,
		path:       abs,
		debounce:   DefaultReloadDebounce,
		fs:         fs,
		reloads:    make(chan Shader, 1),
	}
	for _, option := range options {
		option(w)
	}
	if w.logger == nil {
		w.logger = common.NewLogger("shader")
	}
	return w, nil
}

func (w *watcherImpl) Start(ctx context.Context) error {
	// Editors often replace files by rename, which drops a watch on the file itself.
	if err := w.fs.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("shader watcher: failed to watch %q: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("watching shader", "key", w.key, "path", w.path)

	go w.run(ctx)
	return nil
}

func (w *watcherImpl) run(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "err", err)
		case <-timer.C:
			w.reload()
		case <-ctx.Done():
			_ = w.Close()
			return
		}
	}
}

func (w *watcherImpl) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *watcherImpl) reload() {
	s, err := LoadShader(w.key, w.shaderType, w.path)
	if err != nil {
		w.logger.Error("shader reload failed", "key", w.key, "err", err)
		return
	}
	w.logger.Info("shader reloaded", "key", w.key)

	// Drop any unread shader so the consumer always sees the newest one.
	select {
	case <-w.reloads:
	default:
	}
	select {
	case w.reloads <- s:
	default:
	}
}

func (w *watcherImpl) Reloads() <-chan Shader {
	return w.reloads
}

func (w *watcherImpl) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.fs.Close(); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
		return err
	}
	return nil
}
