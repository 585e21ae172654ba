package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngineWindow_Defaults(t *testing.T) {
	w := newEngineWindow()
	assert.Equal(t, "oxy-rt", w.title)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, DontCare, w.maxWidth)
	assert.Equal(t, DontCare, w.maxHeight)
}

func TestNewEngineWindow_Options(t *testing.T) {
	w := newEngineWindow(
		WithTitle("spheres"),
		WithSize(1280, 720),
		WithMinSize(320, 240),
		WithMaxSize(1920, 0),
	)
	assert.Equal(t, "spheres", w.title)
	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
	assert.Equal(t, 320, w.minWidth)
	assert.Equal(t, 240, w.minHeight)
	assert.Equal(t, 1920, w.maxWidth)
	assert.Equal(t, 0, w.maxHeight)
}

func TestGLFWLimit(t *testing.T) {
	assert.Equal(t, 640, glfwLimit(640))
	assert.Equal(t, glfwLimit(-1), glfwLimit(0))
}

func TestEngineWindow_KeyEvents(t *testing.T) {
	w := newEngineWindow()
	var down, up []uint32
	w.SetKeyDownCallback(func(k uint32) { down = append(down, k) })
	w.SetKeyUpCallback(func(k uint32) { up = append(up, k) })

	w.keyEvent(78, true, false)
	w.keyEvent(78, true, true)
	w.keyEvent(78, true, true)
	w.keyEvent(78, false, false)

	assert.Equal(t, []uint32{78}, down)
	assert.Equal(t, []uint32{78}, up)
}

func TestEngineWindow_SecondaryMouse(t *testing.T) {
	w := newEngineWindow()
	var events []string
	w.SetSecondaryMouseDownCallback(func(x, y int32) {
		assert.Equal(t, int32(10), x)
		assert.Equal(t, int32(20), y)
		events = append(events, "down")
	})
	w.SetSecondaryMouseUpCallback(func(x, y int32) { events = append(events, "up") })

	w.secondaryMouseEvent(true, 10, 20)
	w.secondaryMouseEvent(false, 11, 21)
	assert.Equal(t, []string{"down", "up"}, events)
}

func TestEngineWindow_NilCallbacks(t *testing.T) {
	w := newEngineWindow()
	assert.NotPanics(t, func() {
		w.keyEvent(1, true, false)
		w.keyEvent(1, false, false)
		w.secondaryMouseEvent(true, 0, 0)
		w.setSize(10, 10)
	})
}

func TestEngineWindow_SetSizeNotifies(t *testing.T) {
	w := newEngineWindow()
	var got [2]int
	w.SetResizeCallback(func(width, height int) { got = [2]int{width, height} })

	w.setSize(0, 0)
	assert.Equal(t, [2]int{0, 0}, got)
	assert.Equal(t, 0, w.Width())

	w.setSize(1024, 768)
	assert.Equal(t, [2]int{1024, 768}, got)
	assert.Equal(t, 768, w.Height())
}

func TestEngineWindow_WithoutPlatformWindow(t *testing.T) {
	w := newEngineWindow()
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())

	called := false
	w.SetUpdateCallback(func() { called = true })
	w.ProcessMessages()
	assert.False(t, called)
}

func TestEngineWindow_RequestClose(t *testing.T) {
	w := newEngineWindow()
	w.internalWindow = &glfwWindow{destroyed: true}
	w.RequestClose()
	w.RequestClose()
	assert.False(t, w.IsRunning())
	assert.NoError(t, w.Close())
}
