package renderer

import (
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuBackend implements RendererBackend on cogentcore/webgpu. Every method except
// WaitForSubmission serializes on mu.
type wgpuBackend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	// surfaceFormat is nil until the first ConfigureSurface with a non-zero size.
	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode

	computeEncoder *wgpu.CommandEncoder
	frame          *surfaceFrame
}

var _ RendererBackend = &wgpuBackend{}

// newWGPUBackend acquires an adapter and device able to present to the described surface.
// The calling goroutine is locked to its OS thread. Adapter or device failure panics.
func newWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) *wgpuBackend {
	runtime.LockOSThread()

	instance := wgpu.CreateInstance(nil)
	b := &wgpuBackend{
		mu:          &sync.Mutex{},
		instance:    instance,
		surface:     instance.CreateSurface(surfaceDescriptor),
		presentMode: wgpu.PresentModeImmediate,
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic("renderer: request adapter: " + err.Error())
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "oxy-rt device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: wgpu.DefaultLimits()},
	})
	if err != nil {
		panic("renderer: request device: " + err.Error())
	}
	b.device = device
	b.queue = device.GetQueue()

	return b
}

// wgpuPresentMode maps a PresentMode to the surface mode. Anything but vsync presents
// immediately.
func wgpuPresentMode(mode PresentMode) wgpu.PresentMode {
	if mode == PresentModeVSync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}

func (b *wgpuBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = wgpuPresentMode(mode)
}

// ConfigureSurface ignores a 0x0 size, which a minimized window reports and the surface
// rejects.
func (b *wgpuBackend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}

	caps := b.surface.GetCapabilities(b.adapter)
	format := caps.Formats[0]
	b.surfaceFormat = &format

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   caps.AlphaModes[0],
	})
}

func (b *wgpuBackend) ReleaseProvider(provider bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()
	provider.Release()
}

// Release drops any frame in flight, then the device objects in reverse creation order.
func (b *wgpuBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeEncoder != nil {
		b.computeEncoder.Release()
		b.computeEncoder = nil
	}
	if b.frame != nil {
		b.frame.release()
		b.frame = nil
	}

	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
	b.queue, b.device, b.adapter, b.surface, b.instance = nil, nil, nil, nil, nil
}
