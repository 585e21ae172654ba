package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// storageBuffer is the one-slot owner of the spheres storage buffer and its bind group.
// Capacity only grows.
type storageBuffer struct {
	renderer Renderer
	slot     slot
	layout   wgpu.BindGroupLayoutDescriptor
	slack    int
	logger   *log.Logger

	provider bind_group_provider.BindGroupProvider
	capacity uint64
}

// newStorageBuffer allocates the minimum capacity for an empty scene.
func newStorageBuffer(r Renderer, s slot, layout wgpu.BindGroupLayoutDescriptor, slackRecords int, logger *log.Logger) (*storageBuffer, error) {
	b := &storageBuffer{
		renderer: r,
		slot:     s,
		layout:   layout,
		slack:    max(slackRecords, 0),
		logger:   logger,
	}
	if err := b.grow(scene.MarshalSpheres(nil)); err != nil {
		return nil, err
	}
	return b, nil
}

// storageCapacityFor returns the buffer size allocated for packedLen bytes of scene storage.
func storageCapacityFor(packedLen, slackRecords int) uint64 {
	return uint64(max(packedLen+slackRecords*scene.GPUSphereSize, scene.SpheresBufferSize(1)))
}

// Ensure uploads packed at offset 0. When it does not fit, a larger buffer initialized with
// packed replaces the current one.
//
// Returns:
//   - bool: true when the buffer was reallocated
//   - error: an error wrapping ErrResourceAllocation; the current buffer is kept
func (b *storageBuffer) Ensure(packed []byte) (bool, error) {
	if uint64(len(packed)) <= b.capacity {
		b.renderer.WriteBuffers([]bind_group_provider.BufferWrite{b.provider.Write(b.slot.binding, 0, packed)})
		return false, nil
	}

	previous := b.capacity
	if err := b.grow(packed); err != nil {
		return false, err
	}
	b.logger.Info("spheres storage grown", "from", previous, "to", b.capacity, "packed", len(packed))
	return true, nil
}

func (b *storageBuffer) grow(packed []byte) error {
	size := storageCapacityFor(len(packed), b.slack)
	provider := bind_group_provider.NewBindGroupProvider("Spheres", bind_group_provider.WithGroup(b.slot.group))

	if err := b.renderer.InitBuffer(provider, b.slot.binding, size, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, packed); err != nil {
		b.renderer.ReleaseProvider(provider)
		return fmt.Errorf("spheres storage: %w", err)
	}
	if err := b.renderer.InitBindGroup(provider, b.layout); err != nil {
		b.renderer.ReleaseProvider(provider)
		return fmt.Errorf("spheres storage: %w", err)
	}

	old := b.provider
	b.provider = provider
	b.capacity = size
	b.renderer.ReleaseProvider(old)
	return nil
}

// Provider returns the provider bound at the spheres group.
func (b *storageBuffer) Provider() bind_group_provider.BindGroupProvider {
	return b.provider
}

// Capacity returns the allocated size in bytes.
func (b *storageBuffer) Capacity() uint64 {
	return b.capacity
}

func (b *storageBuffer) Release() {
	b.renderer.ReleaseProvider(b.provider)
	b.provider = nil
}
