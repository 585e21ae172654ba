package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// storageTextureUsage lets the compute pass write a texture that the present pass samples.
const storageTextureUsage = wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding

func (b *wgpuBackend) InitStorageTexture(provider bind_group_provider.BindGroupProvider, binding int, data common.StorageTextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         provider.Label() + " texture",
		Usage:         storageTextureUsage,
		Dimension:     wgpu.TextureDimension2D,
		Size:          wgpu.Extent3D{Width: data.Width, Height: data.Height, DepthOrArrayLayers: 1},
		Format:        common.Coalesce(data.Format, wgpu.TextureFormatRGBA8Unorm),
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}

	provider.SetTexture(binding, tex)
	provider.SetTextureView(binding, view)
	return nil
}

func (b *wgpuBackend) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, texture *wgpu.Texture) error {
	if texture == nil {
		return errors.New("cannot create a view of a nil texture")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	view, err := texture.CreateView(nil)
	if err != nil {
		return err
	}
	provider.SetTextureView(binding, view)
	return nil
}

// InitBuffer pads non-empty contents to size, since CreateBufferInit sizes the buffer to its
// contents.
func (b *wgpuBackend) InitBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64, usage wgpu.BufferUsage, contents []byte) error {
	if uint64(len(contents)) > size {
		return fmt.Errorf("%d bytes of contents do not fit a %d byte buffer", len(contents), size)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	label := provider.Label() + " buffer"
	var (
		buf *wgpu.Buffer
		err error
	)
	if len(contents) == 0 {
		buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{Label: label, Size: size, Usage: usage})
	} else {
		padded := make([]byte, size)
		copy(padded, contents)
		buf, err = b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{Label: label, Contents: padded, Usage: usage})
	}
	if err != nil {
		return err
	}

	provider.SetBuffer(binding, buf, size)
	return nil
}

// samplerDescriptor fills zero fields of data with clamp-to-edge, linear defaults.
func samplerDescriptor(label string, data common.SamplerStagingData) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  common.Coalesce(data.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(data.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(data.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(data.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(data.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(data.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   data.LodMinClamp,
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32),
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, 1),
	}
}

func (b *wgpuBackend) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, data common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.device.CreateSampler(samplerDescriptor(provider.Label()+" sampler", data))
	if err != nil {
		return err
	}
	provider.SetSampler(binding, s)
	return nil
}

// InitBindGroup creates the provider's layout on first use and a bind group over the
// resources already attached. An empty descriptor is a no-op.
func (b *wgpuBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	if len(descriptor.Entries) == 0 {
		return nil
	}

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		bound, err := bindGroupEntry(provider, entry)
		if err != nil {
			return err
		}
		entries[i] = bound
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		if layout, err = b.device.CreateBindGroupLayout(&descriptor); err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " bind group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bg)
	return nil
}

// bindGroupEntry pairs a layout entry with the resource the provider holds at its binding.
func bindGroupEntry(provider bind_group_provider.BindGroupProvider, entry wgpu.BindGroupLayoutEntry) (wgpu.BindGroupEntry, error) {
	res, _ := provider.Binding(int(entry.Binding))
	bound := wgpu.BindGroupEntry{Binding: entry.Binding}

	switch {
	case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined,
		entry.StorageTexture.Access != wgpu.StorageTextureAccessUndefined:
		bound.TextureView = res.View
	case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
		bound.Sampler = res.Sampler
	default:
		bound.Buffer, bound.Size = res.Buffer, wgpu.WholeSize
	}

	if bound.TextureView == nil && bound.Sampler == nil && bound.Buffer == nil {
		return bound, fmt.Errorf("%s: binding %d has no resource of the kind its layout declares", provider.Label(), entry.Binding)
	}
	return bound, nil
}

// WriteBuffers skips writes whose target has no buffer or that would overrun it.
func (b *wgpuBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		if !w.InBounds() {
			continue
		}
		res, _ := w.Provider.Binding(w.Binding)
		if res.Buffer == nil {
			continue
		}
		b.queue.WriteBuffer(res.Buffer, w.Offset, w.Data)
	}
}
