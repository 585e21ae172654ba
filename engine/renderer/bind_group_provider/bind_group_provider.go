package bind_group_provider

import (
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// Resource is everything attached at one binding of a provider. A buffer binding sets
// Buffer and BufferSize; a texture binding sets View and, when the provider owns the
// texture, Texture; a sampler binding sets Sampler.
type Resource struct {
	Buffer     *wgpu.Buffer
	BufferSize uint64
	Texture    *wgpu.Texture
	View       *wgpu.TextureView
	Sampler    *wgpu.Sampler
}

func (r *Resource) release() {
	if r.View != nil {
		r.View.Release()
	}
	if r.Texture != nil {
		r.Texture.Release()
	}
	if r.Sampler != nil {
		r.Sampler.Release()
	}
	if r.Buffer != nil {
		r.Buffer.Release()
	}
	*r = Resource{}
}

type bindGroupProvider struct {
	label string
	group int

	// GPU objects below are created by the renderer, never by the caller.
	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	bindings        map[int]*Resource
}

// BindGroupProvider owns the GPU resources behind one bind group and the bind group built
// from them.
//
// Usage pattern:
//  1. A component creates a provider with a label and the group index it binds at
//  2. The renderer attaches resources (InitBuffer, InitStorageTexture, InitSampler)
//  3. The renderer builds the bind group from a layout descriptor with InitBindGroup
//  4. Per-frame data goes through Renderer.WriteBuffers using Write
//  5. Dispatch and draw calls bind BindGroup() at Group()
type BindGroupProvider interface {
	// Label returns the debug label used for the GPU objects of this provider.
	Label() string

	// Group returns the bind group index this provider is bound at.
	Group() int

	// BindGroup returns the bind group, or nil before InitBindGroup.
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group was built with, or nil.
	BindGroupLayout() *wgpu.BindGroupLayout

	// Binding returns the resources attached at a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - Resource: a copy of the attached resources
	//   - bool: false when nothing was ever attached at binding
	Binding(binding int) (Resource, bool)

	// Bindings returns the attached binding indices in ascending order.
	Bindings() []int

	// Write describes a write of data into the buffer at binding.
	//
	// Parameters:
	//   - binding: the buffer binding index
	//   - offset: the byte offset into the buffer
	//   - data: the bytes to write
	//
	// Returns:
	//   - BufferWrite: the write, for Renderer.WriteBuffers
	Write(binding int, offset uint64, data []byte) BufferWrite

	SetBindGroup(bg *wgpu.BindGroup)
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer attaches a buffer of size bytes at binding. The provider owns it from then on.
	SetBuffer(binding int, buf *wgpu.Buffer, size uint64)

	// SetTexture attaches an owned texture at binding. Its view is attached separately.
	SetTexture(binding int, tex *wgpu.Texture)

	// SetTextureView attaches a view at binding. The provider owns the view but not the
	// texture it was created from unless SetTexture was also called.
	SetTextureView(binding int, tv *wgpu.TextureView)

	// SetSampler attaches an owned sampler at binding.
	SetSampler(binding int, s *wgpu.Sampler)

	// Release releases the bind group before the resources it references and detaches
	// every binding. Calling it again is a no-op.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider. It binds at group 0 unless WithGroup
// says otherwise.
//
// Parameters:
//   - label: the debug label used for the GPU objects created for this provider
//   - options: options to configure the provider
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:    label,
		bindings: make(map[int]*Resource),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Group() int {
	return p.group
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Binding(binding int) (Resource, bool) {
	r, ok := p.bindings[binding]
	if !ok {
		return Resource{}, false
	}
	return *r, true
}

func (p *bindGroupProvider) Bindings() []int {
	indices := make([]int, 0, len(p.bindings))
	for i := range p.bindings {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	return indices
}

func (p *bindGroupProvider) Write(binding int, offset uint64, data []byte) BufferWrite {
	return BufferWrite{Provider: p, Binding: binding, Offset: offset, Data: data}
}

// attach returns the resource record at binding, creating it on first use.
func (p *bindGroupProvider) attach(binding int) *Resource {
	if p.bindings == nil {
		p.bindings = make(map[int]*Resource)
	}
	r, ok := p.bindings[binding]
	if !ok {
		r = &Resource{}
		p.bindings[binding] = r
	}
	return r
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer, size uint64) {
	r := p.attach(binding)
	r.Buffer, r.BufferSize = buf, size
}

func (p *bindGroupProvider) SetTexture(binding int, tex *wgpu.Texture) {
	p.attach(binding).Texture = tex
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.attach(binding).View = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.attach(binding).Sampler = s
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	for i, r := range p.bindings {
		r.release()
		delete(p.bindings, i)
	}
}
