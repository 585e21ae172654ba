package renderer

import (
	"fmt"
	"io"
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

type bufferInit struct {
	label    string
	binding  int
	size     uint64
	usage    wgpu.BufferUsage
	contents []byte
}

type bufferWrite struct {
	label string
	data  []byte
}

type dispatchCall struct {
	key        string
	groups     []int
	labels     []string
	workgroups [3]uint32
}

type drawCall struct {
	key         string
	vertexCount uint32
	groups      []int
}

// fakeBackend records what the renderer asks of the GPU. Resources are nil pointers; only
// their presence on providers is tracked.
type fakeBackend struct {
	mu sync.Mutex

	fail map[string]error

	surfaceSizes     [][2]int
	presentMode      PresentMode
	computePipelines []string
	renderPipelines  []string
	textures         []common.StorageTextureStagingData
	buffers          []bufferInit
	writes           []bufferWrite
	dispatches       []dispatchCall
	draws            []drawCall
	released         []string
	waits            []wgpu.SubmissionIndex
	submissions      wgpu.SubmissionIndex
	computeOpen      bool
	frameOpen        bool
	passOpen         bool
	presents         int
	discards         int
	backendReleased  bool
}

var _ RendererBackend = &fakeBackend{}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{fail: make(map[string]error)}
}

func (f *fakeBackend) failWith(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = fmt.Errorf("fake %s failure", op)
}

func (f *fakeBackend) clearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = make(map[string]error)
}

func (f *fakeBackend) ConfigureSurface(width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.surfaceSizes = append(f.surfaceSizes, [2]int{width, height})
}

func (f *fakeBackend) SetPresentMode(mode PresentMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presentMode = mode
}

func (f *fakeBackend) RegisterComputePipeline(p pipeline.Pipeline) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["RegisterComputePipeline"]; err != nil {
		return err
	}
	f.computePipelines = append(f.computePipelines, p.PipelineKey())
	return nil
}

func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["RegisterRenderPipeline"]; err != nil {
		return err
	}
	f.renderPipelines = append(f.renderPipelines, p.PipelineKey())
	return nil
}

func (f *fakeBackend) InitStorageTexture(provider bind_group_provider.BindGroupProvider, binding int, data common.StorageTextureStagingData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["InitStorageTexture"]; err != nil {
		return err
	}
	f.textures = append(f.textures, data)
	provider.SetTexture(binding, nil)
	provider.SetTextureView(binding, nil)
	return nil
}

func (f *fakeBackend) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, texture *wgpu.Texture) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["InitTextureView"]; err != nil {
		return err
	}
	provider.SetTextureView(binding, nil)
	return nil
}

func (f *fakeBackend) InitBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64, usage wgpu.BufferUsage, contents []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["InitBuffer"]; err != nil {
		return err
	}
	if uint64(len(contents)) > size {
		return fmt.Errorf("%d bytes do not fit %d", len(contents), size)
	}
	f.buffers = append(f.buffers, bufferInit{
		label:    provider.Label(),
		binding:  binding,
		size:     size,
		usage:    usage,
		contents: append([]byte(nil), contents...),
	})
	provider.SetBuffer(binding, nil, size)
	return nil
}

func (f *fakeBackend) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, data common.SamplerStagingData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["InitSampler"]; err != nil {
		return err
	}
	provider.SetSampler(binding, nil)
	return nil
}

func (f *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["InitBindGroup"]; err != nil {
		return err
	}
	for _, e := range descriptor.Entries {
		if _, ok := provider.Binding(int(e.Binding)); !ok {
			return fmt.Errorf("%s binding %d has no resource", provider.Label(), e.Binding)
		}
	}
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range writes {
		f.writes = append(f.writes, bufferWrite{label: w.Provider.Label(), data: append([]byte(nil), w.Data...)})
	}
}

func (f *fakeBackend) BeginComputeFrame() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["BeginComputeFrame"]; err != nil {
		return err
	}
	if f.computeOpen {
		return fmt.Errorf("compute frame already open")
	}
	f.computeOpen = true
	return nil
}

func (f *fakeBackend) DispatchCompute(p pipeline.Pipeline, providers []bind_group_provider.BindGroupProvider, workgroups [3]uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["DispatchCompute"]; err != nil {
		return err
	}
	call := dispatchCall{key: p.PipelineKey(), workgroups: workgroups}
	for _, provider := range providers {
		call.groups = append(call.groups, provider.Group())
		call.labels = append(call.labels, provider.Label())
	}
	f.dispatches = append(f.dispatches, call)
	return nil
}

func (f *fakeBackend) EndComputeFrame() (wgpu.SubmissionIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.computeOpen {
		return 0, fmt.Errorf("no compute frame open")
	}
	f.computeOpen = false
	f.submissions++
	return f.submissions, nil
}

func (f *fakeBackend) WaitForSubmission(index wgpu.SubmissionIndex) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits = append(f.waits, index)
	return nil
}

func (f *fakeBackend) BeginFrame() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frameOpen {
		return fmt.Errorf("previous frame surface not yet presented")
	}
	f.frameOpen = true
	f.passOpen = true
	return nil
}

func (f *fakeBackend) Draw(p pipeline.Pipeline, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := drawCall{key: p.PipelineKey(), vertexCount: vertexCount}
	for _, bg := range bindGroups {
		call.groups = append(call.groups, bg.Group())
	}
	f.draws = append(f.draws, call)
	return nil
}

func (f *fakeBackend) EndFrame() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.passOpen {
		return fmt.Errorf("no frame in progress")
	}
	f.passOpen = false
	return nil
}

func (f *fakeBackend) Present() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.frameOpen {
		return
	}
	f.frameOpen = false
	f.presents++
}

func (f *fakeBackend) DiscardFrame() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.frameOpen {
		return
	}
	f.frameOpen = false
	f.passOpen = false
	f.discards++
}

func (f *fakeBackend) ReleaseProvider(provider bind_group_provider.BindGroupProvider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, provider.Label())
	provider.Release()
}

func (f *fakeBackend) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backendReleased = true
}

func (f *fakeBackend) countReleased(label string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.released {
		if l == label {
			n++
		}
	}
	return n
}

func (f *fakeBackend) lastWrite(label string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.writes) - 1; i >= 0; i-- {
		if f.writes[i].label == label {
			return f.writes[i].data, true
		}
	}
	return nil, false
}

func (f *fakeBackend) buffersLabeled(label string) []bufferInit {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bufferInit
	for _, b := range f.buffers {
		if b.label == label {
			out = append(out, b)
		}
	}
	return out
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// newTestRenderer builds a renderer over a fake backend with an 800x600 surface.
func newTestRenderer(options ...RendererBuilderOption) (*renderer, *fakeBackend) {
	fake := newFakeBackend()
	r := newRenderer(BackendTypeWGPU, append([]RendererBuilderOption{WithRendererLogger(quietLogger())}, options...)...)
	r.attach(fake, 800, 600)
	return r, fake
}
