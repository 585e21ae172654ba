package scene

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-rt/common"
)

// StoragePacker serializes sphere lists into SpheresBuffer bytes. Large lists are split into
// chunks that are encoded on a persistent worker pool; the output is byte-identical to
// MarshalSpheres.
type StoragePacker interface {
	// Pack serializes spheres into a new buffer of SpheresBufferSize(len(spheres)) bytes.
	//
	// Parameters:
	//   - spheres: the spheres in scene order
	//
	// Returns:
	//   - []byte: the serialized SpheresBuffer
	Pack(spheres []Sphere) []byte

	// PackTo serializes spheres into dst and returns the written prefix. Panics if dst is too
	// small.
	//
	// Parameters:
	//   - dst: the destination buffer
	//   - spheres: the spheres in scene order
	//
	// Returns:
	//   - []byte: dst[:SpheresBufferSize(len(spheres))]
	PackTo(dst []byte, spheres []Sphere) []byte

	// Workers returns the configured worker count.
	//
	// Returns:
	//   - int: the number of pool workers
	Workers() int

	// ParallelThreshold returns the record count at or above which packing is split across
	// the pool.
	//
	// Returns:
	//   - int: the threshold in records
	ParallelThreshold() int

	// Release stops the worker pool. The packer falls back to serial encoding afterwards.
	Release()
}

type storagePacker struct {
	mu *sync.Mutex

	pool      worker.DynamicWorkerPool
	workers   int
	threshold int
	chunk     int
	released  bool
	nextTask  int
}

var _ StoragePacker = &storagePacker{}

// NewStoragePacker creates a StoragePacker backed by a dynamic worker pool of
// max(NumCPU-1, 1) workers. Lists of 4096 records or more are packed in parallel.
//
// Parameters:
//   - options: functional options to configure the packer
//
// Returns:
//   - StoragePacker: the newly created packer
func NewStoragePacker(options ...StoragePackerBuilderOption) StoragePacker {
	p := &storagePacker{
		mu:        &sync.Mutex{},
		workers:   max(runtime.NumCPU()-1, 1),
		threshold: 4096,
		chunk:     1024,
	}
	for _, option := range options {
		option(p)
	}

	// SubmitTask blocks once 256 chunks are queued.
	p.pool = worker.NewDynamicWorkerPool(p.workers, 256, 1*time.Second)
	return p
}

func (p *storagePacker) Pack(spheres []Sphere) []byte {
	buf := make([]byte, SpheresBufferSize(len(spheres)))
	return p.PackTo(buf, spheres)
}

func (p *storagePacker) PackTo(dst []byte, spheres []Sphere) []byte {
	size := SpheresBufferSize(len(spheres))

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released || len(spheres) < p.threshold || p.workers < 2 {
		MarshalSpheresTo(dst, spheres)
		return dst[:size]
	}

	checkLayout()
	common.MustFit(dst, size, "scene: spheres buffer")
	putHeader(dst, len(spheres))

	// A WaitGroup is the per-call barrier; pool.Wait only returns once every worker is idle,
	// which would also wait on unrelated submissions.
	var wg sync.WaitGroup
	for first := 0; first < len(spheres); first += p.chunk {
		last := min(first+p.chunk, len(spheres))
		part := spheres[first:last]
		start := first
		wg.Add(1)
		p.pool.SubmitTask(worker.Task{
			ID: p.nextTask,
			Do: func() (any, error) {
				defer wg.Done()
				marshalRecords(dst, part, start)
				return nil, nil
			},
		})
		p.nextTask++
	}
	wg.Wait()
	return dst[:size]
}

func (p *storagePacker) Workers() int {
	return p.workers
}

func (p *storagePacker) ParallelThreshold() int {
	return p.threshold
}

func (p *storagePacker) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return
	}
	p.released = true
	p.pool.Stop()
}
