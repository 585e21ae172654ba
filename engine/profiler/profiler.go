package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
)

// Sample is what one frame reports to the profiler.
type Sample struct {
	// Delta is the wall time since the previous frame.
	Delta time.Duration
	// Render is the duration of the frame pipeline's Render call.
	Render time.Duration
	// Fixed is the duration of the most recent fixed simulation tick.
	Fixed time.Duration
}

// Stats is the aggregate of the frames recorded during one interval.
type Stats struct {
	Frames      int
	FPS         float64
	AvgRenderMs float64
	MaxRenderMs float64
	AvgFixedMs  float64
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks frame rate, frame pipeline time and memory statistics.
// Outputs stats to the log at a configurable interval and, when given a registry, keeps
// Prometheus metrics current every frame.
type Profiler struct {
	mu sync.Mutex

	frameCount  int
	renderTotal time.Duration
	renderMax   time.Duration
	fixedTotal  time.Duration

	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats

	registerer prometheus.Registerer
	metrics    *metrics
	logger     *log.Logger
	now        func() time.Time
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, option := range options {
		option(p)
	}
	if p.logger == nil {
		p.logger = common.NewLogger("profiler")
	}
	if p.registerer != nil {
		p.metrics = newMetrics(p.registerer)
	}
	p.lastTime = p.now()
	return p
}

// Record should be called once per frame with that frame's timings.
// Logs performance statistics when the update interval has elapsed.
//
// Parameters:
//   - s: the frame's sample
//
// Returns:
//   - Stats: the aggregate of the interval that just closed, zero when none did
//   - bool: true if stats were logged this frame, false otherwise
func (p *Profiler) Record(s Sample) (Stats, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	p.renderTotal += s.Render
	p.renderMax = max(p.renderMax, s.Render)
	p.fixedTotal += s.Fixed
	if p.metrics != nil {
		p.metrics.observe(s)
	}

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	stats := p.aggregate(elapsed)
	p.logger.Info("frame stats",
		"fps", round2(stats.FPS),
		"render_ms", round2(stats.AvgRenderMs),
		"render_max_ms", round2(stats.MaxRenderMs),
		"fixed_ms", round2(stats.AvgFixedMs),
		"heap_mb", round2(stats.HeapMB),
		"alloc_rate_mb", round2(stats.AllocRateMB),
		"gc", stats.GCCount,
		"gc_last_us", stats.LastPauseUs,
		"gc_max_us", stats.MaxPauseUs,
		"sys_mb", round2(stats.SysMB),
	)

	p.frameCount = 0
	p.renderTotal, p.renderMax, p.fixedTotal = 0, 0, 0
	p.lastTime = currentTime
	p.last = stats
	return stats, true
}

// aggregate must be called with p.mu held.
func (p *Profiler) aggregate(elapsed time.Duration) Stats {
	frames := float64(p.frameCount)
	stats := Stats{
		Frames:      p.frameCount,
		FPS:         frames / elapsed.Seconds(),
		AvgRenderMs: durationMs(p.renderTotal) / frames,
		MaxRenderMs: durationMs(p.renderMax),
		AvgFixedMs:  durationMs(p.fixedTotal) / frames,
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap; TotalAlloc only grows and tracks churn; Sys is the process footprint.
	stats.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	stats.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	stats.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	stats.GCCount = gcCount
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		stats.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			stats.MaxPauseUs = max(stats.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return stats
}

// Last returns the stats of the most recently closed interval.
//
// Returns:
//   - Stats: the last logged aggregate
func (p *Profiler) Last() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
