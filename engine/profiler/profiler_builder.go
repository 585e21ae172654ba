package profiler

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(p *Profiler)

// WithInterval sets how often aggregated stats are logged. Non-positive values are ignored.
//
// Parameters:
//   - d: the logging interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithRegistry registers the FPS gauge, frame counter and timing histograms with reg.
// Registration panics if reg already holds metrics with the same names.
//
// Parameters:
//   - reg: the Prometheus registerer
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithRegistry(reg prometheus.Registerer) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.registerer = reg
	}
}

// WithProfilerLogger replaces the profiler's component logger.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithProfilerLogger(logger *log.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logger = logger
	}
}
