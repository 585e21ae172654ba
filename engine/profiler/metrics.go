package profiler

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// frameBuckets spans 0.25ms to 128ms.
var frameBuckets = prometheus.ExponentialBuckets(0.25, 2, 10)

type metrics struct {
	fps      prometheus.Gauge
	frames   prometheus.Counter
	renderMs prometheus.Histogram
	fixedMs  prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		fps: factory.NewGauge(prometheus.GaugeOpts{
			Name: "oxy_rt_fps",
			Help: "Frames per second derived from the latest frame delta",
		}),
		frames: factory.NewCounter(prometheus.CounterOpts{
			Name: "oxy_rt_frames_total",
			Help: "Frames recorded by the profiler",
		}),
		renderMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "oxy_rt_render_ms",
			Help:    "Frame pipeline Render duration in milliseconds",
			Buckets: frameBuckets,
		}),
		fixedMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "oxy_rt_fixed_update_ms",
			Help:    "Fixed simulation tick duration in milliseconds",
			Buckets: frameBuckets,
		}),
	}
}

func (m *metrics) observe(s Sample) {
	m.frames.Inc()
	if s.Delta > 0 {
		m.fps.Set(1 / s.Delta.Seconds())
	}
	m.renderMs.Observe(durationMs(s.Render))
	m.fixedMs.Observe(durationMs(s.Fixed))
}

// NewMetricsServer returns an HTTP server exposing g on /metrics. The caller starts it.
//
// Parameters:
//   - addr: the listen address, e.g. ":9090"
//   - g: the registry to expose
//
// Returns:
//   - *http.Server: the unstarted server
func NewMetricsServer(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
}
