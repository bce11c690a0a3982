// Package metrics provides Prometheus metrics for shape builds.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Collector records build and cache activity. A nil *Collector is valid and
// records nothing.
type Collector struct {
	BuildsTotal   *prometheus.CounterVec
	CacheHits     *prometheus.CounterVec
	BuildDuration *prometheus.HistogramVec
	KernelCalls   *prometheus.CounterVec
}

// NewCollector registers the paracore metrics on reg. It panics if they are
// already registered there.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		BuildsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paracore_builds_total",
				Help: "Total number of shape builds that reached the kernel",
			},
			[]string{"family", "result"},
		),
		CacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paracore_cache_hits_total",
				Help: "Total number of solid requests served from the build cache",
			},
			[]string{"family"},
		),
		BuildDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paracore_build_duration_seconds",
				Help:    "Time taken to build a shape's solid",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"family"},
		),
		KernelCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paracore_kernel_calls_total",
				Help: "Total number of geometry kernel operations",
			},
			[]string{"op"},
		),
	}
}

// ObserveBuild records one build of a shape family.
func (c *Collector) ObserveBuild(family string, d time.Duration, err error) {
	if c == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	c.BuildsTotal.WithLabelValues(family, result).Inc()
	c.BuildDuration.WithLabelValues(family).Observe(d.Seconds())
}

// CacheHit records a solid served without rebuilding.
func (c *Collector) CacheHit(family string) {
	if c == nil {
		return
	}
	c.CacheHits.WithLabelValues(family).Inc()
}

// KernelCall records one kernel operation.
func (c *Collector) KernelCall(op string) {
	if c == nil {
		return
	}
	c.KernelCalls.WithLabelValues(op).Inc()
}
