// Package metrics records render pass counters and exports them in the
// Prometheus text format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons.
const (
	ReasonCached = "cached"
	ReasonQuota  = "quota"
)

// Recorder holds the counters of one process. Each Recorder owns its
// registry, so tests and passes never collide on global state.
type Recorder struct {
	registry *prometheus.Registry

	rendered  prometheus.Counter
	skipped   *prometheus.CounterVec
	failed    prometheus.Counter
	quotaUsed *prometheus.GaugeVec
	duration  *prometheus.HistogramVec
	cacheSize prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		rendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "combogen_combos_rendered_total",
			Help: "Combos composited and written during the pass",
		}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "combogen_combos_skipped_total",
			Help: "Combos not rendered, by reason",
		}, []string{"reason"}),
		failed: factory.NewCounter(prometheus.CounterOpts{
			Name: "combogen_render_failures_total",
			Help: "Render attempts whose output could not be written",
		}),
		quotaUsed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "combogen_layer_quota_used",
			Help: "Accepted combos that used a rarity-constrained layer",
		}, []string{"layer"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "combogen_phase_duration_seconds",
			Help:    "Duration of render pass phases",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		}, []string{"phase"}),
		cacheSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "combogen_cache_entries",
			Help: "Entries in the combo cache after the pass",
		}),
	}
}

// Rendered counts a written combo.
func (r *Recorder) Rendered() { r.rendered.Inc() }

// Skipped counts a combo skipped for reason.
func (r *Recorder) Skipped(reason string) { r.skipped.WithLabelValues(reason).Inc() }

// Failed counts a render attempt that could not be written.
func (r *Recorder) Failed() { r.failed.Inc() }

// QuotaUsed records the count of a constrained layer.
func (r *Recorder) QuotaUsed(layer string, n int) {
	r.quotaUsed.WithLabelValues(layer).Set(float64(n))
}

// ObservePhase records how long a pass phase took.
func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	r.duration.WithLabelValues(phase).Observe(d.Seconds())
}

// CacheSize records the number of cache entries.
func (r *Recorder) CacheSize(n int) { r.cacheSize.Set(float64(n)) }

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes every metric to path in the text exposition format,
// suitable for the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
