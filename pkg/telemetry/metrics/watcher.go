package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/saturn/pkg/config"
)

// WatcherMetrics tracks watch mode.
//
// Metrics:
//   - saturn_watcher_reloads_total: re-resolutions triggered by file changes, by outcome
//   - saturn_watcher_files: rule files currently watched
type WatcherMetrics struct {
	reloads *prometheus.CounterVec
	files   prometheus.Gauge
}

// NewWatcherMetrics creates and registers watcher metrics.
func NewWatcherMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *WatcherMetrics {
	wm := &WatcherMetrics{
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "watcher",
				Name:      "reloads_total",
				Help:      "Total number of re-resolutions triggered by rule file changes",
			},
			[]string{"outcome"},
		),
		files: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "watcher",
				Name:      "files",
				Help:      "Number of rule files currently watched",
			},
		),
	}
	registry.MustRegister(wm.reloads, wm.files)
	return wm
}

// RecordReload records a reload.
func (wm *WatcherMetrics) RecordReload(outcome string) {
	wm.reloads.WithLabelValues(outcome).Inc()
}

// SetWatchedFiles sets the watched file gauge.
func (wm *WatcherMetrics) SetWatchedFiles(n int) {
	wm.files.Set(float64(n))
}
