package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/saturn/pkg/config"
)

// HistoryMetrics tracks run history storage.
//
// Metrics:
//   - saturn_history_writes_total: stored runs by result (ok, error)
//   - saturn_history_pruned_total: runs removed by retention
type HistoryMetrics struct {
	writes *prometheus.CounterVec
	pruned prometheus.Counter
}

// NewHistoryMetrics creates and registers history metrics.
func NewHistoryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HistoryMetrics {
	hm := &HistoryMetrics{
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "history",
				Name:      "writes_total",
				Help:      "Total number of runs written to history",
			},
			[]string{"result"},
		),
		pruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "history",
				Name:      "pruned_total",
				Help:      "Total number of runs removed by retention",
			},
		),
	}
	registry.MustRegister(hm.writes, hm.pruned)
	return hm
}

// RecordWrite records a history write.
func (hm *HistoryMetrics) RecordWrite(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	hm.writes.WithLabelValues(result).Inc()
}

// RecordPruned adds n pruned runs.
func (hm *HistoryMetrics) RecordPruned(n int64) {
	hm.pruned.Add(float64(n))
}
