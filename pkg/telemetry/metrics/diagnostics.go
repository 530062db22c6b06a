package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	brlerrors "mercator-hq/saturn/pkg/brl/errors"
	"mercator-hq/saturn/pkg/config"
)

// DiagnosticMetrics counts diagnostics. Label cardinality is bounded by the
// status code taxonomy.
//
// Metrics:
//   - saturn_resolver_diagnostics_total: diagnostics by code and category
type DiagnosticMetrics struct {
	total *prometheus.CounterVec
}

// NewDiagnosticMetrics creates and registers diagnostic metrics.
func NewDiagnosticMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DiagnosticMetrics {
	dm := &DiagnosticMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "resolver",
				Name:      "diagnostics_total",
				Help:      "Total number of diagnostics reported, by status code",
			},
			[]string{"code", "category"},
		),
	}
	registry.MustRegister(dm.total)
	return dm
}

// Record adds n diagnostics with the given code.
func (dm *DiagnosticMetrics) Record(code brlerrors.Code, n int) {
	dm.total.WithLabelValues(string(code), string(code.Category())).Add(float64(n))
}
