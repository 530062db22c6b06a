package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/saturn/pkg/config"
)

// ResolutionMetrics tracks resolution runs.
//
// Metrics:
//   - saturn_resolver_runs_total: runs by outcome
//   - saturn_resolver_run_duration_seconds: run duration by outcome
//   - saturn_resolver_declarations_total: declarations by outcome (resolved, skipped)
type ResolutionMetrics struct {
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	declarations *prometheus.CounterVec
}

// NewResolutionMetrics creates and registers resolution metrics.
func NewResolutionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ResolutionMetrics {
	rm := &ResolutionMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "resolver",
				Name:      "runs_total",
				Help:      "Total number of rule file resolution runs",
			},
			[]string{"outcome"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "resolver",
				Name:      "run_duration_seconds",
				Help:      "Duration of rule file resolution in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"outcome"},
		),

		declarations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "resolver",
				Name:      "declarations_total",
				Help:      "Total number of declarations processed",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(rm.runsTotal, rm.runDuration, rm.declarations)
	return rm
}

// RecordRun records one run.
func (rm *ResolutionMetrics) RecordRun(outcome string, duration time.Duration, resolved, skipped int) {
	rm.runsTotal.WithLabelValues(outcome).Inc()
	rm.runDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	rm.declarations.WithLabelValues("resolved").Add(float64(resolved))
	rm.declarations.WithLabelValues("skipped").Add(float64(skipped))
}
