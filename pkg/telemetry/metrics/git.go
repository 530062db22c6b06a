package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/saturn/pkg/config"
)

// Git pull results.
const (
	PullUnchanged = "unchanged"
	PullChanged   = "changed"
	PullError     = "error"
)

// GitMetrics tracks rule repository pulls.
//
// Metrics:
//   - saturn_git_pulls_total: pulls by result (unchanged, changed, error)
type GitMetrics struct {
	pulls *prometheus.CounterVec
}

// NewGitMetrics creates and registers git metrics.
func NewGitMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *GitMetrics {
	gm := &GitMetrics{
		pulls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "git",
				Name:      "pulls_total",
				Help:      "Total number of rule repository pulls",
			},
			[]string{"result"},
		),
	}
	registry.MustRegister(gm.pulls)
	return gm
}

// RecordPull records one pull.
func (gm *GitMetrics) RecordPull(result string) {
	gm.pulls.WithLabelValues(result).Inc()
}
