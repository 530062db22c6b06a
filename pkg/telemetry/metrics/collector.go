package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	brlerrors "mercator-hq/saturn/pkg/brl/errors"
	"mercator-hq/saturn/pkg/config"
)

// Run outcomes.
const (
	OutcomeClean       = "clean"       // resolved without diagnostics
	OutcomeDiagnostics = "diagnostics" // resolved with diagnostics
	OutcomeFailed      = "failed"      // could not be parsed or was cancelled
)

// Collector owns every Saturn metric and the registry they are registered
// with. All Record methods are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	resolution  *ResolutionMetrics
	diagnostics *DiagnosticMetrics
	watcher     *WatcherMetrics
	history     *HistoryMetrics
	git         *GitMetrics
}

// NewCollector creates a collector. If registry is nil a fresh registry is
// used, so several collectors can coexist in tests.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "saturn"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets
	}

	return &Collector{
		config:      cfg,
		registry:    registry,
		resolution:  NewResolutionMetrics(cfg, registry),
		diagnostics: NewDiagnosticMetrics(cfg, registry),
		watcher:     NewWatcherMetrics(cfg, registry),
		history:     NewHistoryMetrics(cfg, registry),
		git:         NewGitMetrics(cfg, registry),
	}
}

// Enabled reports whether metrics are recorded.
func (c *Collector) Enabled() bool { return c.config.Enabled }

// Registry returns the registry metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// RecordRun records a finished resolution run.
func (c *Collector) RecordRun(outcome string, duration time.Duration, resolved, skipped int) {
	if !c.config.Enabled {
		return
	}
	c.resolution.RecordRun(outcome, duration, resolved, skipped)
}

// RecordDiagnostics counts every diagnostic in errs by status code.
func (c *Collector) RecordDiagnostics(errs *brlerrors.ErrorList) {
	if !c.config.Enabled || errs == nil {
		return
	}
	for code, n := range errs.CountByCode() {
		c.diagnostics.Record(code, n)
	}
}

// RecordReload records a watcher-triggered re-resolution.
func (c *Collector) RecordReload(outcome string) {
	if !c.config.Enabled {
		return
	}
	c.watcher.RecordReload(outcome)
}

// SetWatchedFiles sets the number of rule files being watched.
func (c *Collector) SetWatchedFiles(n int) {
	if !c.config.Enabled {
		return
	}
	c.watcher.SetWatchedFiles(n)
}

// RecordHistoryWrite records a run stored in history.
func (c *Collector) RecordHistoryWrite(err error) {
	if !c.config.Enabled {
		return
	}
	c.history.RecordWrite(err)
}

// RecordPruned records runs removed by retention.
func (c *Collector) RecordPruned(n int64) {
	if !c.config.Enabled {
		return
	}
	c.history.RecordPruned(n)
}

// RecordGitPull records a rule repository pull. changed reports whether the
// pull moved HEAD.
func (c *Collector) RecordGitPull(changed bool, err error) {
	if !c.config.Enabled {
		return
	}
	switch {
	case err != nil:
		c.git.RecordPull(PullError)
	case changed:
		c.git.RecordPull(PullChanged)
	default:
		c.git.RecordPull(PullUnchanged)
	}
}
