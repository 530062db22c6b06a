// Package metrics exposes Prometheus metrics for resolution runs.
//
// A Collector owns its own registry. Metrics are grouped by subsystem:
//
//	saturn_resolver_runs_total{outcome}
//	saturn_resolver_run_duration_seconds{outcome}
//	saturn_resolver_declarations_total{outcome}
//	saturn_resolver_diagnostics_total{code,category}
//	saturn_watcher_reloads_total{outcome}
//	saturn_watcher_files
//	saturn_history_writes_total{result}
//	saturn_history_pruned_total
//	saturn_git_pulls_total{result}
//
// In watch mode the registry is served over HTTP with Handler.
package metrics
