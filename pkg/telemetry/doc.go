// Package telemetry groups Saturn's observability packages.
//
//   - logging: slog loggers carrying run context
//   - metrics: Prometheus collectors for runs, diagnostics, watch mode and history
//   - tracing: OpenTelemetry spans per run and per declaration body
//   - health: liveness and readiness probes served in watch mode
package telemetry
