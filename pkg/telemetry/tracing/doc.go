// Package tracing exports OpenTelemetry spans for resolution runs.
//
// Each run gets a saturn.resolve span and, through the resolver Observer
// hook, one saturn.resolve.body child span per declaration body walked.
// Body spans carry the declaration name and kind and the number of
// diagnostics the walk produced. Spans are exported over OTLP gRPC.
//
// Sampling strategies:
//   - always: every run
//   - never: no run
//   - ratio: a fraction of runs, chosen by trace ID
//
// When tracing is disabled New returns a noop tracer.
package tracing
