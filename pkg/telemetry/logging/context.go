package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for resolution run IDs.
	RunIDKey contextKey = "run_id"

	// RuleFileKey is the context key for the rule file being resolved.
	RuleFileKey contextKey = "rule_file"

	// DeclarationKey is the context key for the declaration being walked.
	DeclarationKey contextKey = "declaration"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	return stringValue(ctx, RunIDKey)
}

// WithRuleFile adds a rule file path to the context.
func WithRuleFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, RuleFileKey, path)
}

// GetRuleFile retrieves the rule file path from the context.
func GetRuleFile(ctx context.Context) string {
	return stringValue(ctx, RuleFileKey)
}

// WithDeclaration adds a declaration name to the context.
func WithDeclaration(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, DeclarationKey, name)
}

// GetDeclaration retrieves the declaration name from the context.
func GetDeclaration(ctx context.Context) string {
	return stringValue(ctx, DeclarationKey)
}

// FromContext returns logger enriched with the fields stored in ctx. Use it
// for loggers not built by New, whose handler does not read the context.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// extractContextFields extracts the known fields from ctx in a fixed order.
func extractContextFields(ctx context.Context) []slog.Attr {
	var fields []slog.Attr
	for _, key := range []contextKey{RunIDKey, RuleFileKey, DeclarationKey} {
		if v := stringValue(ctx, key); v != "" {
			fields = append(fields, slog.String(string(key), v))
		}
	}
	return fields
}
