package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
)

// Attribute keys. Saturn-specific keys use the "saturn." namespace.
const (
	AttrRunID       = "saturn.run_id"
	AttrRuleFile    = "saturn.rule_file"
	AttrDeclaration = "saturn.declaration"
	AttrDeclKind    = "saturn.declaration.kind"

	AttrDiagnostics = "saturn.diagnostics"
	AttrResolved    = "saturn.declarations.resolved"
	AttrSkipped     = "saturn.declarations.skipped"
	AttrFirstCode   = "saturn.diagnostics.first_code"
)

// DeclKind names the kind of a declaration for span attributes and logs.
func DeclKind(d ast.Decl) string {
	switch d := d.(type) {
	case *ast.ContextDecl:
		return string(d.Kind)
	case *ast.MultiContextDecl:
		return "fragment"
	case *ast.RuleSet:
		return "ruleset"
	case *ast.GlobalVar:
		return "global"
	default:
		return "unknown"
	}
}

// SetRunAttributes sets the identifying attributes of a resolution run.
func SetRunAttributes(span trace.Span, runID, file string) {
	span.SetAttributes(
		attribute.String(AttrRunID, runID),
		attribute.String(AttrRuleFile, file),
	)
}

// SetOutcomeAttributes records the declaration counts of a finished run.
func SetOutcomeAttributes(span trace.Span, resolved, skipped int) {
	span.SetAttributes(
		attribute.Int(AttrResolved, resolved),
		attribute.Int(AttrSkipped, skipped),
	)
}

// SetDiagnosticAttributes records how many diagnostics errs holds and the
// code of the first one.
func SetDiagnosticAttributes(span trace.Span, errs *brlerrors.ErrorList) {
	if errs == nil {
		span.SetAttributes(attribute.Int(AttrDiagnostics, 0))
		return
	}
	attrs := []attribute.KeyValue{attribute.Int(AttrDiagnostics, errs.Count())}
	if errs.HasErrors() {
		attrs = append(attrs, attribute.String(AttrFirstCode, string(errs.Errors[0].Code)))
	}
	span.SetAttributes(attrs...)
}

func declAttributes(d ast.Decl) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrDeclaration, d.DeclName()),
		attribute.String(AttrDeclKind, DeclKind(d)),
	}
}
