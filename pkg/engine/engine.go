package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/brl"
	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
	"mercator-hq/saturn/pkg/brl/parser"
	"mercator-hq/saturn/pkg/brl/resolver"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/history"
	"mercator-hq/saturn/pkg/operators"
	"mercator-hq/saturn/pkg/telemetry/logging"
	"mercator-hq/saturn/pkg/telemetry/metrics"
	"mercator-hq/saturn/pkg/telemetry/tracing"
)

// Engine parses and resolves rule files against one model and one set of
// operator catalogues. It records every run in metrics, traces and history
// when those are configured. An Engine is safe for concurrent use as long
// as each call resolves a different file.
type Engine struct {
	models     resolver.ModelService
	catalogues operators.Catalogues
	parser     *parser.Parser
	cleanup    bool

	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	history history.Storage
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics records runs in collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = collector }
}

// WithTracer opens spans for runs and declaration bodies.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithHistory stores every run in storage.
func WithHistory(storage history.Storage) Option {
	return func(e *Engine) { e.history = storage }
}

// WithParser replaces the default parser.
func WithParser(p *parser.Parser) Option {
	return func(e *Engine) { e.parser = p }
}

// WithCleanup toggles the resolver's back-reference cleanup pass.
func WithCleanup(enabled bool) Option {
	return func(e *Engine) { e.cleanup = enabled }
}

// New creates an engine.
func New(models resolver.ModelService, catalogues operators.Catalogues, opts ...Option) *Engine {
	e := &Engine{
		models:     models,
		catalogues: catalogues,
		parser:     parser.NewParser(),
		cleanup:    true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tracer == nil {
		e.tracer, _ = tracing.New(&config.TracingConfig{})
	}
	return e
}

// NewFromConfig loads the model and operator catalogues named in cfg and
// creates an engine using cfg's parser limits and resolver settings.
// Options are applied after the configured ones.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Engine, error) {
	m, catalogues, err := brl.LoadEnvironment(cfg.Model.Path, cfg.Operators.Catalogues)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	p := parser.NewParser()
	if cfg.Rules.MaxFileSize > 0 {
		p = p.WithMaxFileSize(cfg.Rules.MaxFileSize)
	}
	if cfg.Rules.MaxDepth > 0 {
		p = p.WithMaxDepth(cfg.Rules.MaxDepth)
	}

	base := []Option{
		WithParser(p),
		WithCleanup(!cfg.Resolver.DisableCleanup),
	}
	return New(m, catalogues, append(base, opts...)...), nil
}

// Report is the outcome of resolving one rule file.
type Report struct {
	RunID    uuid.UUID
	File     string
	Outcome  string
	Duration time.Duration

	// Tree is the resolved rule tree, nil when the file failed to parse.
	Tree *ast.RuleFile

	// Diagnostics holds parse errors or resolver diagnostics.
	Diagnostics *brlerrors.ErrorList

	Declarations int
	Resolved     int
	Skipped      int
}

// OK reports whether the run produced no diagnostics.
func (r *Report) OK() bool {
	return r.Outcome == history.OutcomeClean
}

// ResolveFile parses and resolves the rule file at path. Problems in the
// file are reported in the Report; the error is non-nil only when ctx is
// cancelled.
func (e *Engine) ResolveFile(ctx context.Context, path string) (*Report, error) {
	return e.run(ctx, path, func() (*ast.RuleFile, error) {
		return e.parser.Parse(path)
	})
}

// ResolveBytes is ResolveFile for an in-memory rule file named source.
func (e *Engine) ResolveBytes(ctx context.Context, data []byte, source string) (*Report, error) {
	return e.run(ctx, source, func() (*ast.RuleFile, error) {
		return e.parser.ParseBytes(data, source)
	})
}

// ResolveFiles resolves each file in order and stops at the first
// cancellation.
func (e *Engine) ResolveFiles(ctx context.Context, paths []string) ([]*Report, error) {
	reports := make([]*Report, 0, len(paths))
	for _, path := range paths {
		report, err := e.ResolveFile(ctx, path)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (e *Engine) run(ctx context.Context, file string, parse func() (*ast.RuleFile, error)) (*Report, error) {
	started := time.Now()
	run := history.NewRun(file, started)

	ctx = logging.WithRunID(ctx, run.ID.String())
	ctx = logging.WithRuleFile(ctx, file)
	logger := logging.FromContext(ctx, e.logger)

	ctx, span := e.tracer.StartRun(ctx, run.ID.String(), file)
	defer span.End()

	report := &Report{RunID: run.ID, File: file, Diagnostics: brlerrors.NewErrorList()}

	var runErr error
	tree, err := parse()
	if err != nil {
		if !collectParseErrors(err, report.Diagnostics) {
			tracing.SetError(span, err)
			return nil, err
		}
		report.Outcome = history.OutcomeFailed
		run.Failure = err.Error()
	} else {
		runErr = e.resolve(ctx, tree, report, logger)
	}

	if runErr != nil {
		report.Outcome = history.OutcomeFailed
		run.Failure = runErr.Error()
		tracing.SetError(span, runErr)
	}
	report.Duration = time.Since(started)

	run.Duration = report.Duration
	run.Declarations = report.Declarations
	run.Resolved = report.Resolved
	run.Skipped = report.Skipped
	run.Outcome = report.Outcome
	run.AddDiagnostics(report.Diagnostics)

	e.record(ctx, run, report, logger)
	tracing.SetOutcomeAttributes(span, report.Resolved, report.Skipped)
	tracing.SetDiagnosticAttributes(span, report.Diagnostics)
	return report, runErr
}

func (e *Engine) resolve(ctx context.Context, tree *ast.RuleFile, report *Report, logger *slog.Logger) error {
	report.Tree = tree
	report.Declarations = len(tree.Declarations)

	opts := []resolver.Option{
		resolver.WithLogger(logger),
		resolver.WithCleanup(e.cleanup),
		resolver.WithObserver(&observer{tracer: e.tracer, logger: e.logger}),
	}
	result, err := resolver.New(e.models, e.catalogues, opts...).Resolve(ctx, tree)
	if result != nil {
		report.Resolved = result.Resolved
		report.Skipped = result.Skipped
		report.Diagnostics.Merge(result.Errors)
	}
	if err != nil {
		return err
	}

	report.Outcome = history.OutcomeClean
	if report.Diagnostics.HasErrors() {
		report.Outcome = history.OutcomeDiagnostics
	}
	return nil
}

func (e *Engine) record(ctx context.Context, run *history.Run, report *Report, logger *slog.Logger) {
	if e.metrics != nil {
		e.metrics.RecordRun(report.Outcome, report.Duration, report.Resolved, report.Skipped)
		e.metrics.RecordDiagnostics(report.Diagnostics)
	}

	if e.history != nil {
		// Store even when the caller's context is already done.
		err := e.history.Store(context.WithoutCancel(ctx), run)
		if e.metrics != nil {
			e.metrics.RecordHistoryWrite(err)
		}
		if err != nil {
			logger.Warn("failed to store run", "error", err)
		}
	}

	logger.Info("rule file resolved",
		"outcome", report.Outcome,
		"declarations", report.Declarations,
		"resolved", report.Resolved,
		"skipped", report.Skipped,
		"diagnostics", report.Diagnostics.Count(),
		"duration_ms", report.Duration.Milliseconds(),
	)
}

// collectParseErrors moves parser errors into diagnostics. It returns false
// for errors the parser does not produce itself.
func collectParseErrors(err error, diagnostics *brlerrors.ErrorList) bool {
	var list *brlerrors.ErrorList
	if errors.As(err, &list) {
		diagnostics.Merge(list)
		return true
	}
	var single *brlerrors.Error
	if errors.As(err, &single) {
		diagnostics.Add(single)
		return true
	}
	return false
}
