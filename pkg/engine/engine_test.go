package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	brlerrors "mercator-hq/saturn/pkg/brl/errors"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/history"
	"mercator-hq/saturn/pkg/history/storage"
	"mercator-hq/saturn/pkg/telemetry/logging"
	"mercator-hq/saturn/pkg/telemetry/metrics"
	"mercator-hq/saturn/pkg/telemetry/tracing"
)

const (
	modelPath     = "../../testdata/model.yaml"
	operatorsPath = "../../testdata/operators.yaml"
	tradeRules    = "../../testdata/rules/trade.yaml"
	brokenRules   = "../../testdata/rules/broken.yaml"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Model.Path = modelPath
	cfg.Operators.Catalogues = []string{operatorsPath}
	return cfg
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	e, err := NewFromConfig(testConfig(), opts...)
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	return e
}

// counterValue sums every series of the named counter family.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metric
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestResolveFile(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantOutcome string
		wantDecls   int
		wantSkipped int
		wantCodes   []brlerrors.Code
	}{
		{name: "clean", path: tradeRules, wantOutcome: history.OutcomeClean, wantDecls: 4},
		{
			name:        "diagnostics",
			path:        brokenRules,
			wantOutcome: history.OutcomeDiagnostics,
			wantDecls:   3,
			wantSkipped: 1,
			wantCodes:   []brlerrors.Code{brlerrors.CodeUnknownElementOrAttr, brlerrors.CodeContextUnknown, brlerrors.CodeOperatorUnknown},
		},
		{
			name:        "missing file",
			path:        "../../testdata/rules/missing.yaml",
			wantOutcome: history.OutcomeFailed,
			wantCodes:   []brlerrors.Code{brlerrors.CodeIO},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			report, err := e.ResolveFile(context.Background(), tt.path)
			if err != nil {
				t.Fatalf("ResolveFile() error = %v", err)
			}
			if report.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q\n%v", report.Outcome, tt.wantOutcome, report.Diagnostics)
			}
			if report.OK() != (tt.wantOutcome == history.OutcomeClean) {
				t.Errorf("OK() = %v", report.OK())
			}
			if report.Declarations != tt.wantDecls || report.Skipped != tt.wantSkipped {
				t.Errorf("declarations %d skipped %d, want %d %d",
					report.Declarations, report.Skipped, tt.wantDecls, tt.wantSkipped)
			}
			for _, code := range tt.wantCodes {
				if !report.Diagnostics.HasCode(code) {
					t.Errorf("missing %s diagnostic", code)
				}
			}
			if (report.Tree == nil) != (tt.wantOutcome == history.OutcomeFailed) {
				t.Errorf("Tree = %v for outcome %s", report.Tree, report.Outcome)
			}
		})
	}
}

func TestResolveBytesSyntaxError(t *testing.T) {
	e := newTestEngine(t)
	report, err := e.ResolveBytes(context.Background(), []byte("rules: [\n"), "inline.yaml")
	if err != nil {
		t.Fatalf("ResolveBytes() error = %v", err)
	}
	if report.Outcome != history.OutcomeFailed || !report.Diagnostics.HasCode(brlerrors.CodeSyntax) {
		t.Errorf("report = %+v, diagnostics %v", report, report.Diagnostics)
	}
}

func TestCancelledContext(t *testing.T) {
	store := storage.NewMemoryStorage()
	e := newTestEngine(t, WithHistory(store))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.ResolveFile(ctx, tradeRules)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ResolveFile() error = %v, want context.Canceled", err)
	}
	if report == nil || report.Outcome != history.OutcomeFailed {
		t.Fatalf("report = %+v", report)
	}

	run, err := store.Get(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("cancelled run not stored: %v", err)
	}
	if run.Failure == "" {
		t.Error("stored run has no failure message")
	}
}

func TestHistoryAndMetrics(t *testing.T) {
	store := storage.NewMemoryStorage()
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, registry)
	e := newTestEngine(t, WithHistory(store), WithMetrics(collector))
	ctx := context.Background()

	clean, err := e.ResolveFile(ctx, tradeRules)
	if err != nil {
		t.Fatal(err)
	}
	broken, err := e.ResolveFile(ctx, brokenRules)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := store.List(ctx, &history.Query{File: brokenRules})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != broken.RunID {
		t.Fatalf("stored runs for broken file = %+v", runs)
	}
	if len(runs[0].Diagnostics) != broken.Diagnostics.Count() || runs[0].Skipped != 1 {
		t.Errorf("stored run = %+v", runs[0])
	}
	if got, err := store.Get(ctx, clean.RunID); err != nil || got.Outcome != history.OutcomeClean {
		t.Errorf("clean run = %+v, %v", got, err)
	}

	tests := []struct {
		name   string
		metric string
		labels map[string]string
		want   float64
	}{
		{"clean runs", "test_resolver_runs_total", map[string]string{"outcome": "clean"}, 1},
		{"diagnostic runs", "test_resolver_runs_total", map[string]string{"outcome": "diagnostics"}, 1},
		{"skipped", "test_resolver_declarations_total", map[string]string{"outcome": "skipped"}, 1},
		{"operator diagnostics", "test_resolver_diagnostics_total", map[string]string{"code": "operator-unknown"}, 1},
		{"history writes", "test_history_writes_total", map[string]string{"result": "ok"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counterValue(t, registry, tt.metric, tt.labels); got != tt.want {
				t.Errorf("%s%v = %v, want %v", tt.metric, tt.labels, got, tt.want)
			}
		})
	}
}

func TestTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.New(&config.TracingConfig{Enabled: true}, tracing.WithExporter(exporter))
	if err != nil {
		t.Fatal(err)
	}
	defer tracer.Shutdown(context.Background())

	e := newTestEngine(t, WithTracer(tracer))
	report, err := e.ResolveFile(context.Background(), tradeRules)
	if err != nil {
		t.Fatal(err)
	}

	spans := exporter.GetSpans()
	var run *tracetest.SpanStub
	bodies := 0
	for i := range spans {
		switch spans[i].Name {
		case tracing.SpanRun:
			run = &spans[i]
		case tracing.SpanBody:
			bodies++
		}
	}
	if run == nil {
		t.Fatal("no run span exported")
	}
	if bodies != report.Resolved {
		t.Errorf("got %d body spans, want %d", bodies, report.Resolved)
	}
	for _, s := range spans {
		if s.Name == tracing.SpanBody && s.Parent.SpanID() != run.SpanContext.SpanID() {
			t.Errorf("body span %v not parented to the run span", s.Attributes)
		}
	}
}

func TestResolveFiles(t *testing.T) {
	e := newTestEngine(t)
	reports, err := e.ResolveFiles(context.Background(), []string{tradeRules, brokenRules})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 || !reports[0].OK() || reports[1].OK() {
		t.Errorf("reports = %+v", reports)
	}
	if reports[0].RunID == reports[1].RunID {
		t.Error("runs share an ID")
	}
}

func TestNewFromConfigErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Model.Path = "../../testdata/nope.yaml"
	if _, err := NewFromConfig(cfg); err == nil {
		t.Error("expected an error for a missing model")
	}
}
