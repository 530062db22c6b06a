package brl

import (
	"context"
	"testing"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
	"mercator-hq/saturn/pkg/model"
)

const (
	modelPath     = "../../testdata/model.yaml"
	operatorsPath = "../../testdata/operators.yaml"
)

func TestParseAndResolve(t *testing.T) {
	m, cs, err := LoadEnvironment(modelPath, []string{operatorsPath})
	if err != nil {
		t.Fatalf("LoadEnvironment() error = %v", err)
	}

	t.Run("clean file", func(t *testing.T) {
		res, err := ParseAndResolve(context.Background(), "../../testdata/rules/trade.yaml", m, cs)
		if err != nil {
			t.Fatalf("ParseAndResolve() error = %v", err)
		}
		if res.Errors.HasErrors() {
			t.Fatalf("unexpected diagnostics:\n%v", res.Errors)
		}
		if res.Resolved != 4 || res.Skipped != 0 {
			t.Errorf("resolved %d, skipped %d; want 4, 0", res.Resolved, res.Skipped)
		}

		var unresolved []string
		ast.Inspect(res.File, func(n ast.Node) bool {
			if p, ok := n.(*ast.PathExpr); ok && !p.IsResolved() {
				unresolved = append(unresolved, p.String())
			}
			return true
		}, nil)
		if len(unresolved) > 0 {
			t.Errorf("unresolved paths: %v", unresolved)
		}

		closeDecl := res.File.ByName("closeTrade").(*ast.ContextDecl)
		if closeDecl.ContextElement.QualifiedName() != "trading::Trade" {
			t.Errorf("context = %s", closeDecl.ContextElement.QualifiedName())
		}
	})

	t.Run("diagnostics", func(t *testing.T) {
		res, err := ParseAndResolve(context.Background(), "../../testdata/rules/broken.yaml", m, cs)
		if err != nil {
			t.Fatalf("ParseAndResolve() error = %v", err)
		}
		for _, code := range []brlerrors.Code{
			brlerrors.CodeUnknownElementOrAttr,
			brlerrors.CodeContextUnknown,
			brlerrors.CodeOperatorUnknown,
		} {
			if !res.Errors.HasCode(code) {
				t.Errorf("missing %s in:\n%v", code, res.Errors)
			}
		}
		if res.Skipped != 1 {
			t.Errorf("Skipped = %d, want 1", res.Skipped)
		}
		for _, e := range res.Errors.ByCode(brlerrors.CodeContextUnknown) {
			if e.Suggestion != "Did you mean 'Trade'?" {
				t.Errorf("suggestion = %q", e.Suggestion)
			}
		}
	})

	t.Run("parse failure", func(t *testing.T) {
		_, err := ParseAndResolve(context.Background(), "../../testdata/rules/missing.yaml", m, cs)
		if e, ok := err.(*brlerrors.Error); !ok || e.Code != brlerrors.CodeIO {
			t.Errorf("error = %v, want io error", err)
		}
	})
}

func TestResolveBytes(t *testing.T) {
	m := model.New("empty")
	src := []byte("rules:\n  - action: ping\n    do:\n      - let: x\n        value: 1\n")
	res, err := ResolveBytes(context.Background(), src, "inline.yaml", m, nil)
	if err != nil {
		t.Fatalf("ResolveBytes() error = %v", err)
	}
	if res.Errors.HasErrors() {
		t.Errorf("unexpected diagnostics:\n%v", res.Errors)
	}
	let := res.File.Declarations[0].(*ast.ContextDecl).Action.(*ast.Compound).Actions[0].(*ast.VarDecl)
	if let.Var == nil || let.Var.Element != model.Integer {
		t.Errorf("variable = %+v, want bound to integer", let.Var)
	}
}
