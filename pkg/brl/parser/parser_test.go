package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
)

const tradeRules = `rules:
  - global: limit
    value: 100
  - constraint: positiveLegs
    context: Trade
    let:
      - name: n
        value: {number_of: legs}
    condition:
      and:
        - {gt: [n, 0]}
        - exists: legs
          as: l
          has: {gt: [l.amount, limit]}
  - action: closeTrade
    context: Trade
    precondition: {eq: [status, Status.OPEN]}
    do:
      - set: status
        to: Status.CLOSED
      - invoke: notify
        args: [{string: closed}]
  - fragment: sameBook
    params:
      - {name: a, type: Trade}
      - {name: b, type: Trade}
    condition: {eq: [a.book, b.book]}
  - ruleset: tradeRules
    context: Trade
`

func mustParse(t *testing.T, src string) *ast.RuleFile {
	t.Helper()
	f, err := NewParser().ParseBytes([]byte(src), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	return f
}

func parseErrors(t *testing.T, src string) *brlerrors.ErrorList {
	t.Helper()
	_, err := NewParser().ParseBytes([]byte(src), "test.yaml")
	if err == nil {
		t.Fatal("ParseBytes() expected error, got nil")
	}
	errList, ok := err.(*brlerrors.ErrorList)
	if !ok {
		t.Fatalf("ParseBytes() error type = %T, want *ErrorList", err)
	}
	return errList
}

func TestParseRuleFile(t *testing.T) {
	f := mustParse(t, tradeRules)

	if len(f.Declarations) != 5 {
		t.Fatalf("got %d declarations, want 5", len(f.Declarations))
	}

	t.Run("global", func(t *testing.T) {
		g, ok := f.ByName("limit").(*ast.GlobalVar)
		if !ok {
			t.Fatalf("limit is %T, want *ast.GlobalVar", f.ByName("limit"))
		}
		lit, ok := g.Decl.Value.(*ast.Literal)
		if !ok || lit.Kind != ast.LiteralInteger || lit.Value != "100" {
			t.Errorf("global value = %#v, want integer 100", g.Decl.Value)
		}
		if g.Location.Line != 2 || g.Location.Column != 5 {
			t.Errorf("global location = %s, want line 2 column 5", g.Location)
		}
	})

	t.Run("constraint", func(t *testing.T) {
		d, ok := f.ByName("positiveLegs").(*ast.ContextDecl)
		if !ok {
			t.Fatalf("positiveLegs is %T", f.ByName("positiveLegs"))
		}
		if d.Kind != ast.DeclConstraint {
			t.Errorf("Kind = %s, want constraint", d.Kind)
		}
		if d.Context.String() != "Trade" || d.Context.Location.Line != 5 || d.Context.Location.Column != 14 {
			t.Errorf("Context = %s at %s", d.Context, d.Context.Location)
		}
		if len(d.Constraint.Lets) != 1 || d.Constraint.Lets[0].Name != "n" {
			t.Fatalf("Lets = %#v", d.Constraint.Lets)
		}
		if _, ok := d.Constraint.Lets[0].Value.(*ast.NumberOf); !ok {
			t.Errorf("let value is %T, want *ast.NumberOf", d.Constraint.Lets[0].Value)
		}

		and, ok := d.Constraint.Condition.(*ast.Binary)
		if !ok || and.Op != "and" {
			t.Fatalf("condition = %#v, want and", d.Constraint.Condition)
		}
		if cmp, ok := and.Left.(*ast.Binary); !ok || cmp.Op != ">" {
			t.Errorf("left = %#v, want >", and.Left)
		}
		ex, ok := and.Right.(*ast.Existence)
		if !ok {
			t.Fatalf("right is %T, want *ast.Existence", and.Right)
		}
		if ex.Quantity != ast.QuantitySome || ex.Variable != "l" || ex.Target.String() != "legs" {
			t.Errorf("existence = %+v", ex)
		}
		inner := ex.Condition.(*ast.Binary)
		p := inner.Left.(*ast.PathExpr)
		if got := p.Names(); len(got) != 2 || got[0] != "l" || got[1] != "amount" {
			t.Errorf("path steps = %v", got)
		}
		if p.Steps[0].Location.Line != 14 || p.Steps[0].Location.Column != 22 || p.Steps[1].Location.Column != 24 {
			t.Errorf("step locations = %s, %s", p.Steps[0].Location, p.Steps[1].Location)
		}
	})

	t.Run("action", func(t *testing.T) {
		d := f.ByName("closeTrade").(*ast.ContextDecl)
		if d.Kind != ast.DeclAction {
			t.Errorf("Kind = %s, want action", d.Kind)
		}
		if pre, ok := d.Precondition.Condition.(*ast.Binary); !ok || pre.Op != "=" {
			t.Errorf("precondition = %#v", d.Precondition.Condition)
		}
		c, ok := d.Action.(*ast.Compound)
		if !ok || len(c.Actions) != 2 {
			t.Fatalf("action = %#v, want compound of two", d.Action)
		}
		set, ok := c.Actions[0].(*ast.Assign)
		if !ok || set.Target.String() != "status" || set.Value.(*ast.PathExpr).String() != "Status.CLOSED" {
			t.Errorf("first action = %#v", c.Actions[0])
		}
		call, ok := c.Actions[1].(*ast.OperatorAction)
		if !ok || call.Name != "notify" || len(call.Args) != 1 {
			t.Fatalf("second action = %#v", c.Actions[1])
		}
		if lit := call.Args[0].(*ast.Literal); lit.Kind != ast.LiteralString || lit.Value != "closed" {
			t.Errorf("argument = %#v", lit)
		}
	})

	t.Run("fragment", func(t *testing.T) {
		d, ok := f.ByName("sameBook").(*ast.MultiContextDecl)
		if !ok {
			t.Fatalf("sameBook is %T", f.ByName("sameBook"))
		}
		if d.Kind != ast.DeclConstraint || len(d.Params) != 2 {
			t.Errorf("fragment = %+v", d)
		}
		if d.Params[1].Name != "b" || d.Params[1].Type.String() != "Trade" {
			t.Errorf("param = %+v", d.Params[1])
		}
	})

	t.Run("ruleset", func(t *testing.T) {
		d, ok := f.ByName("tradeRules").(*ast.RuleSet)
		if !ok || d.Context.String() != "Trade" {
			t.Errorf("ruleset = %#v", f.ByName("tradeRules"))
		}
	})
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		value string
		kind  ast.LiteralKind
		text  string
	}{
		{"42", ast.LiteralInteger, "42"},
		{"-7", ast.LiteralInteger, "-7"},
		{"4.5", ast.LiteralNumber, "4.5"},
		{"true", ast.LiteralBoolean, "true"},
		{"null", ast.LiteralNull, "null"},
		{"2024-01-31", ast.LiteralDate, "2024-01-31"},
		{"{string: hello}", ast.LiteralString, "hello"},
		{"{date: '2024-01-31'}", ast.LiteralDate, "2024-01-31"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			f := mustParse(t, "rules:\n  - global: g\n    value: "+tt.value+"\n")
			lit, ok := f.Declarations[0].(*ast.GlobalVar).Decl.Value.(*ast.Literal)
			if !ok {
				t.Fatalf("value is %T, want *ast.Literal", f.Declarations[0].(*ast.GlobalVar).Decl.Value)
			}
			if lit.Kind != tt.kind || lit.Value != tt.text {
				t.Errorf("literal = %s %q, want %s %q", lit.Kind, lit.Value, tt.kind, tt.text)
			}
		})
	}
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		name  string
		value string
		check func(t *testing.T, x ast.Expr)
	}{
		{"qualified path", `"trading::Trade"`, func(t *testing.T, x ast.Expr) {
			p := x.(*ast.PathExpr)
			if len(p.Steps) != 1 || p.Steps[0].Name != "trading::Trade" {
				t.Errorf("steps = %v", p.Names())
			}
			if p.Location.Column != 13 {
				t.Errorf("column = %d, want 13 (inside quotes)", p.Location.Column)
			}
		}},
		{"or folds left", `{or: [a, b, c]}`, func(t *testing.T, x ast.Expr) {
			or := x.(*ast.Binary)
			if _, ok := or.Left.(*ast.Binary); !ok || or.Right.(*ast.PathExpr).String() != "c" {
				t.Errorf("or = %#v", or)
			}
		}},
		{"quoted operator", `{"!=": [a, 1]}`, func(t *testing.T, x ast.Expr) {
			if x.(*ast.Binary).Op != "!=" {
				t.Errorf("op = %s", x.(*ast.Binary).Op)
			}
		}},
		{"word operator", `{le: [a, 1]}`, func(t *testing.T, x ast.Expr) {
			if x.(*ast.Binary).Op != "<=" {
				t.Errorf("op = %s", x.(*ast.Binary).Op)
			}
		}},
		{"not", `{not: flag}`, func(t *testing.T, x ast.Expr) {
			if u := x.(*ast.Unary); u.Op != "not" {
				t.Errorf("op = %s", u.Op)
			}
		}},
		{"counted existence", `{exists: legs, quantity: at-least, count: 2}`, func(t *testing.T, x ast.Expr) {
			ex := x.(*ast.Existence)
			if ex.Quantity != ast.QuantityAtLeast || ex.Count != 2 || ex.Condition != nil {
				t.Errorf("existence = %+v", ex)
			}
		}},
		{"universal", `{each: legs, as: l, has: {gt: [l.amount, 0]}}`, func(t *testing.T, x ast.Expr) {
			u := x.(*ast.Universal)
			if u.Variable != "l" || u.Condition == nil {
				t.Errorf("universal = %+v", u)
			}
		}},
		{"selection", `{select: legs, where: {gt: [amount, 0]}}`, func(t *testing.T, x ast.Expr) {
			if s := x.(*ast.Selection); s.Target.String() != "legs" || s.Condition == nil {
				t.Errorf("selection = %+v", s)
			}
		}},
		{"index", `{index: 2, of: legs}`, func(t *testing.T, x ast.Expr) {
			if ix := x.(*ast.CollectionIndex); ix.Index != 2 {
				t.Errorf("index = %d", ix.Index)
			}
		}},
		{"last", `{last: legs}`, func(t *testing.T, x ast.Expr) {
			if ix := x.(*ast.CollectionIndex); ix.Index != 0 {
				t.Errorf("index = %d, want 0", ix.Index)
			}
		}},
		{"cast", `{cast: book, to: Book}`, func(t *testing.T, x ast.Expr) {
			if c := x.(*ast.Cast); c.TypeName != "Book" || c.Operand == nil {
				t.Errorf("cast = %+v", c)
			}
		}},
		{"type test", `{instance_of: Book, value: book, negated: true}`, func(t *testing.T, x ast.Expr) {
			if tt := x.(*ast.TypeTest); tt.TypeName != "Book" || !tt.Negated {
				t.Errorf("type test = %+v", tt)
			}
		}},
		{"call", `{call: daysBetween, args: [date, {date: 2024-01-01}]}`, func(t *testing.T, x ast.Expr) {
			if c := x.(*ast.OperatorCall); c.Name != "daysBetween" || len(c.Args) != 2 {
				t.Errorf("call = %+v", c)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustParse(t, "rules:\n  - global: g\n    value: "+tt.value+"\n")
			tt.check(t, f.Declarations[0].(*ast.GlobalVar).Decl.Value)
		})
	}
}

func TestParseActions(t *testing.T) {
	src := `rules:
  - action: rebook
    context: Trade
    do:
      - let: total
        value: {number_of: legs}
      - foreach: legs
        as: l
        do:
          set: l.amount
          to: 0
      - create: Leg
        as: fresh
        do:
          - set: fresh.amount
            to: total
      - remove: legs
        where: {eq: [amount, 0]}
      - if: {gt: [total, 1]}
        then: {invoke: notify, args: [total]}
        else: {do: []}
`
	f := mustParse(t, src)
	c := f.Declarations[0].(*ast.ContextDecl).Action.(*ast.Compound)
	if len(c.Actions) != 5 {
		t.Fatalf("got %d actions, want 5", len(c.Actions))
	}

	if v, ok := c.Actions[0].(*ast.VarDecl); !ok || v.Name != "total" {
		t.Errorf("action 0 = %#v", c.Actions[0])
	}
	fe, ok := c.Actions[1].(*ast.ForEach)
	if !ok || fe.Variable != "l" {
		t.Fatalf("action 1 = %#v", c.Actions[1])
	}
	if _, ok := fe.Body.(*ast.Assign); !ok {
		t.Errorf("foreach body is %T, want *ast.Assign", fe.Body)
	}
	cr, ok := c.Actions[2].(*ast.Create)
	if !ok || cr.Variable != "fresh" || cr.Target.String() != "Leg" {
		t.Errorf("action 2 = %#v", c.Actions[2])
	}
	if body, ok := cr.Body.(*ast.Compound); !ok || len(body.Actions) != 1 {
		t.Errorf("create body = %#v", cr.Body)
	}
	if rm, ok := c.Actions[3].(*ast.Remove); !ok || rm.Variable != "" || rm.Condition == nil {
		t.Errorf("action 3 = %#v", c.Actions[3])
	}
	iff, ok := c.Actions[4].(*ast.If)
	if !ok {
		t.Fatalf("action 4 = %#v", c.Actions[4])
	}
	if _, ok := iff.Then.(*ast.OperatorAction); !ok {
		t.Errorf("then is %T", iff.Then)
	}
	if els, ok := iff.Else.(*ast.Compound); !ok || len(els.Actions) != 0 {
		t.Errorf("else = %#v", iff.Else)
	}
}

func TestParseStructuralErrors(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		message    string
		suggestion string
	}{
		{
			name:       "misspelled key",
			src:        "rules:\n  - constraint: c\n    context: Trade\n    conditon: x\n",
			message:    `unknown key "conditon"`,
			suggestion: "Did you mean 'condition'?",
		},
		{
			name:    "missing condition",
			src:     "rules:\n  - constraint: c\n    context: Trade\n",
			message: `constraint requires "condition"`,
		},
		{
			name:       "unknown rule kind",
			src:        "rules:\n  - constrant: c\n",
			message:    `unknown rule kind "constrant"`,
			suggestion: "Did you mean 'constraint'?",
		},
		{
			name:    "rules not a list",
			src:     "rules: {a: b}\n",
			message: "rules must be a list",
		},
		{
			name:    "counted quantity without count",
			src:     "rules:\n  - global: g\n    value: {exists: legs, quantity: exactly}\n",
			message: "requires a count",
		},
		{
			name:       "unknown quantity",
			src:        "rules:\n  - global: g\n    value: {exists: legs, quantity: sme}\n",
			message:    `unknown quantity "sme"`,
			suggestion: "Did you mean 'some'?",
		},
		{
			name:    "three operands",
			src:     "rules:\n  - global: g\n    value: {eq: [a, b, c]}\n",
			message: "takes exactly two operands",
		},
		{
			name:    "malformed path",
			src:     "rules:\n  - global: g\n    value: a..b\n",
			message: `malformed path "a..b"`,
		},
		{
			name:    "fragment with both bodies",
			src:     "rules:\n  - fragment: f\n    params: [{name: a, type: Trade}]\n    condition: a\n    do: []\n",
			message: "both a condition and actions",
		},
		{
			name:    "fragment without params",
			src:     "rules:\n  - fragment: f\n    condition: x\n",
			message: "declares no parameters",
		},
		{
			name:       "unknown action",
			src:        "rules:\n  - action: a\n    do:\n      - sett: x\n        to: 1\n",
			message:    `unknown action "sett"`,
			suggestion: "Did you mean 'set'?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errList := parseErrors(t, tt.src)
			var found *brlerrors.Error
			for _, e := range errList.Errors {
				if e.Code != brlerrors.CodeStructural {
					t.Errorf("error code = %s, want structural", e.Code)
				}
				if strings.Contains(e.Message, tt.message) {
					found = e
				}
			}
			if found == nil {
				t.Fatalf("no error containing %q in:\n%v", tt.message, errList)
			}
			if tt.suggestion != "" && found.Suggestion != tt.suggestion {
				t.Errorf("suggestion = %q, want %q", found.Suggestion, tt.suggestion)
			}
			if !found.Location.IsValid() {
				t.Errorf("error has no location: %+v", found)
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := NewParser().ParseBytes([]byte("rules: [\n  - a\n"), "bad.yaml")
	e, ok := err.(*brlerrors.Error)
	if !ok {
		t.Fatalf("error type = %T, want *brlerrors.Error", err)
	}
	if e.Code != brlerrors.CodeSyntax {
		t.Errorf("Code = %s, want syntax", e.Code)
	}
	if e.Suggestion == "" {
		t.Error("expected a suggestion")
	}
}

func TestParserLimits(t *testing.T) {
	t.Run("max depth", func(t *testing.T) {
		src := "rules:\n  - global: g\n    value: {not: {not: {not: {not: x}}}}\n"
		_, err := NewParser().WithMaxDepth(3).ParseBytes([]byte(src), "deep.yaml")
		if err == nil || !strings.Contains(err.Error(), "maximum depth 3") {
			t.Errorf("error = %v, want depth error", err)
		}
		if _, err := NewParser().ParseBytes([]byte(src), "deep.yaml"); err != nil {
			t.Errorf("default depth rejected input: %v", err)
		}
	})

	t.Run("max size", func(t *testing.T) {
		_, err := NewParser().WithMaxFileSize(10).ParseBytes([]byte(tradeRules), "big.yaml")
		e, ok := err.(*brlerrors.Error)
		if !ok || e.Code != brlerrors.CodeIO {
			t.Errorf("error = %v, want io error", err)
		}
	})
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trade.yaml")
	if err := os.WriteFile(path, []byte(tradeRules), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := NewParser().Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Path != path || len(f.Declarations) != 5 {
		t.Errorf("file = %s with %d declarations", f.Path, len(f.Declarations))
	}
	if f.Declarations[1].Pos().File != path {
		t.Errorf("declaration file = %q, want %q", f.Declarations[1].Pos().File, path)
	}

	t.Run("missing", func(t *testing.T) {
		_, err := NewParser().Parse(filepath.Join(dir, "missing.yaml"))
		e, ok := err.(*brlerrors.Error)
		if !ok || e.Code != brlerrors.CodeIO {
			t.Errorf("error = %v, want io error", err)
		}
	})

	t.Run("structural errors carry context", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(bad, []byte("rules:\n  - constrant: c\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := NewParser().Parse(bad)
		errList, ok := err.(*brlerrors.ErrorList)
		if !ok {
			t.Fatalf("error type = %T", err)
		}
		if errList.Errors[0].Context == "" {
			t.Error("expected source context on error")
		}
	})

	t.Run("several files", func(t *testing.T) {
		files, err := NewParser().ParseFiles([]string{path, path})
		if err != nil || len(files) != 2 {
			t.Errorf("ParseFiles() = %d files, %v", len(files), err)
		}
		if _, err := NewParser().ParseFiles(nil); err == nil {
			t.Error("ParseFiles(nil) expected error")
		}
	})
}

func TestParseEmpty(t *testing.T) {
	f := mustParse(t, "")
	if len(f.Declarations) != 0 {
		t.Errorf("got %d declarations, want 0", len(f.Declarations))
	}
}
