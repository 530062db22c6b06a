package resolver

import (
	"context"
	"testing"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
	"mercator-hq/saturn/pkg/model"
	"mercator-hq/saturn/pkg/operators"
)

// tradingModel builds:
//
//	trading::Trade {date: date, legs: Leg[*], status: Status, currency: Currency, book: Book, static MAX_LEGS: integer}
//	trading::Leg   {amount: number, date: date, currency: Currency, trade: Trade}
//	trading::Book  {name: string}
//	trading::Status = OPEN | CLOSED
//	trading::Currency : string
//	trading::Party, accounting::Party
func tradingModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New("trading")
	trading, err := m.NewPackage("trading")
	check(t, err)
	accounting, err := m.NewPackage("accounting")
	check(t, err)

	status, err := trading.AddEnumeration(model.NewEnumeration("Status", "OPEN", "CLOSED"))
	check(t, err)
	currency, err := trading.AddDataType(model.NewDataType("Currency", model.String))
	check(t, err)

	trade, err := trading.AddClass(model.NewClass("Trade"))
	check(t, err)
	leg, err := trading.AddClass(model.NewClass("Leg"))
	check(t, err)
	book, err := trading.AddClass(model.NewClass("Book"))
	check(t, err)
	_, err = trading.AddClass(model.NewClass("Party"))
	check(t, err)
	_, err = accounting.AddClass(model.NewClass("Party"))
	check(t, err)

	trade.AddAttribute("date", model.Date)
	trade.AddAttribute("legs", leg).Many = true
	trade.AddAttribute("status", status)
	trade.AddAttribute("currency", currency)
	trade.AddAttribute("book", book)
	trade.AddAttribute("MAX_LEGS", model.Integer).Static = true

	leg.AddAttribute("amount", model.Number)
	leg.AddAttribute("date", model.Date)
	leg.AddAttribute("currency", currency)
	leg.AddAttribute("trade", trade)

	book.AddAttribute("name", model.String)
	return m
}

func check(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func builtins(t *testing.T) operators.Catalogues {
	t.Helper()
	c := operators.NewCatalogue("builtins")
	check(t, c.Add(&operators.Operator{Name: "daysBetween", Returns: "integer", Parameters: []operators.Parameter{{Name: "from", Type: "date"}, {Name: "to", Type: "date"}}}))
	check(t, c.Add(&operators.Operator{Name: "notify", Parameters: []operators.Parameter{{Name: "message", Type: "string"}}}))
	return operators.Catalogues{c}
}

var line int

// at returns a fresh location so that errors can be told apart.
func at() ast.Location {
	line++
	return ast.Location{File: "rules.yaml", Line: line, Column: 1}
}

func path(names ...string) *ast.PathExpr { return ast.NewPath(at(), names...) }

func num(v string) *ast.Literal { return &ast.Literal{Kind: ast.LiteralInteger, Value: v, Location: at()} }

func cmp(op string, l, r ast.Expr) *ast.Binary {
	return &ast.Binary{Op: op, Left: l, Right: r, Location: at()}
}

func let(name string, value ast.Expr) *ast.VarDecl {
	return &ast.VarDecl{Name: name, Value: value, Location: at()}
}

func constraint(context string, cond ast.Expr, lets ...*ast.VarDecl) *ast.ContextDecl {
	d := &ast.ContextDecl{
		Kind:       ast.DeclConstraint,
		Name:       "c",
		Constraint: &ast.ConstraintBody{Lets: lets, Condition: cond, Location: at()},
		Location:   at(),
	}
	if context != "" {
		d.Context = path(context)
	}
	return d
}

func action(context string, a ast.Action) *ast.ContextDecl {
	d := &ast.ContextDecl{Kind: ast.DeclAction, Name: "a", Action: a, Location: at()}
	if context != "" {
		d.Context = path(context)
	}
	return d
}

func param(name, typ string) *ast.Param {
	return &ast.Param{Name: name, Type: path(typ), Location: at()}
}

func global(name string, value ast.Expr) *ast.GlobalVar {
	return &ast.GlobalVar{Decl: let(name, value), Location: at()}
}

func ruleFile(decls ...ast.Decl) *ast.RuleFile {
	return &ast.RuleFile{Path: "rules.yaml", Declarations: decls}
}

func resolveFile(t *testing.T, f *ast.RuleFile, opts ...Option) *Result {
	t.Helper()
	r := New(tradingModel(t), builtins(t), opts...)
	res, err := r.Resolve(context.Background(), f)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return res
}

func codes(errs *brlerrors.ErrorList) []brlerrors.Code {
	out := make([]brlerrors.Code, 0, errs.Count())
	for _, e := range errs.Errors {
		out = append(out, e.Code)
	}
	return out
}

func wantCodes(t *testing.T, errs *brlerrors.ErrorList, want ...brlerrors.Code) {
	t.Helper()
	got := codes(errs)
	if len(got) != len(want) {
		t.Fatalf("errors = %v, want %v\n%s", got, want, errs.Error())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("errors = %v, want %v\n%s", got, want, errs.Error())
		}
	}
}
