package parser

import (
	"gopkg.in/yaml.v3"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
)

// binaryOps maps expression keys to operators. Word forms avoid quoting
// keys such as "!=" that YAML would read as tags.
var binaryOps = map[string]string{
	"=": "=", "eq": "=",
	"!=": "!=", "ne": "!=",
	"<": "<", "lt": "<",
	">": ">", "gt": ">",
	"<=": "<=", "le": "<=",
	">=": ">=", "ge": ">=",
	"+": "+", "-": "-", "*": "*", "/": "/",
}

var quantities = map[string]ast.Quantity{
	"one":      ast.QuantityOne,
	"some":     ast.QuantitySome,
	"none":     ast.QuantityNone,
	"at-least": ast.QuantityAtLeast,
	"at-most":  ast.QuantityAtMost,
	"exactly":  ast.QuantityExactly,
}

var exprKeys = []string{
	"string", "date", "and", "or", "not", "neg",
	"exists", "each", "number_of", "select", "index", "first", "last",
	"cast", "instance_of", "call",
}

// buildExpr builds an expression. A plain string is a path, other scalars
// are literals and mappings are keyed by their first key.
func (b *builder) buildExpr(n *yaml.Node) ast.Expr {
	n = deref(n)
	if n == nil {
		return nil
	}
	if !b.enter(n) {
		return nil
	}
	defer b.leave()

	switch n.Kind {
	case yaml.ScalarNode:
		return b.scalarExpr(n)
	case yaml.MappingNode:
		return b.mappingExpr(newMapping(n))
	}
	b.fail(n, "expected an expression, found %s", kindName(n))
	return nil
}

func (b *builder) scalarExpr(n *yaml.Node) ast.Expr {
	loc := b.loc(n)
	switch n.Tag {
	case "!!int":
		return &ast.Literal{Kind: ast.LiteralInteger, Value: n.Value, Location: loc}
	case "!!float":
		return &ast.Literal{Kind: ast.LiteralNumber, Value: n.Value, Location: loc}
	case "!!bool":
		return &ast.Literal{Kind: ast.LiteralBoolean, Value: n.Value, Location: loc}
	case "!!null":
		return &ast.Literal{Kind: ast.LiteralNull, Value: n.Value, Location: loc}
	case "!!timestamp":
		return &ast.Literal{Kind: ast.LiteralDate, Value: n.Value, Location: loc}
	}
	if p := b.buildPath(n); p != nil {
		return p
	}
	return nil
}

func (b *builder) mappingExpr(m *mapping) ast.Expr {
	key, val := m.first()
	if key == nil {
		b.fail(m.node, "empty expression")
		return nil
	}
	val = deref(val)
	loc := b.loc(key)

	if op, ok := binaryOps[key.Value]; ok {
		b.allow(m, key.Value, []string{key.Value})
		if val.Kind == yaml.SequenceNode && len(val.Content) != 2 {
			b.fail(key, "%s takes exactly two operands", key.Value)
			return nil
		}
		args := b.exprList(val, key.Value)
		if len(args) != 2 {
			return nil
		}
		return &ast.Binary{Op: op, Left: args[0], Right: args[1], Location: loc}
	}

	switch key.Value {
	case "string", "date":
		b.allow(m, key.Value+" literal", []string{key.Value})
		s, err := scalarString(val)
		if err != nil {
			b.fail(val, "%s literal: %v", key.Value, err)
			return nil
		}
		kind := ast.LiteralString
		if key.Value == "date" {
			kind = ast.LiteralDate
		}
		return &ast.Literal{Kind: kind, Value: s, Location: b.loc(val)}

	case "and", "or":
		b.allow(m, key.Value, []string{key.Value})
		if val.Kind == yaml.SequenceNode && len(val.Content) < 2 {
			b.fail(key, "%s needs at least two operands", key.Value)
			return nil
		}
		args := b.exprList(val, key.Value)
		if len(args) < 2 {
			return nil
		}
		expr := args[0]
		for _, right := range args[1:] {
			expr = &ast.Binary{Op: key.Value, Left: expr, Right: right, Location: loc}
		}
		return expr

	case "not", "neg":
		b.allow(m, key.Value, []string{key.Value})
		op := "not"
		if key.Value == "neg" {
			op = "-"
		}
		return &ast.Unary{Op: op, Operand: b.buildExpr(val), Location: loc}

	case "exists":
		b.allow(m, "exists", []string{"exists", "quantity", "count", "as", "has"})
		x := &ast.Existence{
			Quantity: ast.QuantitySome,
			Target:   b.buildPath(val),
			Location: loc,
		}
		if q := deref(m.get("quantity")); q != nil {
			s, _ := scalarString(q)
			quantity, ok := quantities[s]
			if !ok {
				e := b.errors.Addf(brlerrors.CodeStructural, b.loc(q), len(s), "unknown quantity %q", s)
				e.Suggestion = brlerrors.SuggestName(s, sortedKeys(quantities))
			}
			x.Quantity = quantity
		}
		if c := deref(m.get("count")); c != nil {
			count, err := scalarInt(c)
			switch {
			case err != nil:
				b.fail(c, "count: %v", err)
			case count < 0:
				b.fail(c, "count must not be negative")
			}
			x.Count = count
			if !x.Quantity.Counted() {
				b.fail(c, "count is only allowed with at-least, at-most or exactly")
			}
		} else if x.Quantity.Counted() {
			b.fail(key, "quantity %s requires a count", x.Quantity)
		}
		x.Variable = b.optionalName(m, "as")
		if has := deref(m.get("has")); has != nil {
			x.Condition = b.buildExpr(has)
		}
		return x

	case "each":
		b.allow(m, "each", []string{"each", "as", "has"})
		x := &ast.Universal{
			Target:   b.buildPath(val),
			Variable: b.optionalName(m, "as"),
			Location: loc,
		}
		if has := b.required(m, "has", "each"); has != nil {
			x.Condition = b.buildExpr(has)
		}
		return x

	case "number_of":
		b.allow(m, "number_of", []string{"number_of", "where"})
		x := &ast.NumberOf{Target: b.buildPath(val), Location: loc}
		if where := deref(m.get("where")); where != nil {
			x.Condition = b.buildExpr(where)
		}
		return x

	case "select":
		b.allow(m, "select", []string{"select", "where"})
		x := &ast.Selection{Target: b.buildPath(val), Location: loc}
		if where := b.required(m, "where", "select"); where != nil {
			x.Condition = b.buildExpr(where)
		}
		return x

	case "index":
		b.allow(m, "index", []string{"index", "of"})
		idx, err := scalarInt(val)
		if err != nil || idx < 1 {
			b.fail(val, "index must be a positive integer")
		}
		x := &ast.CollectionIndex{Index: idx, Location: loc}
		if of := b.required(m, "of", "index"); of != nil {
			x.Target = b.buildPath(of)
		}
		return x

	case "first", "last":
		b.allow(m, key.Value, []string{key.Value})
		x := &ast.CollectionIndex{Index: 1, Target: b.buildPath(val), Location: loc}
		if key.Value == "last" {
			x.Index = 0
		}
		return x

	case "cast":
		b.allow(m, "cast", []string{"cast", "to"})
		x := &ast.Cast{Operand: b.buildExpr(val), Location: loc}
		if to := b.required(m, "to", "cast"); to != nil {
			x.TypeName = b.name(to, "cast type")
		}
		return x

	case "instance_of":
		b.allow(m, "instance_of", []string{"instance_of", "value", "negated"})
		x := &ast.TypeTest{TypeName: b.name(val, "type"), Location: loc}
		if v := b.required(m, "value", "instance_of"); v != nil {
			x.Operand = b.buildExpr(v)
		}
		if neg := deref(m.get("negated")); neg != nil {
			negated, err := scalarBool(neg)
			if err != nil {
				b.fail(neg, "negated: %v", err)
			}
			x.Negated = negated
		}
		return x

	case "call":
		b.allow(m, "call", []string{"call", "args"})
		return &ast.OperatorCall{
			Name:     b.name(val, "operator name"),
			Args:     b.optionalExprList(m, "args"),
			Location: loc,
		}
	}

	e := b.errors.Addf(brlerrors.CodeStructural, loc, len(key.Value), "unknown expression %q", key.Value)
	e.Suggestion = brlerrors.SuggestName(key.Value, append(exprKeys, sortedKeys(binaryOps)...))
	return nil
}

// exprList builds each element of a list node.
func (b *builder) exprList(n *yaml.Node, what string) []ast.Expr {
	if n == nil || n.Kind != yaml.SequenceNode {
		b.fail(n, "%s expects a list of operands", what)
		return nil
	}
	out := make([]ast.Expr, 0, len(n.Content))
	for _, item := range n.Content {
		if x := b.buildExpr(item); x != nil {
			out = append(out, x)
		}
	}
	return out
}

func (b *builder) optionalExprList(m *mapping, key string) []ast.Expr {
	n := deref(m.get(key))
	if n == nil {
		return nil
	}
	return b.exprList(n, key)
}

func (b *builder) optionalName(m *mapping, key string) string {
	n := deref(m.get(key))
	if n == nil {
		return ""
	}
	return b.name(n, key)
}
