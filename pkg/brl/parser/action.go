package parser

import (
	"gopkg.in/yaml.v3"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
)

var actionKinds = []string{"do", "foreach", "create", "remove", "set", "let", "if", "invoke"}

// buildAction builds an action. A list is a compound action.
func (b *builder) buildAction(n *yaml.Node) ast.Action {
	n = deref(n)
	if n == nil {
		return nil
	}
	if !b.enter(n) {
		return nil
	}
	defer b.leave()

	switch n.Kind {
	case yaml.SequenceNode:
		return b.compound(n, b.loc(n))
	case yaml.MappingNode:
		return b.mappingAction(newMapping(n))
	}
	b.fail(n, "expected an action, found %s", kindName(n))
	return nil
}

func (b *builder) compound(n *yaml.Node, loc ast.Location) *ast.Compound {
	c := &ast.Compound{Location: loc}
	for _, item := range n.Content {
		if a := b.buildAction(item); a != nil {
			c.Actions = append(c.Actions, a)
		}
	}
	return c
}

func (b *builder) mappingAction(m *mapping) ast.Action {
	key, val := m.first()
	if key == nil {
		b.fail(m.node, "empty action")
		return nil
	}
	val = deref(val)
	loc := b.loc(key)

	switch key.Value {
	case "do":
		b.allow(m, "do", []string{"do"})
		if val.Kind != yaml.SequenceNode {
			b.fail(val, "do expects a list of actions")
			return nil
		}
		return b.compound(val, loc)

	case "foreach":
		b.allow(m, "foreach", []string{"foreach", "as", "do"})
		x := &ast.ForEach{
			Collection: b.buildPath(val),
			Variable:   b.optionalName(m, "as"),
			Location:   loc,
		}
		if do := b.required(m, "do", "foreach"); do != nil {
			x.Body = b.buildAction(do)
		}
		return x

	case "create":
		b.allow(m, "create", []string{"create", "as", "do"})
		x := &ast.Create{
			Target:   b.buildPath(val),
			Variable: b.optionalName(m, "as"),
			Location: loc,
		}
		if do := deref(m.get("do")); do != nil {
			x.Body = b.buildAction(do)
		}
		return x

	case "remove":
		b.allow(m, "remove", []string{"remove", "as", "where"})
		x := &ast.Remove{
			Target:   b.buildPath(val),
			Variable: b.optionalName(m, "as"),
			Location: loc,
		}
		if where := deref(m.get("where")); where != nil {
			x.Condition = b.buildExpr(where)
		}
		return x

	case "set":
		b.allow(m, "set", []string{"set", "to"})
		x := &ast.Assign{Target: b.buildPath(val), Location: loc}
		if to := b.required(m, "to", "set"); to != nil {
			x.Value = b.buildExpr(to)
		}
		return x

	case "let":
		b.allow(m, "let", []string{"let", "value"})
		x := &ast.VarDecl{Name: b.name(val, "variable name"), Location: loc}
		if v := b.required(m, "value", "let"); v != nil {
			x.Value = b.buildExpr(v)
		}
		return x

	case "if":
		b.allow(m, "if", []string{"if", "then", "else"})
		x := &ast.If{Condition: b.buildExpr(val), Location: loc}
		if then := b.required(m, "then", "if"); then != nil {
			x.Then = b.buildAction(then)
		}
		if els := deref(m.get("else")); els != nil {
			x.Else = b.buildAction(els)
		}
		return x

	case "invoke":
		b.allow(m, "invoke", []string{"invoke", "args"})
		return &ast.OperatorAction{
			Name:     b.name(val, "operator name"),
			Args:     b.optionalExprList(m, "args"),
			Location: loc,
		}
	}

	e := b.errors.Addf(brlerrors.CodeStructural, loc, len(key.Value), "unknown action %q", key.Value)
	e.Suggestion = brlerrors.SuggestName(key.Value, actionKinds)
	return nil
}
