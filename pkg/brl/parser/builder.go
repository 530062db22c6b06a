package parser

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
)

var (
	fileKeys       = []string{"rules", "description", "version"}
	constraintKeys = []string{"constraint", "context", "params", "precondition", "let", "condition", "description"}
	actionKeys     = []string{"action", "context", "params", "precondition", "do", "description"}
	fragmentKeys   = []string{"fragment", "params", "precondition", "let", "condition", "do", "description"}
	ruleSetKeys    = []string{"ruleset", "context", "precondition", "description"}
	globalKeys     = []string{"global", "value", "description"}
)

// builder constructs AST nodes from YAML nodes.
// It preserves source locations and accumulates structural errors.
type builder struct {
	sourcePath string
	maxDepth   int
	depth      int
	errors     *brlerrors.ErrorList
}

// newBuilder creates a new AST builder for the given source file.
func newBuilder(sourcePath string, maxDepth int) *builder {
	return &builder{
		sourcePath: sourcePath,
		maxDepth:   maxDepth,
		errors:     brlerrors.NewErrorList(),
	}
}

func (b *builder) loc(n *yaml.Node) ast.Location {
	if n == nil {
		return ast.Location{File: b.sourcePath}
	}
	return ast.Location{File: b.sourcePath, Line: n.Line, Column: n.Column}
}

func (b *builder) fail(n *yaml.Node, format string, args ...any) {
	b.errors.Addf(brlerrors.CodeStructural, b.loc(n), 0, format, args...)
}

// enter guards recursion. Every successful enter must be paired with leave.
func (b *builder) enter(n *yaml.Node) bool {
	if b.maxDepth > 0 && b.depth >= b.maxDepth {
		b.fail(n, "nesting exceeds maximum depth %d", b.maxDepth)
		return false
	}
	b.depth++
	return true
}

func (b *builder) leave() { b.depth-- }

// allow reports every key of m that is not in allowed.
func (b *builder) allow(m *mapping, what string, allowed []string) {
	for _, k := range m.keys {
		if contains(allowed, k.Value) {
			continue
		}
		e := b.errors.Addf(brlerrors.CodeStructural, b.loc(k), len(k.Value), "unknown key %q in %s", k.Value, what)
		e.Suggestion = brlerrors.SuggestName(k.Value, allowed)
	}
}

// required returns the value of key, reporting it at m when absent.
func (b *builder) required(m *mapping, key, what string) *yaml.Node {
	v := deref(m.get(key))
	if v == nil {
		b.fail(m.node, "%s requires %q", what, key)
	}
	return v
}

func (b *builder) name(n *yaml.Node, what string) string {
	s, err := scalarString(n)
	if err != nil {
		b.fail(n, "%s: %v", what, err)
		return ""
	}
	if strings.TrimSpace(s) == "" {
		b.fail(n, "%s must not be empty", what)
	}
	return s
}

// buildFile transforms the document root into an ast.RuleFile.
func (b *builder) buildFile(root *yaml.Node) (*ast.RuleFile, error) {
	file := &ast.RuleFile{
		Path:     b.sourcePath,
		Location: ast.Location{File: b.sourcePath, Line: 1, Column: 1},
	}
	root = deref(root)
	if root == nil {
		return file, nil
	}
	if root.Kind != yaml.MappingNode {
		b.fail(root, "rule file must be a mapping, found %s", kindName(root))
		return nil, b.errors
	}

	m := newMapping(root)
	b.allow(m, "rule file", fileKeys)
	if rules := deref(m.get("rules")); rules != nil {
		if rules.Kind != yaml.SequenceNode {
			b.fail(rules, "rules must be a list, found %s", kindName(rules))
		} else {
			for _, item := range rules.Content {
				if d := b.buildDecl(deref(item)); d != nil {
					file.Declarations = append(file.Declarations, d)
				}
			}
		}
	}

	if b.errors.HasErrors() {
		return nil, b.errors
	}
	return file, nil
}

func (b *builder) buildDecl(n *yaml.Node) ast.Decl {
	if n == nil || n.Kind != yaml.MappingNode {
		b.fail(n, "rule must be a mapping")
		return nil
	}
	m := newMapping(n)
	key, val := m.first()
	if key == nil {
		b.fail(n, "empty rule")
		return nil
	}
	loc := b.loc(key)

	switch key.Value {
	case "constraint":
		b.allow(m, "constraint", constraintKeys)
		d := &ast.ContextDecl{
			Kind:     ast.DeclConstraint,
			Name:     b.name(val, "constraint name"),
			Params:   b.buildParams(m),
			Location: loc,
		}
		if ctx := deref(m.get("context")); ctx != nil {
			d.Context = b.buildPath(ctx)
		}
		d.Precondition = b.buildPrecondition(m)
		d.Constraint = b.buildConstraintBody(m, "constraint")
		return d

	case "action":
		b.allow(m, "action", actionKeys)
		d := &ast.ContextDecl{
			Kind:     ast.DeclAction,
			Name:     b.name(val, "action name"),
			Params:   b.buildParams(m),
			Location: loc,
		}
		if ctx := deref(m.get("context")); ctx != nil {
			d.Context = b.buildPath(ctx)
		}
		d.Precondition = b.buildPrecondition(m)
		if do := b.required(m, "do", "action"); do != nil {
			d.Action = b.buildAction(do)
		}
		return d

	case "fragment":
		b.allow(m, "fragment", fragmentKeys)
		d := &ast.MultiContextDecl{
			Name:     b.name(val, "fragment name"),
			Params:   b.buildParams(m),
			Location: loc,
		}
		if len(d.Params) == 0 {
			b.fail(key, "fragment %s declares no parameters", d.Name)
		}
		d.Precondition = b.buildPrecondition(m)
		_, hasCond := m.values["condition"]
		_, hasDo := m.values["do"]
		switch {
		case hasCond && hasDo:
			b.fail(key, "fragment %s has both a condition and actions", d.Name)
		case hasCond:
			d.Kind = ast.DeclConstraint
			d.Constraint = b.buildConstraintBody(m, "fragment")
		case hasDo:
			d.Kind = ast.DeclAction
			d.Action = b.buildAction(deref(m.get("do")))
		default:
			b.fail(key, "fragment %s needs a condition or actions", d.Name)
		}
		return d

	case "ruleset":
		b.allow(m, "rule set", ruleSetKeys)
		d := &ast.RuleSet{
			Name:     b.name(val, "rule set name"),
			Location: loc,
		}
		if ctx := deref(m.get("context")); ctx != nil {
			d.Context = b.buildPath(ctx)
		}
		d.Precondition = b.buildPrecondition(m)
		return d

	case "global":
		b.allow(m, "global", globalKeys)
		decl := &ast.VarDecl{
			Name:     b.name(val, "global name"),
			Location: loc,
		}
		if v := b.required(m, "value", "global"); v != nil {
			decl.Value = b.buildExpr(v)
		}
		return &ast.GlobalVar{Decl: decl, Location: loc}
	}

	e := b.errors.Addf(brlerrors.CodeStructural, loc, len(key.Value), "unknown rule kind %q", key.Value)
	e.Suggestion = brlerrors.SuggestName(key.Value, []string{"constraint", "action", "fragment", "ruleset", "global"})
	return nil
}

func (b *builder) buildParams(m *mapping) []*ast.Param {
	n := deref(m.get("params"))
	if n == nil {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		b.fail(n, "params must be a list, found %s", kindName(n))
		return nil
	}
	params := make([]*ast.Param, 0, len(n.Content))
	for _, item := range n.Content {
		item = deref(item)
		if item.Kind != yaml.MappingNode {
			b.fail(item, "parameter must be a mapping with name and type")
			continue
		}
		pm := newMapping(item)
		b.allow(pm, "parameter", []string{"name", "type"})
		p := &ast.Param{Location: b.loc(item)}
		if v := b.required(pm, "name", "parameter"); v != nil {
			p.Name = b.name(v, "parameter name")
		}
		if v := b.required(pm, "type", "parameter"); v != nil {
			p.Type = b.buildPath(v)
		}
		params = append(params, p)
	}
	return params
}

// buildPrecondition accepts either a bare expression or a mapping of
// leading lets and a condition.
func (b *builder) buildPrecondition(m *mapping) *ast.ConstraintBody {
	n := deref(m.get("precondition"))
	if n == nil {
		return nil
	}
	if n.Kind == yaml.MappingNode {
		pm := newMapping(n)
		if _, ok := pm.values["condition"]; ok {
			b.allow(pm, "precondition", []string{"let", "condition"})
			return b.buildConstraintBody(pm, "precondition")
		}
	}
	return &ast.ConstraintBody{Condition: b.buildExpr(n), Location: b.loc(n)}
}

func (b *builder) buildConstraintBody(m *mapping, what string) *ast.ConstraintBody {
	body := &ast.ConstraintBody{Location: b.loc(m.node)}
	if lets := deref(m.get("let")); lets != nil {
		body.Lets = b.buildLets(lets)
	}
	if cond := b.required(m, "condition", what); cond != nil {
		body.Condition = b.buildExpr(cond)
		body.Location = b.loc(cond)
	}
	return body
}

func (b *builder) buildLets(n *yaml.Node) []*ast.VarDecl {
	if n.Kind != yaml.SequenceNode {
		b.fail(n, "let must be a list, found %s", kindName(n))
		return nil
	}
	lets := make([]*ast.VarDecl, 0, len(n.Content))
	for _, item := range n.Content {
		item = deref(item)
		if item.Kind != yaml.MappingNode {
			b.fail(item, "variable must be a mapping with name and value")
			continue
		}
		lm := newMapping(item)
		b.allow(lm, "variable", []string{"name", "value"})
		decl := &ast.VarDecl{Location: b.loc(item)}
		if v := b.required(lm, "name", "variable"); v != nil {
			decl.Name = b.name(v, "variable name")
		}
		if v := b.required(lm, "value", "variable"); v != nil {
			decl.Value = b.buildExpr(v)
		}
		lets = append(lets, decl)
	}
	return lets
}

// buildPath splits a dotted scalar into a path. Qualified element names
// keep their package separator inside a single step.
func (b *builder) buildPath(n *yaml.Node) *ast.PathExpr {
	n = deref(n)
	s, err := scalarString(n)
	if err != nil {
		b.fail(n, "path: %v", err)
		return nil
	}
	loc := b.loc(n)
	if quoted(n) {
		loc = loc.Offset(1)
	}
	parts := strings.Split(s, ".")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
		if parts[i] == "" {
			b.errors.Addf(brlerrors.CodeStructural, loc, len(s), "malformed path %q", s)
			return nil
		}
	}
	return ast.NewPath(loc, parts...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
