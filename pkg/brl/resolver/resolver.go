package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
	"mercator-hq/saturn/pkg/model"
	"mercator-hq/saturn/pkg/operators"
)

// Observer is notified around every body walk. The context returned by
// BodyStarted is passed to the matching BodyFinished.
type Observer interface {
	BodyStarted(ctx context.Context, d ast.Decl) context.Context
	BodyFinished(ctx context.Context, d ast.Decl, errs *brlerrors.ErrorList)
}

// Resolver binds every reference in a rule file against a model and a list
// of operator catalogues. A Resolver holds no per-run state and may be
// reused, but two runs must not share a tree.
type Resolver struct {
	models     ModelService
	catalogues operators.Catalogues
	logger     *slog.Logger
	observer   Observer
	cleanup    bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithObserver registers an observer for body walks.
func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// WithCleanup enables or disables the back-reference cleanup pass. It is
// enabled by default.
func WithCleanup(enabled bool) Option {
	return func(r *Resolver) { r.cleanup = enabled }
}

// New creates a resolver.
func New(models ModelService, catalogues operators.Catalogues, opts ...Option) *Resolver {
	r := &Resolver{
		models:     models,
		catalogues: catalogues,
		logger:     slog.Default().With("component", "resolver"),
		cleanup:    true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of one resolution run.
type Result struct {
	File     *ast.RuleFile
	Errors   *brlerrors.ErrorList
	Resolved int // declaration bodies walked
	Skipped  int // declarations skipped because their context failed
}

// Resolve runs every resolution stage over file, mutating it in place.
// Errors in the rule file are reported in Result.Errors; the returned error
// is non-nil only when ctx is cancelled, which is checked between
// declarations.
func (r *Resolver) Resolve(ctx context.Context, file *ast.RuleFile) (*Result, error) {
	run := &run{
		Resolver: r,
		file:     file,
		errs:     brlerrors.NewErrorList(),
		globals:  NewFrame(),
		eligible: make(map[ast.Decl]bool),
	}

	run.assignDefaultContexts()
	run.bindGlobals()
	run.resolveContexts()
	run.resolveFragments()
	if err := run.walkDeclarations(ctx); err != nil {
		return run.result(), err
	}
	if err := run.walkRuleSets(ctx); err != nil {
		return run.result(), err
	}
	NewOperatorResolver(r.catalogues).Resolve(file, run.errs)
	if r.cleanup {
		EliminateBackReferences(file)
	}

	r.logger.Debug("resolution finished",
		"file", file.Path,
		"declarations", len(file.Declarations),
		"resolved", run.resolved,
		"skipped", run.skipped,
		"errors", run.errs.Count(),
	)
	return run.result(), nil
}

// run carries the state of one Resolve call.
type run struct {
	*Resolver
	file     *ast.RuleFile
	errs     *brlerrors.ErrorList
	globals  *Frame
	eligible map[ast.Decl]bool
	resolved int
	skipped  int
}

func (r *run) result() *Result {
	return &Result{File: r.file, Errors: r.errs, Resolved: r.resolved, Skipped: r.skipped}
}

// assignDefaultContexts gives context-free actions the no-context sentinel.
func (r *run) assignDefaultContexts() {
	for _, d := range r.file.Declarations {
		if cd, ok := d.(*ast.ContextDecl); ok && cd.Kind == ast.DeclAction && cd.Context == nil {
			cd.ContextElement = model.NoContext
		}
	}
}

// bindGlobals creates the variable of every global before any body is
// walked, so that bodies may refer to globals declared later in the file.
func (r *run) bindGlobals() {
	for _, d := range r.file.Declarations {
		g, ok := d.(*ast.GlobalVar)
		if !ok || g.Decl == nil {
			continue
		}
		v := &ast.Variable{Name: g.Decl.Name, Global: true, Decl: g.Decl}
		g.Decl.Var = v
		bindInto(r.globals, v, g.Decl, true, r.models, r.errs)
		r.eligible[g] = true
	}
}

func (r *run) resolveContexts() {
	for _, d := range r.file.Declarations {
		cd, ok := d.(*ast.ContextDecl)
		if !ok {
			continue
		}
		if cd.Context != nil {
			cd.ContextElement = r.typeOf(cd.Context, false)
		} else if cd.ContextElement == nil {
			r.errs.Addf(brlerrors.CodeContextUnknown, cd.Location, len(cd.Name), "%s '%s' has no context", cd.Kind, cd.Name)
		}
		paramsOK := r.resolveParams(cd.Params, cd.ContextElement)
		r.eligible[cd] = cd.ContextElement != nil && paramsOK
	}
}

func (r *run) resolveFragments() {
	for _, d := range r.file.Declarations {
		if md, ok := d.(*ast.MultiContextDecl); ok {
			r.eligible[md] = r.resolveParams(md.Params, nil)
		}
	}
}

// resolveParams resolves parameter types and checks parameter names against
// each other and against the attributes of the context.
func (r *run) resolveParams(params []*ast.Param, context model.Element) bool {
	ok := true
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if seen[p.Name] {
			r.errs.Addf(brlerrors.CodeRuleParameterNameClash, p.Location, len(p.Name), "parameter '%s' is declared more than once", p.Name)
		}
		seen[p.Name] = true
		if c, isClassifier := model.AsClassifier(context); isClassifier && c.AttributeByName(p.Name, true) != nil {
			r.errs.Addf(brlerrors.CodeRuleParameterNameClash, p.Location, len(p.Name),
				"parameter '%s' has the same name as an attribute of '%s'", p.Name, context.Name())
		}
		if p.Type == nil {
			r.errs.Addf(brlerrors.CodeContextUnknown, p.Location, len(p.Name), "parameter '%s' has no type", p.Name)
			ok = false
			continue
		}
		p.Element = r.typeOf(p.Type, true)
		if p.Element == nil {
			ok = false
		}
	}
	return ok
}

// typeOf resolves a declaration context or parameter type. These are
// single-step element references; simple types are only accepted for
// parameters.
func (r *run) typeOf(p *ast.PathExpr, allowSimple bool) model.Element {
	if p.IsResolved() && p.Resolved.RefType == ast.RefElement {
		return p.Resolved.Element
	}
	switch {
	case len(p.Steps) == 0:
		r.errs.Addf(brlerrors.CodeContextUnknown, p.Location, 0, "empty context reference")
		return nil
	case len(p.Steps) > 1:
		extra := p.Steps[1]
		r.errs.Addf(brlerrors.CodeContextNavigationTooLong, extra.Location, len(p.String())-len(p.Steps[0].Name)-1,
			"context '%s' must name a single element", p.String())
		return nil
	}

	step := p.Steps[0]
	name := step.Name
	var e model.Element
	if strings.Contains(name, model.PackageSeparator) {
		var code brlerrors.Code
		if e, code = lookupQualified(r.models, name); e == nil {
			if code != brlerrors.CodeInvalidPackageReference {
				code = brlerrors.CodeContextUnknown
			}
			r.errs.Addf(code, step.Location, len(name), "unknown context '%s'", name)
			return nil
		}
	} else if prim := r.models.Primitive(name); prim != nil {
		e = prim
	} else if r.models.IsAmbiguous(name) {
		r.errs.Addf(brlerrors.CodeElementAmbiguous, step.Location, len(name),
			"'%s' is declared in more than one package; qualify it with its package", name)
		return nil
	} else if e = r.models.ElementByName(name); e == nil {
		err := r.errs.Addf(brlerrors.CodeContextUnknown, step.Location, len(name), "unknown context '%s'", name)
		err.Suggestion = brlerrors.SuggestName(name, r.models.ElementNames())
		return nil
	}

	if !allowSimple && model.IsSimple(e) {
		r.errs.Addf(brlerrors.CodeContextIsSimpleType, step.Location, len(name),
			"'%s' is a simple type and cannot be used as a context", name)
		return nil
	}
	p.Resolve(&ast.Resolution{RefType: ast.RefElement, Element: e})
	return e
}

func (r *run) walkDeclarations(ctx context.Context) error {
	for _, d := range r.file.Declarations {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch x := d.(type) {
		case *ast.ContextDecl:
			r.walkIfEligible(ctx, x, x.ContextElement, x.Params, bodyNodes(x.Precondition, x.Constraint, x.Action))
		case *ast.MultiContextDecl:
			r.walkIfEligible(ctx, x, model.NoContext, x.Params, bodyNodes(x.Precondition, x.Constraint, x.Action))
		case *ast.GlobalVar:
			if x.Decl != nil {
				r.walkIfEligible(ctx, x, model.NoContext, nil, []ast.Node{x.Decl})
			}
		case *ast.RuleSet:
			// walked after every declaration
		}
	}
	return nil
}

func (r *run) walkRuleSets(ctx context.Context) error {
	for _, d := range r.file.Declarations {
		rs, ok := d.(*ast.RuleSet)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rs.ContextElement = model.NoContext
		if rs.Context != nil {
			rs.ContextElement = r.typeOf(rs.Context, false)
		}
		r.eligible[rs] = rs.ContextElement != nil
		r.walkIfEligible(ctx, rs, rs.ContextElement, nil, bodyNodes(rs.Precondition, nil, nil))
	}
	return nil
}

func (r *run) walkIfEligible(ctx context.Context, d ast.Decl, own model.Element, params []*ast.Param, body []ast.Node) {
	if !r.eligible[d] {
		r.skipped++
		r.logger.Debug("declaration skipped", "declaration", d.DeclName(), "line", d.Pos().Line)
		return
	}
	r.resolved++

	errs := brlerrors.NewErrorList()
	if r.observer != nil {
		ctx = r.observer.BodyStarted(ctx, d)
	}

	scope := NewScope(own, r.models, errs)
	base := scope.PushFrame()
	for _, p := range params {
		scope.Bind(&ast.Variable{Name: p.Name, Element: p.Element, Decl: p}, p, false)
	}
	w := newBodyWalker(scope, NewPathResolver(r.models, own, scope, r.globals, errs), errs)
	for _, n := range body {
		ast.Walk(n, w)
	}
	if scope.ContextDepth() != 1 || scope.FrameDepth() != 1 {
		panic(fmt.Sprintf("resolver: unbalanced scope after '%s' (contexts %d, frames %d)",
			d.DeclName(), scope.ContextDepth(), scope.FrameDepth()))
	}
	base.Release()

	r.errs.Merge(errs)
	if r.observer != nil {
		r.observer.BodyFinished(ctx, d, errs)
	}
}

func bodyNodes(pre, constraint *ast.ConstraintBody, action ast.Action) []ast.Node {
	var nodes []ast.Node
	if pre != nil {
		nodes = append(nodes, pre)
	}
	if constraint != nil {
		nodes = append(nodes, constraint)
	}
	if action != nil {
		nodes = append(nodes, action)
	}
	return nodes
}
