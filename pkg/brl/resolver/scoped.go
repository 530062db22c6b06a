package resolver

import (
	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
	"mercator-hq/saturn/pkg/model"
)

// bodyWalker resolves one declaration body. Every push made in VisitBefore
// is held as a guard keyed by the node and released in VisitAfter.
type bodyWalker struct {
	scope  *Scope
	paths  *PathResolver
	errs   *brlerrors.ErrorList
	guards map[ast.Node][]*Guard
}

func newBodyWalker(scope *Scope, paths *PathResolver, errs *brlerrors.ErrorList) *bodyWalker {
	return &bodyWalker{
		scope:  scope,
		paths:  paths,
		errs:   errs,
		guards: make(map[ast.Node][]*Guard),
	}
}

func (w *bodyWalker) hold(n ast.Node, g *Guard) {
	w.guards[n] = append(w.guards[n], g)
}

// release pops everything held for n, innermost first.
func (w *bodyWalker) release(n ast.Node) {
	gs, ok := w.guards[n]
	if !ok {
		return
	}
	for i := len(gs) - 1; i >= 0; i-- {
		gs[i].Release()
	}
	delete(w.guards, n)
}

// resolve resolves p against the current navigation context.
func (w *bodyWalker) resolve(p *ast.PathExpr) bool {
	return w.paths.Resolve(p, w.scope.Context())
}

func (w *bodyWalker) VisitBefore(n ast.Node) bool {
	switch x := n.(type) {
	case *ast.PathExpr:
		w.resolve(x)
		return false
	case *ast.Existence:
		x.EnclosingContext = w.scope.Context()
		return w.enterQuantifier(x, x.Target, x.Variable)
	case *ast.Universal:
		return w.enterQuantifier(x, x.Target, x.Variable)
	case *ast.NumberOf:
		return w.enterSelection(x, x.Target)
	case *ast.Selection:
		return w.enterSelection(x, x.Target)
	case *ast.Compound:
		w.hold(x, w.scope.PushFrame())
		return true
	case *ast.ForEach:
		return w.enterIteration(x, x.Collection, x.Variable, true)
	case *ast.Remove:
		return w.enterIteration(x, x.Target, x.Variable, false)
	case *ast.Create:
		return w.enterCreate(x)
	}
	return true
}

func (w *bodyWalker) VisitAfter(n ast.Node) {
	switch x := n.(type) {
	case *ast.Cast:
		x.Type = w.paths.LookupElement(x.TypeName, x.Location)
	case *ast.TypeTest:
		x.Type = w.paths.LookupElement(x.TypeName, x.Location)
	case *ast.VarDecl:
		w.declare(x)
	}
	w.release(n)
}

// enterQuantifier handles existence and universal quantifiers. A named
// quantifier binds its variable in a new frame; an unnamed one makes the
// target type the navigation context.
func (w *bodyWalker) enterQuantifier(n ast.Node, target *ast.PathExpr, name string) bool {
	if target == nil {
		return true
	}
	if !w.resolve(target) {
		return false
	}
	typ := target.Resolved.Type()
	if name != "" {
		w.hold(n, w.scope.PushFrame())
		w.scope.Bind(&ast.Variable{Name: name, Element: typ, Decl: n}, n, true)
		return true
	}
	w.hold(n, w.scope.PushContext(contextOf(typ)))
	return true
}

// enterSelection handles "number of" and selections, which always narrow
// the navigation context to the target type.
func (w *bodyWalker) enterSelection(n ast.Node, target *ast.PathExpr) bool {
	if target == nil {
		return true
	}
	if !w.resolve(target) {
		return false
	}
	w.hold(n, w.scope.PushContext(contextOf(target.Resolved.Type())))
	return true
}

// enterIteration handles foreach and remove. Foreach always opens a frame;
// remove opens one only to hold a named binding.
func (w *bodyWalker) enterIteration(n ast.Node, target *ast.PathExpr, name string, alwaysFrame bool) bool {
	if target == nil {
		return true
	}
	if !w.resolve(target) {
		return false
	}
	typ := target.Resolved.Type()
	if alwaysFrame || name != "" {
		w.hold(n, w.scope.PushFrame())
	}
	if name != "" {
		w.scope.Bind(&ast.Variable{Name: name, Element: typ, Decl: n}, n, true)
	} else {
		w.hold(n, w.scope.PushContext(contextOf(typ)))
	}
	return true
}

func (w *bodyWalker) enterCreate(x *ast.Create) bool {
	if x.Target == nil || !w.resolve(x.Target) {
		return false
	}
	typ := x.Target.Resolved.Type()
	class, ok := typ.(*model.Class)
	if !ok {
		w.errs.Addf(brlerrors.CodeCreateReferenceInvalid, x.Target.Location, len(x.Target.String()),
			"'%s' does not refer to a class and cannot be created", x.Target.String())
		return false
	}
	x.Type = class
	w.hold(x, w.scope.PushFrame())
	if x.Variable != "" {
		w.scope.Bind(&ast.Variable{Name: x.Variable, Element: class, Decl: x}, x, true)
	} else {
		w.hold(x, w.scope.PushContext(class))
	}
	return true
}

// declare binds a variable declaration into the current frame. The value
// has already been resolved by the time VisitAfter runs. A value that did
// not resolve still yields a variable, bound to nothing.
func (w *bodyWalker) declare(x *ast.VarDecl) {
	element, expr := bindingOf(x.Value)
	if x.Var != nil && x.Var.Global {
		x.Var.Element, x.Var.Expr = element, expr
		return
	}
	v := &ast.Variable{Name: x.Name, Element: element, Expr: expr, Decl: x}
	x.Var = v
	w.scope.Bind(v, x, true)
}

// bindingOf derives what a declared variable is bound to.
func bindingOf(e ast.Expr) (model.Element, ast.Expr) {
	switch x := e.(type) {
	case *ast.PathExpr:
		if x.IsResolved() {
			if t := x.Resolved.Type(); t != nil {
				return t, nil
			}
			if v := x.Resolved.Variable; v != nil {
				return nil, v.Expr
			}
		}
		return nil, nil
	case *ast.CollectionIndex:
		if x.Target != nil && x.Target.IsResolved() {
			return x.Target.Resolved.Type(), nil
		}
		return nil, nil
	case *ast.Selection:
		if x.Target != nil && x.Target.IsResolved() {
			return x.Target.Resolved.Type(), nil
		}
		return nil, nil
	case *ast.NumberOf:
		return model.Integer, nil
	case *ast.Literal:
		if t := x.Type(); t != nil {
			return t, nil
		}
		return nil, x
	case *ast.Cast:
		if x.Type != nil {
			return x.Type, nil
		}
		return nil, nil
	case nil:
		return nil, nil
	default:
		return nil, e
	}
}

// contextOf maps an unknown type to the no-context sentinel so that the
// context stack never holds nil.
func contextOf(e model.Element) model.Element {
	if e == nil {
		return model.NoContext
	}
	return e
}
