package ast

// Visitor receives scoped traversal callbacks. VisitBefore decides whether
// the children of n are visited. VisitAfter is called for every node that
// VisitBefore was called for, including nodes whose children were skipped,
// so state pushed in VisitBefore can always be popped in VisitAfter.
type Visitor interface {
	VisitBefore(n Node) bool
	VisitAfter(n Node)
}

// Walk traverses the tree rooted at n depth-first in source order.
func Walk(n Node, v Visitor) {
	if n == nil {
		return
	}
	if v.VisitBefore(n) {
		for _, c := range Children(n) {
			Walk(c, v)
		}
	}
	v.VisitAfter(n)
}

// funcVisitor adapts two functions to Visitor.
type funcVisitor struct {
	before func(Node) bool
	after  func(Node)
}

func (f funcVisitor) VisitBefore(n Node) bool {
	if f.before == nil {
		return true
	}
	return f.before(n)
}

func (f funcVisitor) VisitAfter(n Node) {
	if f.after != nil {
		f.after(n)
	}
}

// Inspect walks n calling before and after around each node. Either may be nil.
func Inspect(n Node, before func(Node) bool, after func(Node)) {
	Walk(n, funcVisitor{before: before, after: after})
}

// Children returns the direct children of n in source order. Nil optional
// children are omitted.
func Children(n Node) []Node {
	var out []Node
	addExpr := func(e Expr) {
		if e != nil {
			out = append(out, e)
		}
	}
	addAction := func(a Action) {
		if a != nil {
			out = append(out, a)
		}
	}
	addPath := func(p *PathExpr) {
		if p != nil {
			out = append(out, p)
		}
	}
	addBody := func(b *ConstraintBody) {
		if b != nil {
			out = append(out, b)
		}
	}
	addParams := func(ps []*Param) {
		for _, p := range ps {
			out = append(out, p)
		}
	}

	switch x := n.(type) {
	case *RuleFile:
		for _, d := range x.Declarations {
			out = append(out, d)
		}
	case *ContextDecl:
		addPath(x.Context)
		addParams(x.Params)
		addBody(x.Precondition)
		addBody(x.Constraint)
		addAction(x.Action)
	case *MultiContextDecl:
		addParams(x.Params)
		addBody(x.Precondition)
		addBody(x.Constraint)
		addAction(x.Action)
	case *RuleSet:
		addPath(x.Context)
		addBody(x.Precondition)
	case *GlobalVar:
		if x.Decl != nil {
			out = append(out, x.Decl)
		}
	case *Param:
		addPath(x.Type)
	case *ConstraintBody:
		for _, l := range x.Lets {
			out = append(out, l)
		}
		addExpr(x.Condition)
	case *VarDecl:
		addExpr(x.Value)
	case *Binary:
		addExpr(x.Left)
		addExpr(x.Right)
	case *Unary:
		addExpr(x.Operand)
	case *Existence:
		addPath(x.Target)
		addExpr(x.Condition)
	case *Universal:
		addPath(x.Target)
		addExpr(x.Condition)
	case *NumberOf:
		addPath(x.Target)
		addExpr(x.Condition)
	case *Selection:
		addPath(x.Target)
		addExpr(x.Condition)
	case *CollectionIndex:
		addPath(x.Target)
	case *Cast:
		addExpr(x.Operand)
	case *TypeTest:
		addExpr(x.Operand)
	case *OperatorCall:
		for _, a := range x.Args {
			addExpr(a)
		}
	case *Compound:
		for _, a := range x.Actions {
			addAction(a)
		}
	case *ForEach:
		addPath(x.Collection)
		addAction(x.Body)
	case *Create:
		addPath(x.Target)
		addAction(x.Body)
	case *Remove:
		addPath(x.Target)
		addExpr(x.Condition)
	case *Assign:
		addPath(x.Target)
		addExpr(x.Value)
	case *If:
		addExpr(x.Condition)
		addAction(x.Then)
		addAction(x.Else)
	case *OperatorAction:
		for _, a := range x.Args {
			addExpr(a)
		}
	case *PathExpr, *Literal:
		// leaves
	}
	return out
}
