package resolver

import (
	"mercator-hq/saturn/pkg/brl/ast"
)

// EliminateBackReferences rewrites existence statements that only restate
// their enclosing context. Inside a Trade constraint, "one Trade has X" is
// rewritten to "X". Only unnamed one/some quantifiers whose target is a
// bare element reference equal to the enclosing navigation context are
// rewritten.
func EliminateBackReferences(n ast.Node) int {
	rewritten := 0
	ast.Rewrite(n, func(e ast.Expr) ast.Expr {
		x, ok := e.(*ast.Existence)
		if !ok || !isBackReference(x) {
			return e
		}
		rewritten++
		return x.Condition
	})
	return rewritten
}

func isBackReference(x *ast.Existence) bool {
	if x.Quantity != ast.QuantityOne && x.Quantity != ast.QuantitySome {
		return false
	}
	if x.Variable != "" || x.Condition == nil || x.EnclosingContext == nil {
		return false
	}
	t := x.Target
	if t == nil || !t.IsResolved() {
		return false
	}
	res := t.Resolved
	return res.RefType == ast.RefElement && len(res.Remaining) == 0 && res.Element == x.EnclosingContext
}
