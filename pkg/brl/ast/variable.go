package ast

import "mercator-hq/saturn/pkg/model"

// Variable is a named binding. A variable is bound either to a model element
// (Element) or to an expression (Expr); both are nil when the bound value
// could not be resolved, in which case navigating through it is an error.
type Variable struct {
	Name    string
	Element model.Element
	Expr    Expr
	Global  bool
	Decl    Node // declaring node: a VarDecl, a Param, or a quantifier
}

// BoundToElement reports whether the variable can be navigated into.
func (v *Variable) BoundToElement() bool { return v.Element != nil }
