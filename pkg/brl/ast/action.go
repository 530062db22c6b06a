package ast

import (
	"mercator-hq/saturn/pkg/model"
	"mercator-hq/saturn/pkg/operators"
)

// Compound is a sequence of actions sharing one variable frame.
type Compound struct {
	Actions  []Action
	Location Location
}

// ForEach runs Body once per element of Collection.
type ForEach struct {
	Collection *PathExpr
	Variable   string // optional
	Body       Action
	Location   Location
}

// Create instantiates Target, which must name a class.
type Create struct {
	Target   *PathExpr
	Variable string // optional name for the new instance
	Body     Action // optional initialisation actions
	Type     model.Element
	Location Location
}

// Remove deletes the elements of Target that satisfy Condition.
type Remove struct {
	Target    *PathExpr
	Variable  string
	Condition Expr // optional
	Location  Location
}

// Assign sets Target to Value.
type Assign struct {
	Target   *PathExpr
	Value    Expr
	Location Location
}

// If runs Then when Condition holds and Else otherwise.
type If struct {
	Condition Expr
	Then      Action
	Else      Action // optional
	Location  Location
}

// OperatorAction invokes a catalogue operator for its effect.
type OperatorAction struct {
	Name     string
	Args     []Expr
	Operator *operators.Operator
	Location Location
}

func (*Compound) actionNode()       {}
func (*ForEach) actionNode()        {}
func (*Create) actionNode()         {}
func (*Remove) actionNode()         {}
func (*Assign) actionNode()         {}
func (*If) actionNode()             {}
func (*OperatorAction) actionNode() {}
func (*VarDecl) actionNode()        {}

func (x *Compound) Pos() Location       { return x.Location }
func (x *ForEach) Pos() Location        { return x.Location }
func (x *Create) Pos() Location         { return x.Location }
func (x *Remove) Pos() Location         { return x.Location }
func (x *Assign) Pos() Location         { return x.Location }
func (x *If) Pos() Location             { return x.Location }
func (x *OperatorAction) Pos() Location { return x.Location }
