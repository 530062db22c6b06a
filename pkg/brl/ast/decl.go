package ast

import "mercator-hq/saturn/pkg/model"

// DeclKind distinguishes constraints from actions.
type DeclKind string

const (
	DeclConstraint DeclKind = "constraint"
	DeclAction     DeclKind = "action"
)

// Param is a declaration parameter: a name and a type reference.
type Param struct {
	Name     string
	Type     *PathExpr
	Element  model.Element // set during resolution
	Location Location
}

// ContextDecl is a constraint or action bound to a single context element.
// Actions may omit the context.
type ContextDecl struct {
	Kind           DeclKind
	Name           string
	Context        *PathExpr     // nil for context-free actions
	ContextElement model.Element // set during resolution
	Params         []*Param
	Precondition   *ConstraintBody // optional
	Constraint     *ConstraintBody // for constraints
	Action         Action          // for actions
	Location       Location
}

// MultiContextDecl is a fragment whose contexts are all given as parameters.
type MultiContextDecl struct {
	Kind         DeclKind
	Name         string
	Params       []*Param
	Precondition *ConstraintBody
	Constraint   *ConstraintBody
	Action       Action
	Location     Location
}

// RuleSet groups rules under a shared context and precondition.
type RuleSet struct {
	Name           string
	Context        *PathExpr
	ContextElement model.Element
	Precondition   *ConstraintBody
	Location       Location
}

// GlobalVar is a file-level variable visible to every declaration.
type GlobalVar struct {
	Decl     *VarDecl
	Location Location
}

func (*ContextDecl) declNode()      {}
func (*MultiContextDecl) declNode() {}
func (*RuleSet) declNode()          {}
func (*GlobalVar) declNode()        {}

func (d *ContextDecl) DeclName() string      { return d.Name }
func (d *MultiContextDecl) DeclName() string { return d.Name }
func (d *RuleSet) DeclName() string          { return d.Name }
func (d *GlobalVar) DeclName() string        { return d.Decl.Name }

func (d *ContextDecl) Pos() Location      { return d.Location }
func (d *MultiContextDecl) Pos() Location { return d.Location }
func (d *RuleSet) Pos() Location          { return d.Location }
func (d *GlobalVar) Pos() Location        { return d.Location }
func (p *Param) Pos() Location            { return p.Location }
