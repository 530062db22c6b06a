package ast

import (
	"mercator-hq/saturn/pkg/model"
	"mercator-hq/saturn/pkg/operators"
)

// LiteralKind is the lexical kind of a literal.
type LiteralKind string

const (
	LiteralString  LiteralKind = "string"
	LiteralInteger LiteralKind = "integer"
	LiteralNumber  LiteralKind = "number"
	LiteralBoolean LiteralKind = "boolean"
	LiteralDate    LiteralKind = "date"
	LiteralNull    LiteralKind = "null"
)

// Literal is a constant value.
type Literal struct {
	Kind     LiteralKind
	Value    string // Source text of the value
	Location Location
}

// Type returns the primitive the literal evaluates to, or nil for null.
func (l *Literal) Type() model.Element {
	if p, ok := model.PrimitiveByName(string(l.Kind)); ok {
		return p
	}
	return nil
}

// Binary is a binary operation such as a comparison or a logical connective.
type Binary struct {
	Op       string // "and", "or", "=", "!=", "<", ">", "<=", ">=", "+", "-", "*", "/"
	Left     Expr
	Right    Expr
	Location Location
}

// Unary is a prefix operation. Only "not" and "-" are produced by the parser.
type Unary struct {
	Op       string
	Operand  Expr
	Location Location
}

// Quantity is the quantifier of an existence expression.
type Quantity string

const (
	QuantityOne     Quantity = "one"
	QuantitySome    Quantity = "some"
	QuantityNone    Quantity = "none"
	QuantityAtLeast Quantity = "at-least"
	QuantityAtMost  Quantity = "at-most"
	QuantityExactly Quantity = "exactly"
)

// Counted reports whether the quantity uses Count.
func (q Quantity) Counted() bool {
	return q == QuantityAtLeast || q == QuantityAtMost || q == QuantityExactly
}

// Existence is "there is one/some/no/at least N <target> [named v] [where cond]".
type Existence struct {
	Quantity  Quantity
	Count     int
	Target    *PathExpr
	Variable  string // optional name bound to each target instance
	Condition Expr   // optional
	Location  Location

	// EnclosingContext is the navigation context the expression appeared
	// in. It is recorded during resolution.
	EnclosingContext model.Element
}

// Universal is "each <target> [named v] satisfies cond".
type Universal struct {
	Target    *PathExpr
	Variable  string
	Condition Expr
	Location  Location
}

// NumberOf is "the number of <target> [where cond]".
type NumberOf struct {
	Target    *PathExpr
	Condition Expr
	Location  Location
}

// Selection is "the <target> where cond", yielding a sub-collection.
type Selection struct {
	Target    *PathExpr
	Condition Expr
	Location  Location
}

// CollectionIndex is "the Nth <target>". Index is 1-based; 0 means last.
type CollectionIndex struct {
	Index    int
	Target   *PathExpr
	Location Location
}

// Cast is "<operand> as <type>".
type Cast struct {
	Operand  Expr
	TypeName string
	Type     model.Element // set during resolution
	Location Location
}

// TypeTest is "<operand> is [not] a <type>".
type TypeTest struct {
	Operand  Expr
	TypeName string
	Negated  bool
	Type     model.Element // set during resolution
	Location Location
}

// OperatorCall is a call to a catalogue operator in expression position.
type OperatorCall struct {
	Name     string
	Args     []Expr
	Operator *operators.Operator // set by the operator pass
	Location Location
}

// VarDecl is "let <name> be <value>". It is an action and may also lead a
// constraint body. Global variables wrap a VarDecl.
type VarDecl struct {
	Name     string
	Value    Expr
	Var      *Variable // set during resolution
	Location Location
}

// ConstraintBody is a list of leading variable declarations followed by
// a condition. It is used for constraints and preconditions.
type ConstraintBody struct {
	Lets      []*VarDecl
	Condition Expr
	Location  Location
}

func (*Literal) exprNode()         {}
func (*Binary) exprNode()          {}
func (*Unary) exprNode()           {}
func (*Existence) exprNode()       {}
func (*Universal) exprNode()       {}
func (*NumberOf) exprNode()        {}
func (*Selection) exprNode()       {}
func (*CollectionIndex) exprNode() {}
func (*Cast) exprNode()            {}
func (*TypeTest) exprNode()        {}
func (*OperatorCall) exprNode()    {}

func (x *Literal) Pos() Location         { return x.Location }
func (x *Binary) Pos() Location          { return x.Location }
func (x *Unary) Pos() Location           { return x.Location }
func (x *Existence) Pos() Location       { return x.Location }
func (x *Universal) Pos() Location       { return x.Location }
func (x *NumberOf) Pos() Location        { return x.Location }
func (x *Selection) Pos() Location       { return x.Location }
func (x *CollectionIndex) Pos() Location { return x.Location }
func (x *Cast) Pos() Location            { return x.Location }
func (x *TypeTest) Pos() Location        { return x.Location }
func (x *OperatorCall) Pos() Location    { return x.Location }
func (x *VarDecl) Pos() Location         { return x.Location }
func (x *ConstraintBody) Pos() Location  { return x.Location }
