package ast

// Node is implemented by every element of a parsed rule file.
type Node interface {
	Pos() Location
}

// Expr is a node that yields a value.
type Expr interface {
	Node
	exprNode()
}

// Action is a node that changes model state when a rule fires.
type Action interface {
	Node
	actionNode()
}

// Decl is a top-level declaration in a rule file.
type Decl interface {
	Node
	DeclName() string
	declNode()
}

// RuleFile is the root of a parsed rule file.
type RuleFile struct {
	Path         string
	Declarations []Decl
	Location     Location
}

func (f *RuleFile) Pos() Location { return f.Location }

// ByName returns the first declaration with the given name.
func (f *RuleFile) ByName(name string) Decl {
	for _, d := range f.Declarations {
		if d.DeclName() == name {
			return d
		}
	}
	return nil
}
