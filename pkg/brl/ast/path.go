package ast

import (
	"strings"

	"mercator-hq/saturn/pkg/model"
)

// RefType says how the first step of a resolved path was found.
type RefType int

const (
	// RefContextAttribute is an attribute of the current navigation context.
	RefContextAttribute RefType = iota + 1
	// RefTopContextAttribute is an attribute of the declaration's own context.
	RefTopContextAttribute
	// RefElement is a model element or primitive.
	RefElement
	// RefVariable is a variable from the frame stack.
	RefVariable
	// RefGlobalVariable is a file-level global variable.
	RefGlobalVariable
)

var refTypeNames = map[RefType]string{
	RefContextAttribute:    "context-attribute",
	RefTopContextAttribute: "top-context-attribute",
	RefElement:             "element",
	RefVariable:            "variable",
	RefGlobalVariable:      "global-variable",
}

func (r RefType) String() string {
	if s, ok := refTypeNames[r]; ok {
		return s
	}
	return "unresolved"
}

// Step is one dot-separated segment of a path. A step may carry a
// package-qualified name such as "trading::Trade".
type Step struct {
	Name     string
	Location Location
}

// Resolution is the outcome of resolving a path.
type Resolution struct {
	RefType   RefType
	Attribute *model.Attribute // initial attribute for the two attribute ref types
	Element   model.Element    // for RefElement
	Variable  *Variable        // for the two variable ref types
	Remaining []*model.Attribute
}

// Head returns the type of the initial step.
func (r *Resolution) Head() model.Element {
	switch r.RefType {
	case RefContextAttribute, RefTopContextAttribute:
		if r.Attribute != nil {
			return r.Attribute.Type
		}
	case RefElement:
		return r.Element
	case RefVariable, RefGlobalVariable:
		if r.Variable != nil {
			return r.Variable.Element
		}
	}
	return nil
}

// Type returns the type the whole path evaluates to. It is nil when the path
// ends in a variable bound to an expression or left unbound.
func (r *Resolution) Type() model.Element {
	if n := len(r.Remaining); n > 0 {
		return r.Remaining[n-1].Type
	}
	return r.Head()
}

// Last returns the final attribute of the path, if it ends in one.
func (r *Resolution) Last() *model.Attribute {
	if n := len(r.Remaining); n > 0 {
		return r.Remaining[n-1]
	}
	if r.RefType == RefContextAttribute || r.RefType == RefTopContextAttribute {
		return r.Attribute
	}
	return nil
}

// PathExpr is a dotted reference such as "trade.legs.amount".
type PathExpr struct {
	Steps    []*Step
	Location Location
	Resolved *Resolution // nil until resolved
}

func (*PathExpr) exprNode()       {}
func (p *PathExpr) Pos() Location { return p.Location }

// IsResolved reports whether a resolution has been committed.
func (p *PathExpr) IsResolved() bool { return p.Resolved != nil }

// Resolve commits r.
func (p *PathExpr) Resolve(r *Resolution) { p.Resolved = r }

// Reset clears any resolution so that a later pass can try again.
func (p *PathExpr) Reset() { p.Resolved = nil }

// Names returns the step names.
func (p *PathExpr) Names() []string {
	names := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		names[i] = s.Name
	}
	return names
}

func (p *PathExpr) String() string { return strings.Join(p.Names(), ".") }

// NewPath builds an unresolved path from step names, all at loc.
func NewPath(loc Location, names ...string) *PathExpr {
	p := &PathExpr{Location: loc}
	col := 0
	for _, n := range names {
		p.Steps = append(p.Steps, &Step{Name: n, Location: loc.Offset(col)})
		col += len(n) + 1
	}
	return p
}
