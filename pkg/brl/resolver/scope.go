package resolver

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
	"mercator-hq/saturn/pkg/model"
)

// Frame is an ordered set of variable bindings for one lexical region.
type Frame struct {
	vars  map[string]*ast.Variable
	order []*ast.Variable
}

// NewFrame creates an empty frame.
func NewFrame() *Frame {
	return &Frame{vars: make(map[string]*ast.Variable)}
}

// Lookup returns the variable bound to name in this frame.
func (f *Frame) Lookup(name string) *ast.Variable {
	return f.vars[name]
}

// Variables returns the bindings in the order they were made.
func (f *Frame) Variables() []*ast.Variable { return f.order }

func (f *Frame) put(v *ast.Variable) {
	f.vars[v.Name] = v
	f.order = append(f.order, v)
}

type guardKind int

const (
	contextGuard guardKind = iota
	frameGuard
)

// Guard is returned by every push and undoes exactly that push when
// released. Releasing a guard that is not on top of its stack, or releasing
// it twice, is a programming error and panics.
type Guard struct {
	scope    *Scope
	kind     guardKind
	depth    int
	released bool
}

// Release pops the context or frame pushed when the guard was created.
func (g *Guard) Release() {
	if g.released {
		panic("resolver: scope guard released twice")
	}
	s := g.scope
	switch g.kind {
	case contextGuard:
		if len(s.contexts) != g.depth {
			panic(fmt.Sprintf("resolver: context guard released out of order (stack depth %d, guard depth %d)", len(s.contexts), g.depth))
		}
		s.contexts = s.contexts[:g.depth-1]
	case frameGuard:
		if len(s.frames) != g.depth {
			panic(fmt.Sprintf("resolver: frame guard released out of order (stack depth %d, guard depth %d)", len(s.frames), g.depth))
		}
		s.frames = s.frames[:g.depth-1]
	}
	g.released = true
}

// Scope holds the navigation-context stack and the variable frame stack of
// one declaration body. A Scope must not be shared between bodies.
type Scope struct {
	contexts []model.Element
	frames   []*Frame
	models   ModelService
	errs     *brlerrors.ErrorList
}

// NewScope creates a scope whose context stack holds base. A nil base means
// model.NoContext. The frame stack starts empty.
func NewScope(base model.Element, models ModelService, errs *brlerrors.ErrorList) *Scope {
	if base == nil {
		base = model.NoContext
	}
	return &Scope{
		contexts: []model.Element{base},
		models:   models,
		errs:     errs,
	}
}

// Context returns the current navigation context.
func (s *Scope) Context() model.Element {
	return s.contexts[len(s.contexts)-1]
}

// Base returns the bottom of the context stack.
func (s *Scope) Base() model.Element {
	return s.contexts[0]
}

// ContextDepth returns the size of the context stack.
func (s *Scope) ContextDepth() int { return len(s.contexts) }

// FrameDepth returns the size of the frame stack.
func (s *Scope) FrameDepth() int { return len(s.frames) }

// PushContext makes e the current navigation context.
func (s *Scope) PushContext(e model.Element) *Guard {
	s.contexts = append(s.contexts, e)
	return &Guard{scope: s, kind: contextGuard, depth: len(s.contexts)}
}

// PushFrame opens a new, empty variable frame.
func (s *Scope) PushFrame() *Guard {
	s.frames = append(s.frames, NewFrame())
	return &Guard{scope: s, kind: frameGuard, depth: len(s.frames)}
}

// Lookup searches the frame stack from the innermost frame outwards.
func (s *Scope) Lookup(name string) *ast.Variable {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v := s.frames[i].Lookup(name); v != nil {
			return v
		}
	}
	return nil
}

// Bind adds v to the innermost frame. Naming problems are reported but the
// variable is bound regardless.
func (s *Scope) Bind(v *ast.Variable, decl ast.Node, checkDuplicates bool) {
	if len(s.frames) == 0 {
		panic("resolver: bind without an open frame")
	}
	bindInto(s.frames[len(s.frames)-1], v, decl, checkDuplicates, s.models, s.errs)
}

// bindInto validates and binds v into f. Only explicit variable
// declarations are checked for shadowing model elements; quantifier and
// parameter names are not.
func bindInto(f *Frame, v *ast.Variable, decl ast.Node, checkDuplicates bool, models ModelService, errs *brlerrors.ErrorList) {
	loc := ast.Location{}
	if decl != nil {
		loc = decl.Pos()
	}

	if !validIdentifier(v.Name) {
		errs.Addf(brlerrors.CodeInvalidVariableName, loc, len(v.Name), "'%s' is not a valid variable name", v.Name)
	}
	if checkDuplicates && f.Lookup(v.Name) != nil {
		errs.Addf(brlerrors.CodeDuplicateVariable, loc, len(v.Name), "variable '%s' is already declared in this scope", v.Name)
	}
	if _, isDecl := decl.(*ast.VarDecl); isDecl {
		if models.Primitive(v.Name) != nil || models.ElementByName(v.Name) != nil {
			errs.Addf(brlerrors.CodeVariableShadowsModel, loc, len(v.Name), "variable '%s' has the same name as a model element", v.Name)
		}
	}

	f.put(v)
}

func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	first, size := utf8.DecodeRuneInString(name)
	if !unicode.IsLetter(first) {
		return false
	}
	for _, r := range name[size:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
