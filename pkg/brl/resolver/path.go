package resolver

import (
	"strings"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
	"mercator-hq/saturn/pkg/model"
)

// VariableLookup finds variables in scope. *Scope and *Frame implement it.
type VariableLookup interface {
	Lookup(name string) *ast.Variable
}

// PathResolver binds the steps of path expressions for one declaration body.
type PathResolver struct {
	models  ModelService
	own     model.Element // the declaration's own context
	vars    VariableLookup
	globals VariableLookup
	errs    *brlerrors.ErrorList
}

// NewPathResolver creates a path resolver for a body whose own context is
// own. vars and globals may be nil.
func NewPathResolver(models ModelService, own model.Element, vars, globals VariableLookup, errs *brlerrors.ErrorList) *PathResolver {
	if own == nil {
		own = model.NoContext
	}
	return &PathResolver{models: models, own: own, vars: vars, globals: globals, errs: errs}
}

// Resolve binds p relative to the navigation context current. A path that
// is already resolved is left untouched. On failure the path is reset, at
// least one error is reported, and false is returned.
func (r *PathResolver) Resolve(p *ast.PathExpr, current model.Element) bool {
	if p.IsResolved() {
		return true
	}
	if len(p.Steps) == 0 {
		r.errs.Addf(brlerrors.CodeUnknownElementOrAttr, p.Location, 0, "empty reference")
		p.Reset()
		return false
	}

	res, ok := r.initial(p, current)
	if !ok {
		p.Reset()
		return false
	}
	if !r.remaining(p, res) {
		p.Reset()
		return false
	}
	canonicalize(res, r.own)
	p.Resolve(res)
	return true
}

// initial binds the first step using the five lookup tiers.
func (r *PathResolver) initial(p *ast.PathExpr, current model.Element) (*ast.Resolution, bool) {
	step := p.Steps[0]
	name := step.Name
	qualified := strings.Contains(name, model.PackageSeparator)

	if !qualified {
		if current != r.own {
			if c, ok := model.AsClassifier(current); ok {
				if a := c.AttributeByName(name, true); a != nil {
					return &ast.Resolution{RefType: ast.RefContextAttribute, Attribute: a}, true
				}
			}
		}
		if c, ok := model.AsClassifier(r.own); ok {
			if a := c.AttributeByName(name, true); a != nil {
				return &ast.Resolution{RefType: ast.RefTopContextAttribute, Attribute: a}, true
			}
		}
	}

	if qualified {
		e, code := lookupQualified(r.models, name)
		if e == nil {
			r.reportQualified(code, step)
			return nil, false
		}
		return &ast.Resolution{RefType: ast.RefElement, Element: e}, true
	}
	if e := r.models.Primitive(name); e != nil {
		return &ast.Resolution{RefType: ast.RefElement, Element: e}, true
	}
	if r.models.IsAmbiguous(name) {
		r.errs.Addf(brlerrors.CodeElementAmbiguous, step.Location, len(name),
			"'%s' is declared in more than one package; qualify it with its package", name)
		return nil, false
	}
	if e := r.models.ElementByName(name); e != nil {
		return &ast.Resolution{RefType: ast.RefElement, Element: e}, true
	}

	if r.vars != nil {
		if v := r.vars.Lookup(name); v != nil {
			return &ast.Resolution{RefType: ast.RefVariable, Variable: v}, true
		}
	}

	if r.globals != nil {
		if v := r.globals.Lookup(name); v != nil {
			if len(p.Steps) > 1 {
				r.errs.Addf(brlerrors.CodeGlobalVariableNavigation, p.Steps[1].Location, len(p.Steps[1].Name),
					"global variable '%s' cannot be navigated", name)
				return nil, false
			}
			return &ast.Resolution{RefType: ast.RefGlobalVariable, Variable: v}, true
		}
	}

	err := r.errs.Addf(brlerrors.CodeUnknownElementOrAttr, step.Location, len(name),
		"unknown element, attribute or variable '%s'", name)
	err.Suggestion = brlerrors.SuggestName(name, r.candidates(current))
	return nil, false
}

// remaining binds every step after the first as an attribute of the
// previous step's type and applies the static and enum literal rules.
func (r *PathResolver) remaining(p *ast.PathExpr, res *ast.Resolution) bool {
	if len(p.Steps) == 1 {
		if res.Attribute != nil && res.Attribute.EnumLiteral {
			return r.enumLiteralError(p.Steps[0], res.Attribute)
		}
		return true
	}

	running, ok := r.navigable(p.Steps[0], res)
	if !ok {
		return false
	}

	steps := p.Steps[1:]
	for i, step := range steps {
		a := running.AttributeByName(step.Name, true)
		if a == nil {
			err := r.errs.Addf(brlerrors.CodeUnknownElementOrAttr, step.Location, len(step.Name),
				"'%s' is not an attribute of '%s'", step.Name, running.Name())
			err.Suggestion = brlerrors.SuggestName(step.Name, attributeNames(running))
			return false
		}
		res.Remaining = append(res.Remaining, a)
		if i == len(steps)-1 {
			break
		}
		next, ok := model.AsClassifier(a.Type)
		if !ok {
			r.errs.Addf(brlerrors.CodeDatatypeNavigation, step.Location, len(step.Name),
				"'%s' is of simple type '%s' and cannot occur mid-reference", step.Name, typeName(a.Type))
			return false
		}
		running = next
	}

	last := res.Remaining[len(res.Remaining)-1]
	lastStep := steps[len(steps)-1]
	if res.RefType == ast.RefElement && !last.Static && res.Element != r.own {
		r.errs.Addf(brlerrors.CodeStaticRefToNonStatic, lastStep.Location, len(lastStep.Name),
			"'%s' is not static and cannot be referenced through '%s'", last.Name, res.Element.Name())
		return false
	}
	if last.EnumLiteral {
		rootedAtEnum := res.RefType == ast.RefElement && res.Element == model.Element(last.Owner) && len(p.Steps) <= 2
		if !rootedAtEnum {
			return r.enumLiteralError(lastStep, last)
		}
	}
	return true
}

func (r *PathResolver) enumLiteralError(step *ast.Step, literal *model.Attribute) bool {
	r.errs.Addf(brlerrors.CodeEnumLiteralAccess, step.Location, len(step.Name),
		"enumeration literal '%s' must be referenced as '%s.%s'", literal.Name, literal.Owner.Name(), literal.Name)
	return false
}

// navigable returns the classifier the second step is looked up on.
func (r *PathResolver) navigable(first *ast.Step, res *ast.Resolution) (model.Classifier, bool) {
	switch res.RefType {
	case ast.RefVariable, ast.RefGlobalVariable:
		v := res.Variable
		if v.Element == nil {
			r.errs.Addf(brlerrors.CodeIllegalVariableNav, first.Location, len(first.Name),
				"variable '%s' is not bound to a model element and cannot be navigated", v.Name)
			return nil, false
		}
		if c, ok := model.AsClassifier(v.Element); ok {
			return c, true
		}
		r.errs.Addf(brlerrors.CodeDatatypeNavigation, first.Location, len(first.Name),
			"variable '%s' is of simple type '%s' and cannot be navigated", v.Name, typeName(v.Element))
		return nil, false
	default:
		head := res.Head()
		if c, ok := model.AsClassifier(head); ok {
			return c, true
		}
		r.errs.Addf(brlerrors.CodeDatatypeNavigation, first.Location, len(first.Name),
			"'%s' is of simple type '%s' and cannot occur mid-reference", first.Name, typeName(head))
		return nil, false
	}
}

func (r *PathResolver) reportQualified(code brlerrors.Code, step *ast.Step) {
	switch code {
	case brlerrors.CodeInvalidPackageReference:
		r.errs.Addf(code, step.Location, len(step.Name), "'%s' does not name a package path", step.Name)
	default:
		r.errs.Addf(brlerrors.CodeUnknownElementOrAttr, step.Location, len(step.Name), "unknown element '%s'", step.Name)
	}
}

// LookupElement finds a model element or primitive by possibly qualified
// name, reporting a diagnostic at loc on failure. It is used for cast and
// type test targets, which name a type rather than navigate to one.
func (r *PathResolver) LookupElement(name string, loc ast.Location) model.Element {
	if strings.Contains(name, model.PackageSeparator) {
		e, code := lookupQualified(r.models, name)
		if e == nil {
			r.reportQualified(code, &ast.Step{Name: name, Location: loc})
		}
		return e
	}
	if e := r.models.Primitive(name); e != nil {
		return e
	}
	if r.models.IsAmbiguous(name) {
		r.errs.Addf(brlerrors.CodeElementAmbiguous, loc, len(name),
			"'%s' is declared in more than one package; qualify it with its package", name)
		return nil
	}
	if e := r.models.ElementByName(name); e != nil {
		return e
	}
	err := r.errs.Addf(brlerrors.CodeUnknownElementOrAttr, loc, len(name), "unknown element '%s'", name)
	err.Suggestion = brlerrors.SuggestName(name, r.models.ElementNames())
	return nil
}

func (r *PathResolver) candidates(current model.Element) []string {
	var names []string
	if c, ok := model.AsClassifier(current); ok {
		names = append(names, attributeNames(c)...)
	}
	if c, ok := model.AsClassifier(r.own); ok && current != r.own {
		names = append(names, attributeNames(c)...)
	}
	return append(names, r.models.ElementNames()...)
}

// lookupQualified walks a "pkg::sub::Name" reference. It returns the
// element, or nil and the code describing why the lookup failed.
func lookupQualified(models ModelService, name string) (model.Element, brlerrors.Code) {
	parts := strings.Split(name, model.PackageSeparator)
	for _, part := range parts {
		if part == "" {
			return nil, brlerrors.CodeInvalidPackageReference
		}
	}
	pkg := models.PackageByName(parts[0])
	if pkg == nil {
		return nil, brlerrors.CodeInvalidPackageReference
	}
	for _, part := range parts[1 : len(parts)-1] {
		if pkg = pkg.PackageByName(part); pkg == nil {
			return nil, brlerrors.CodeInvalidPackageReference
		}
	}
	if e := pkg.ElementByName(parts[len(parts)-1]); e != nil {
		return e, ""
	}
	return nil, brlerrors.CodeUnknownElementOrAttr
}

// canonicalize rewrites "OwnContext.attr..." into a top-context attribute
// reference.
func canonicalize(res *ast.Resolution, own model.Element) {
	if res.RefType != ast.RefElement || res.Element != own || len(res.Remaining) == 0 {
		return
	}
	res.RefType = ast.RefTopContextAttribute
	res.Attribute = res.Remaining[0]
	res.Element = nil
	res.Remaining = res.Remaining[1:]
}

func attributeNames(c model.Classifier) []string {
	var names []string
	if class, ok := c.(*model.Class); ok {
		for _, a := range class.AllAttributes() {
			names = append(names, a.Name)
		}
		return names
	}
	for _, a := range c.Attributes() {
		names = append(names, a.Name)
	}
	return names
}

func typeName(e model.Element) string {
	if e == nil {
		return "unknown"
	}
	return e.Name()
}
