package model

import (
	"fmt"
	"sort"
	"strings"
)

// ElementKind classifies the elements a domain model can contain.
type ElementKind string

const (
	// KindClass is a class with attributes and an optional supertype.
	KindClass ElementKind = "class"
	// KindEnumeration is an enumeration whose literals behave as static attributes.
	KindEnumeration ElementKind = "enumeration"
	// KindDataType is a named simple type derived from a primitive.
	KindDataType ElementKind = "datatype"
	// KindPrimitive is a built-in simple type.
	KindPrimitive ElementKind = "primitive"
	// KindNone marks the "no context" sentinel.
	KindNone ElementKind = "none"
)

// PackageSeparator separates package segments in a qualified element name.
const PackageSeparator = "::"

// Element is any named type in the domain model.
type Element interface {
	Name() string
	QualifiedName() string
	Kind() ElementKind
	Package() *Package
}

// Classifier is an element that owns attributes and can therefore be
// navigated into.
type Classifier interface {
	Element
	// AttributeByName returns the named attribute or nil. When inherited is
	// true the supertype chain is searched as well.
	AttributeByName(name string, inherited bool) *Attribute
	// Attributes returns the attributes declared directly on the classifier.
	Attributes() []*Attribute
}

// AsClassifier reports whether e can be navigated into.
func AsClassifier(e Element) (Classifier, bool) {
	if e == nil {
		return nil, false
	}
	c, ok := e.(Classifier)
	return c, ok
}

// IsSimple reports whether e is a primitive or a data type.
func IsSimple(e Element) bool {
	if e == nil {
		return false
	}
	k := e.Kind()
	return k == KindPrimitive || k == KindDataType
}

// Attribute is a named, typed member of a classifier.
type Attribute struct {
	Name string
	Type Element
	// Owner is the classifier that declares the attribute.
	Owner Classifier
	// Many marks a collection-valued attribute.
	Many bool
	// Static attributes may be referenced through their owning element.
	Static bool
	// EnumLiteral marks the literals of an enumeration.
	EnumLiteral bool
}

func (a *Attribute) String() string {
	if a == nil {
		return "<nil>"
	}
	if a.Owner == nil {
		return a.Name
	}
	return a.Owner.Name() + "." + a.Name
}

// Class is a navigable model element with attributes.
type Class struct {
	name     string
	pkg      *Package
	Super    *Class
	Abstract bool
	attrs    []*Attribute
	byName   map[string]*Attribute
}

// NewClass creates a detached class. Use Package.AddClass to place it in a model.
func NewClass(name string) *Class {
	return &Class{name: name, byName: make(map[string]*Attribute)}
}

func (c *Class) Name() string          { return c.name }
func (c *Class) QualifiedName() string { return qualify(c.pkg, c.name) }
func (c *Class) Kind() ElementKind     { return KindClass }
func (c *Class) Package() *Package     { return c.pkg }

// Attributes returns the attributes declared directly on the class.
func (c *Class) Attributes() []*Attribute { return c.attrs }

// AddAttribute declares an attribute on the class.
func (c *Class) AddAttribute(name string, typ Element) *Attribute {
	a := &Attribute{Name: name, Type: typ, Owner: c}
	c.attrs = append(c.attrs, a)
	c.byName[name] = a
	return a
}

// AttributeByName returns the named attribute, optionally searching supertypes.
// The supertype chain is acyclic; Load rejects inheritance cycles.
func (c *Class) AttributeByName(name string, inherited bool) *Attribute {
	for cur := c; cur != nil; cur = cur.Super {
		if a, ok := cur.byName[name]; ok {
			return a
		}
		if !inherited {
			break
		}
	}
	return nil
}

// AllAttributes returns declared and inherited attribute names, nearest first.
func (c *Class) AllAttributes() []*Attribute {
	var out []*Attribute
	seen := make(map[*Class]bool)
	for cur := c; cur != nil && !seen[cur]; cur = cur.Super {
		seen[cur] = true
		out = append(out, cur.attrs...)
	}
	return out
}

// Enumeration is a classifier whose literals are static attributes typed by
// the enumeration itself.
type Enumeration struct {
	name     string
	pkg      *Package
	literals []*Attribute
	byName   map[string]*Attribute
}

// NewEnumeration creates a detached enumeration with the given literals.
func NewEnumeration(name string, literals ...string) *Enumeration {
	e := &Enumeration{name: name, byName: make(map[string]*Attribute)}
	for _, l := range literals {
		e.AddLiteral(l)
	}
	return e
}

func (e *Enumeration) Name() string          { return e.name }
func (e *Enumeration) QualifiedName() string { return qualify(e.pkg, e.name) }
func (e *Enumeration) Kind() ElementKind     { return KindEnumeration }
func (e *Enumeration) Package() *Package     { return e.pkg }

// Attributes returns the enumeration literals.
func (e *Enumeration) Attributes() []*Attribute { return e.literals }

// AddLiteral appends a literal.
func (e *Enumeration) AddLiteral(name string) *Attribute {
	a := &Attribute{Name: name, Type: e, Owner: e, Static: true, EnumLiteral: true}
	e.literals = append(e.literals, a)
	e.byName[name] = a
	return a
}

// AttributeByName returns the named literal or nil.
func (e *Enumeration) AttributeByName(name string, _ bool) *Attribute {
	return e.byName[name]
}

// DataType is a named simple type. It cannot be navigated into.
type DataType struct {
	name string
	pkg  *Package
	Base *Primitive
}

// NewDataType creates a detached data type over base.
func NewDataType(name string, base *Primitive) *DataType {
	return &DataType{name: name, Base: base}
}

func (d *DataType) Name() string          { return d.name }
func (d *DataType) QualifiedName() string { return qualify(d.pkg, d.name) }
func (d *DataType) Kind() ElementKind     { return KindDataType }
func (d *DataType) Package() *Package     { return d.pkg }

// Primitive is a built-in simple type.
type Primitive struct {
	name string
}

func (p *Primitive) Name() string          { return p.name }
func (p *Primitive) QualifiedName() string { return p.name }
func (p *Primitive) Kind() ElementKind     { return KindPrimitive }
func (p *Primitive) Package() *Package     { return nil }

// Built-in primitives.
var (
	String   = &Primitive{name: "string"}
	Integer  = &Primitive{name: "integer"}
	Number   = &Primitive{name: "number"}
	Boolean  = &Primitive{name: "boolean"}
	Date     = &Primitive{name: "date"}
	DateTime = &Primitive{name: "datetime"}
)

var primitives = map[string]*Primitive{
	String.name:   String,
	Integer.name:  Integer,
	Number.name:   Number,
	Boolean.name:  Boolean,
	Date.name:     Date,
	DateTime.name: DateTime,
}

// PrimitiveByName returns the built-in primitive with the given name.
func PrimitiveByName(name string) (*Primitive, bool) {
	p, ok := primitives[name]
	return p, ok
}

type noContext struct{}

func (noContext) Name() string          { return "<no context>" }
func (noContext) QualifiedName() string { return "<no context>" }
func (noContext) Kind() ElementKind     { return KindNone }
func (noContext) Package() *Package     { return nil }

// NoContext is the navigation context of declarations that have none, such as
// context-free actions, multi-context fragments and global variables. It
// owns no attributes.
var NoContext Element = noContext{}

func qualify(p *Package, name string) string {
	if p == nil {
		return name
	}
	return p.QualifiedName() + PackageSeparator + name
}

// Package groups elements and nested packages.
type Package struct {
	name     string
	parent   *Package
	model    *Model
	elements []Element
	byName   map[string]Element
	packages []*Package
	children map[string]*Package
}

func (p *Package) Name() string { return p.name }

// QualifiedName returns the package path joined with "::".
func (p *Package) QualifiedName() string {
	if p.parent == nil {
		return p.name
	}
	return p.parent.QualifiedName() + PackageSeparator + p.name
}

// Elements returns the package's own elements in declaration order.
func (p *Package) Elements() []Element { return p.elements }

// Packages returns the nested packages in declaration order.
func (p *Package) Packages() []*Package { return p.packages }

// ElementByName returns the element declared directly in this package.
func (p *Package) ElementByName(name string) Element {
	if e, ok := p.byName[name]; ok {
		return e
	}
	return nil
}

// PackageByName returns the directly nested package with the given name.
func (p *Package) PackageByName(name string) *Package {
	return p.children[name]
}

// NewPackage creates a nested package.
func (p *Package) NewPackage(name string) (*Package, error) {
	if _, exists := p.children[name]; exists {
		return nil, fmt.Errorf("package %q already contains package %q", p.QualifiedName(), name)
	}
	child := newPackage(name, p, p.model)
	p.packages = append(p.packages, child)
	p.children[name] = child
	return child, nil
}

// AddClass places c in the package.
func (p *Package) AddClass(c *Class) (*Class, error) {
	if err := p.add(c.name, c); err != nil {
		return nil, err
	}
	c.pkg = p
	return c, nil
}

// AddEnumeration places e in the package.
func (p *Package) AddEnumeration(e *Enumeration) (*Enumeration, error) {
	if err := p.add(e.name, e); err != nil {
		return nil, err
	}
	e.pkg = p
	return e, nil
}

// AddDataType places d in the package.
func (p *Package) AddDataType(d *DataType) (*DataType, error) {
	if err := p.add(d.name, d); err != nil {
		return nil, err
	}
	d.pkg = p
	return d, nil
}

func (p *Package) add(name string, e Element) error {
	if name == "" {
		return fmt.Errorf("package %q: element name is empty", p.QualifiedName())
	}
	if _, exists := p.byName[name]; exists {
		return fmt.Errorf("package %q already contains element %q", p.QualifiedName(), name)
	}
	p.elements = append(p.elements, e)
	p.byName[name] = e
	if p.model != nil {
		p.model.index[name] = append(p.model.index[name], e)
	}
	return nil
}

func newPackage(name string, parent *Package, m *Model) *Package {
	return &Package{
		name:     name,
		parent:   parent,
		model:    m,
		byName:   make(map[string]Element),
		children: make(map[string]*Package),
	}
}

// Model is a loaded domain model. Unqualified element names are indexed
// across every package so that rule authors rarely need "::" paths.
type Model struct {
	Name     string
	packages []*Package
	roots    map[string]*Package
	index    map[string][]Element
}

// New creates an empty model.
func New(name string) *Model {
	return &Model{
		Name:  name,
		roots: make(map[string]*Package),
		index: make(map[string][]Element),
	}
}

// NewPackage creates a top-level package.
func (m *Model) NewPackage(name string) (*Package, error) {
	if _, exists := m.roots[name]; exists {
		return nil, fmt.Errorf("model already contains package %q", name)
	}
	p := newPackage(name, nil, m)
	m.packages = append(m.packages, p)
	m.roots[name] = p
	return p, nil
}

// Packages returns the top-level packages in declaration order.
func (m *Model) Packages() []*Package { return m.packages }

// PackageByName returns the top-level package with the given name.
func (m *Model) PackageByName(name string) *Package {
	return m.roots[name]
}

// ElementByName returns the first element registered under an unqualified
// name, or nil. Callers that care about ambiguity check IsAmbiguous first.
func (m *Model) ElementByName(name string) Element {
	if es := m.index[name]; len(es) > 0 {
		return es[0]
	}
	return nil
}

// ElementsByName returns every element registered under an unqualified name.
func (m *Model) ElementsByName(name string) []Element {
	return m.index[name]
}

// IsAmbiguous reports whether more than one package declares name.
func (m *Model) IsAmbiguous(name string) bool {
	return len(m.index[name]) > 1
}

// Primitive returns the built-in primitive with the given name, or nil.
func (m *Model) Primitive(name string) Element {
	if p, ok := primitives[name]; ok {
		return p
	}
	return nil
}

// ElementNames returns all unqualified element names, sorted.
func (m *Model) ElementNames() []string {
	names := make([]string, 0, len(m.index))
	for n := range m.index {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a possibly qualified element name. Qualified names are
// walked package by package; unqualified names use the global index.
func (m *Model) Lookup(name string) Element {
	if !strings.Contains(name, PackageSeparator) {
		if p := m.Primitive(name); p != nil {
			return p
		}
		return m.ElementByName(name)
	}
	parts := strings.Split(name, PackageSeparator)
	pkg := m.PackageByName(parts[0])
	for _, part := range parts[1 : len(parts)-1] {
		if pkg == nil {
			return nil
		}
		pkg = pkg.PackageByName(part)
	}
	if pkg == nil {
		return nil
	}
	return pkg.ElementByName(parts[len(parts)-1])
}
