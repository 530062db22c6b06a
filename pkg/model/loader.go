package model

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlModel mirrors the on-disk model document.
type yamlModel struct {
	Name     string        `yaml:"name"`
	Packages []yamlPackage `yaml:"packages"`
}

type yamlPackage struct {
	Name         string            `yaml:"name"`
	Classes      []yamlClass       `yaml:"classes"`
	Enumerations []yamlEnumeration `yaml:"enumerations"`
	DataTypes    []yamlDataType    `yaml:"datatypes"`
	Packages     []yamlPackage     `yaml:"packages"`
}

type yamlClass struct {
	Name       string          `yaml:"name"`
	Super      string          `yaml:"super"`
	Abstract   bool            `yaml:"abstract"`
	Attributes []yamlAttribute `yaml:"attributes"`
}

type yamlAttribute struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Many   bool   `yaml:"many"`
	Static bool   `yaml:"static"`
}

type yamlEnumeration struct {
	Name     string   `yaml:"name"`
	Literals []string `yaml:"literals"`
}

type yamlDataType struct {
	Name string `yaml:"name"`
	Base string `yaml:"base"`
}

// LoadError reports every problem found while building a model.
type LoadError struct {
	Source   string
	Problems []string
}

func (e *LoadError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("model %s: %s", e.Source, e.Problems[0])
	}
	return fmt.Sprintf("model %s: %d problems:\n  %s", e.Source, len(e.Problems), strings.Join(e.Problems, "\n  "))
}

// LoadFile reads a YAML model document from path.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return Load(data, path)
}

// Load builds a model from a YAML document. Elements are declared in a first
// pass and attribute types and supertypes are bound in a second, so
// declaration order inside the document does not matter.
func Load(data []byte, source string) (*Model, error) {
	var doc yamlModel
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", source, err)
	}

	b := &modelBuilder{
		model: New(doc.Name),
		errs:  &LoadError{Source: source},
	}
	for _, yp := range doc.Packages {
		p, err := b.model.NewPackage(yp.Name)
		if err != nil {
			b.fail("%v", err)
			continue
		}
		b.declare(p, yp)
	}
	b.bind()

	if len(b.errs.Problems) > 0 {
		return nil, b.errs
	}
	return b.model, nil
}

type pendingClass struct {
	class *Class
	src   yamlClass
}

type pendingType struct {
	datatype *DataType
	src      yamlDataType
}

type modelBuilder struct {
	model   *Model
	classes []pendingClass
	types   []pendingType
	errs    *LoadError
}

func (b *modelBuilder) fail(format string, args ...any) {
	b.errs.Problems = append(b.errs.Problems, fmt.Sprintf(format, args...))
}

func (b *modelBuilder) declare(p *Package, yp yamlPackage) {
	for _, yd := range yp.DataTypes {
		d, err := p.AddDataType(NewDataType(yd.Name, nil))
		if err != nil {
			b.fail("%v", err)
			continue
		}
		b.types = append(b.types, pendingType{d, yd})
	}
	for _, ye := range yp.Enumerations {
		if _, err := p.AddEnumeration(NewEnumeration(ye.Name, ye.Literals...)); err != nil {
			b.fail("%v", err)
		}
	}
	for _, yc := range yp.Classes {
		c := NewClass(yc.Name)
		c.Abstract = yc.Abstract
		if _, err := p.AddClass(c); err != nil {
			b.fail("%v", err)
			continue
		}
		b.classes = append(b.classes, pendingClass{c, yc})
	}
	for _, child := range yp.Packages {
		np, err := p.NewPackage(child.Name)
		if err != nil {
			b.fail("%v", err)
			continue
		}
		b.declare(np, child)
	}
}

func (b *modelBuilder) bind() {
	for _, pt := range b.types {
		d, yd := pt.datatype, pt.src
		base, ok := PrimitiveByName(yd.Base)
		if !ok {
			b.fail("datatype %s: base %q is not a primitive", d.QualifiedName(), yd.Base)
			continue
		}
		d.Base = base
	}
	for _, pc := range b.classes {
		c, yc := pc.class, pc.src
		if yc.Super != "" {
			super, ok := b.resolve(yc.Super).(*Class)
			if !ok {
				b.fail("class %s: supertype %q is not a class", c.QualifiedName(), yc.Super)
			} else {
				c.Super = super
			}
		}
		for _, ya := range yc.Attributes {
			if ya.Name == "" {
				b.fail("class %s: attribute without a name", c.QualifiedName())
				continue
			}
			typ := b.resolve(ya.Type)
			if typ == nil {
				b.fail("class %s: attribute %s has unknown type %q", c.QualifiedName(), ya.Name, ya.Type)
				continue
			}
			a := c.AddAttribute(ya.Name, typ)
			a.Many = ya.Many
			a.Static = ya.Static
		}
	}
	for _, pc := range b.classes {
		if cyclic(pc.class) {
			b.fail("class %s: inheritance cycle", pc.class.QualifiedName())
		}
	}
}

func (b *modelBuilder) resolve(name string) Element {
	if name == "" {
		return nil
	}
	if !strings.Contains(name, PackageSeparator) && b.model.IsAmbiguous(name) {
		return nil
	}
	return b.model.Lookup(name)
}

func cyclic(c *Class) bool {
	seen := make(map[*Class]bool)
	for cur := c; cur != nil; cur = cur.Super {
		if seen[cur] {
			return true
		}
		seen[cur] = true
	}
	return false
}
