// Package operators holds catalogues of named operators that rules may call
// as expressions or invoke as actions.
//
// Catalogues are consulted in order and names match case-insensitively, so
// an earlier catalogue can override an operator from a later one.
package operators

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parameter is one formal parameter of an operator.
type Parameter struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Operator is a named callable with typed parameters.
type Operator struct {
	Name        string      `yaml:"name"`
	Returns     string      `yaml:"returns"`
	Description string      `yaml:"description"`
	Parameters  []Parameter `yaml:"parameters"`

	// Catalogue is the name of the catalogue the operator was found in.
	Catalogue string `yaml:"-"`
}

// Arity returns the declared parameter count.
func (o *Operator) Arity() int { return len(o.Parameters) }

// IsAction reports whether the operator returns nothing.
func (o *Operator) IsAction() bool { return o.Returns == "" || o.Returns == "void" }

// Signature renders the operator as name(type, ...).
func (o *Operator) Signature() string {
	types := make([]string, len(o.Parameters))
	for i, p := range o.Parameters {
		types[i] = p.Type
	}
	return fmt.Sprintf("%s(%s)", o.Name, strings.Join(types, ", "))
}

// Catalogue is a named set of operators.
type Catalogue struct {
	Name  string
	ops   []*Operator
	index map[string]*Operator
}

// NewCatalogue creates an empty catalogue.
func NewCatalogue(name string) *Catalogue {
	return &Catalogue{Name: name, index: make(map[string]*Operator)}
}

// Add registers op. Names are compared case-insensitively.
func (c *Catalogue) Add(op *Operator) error {
	if op.Name == "" {
		return fmt.Errorf("catalogue %s: operator name is empty", c.Name)
	}
	key := strings.ToLower(op.Name)
	if _, exists := c.index[key]; exists {
		return fmt.Errorf("catalogue %s: duplicate operator %q", c.Name, op.Name)
	}
	op.Catalogue = c.Name
	c.ops = append(c.ops, op)
	c.index[key] = op
	return nil
}

// Operator returns the named operator or nil.
func (c *Catalogue) Operator(name string) *Operator {
	return c.index[strings.ToLower(name)]
}

// Operators returns the catalogue's operators in declaration order.
func (c *Catalogue) Operators() []*Operator { return c.ops }

// Catalogues is an ordered list of catalogues searched front to back.
type Catalogues []*Catalogue

// Lookup returns the first operator named name, or nil.
func (cs Catalogues) Lookup(name string) *Operator {
	for _, c := range cs {
		if op := c.Operator(name); op != nil {
			return op
		}
	}
	return nil
}

// Names returns every operator name across all catalogues.
func (cs Catalogues) Names() []string {
	var names []string
	for _, c := range cs {
		for _, op := range c.ops {
			names = append(names, op.Name)
		}
	}
	return names
}

type yamlCatalogue struct {
	Name      string      `yaml:"name"`
	Operators []*Operator `yaml:"operators"`
}

// LoadFile reads one catalogue from a YAML file.
func LoadFile(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read operator catalogue: %w", err)
	}
	return Load(data, path)
}

// Load parses a catalogue document:
//
//	name: builtins
//	operators:
//	  - name: daysBetween
//	    returns: integer
//	    parameters:
//	      - {name: from, type: date}
//	      - {name: to, type: date}
func Load(data []byte, source string) (*Catalogue, error) {
	var doc yamlCatalogue
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse operator catalogue %s: %w", source, err)
	}
	name := doc.Name
	if name == "" {
		name = source
	}
	c := NewCatalogue(name)
	for i, op := range doc.Operators {
		if op == nil {
			return nil, fmt.Errorf("catalogue %s: operator %d is empty", name, i)
		}
		if err := c.Add(op); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadFiles loads catalogues in the given order.
func LoadFiles(paths []string) (Catalogues, error) {
	cs := make(Catalogues, 0, len(paths))
	for _, p := range paths {
		c, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, nil
}
