package parser

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// parseYAMLBytes decodes data into its document node. An empty document
// yields a nil node.
func parseYAMLBytes(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	if doc.Kind == yaml.DocumentNode {
		return doc.Content[0], nil
	}
	return &doc, nil
}

// mapping is an ordered view of a YAML mapping node.
type mapping struct {
	node   *yaml.Node
	keys   []*yaml.Node
	values map[string]*yaml.Node
}

func newMapping(n *yaml.Node) *mapping {
	m := &mapping{node: n, values: make(map[string]*yaml.Node)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		m.keys = append(m.keys, k)
		m.values[k.Value] = v
	}
	return m
}

// first returns the first key of the mapping. It decides what the mapping
// denotes.
func (m *mapping) first() (*yaml.Node, *yaml.Node) {
	if len(m.keys) == 0 {
		return nil, nil
	}
	return m.keys[0], m.values[m.keys[0].Value]
}

func (m *mapping) get(key string) *yaml.Node { return m.values[key] }

// scalarString returns the value of a scalar node.
func scalarString(n *yaml.Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("missing value")
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("expected a scalar, found %s", kindName(n))
	}
	return n.Value, nil
}

func scalarInt(n *yaml.Node) (int, error) {
	s, err := scalarString(n)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("expected an integer, found %q", s)
	}
	return v, nil
}

func scalarBool(n *yaml.Node) (bool, error) {
	s, err := scalarString(n)
	if err != nil {
		return false, err
	}
	var v bool
	if err := n.Decode(&v); err != nil {
		return false, fmt.Errorf("expected a boolean, found %q", s)
	}
	return v, nil
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.SequenceNode:
		return "a list"
	case yaml.MappingNode:
		return "a mapping"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "a document"
	}
}

// deref follows an alias to the node it names.
func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// quoted reports whether a scalar was written with quotes, which shifts its
// text one column right of the node position.
func quoted(n *yaml.Node) bool {
	return n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0
}
