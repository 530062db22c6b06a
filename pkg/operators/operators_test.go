package operators

import (
	"os"
	"path/filepath"
	"testing"
)

const builtinsYAML = `
name: builtins
operators:
  - name: daysBetween
    returns: integer
    parameters:
      - {name: from, type: date}
      - {name: to, type: date}
  - name: notify
    parameters:
      - {name: message, type: string}
`

func TestLoad(t *testing.T) {
	c, err := Load([]byte(builtinsYAML), "builtins.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Name != "builtins" {
		t.Errorf("Name = %q, want builtins", c.Name)
	}
	op := c.Operator("DAYSBETWEEN")
	if op == nil {
		t.Fatal("lookup should be case-insensitive")
	}
	if op.Arity() != 2 {
		t.Errorf("Arity() = %d, want 2", op.Arity())
	}
	if got := op.Signature(); got != "daysBetween(date, date)" {
		t.Errorf("Signature() = %q", got)
	}
	if op.Catalogue != "builtins" {
		t.Errorf("Catalogue = %q", op.Catalogue)
	}
	if !c.Operator("notify").IsAction() {
		t.Error("notify returns nothing and should be an action")
	}
}

func TestCatalogueOrder(t *testing.T) {
	first := NewCatalogue("site")
	second := NewCatalogue("builtins")
	if err := first.Add(&Operator{Name: "Round", Returns: "integer"}); err != nil {
		t.Fatal(err)
	}
	if err := second.Add(&Operator{Name: "round", Returns: "number"}); err != nil {
		t.Fatal(err)
	}
	if err := second.Add(&Operator{Name: "abs", Returns: "number"}); err != nil {
		t.Fatal(err)
	}

	cs := Catalogues{first, second}
	tests := []struct {
		name      string
		wantCat   string
		wantFound bool
	}{
		{"round", "site", true},
		{"ABS", "builtins", true},
		{"missing", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := cs.Lookup(tt.name)
			if (op != nil) != tt.wantFound {
				t.Fatalf("Lookup(%q) found = %v, want %v", tt.name, op != nil, tt.wantFound)
			}
			if op != nil && op.Catalogue != tt.wantCat {
				t.Errorf("Lookup(%q) catalogue = %q, want %q", tt.name, op.Catalogue, tt.wantCat)
			}
		})
	}
	if got := len(cs.Names()); got != 3 {
		t.Errorf("Names() = %d, want 3", got)
	}
}

func TestDuplicateOperator(t *testing.T) {
	c := NewCatalogue("x")
	if err := c.Add(&Operator{Name: "f"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Add(&Operator{Name: "F"}); err == nil {
		t.Error("expected duplicate error")
	}
	if err := c.Add(&Operator{}); err == nil {
		t.Error("expected empty name error")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed yaml", data: "operators: [\n"},
		{name: "empty operator entry", data: "name: x\noperators:\n  -\n"},
		{name: "operator without name", data: "name: x\noperators:\n  - returns: integer\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.data), "x.yaml"); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "builtins.yaml")
	if err := os.WriteFile(path, []byte(builtinsYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cs, err := LoadFiles([]string{path})
	if err != nil {
		t.Fatalf("LoadFiles() error = %v", err)
	}
	if len(cs) != 1 || cs.Lookup("notify") == nil {
		t.Errorf("unexpected catalogues: %+v", cs)
	}
	if _, err := LoadFiles([]string{filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Error("expected error for missing file")
	}
}
