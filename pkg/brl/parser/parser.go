package parser

import (
	"fmt"
	"os"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
)

// Parser parses rule files into unresolved ASTs.
// It handles YAML parsing, AST construction, and structural validation.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes (default: 10MB)
	maxDepth    int   // Maximum expression nesting depth (default: 64)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 10 * 1024 * 1024, // 10MB
		maxDepth:    64,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithMaxDepth sets the maximum expression and action nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Parse parses the rule file at path.
// It returns a *brlerrors.Error if the file cannot be read or is not valid
// YAML, and a *brlerrors.ErrorList if the document is structurally invalid.
func (p *Parser) Parse(path string) (*ast.RuleFile, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &brlerrors.Error{
			Code:     brlerrors.CodeIO,
			Message:  fmt.Sprintf("Failed to access file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &brlerrors.Error{
			Code:     brlerrors.CodeIO,
			Message:  fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: ast.Location{File: path},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &brlerrors.Error{
			Code:     brlerrors.CodeIO,
			Message:  fmt.Sprintf("Failed to read file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	file, err := p.parse(data, path)
	if err != nil {
		if errList, ok := err.(*brlerrors.ErrorList); ok {
			errList.AddContext()
		}
		return nil, err
	}
	return file, nil
}

// ParseBytes parses rule YAML from a byte slice.
// sourcePath is only used for locations.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.RuleFile, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &brlerrors.Error{
			Code:     brlerrors.CodeIO,
			Message:  fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: ast.Location{File: sourcePath},
		}
	}
	return p.parse(data, sourcePath)
}

// ParseFiles parses several rule files, stopping at the first failure.
func (p *Parser) ParseFiles(paths []string) ([]*ast.RuleFile, error) {
	if len(paths) == 0 {
		return nil, &brlerrors.Error{
			Code:    brlerrors.CodeIO,
			Message: "No rule files provided",
		}
	}
	files := make([]*ast.RuleFile, 0, len(paths))
	for _, path := range paths {
		f, err := p.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		files = append(files, f)
	}
	return files, nil
}

func (p *Parser) parse(data []byte, sourcePath string) (*ast.RuleFile, error) {
	root, err := parseYAMLBytes(data)
	if err != nil {
		return nil, &brlerrors.Error{
			Code:       brlerrors.CodeSyntax,
			Message:    fmt.Sprintf("YAML parsing failed: %v", err),
			Location:   ast.Location{File: sourcePath, Line: 1, Column: 1},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	b := newBuilder(sourcePath, p.maxDepth)
	return b.buildFile(root)
}
