// Package brl ties the rule-tree parser to the resolver.
package brl

import (
	"context"

	"mercator-hq/saturn/pkg/brl/parser"
	"mercator-hq/saturn/pkg/brl/resolver"
	"mercator-hq/saturn/pkg/model"
	"mercator-hq/saturn/pkg/operators"
)

// ParseAndResolve parses the rule file at path and resolves it against
// models and catalogues. Parse failures are returned as the error; semantic
// diagnostics are in the result.
func ParseAndResolve(ctx context.Context, path string, models resolver.ModelService, catalogues operators.Catalogues, opts ...resolver.Option) (*resolver.Result, error) {
	file, err := parser.NewParser().Parse(path)
	if err != nil {
		return nil, err
	}
	return resolver.New(models, catalogues, opts...).Resolve(ctx, file)
}

// ResolveBytes is ParseAndResolve for in-memory rule files.
func ResolveBytes(ctx context.Context, data []byte, source string, models resolver.ModelService, catalogues operators.Catalogues, opts ...resolver.Option) (*resolver.Result, error) {
	file, err := parser.NewParser().ParseBytes(data, source)
	if err != nil {
		return nil, err
	}
	return resolver.New(models, catalogues, opts...).Resolve(ctx, file)
}

// LoadEnvironment loads a model and operator catalogues from disk.
func LoadEnvironment(modelPath string, cataloguePaths []string) (*model.Model, operators.Catalogues, error) {
	m, err := model.LoadFile(modelPath)
	if err != nil {
		return nil, nil, err
	}
	cs, err := operators.LoadFiles(cataloguePaths)
	if err != nil {
		return nil, nil, err
	}
	return m, cs, nil
}
