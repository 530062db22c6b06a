package resolver

import (
	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
	"mercator-hq/saturn/pkg/operators"
)

// OperatorResolver binds operator calls and operator actions to catalogue
// entries. It keeps no scope; every invocation is resolved by name alone.
type OperatorResolver struct {
	catalogues operators.Catalogues
}

// NewOperatorResolver creates an operator resolver over catalogues, which
// are searched in order.
func NewOperatorResolver(catalogues operators.Catalogues) *OperatorResolver {
	return &OperatorResolver{catalogues: catalogues}
}

// Resolve binds every invocation below n, reporting unknown operators and
// argument count mismatches to errs. A mismatch still binds the operator.
func (o *OperatorResolver) Resolve(n ast.Node, errs *brlerrors.ErrorList) {
	ast.Inspect(n, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.OperatorCall:
			x.Operator = o.bind(x.Name, len(x.Args), x.Location, errs)
		case *ast.OperatorAction:
			x.Operator = o.bind(x.Name, len(x.Args), x.Location, errs)
		}
		return true
	}, nil)
}

func (o *OperatorResolver) bind(name string, argc int, loc ast.Location, errs *brlerrors.ErrorList) *operators.Operator {
	op := o.catalogues.Lookup(name)
	if op == nil {
		err := errs.Addf(brlerrors.CodeOperatorUnknown, loc, len(name), "unknown operator '%s'", name)
		err.Suggestion = brlerrors.SuggestName(name, o.catalogues.Names())
		return nil
	}
	if op.Arity() != argc {
		errs.Addf(brlerrors.CodeOperatorParameterMismatch, loc, len(name),
			"operator '%s' expects %d argument(s) but was given %d", op.Signature(), op.Arity(), argc)
	}
	return op
}
