// Package errors provides the diagnostics produced while parsing and
// resolving rule files.
//
// Every diagnostic carries a status Code, a source location, an optional
// highlighted span length and a human-readable message. Resolution never
// stops at the first problem; diagnostics accumulate in an ErrorList that is
// returned alongside the (partially) resolved tree.
//
// # Codes
//
// Context codes report declaration contexts and parameter types that cannot
// be used: CodeContextNavigationTooLong, CodeContextUnknown,
// CodeContextIsSimpleType.
//
// Reference codes report path steps that cannot be bound, for example
// CodeElementAmbiguous (a name declared in several packages) as opposed to
// CodeUnknownElementOrAttr (a name declared nowhere).
//
// Variable codes report naming problems. The variable is still bound so that
// later references do not cascade into further errors.
//
// Operator codes report unknown operators and argument count mismatches.
//
// Input codes (CodeSyntax, CodeStructural, CodeIO) come from the parser.
//
// # Basic Usage
//
//	errs := errors.NewErrorList()
//	errs.Addf(errors.CodeContextUnknown, step.Location, len(step.Name),
//	    "unknown context '%s'", step.Name)
//	if err := errs.ToError(); err != nil {
//	    return err
//	}
package errors
