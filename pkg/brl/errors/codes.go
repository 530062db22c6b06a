package errors

// Code is the status code of a diagnostic. Semantic codes are produced by the
// resolver; input codes by the parser and file loaders.
type Code string

const (
	// Declaration contexts and parameter types
	CodeContextNavigationTooLong Code = "context-navigation-too-long"
	CodeContextUnknown           Code = "context-unknown"
	CodeContextIsSimpleType      Code = "context-is-simple-type"

	// Path references
	CodeElementAmbiguous         Code = "element-ambiguous"
	CodeInvalidPackageReference  Code = "invalid-package-reference"
	CodeUnknownElementOrAttr     Code = "unknown-element-or-attribute"
	CodeIllegalVariableNav       Code = "illegal-variable-navigation"
	CodeDatatypeNavigation       Code = "datatype-navigation"
	CodeStaticRefToNonStatic     Code = "static-reference-to-nonstatic-attribute"
	CodeEnumLiteralAccess        Code = "access-to-enum-literal-not-through-classifier"
	CodeGlobalVariableNavigation Code = "global-variable-navigation"

	// Variables and parameters
	CodeInvalidVariableName    Code = "invalid-variable-name"
	CodeDuplicateVariable      Code = "duplicate-variable"
	CodeVariableShadowsModel   Code = "variable-name-shadows-model-element"
	CodeRuleParameterNameClash Code = "rule-parameter-name-clash"

	// Actions and operators
	CodeCreateReferenceInvalid    Code = "create-reference-invalid"
	CodeOperatorUnknown           Code = "operator-unknown"
	CodeOperatorParameterMismatch Code = "operator-parameter-mismatch"

	// Input
	CodeSyntax     Code = "syntax"     // Malformed YAML
	CodeStructural Code = "structural" // Well-formed YAML that is not a rule tree
	CodeIO         Code = "io"         // File I/O error
)

// Category groups codes for reporting.
type Category string

const (
	CategoryContext   Category = "context"
	CategoryReference Category = "reference"
	CategoryVariable  Category = "variable"
	CategoryOperator  Category = "operator"
	CategoryInput     Category = "input"
)

var categories = map[Code]Category{
	CodeContextNavigationTooLong:  CategoryContext,
	CodeContextUnknown:            CategoryContext,
	CodeContextIsSimpleType:       CategoryContext,
	CodeElementAmbiguous:          CategoryReference,
	CodeInvalidPackageReference:   CategoryReference,
	CodeUnknownElementOrAttr:      CategoryReference,
	CodeIllegalVariableNav:        CategoryReference,
	CodeDatatypeNavigation:        CategoryReference,
	CodeStaticRefToNonStatic:      CategoryReference,
	CodeEnumLiteralAccess:         CategoryReference,
	CodeGlobalVariableNavigation:  CategoryReference,
	CodeInvalidVariableName:       CategoryVariable,
	CodeDuplicateVariable:         CategoryVariable,
	CodeVariableShadowsModel:      CategoryVariable,
	CodeRuleParameterNameClash:    CategoryVariable,
	CodeCreateReferenceInvalid:    CategoryReference,
	CodeOperatorUnknown:           CategoryOperator,
	CodeOperatorParameterMismatch: CategoryOperator,
	CodeSyntax:                    CategoryInput,
	CodeStructural:                CategoryInput,
	CodeIO:                        CategoryInput,
}

// Category returns the group the code belongs to.
func (c Code) Category() Category {
	if cat, ok := categories[c]; ok {
		return cat
	}
	return CategoryInput
}

// IsSemantic reports whether the code comes from resolution rather than input.
func (c Code) IsSemantic() bool {
	return c.Category() != CategoryInput
}

// SemanticCodes lists the resolver's codes in taxonomy order.
func SemanticCodes() []Code {
	return []Code{
		CodeContextNavigationTooLong, CodeContextUnknown, CodeContextIsSimpleType,
		CodeElementAmbiguous, CodeInvalidPackageReference, CodeUnknownElementOrAttr,
		CodeIllegalVariableNav, CodeDatatypeNavigation, CodeStaticRefToNonStatic,
		CodeEnumLiteralAccess, CodeGlobalVariableNavigation, CodeInvalidVariableName,
		CodeDuplicateVariable, CodeVariableShadowsModel, CodeRuleParameterNameClash,
		CodeCreateReferenceInvalid, CodeOperatorUnknown, CodeOperatorParameterMismatch,
	}
}
