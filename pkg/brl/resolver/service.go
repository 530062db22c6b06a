package resolver

import "mercator-hq/saturn/pkg/model"

// ModelService is the read-only view of the business model that resolution
// needs. *model.Model implements it.
type ModelService interface {
	// ElementByName returns an element by unqualified name, or nil.
	ElementByName(name string) model.Element
	// IsAmbiguous reports whether an unqualified name is declared in more
	// than one package.
	IsAmbiguous(name string) bool
	// PackageByName returns a top-level package, or nil.
	PackageByName(name string) *model.Package
	// Primitive returns a built-in primitive type, or nil.
	Primitive(name string) model.Element
	// ElementNames lists unqualified element names for suggestions.
	ElementNames() []string
}

var _ ModelService = (*model.Model)(nil)
