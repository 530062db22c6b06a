package errors

import (
	"fmt"
	"sort"
	"strings"

	"mercator-hq/saturn/pkg/brl/ast"
)

// Error represents a rich diagnostic with location, context, and suggestions.
// It provides detailed information for debugging rule files.
type Error struct {
	Code       Code         // Status code
	Message    string       // Error message
	Location   ast.Location // Source location (file, line, column)
	Length     int          // Highlighted span length (0 = unknown)
	Context    string       // Surrounding lines of code
	Suggestion string       // Suggested fix (optional)
}

// New creates an error with a formatted message.
func New(code Code, location ast.Location, length int, format string, args ...any) *Error {
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: location,
		Length:   length,
	}
}

// Error implements the error interface.
// It returns a formatted error message with location and context.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", e.Code, e.Message))

	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", e.Location.String()))
	}

	if e.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(e.Context)
		sb.WriteString("  |\n")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// Short returns "file:line:col: [code] message" on one line.
func (e *Error) Short() string {
	if e.Location.IsValid() {
		return fmt.Sprintf("%s: [%s] %s", e.Location, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ErrorList represents a collection of errors encountered during parsing or resolution.
// It allows accumulating multiple errors instead of failing on the first error.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(code Code, message string, location ast.Location) {
	el.Add(&Error{
		Code:     code,
		Message:  message,
		Location: location,
	})
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(code Code, message string, location ast.Location, suggestion string) {
	el.Add(&Error{
		Code:       code,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	})
}

// Addf creates and adds an error with a highlighted span and a formatted message.
func (el *ErrorList) Addf(code Code, location ast.Location, length int, format string, args ...any) *Error {
	err := New(code, location, length, format, args...)
	el.Add(err)
	return err
}

// Merge appends every error of other.
func (el *ErrorList) Merge(other *ErrorList) {
	if other == nil {
		return
	}
	el.Errors = append(el.Errors, other.Errors...)
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
// It returns all errors formatted as a single string.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("Error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil if the error list is empty, otherwise returns the error list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByCode returns all errors with the given code.
func (el *ErrorList) ByCode(code Code) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Code == code {
			result = append(result, err)
		}
	}
	return result
}

// HasCode returns true if the list contains at least one error with the given code.
func (el *ErrorList) HasCode(code Code) bool {
	for _, err := range el.Errors {
		if err.Code == code {
			return true
		}
	}
	return false
}

// CountByCode tallies errors per code.
func (el *ErrorList) CountByCode() map[Code]int {
	counts := make(map[Code]int)
	for _, err := range el.Errors {
		counts[err.Code]++
	}
	return counts
}

// Sort orders errors by file, line and column. Errors without a location
// keep their relative order at the end.
func (el *ErrorList) Sort() {
	sort.SliceStable(el.Errors, func(i, j int) bool {
		a, b := el.Errors[i].Location, el.Errors[j].Location
		if a.IsValid() != b.IsValid() {
			return a.IsValid()
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}
