package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	brlerrors "mercator-hq/saturn/pkg/brl/errors"
)

// Run outcomes.
const (
	OutcomeClean       = "clean"
	OutcomeDiagnostics = "diagnostics"
	OutcomeFailed      = "failed"
)

// Run records one resolution of one rule file.
type Run struct {
	// ID uniquely identifies the run (UUID v4).
	ID uuid.UUID `json:"id"`

	// File is the rule file path as given to the engine.
	File string `json:"file"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// Declarations is the number of top-level declarations in the file.
	Declarations int `json:"declarations"`
	Resolved     int `json:"resolved"`
	Skipped      int `json:"skipped"`

	// Outcome is one of OutcomeClean, OutcomeDiagnostics or OutcomeFailed.
	Outcome string `json:"outcome"`

	// Failure holds the error that stopped a failed run.
	Failure string `json:"failure,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Diagnostic is a stored copy of a resolver diagnostic.
type Diagnostic struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NewRun starts a run record with a fresh ID.
func NewRun(file string, startedAt time.Time) *Run {
	return &Run{
		ID:        uuid.New(),
		File:      file,
		StartedAt: startedAt,
	}
}

// AddDiagnostics copies every diagnostic in errs into the run.
func (r *Run) AddDiagnostics(errs *brlerrors.ErrorList) {
	r.Diagnostics = append(r.Diagnostics, DiagnosticsFrom(errs)...)
}

// DiagnosticsFrom converts a diagnostic list into its stored form.
func DiagnosticsFrom(errs *brlerrors.ErrorList) []Diagnostic {
	if errs == nil {
		return nil
	}
	out := make([]Diagnostic, 0, len(errs.Errors))
	for _, e := range errs.Errors {
		out = append(out, Diagnostic{
			Code:       string(e.Code),
			Message:    e.Message,
			File:       e.Location.File,
			Line:       e.Location.Line,
			Column:     e.Location.Column,
			Suggestion: e.Suggestion,
		})
	}
	return out
}

// Query filters stored runs. Zero fields do not filter.
type Query struct {
	File  string
	Since time.Time
	Limit int
}

// Storage persists runs. List returns the newest runs first.
type Storage interface {
	Store(ctx context.Context, run *Run) error
	Get(ctx context.Context, id uuid.UUID) (*Run, error)
	List(ctx context.Context, query *Query) ([]*Run, error)

	// DeleteBefore removes runs started before cutoff and returns how many
	// were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Ping reports whether the backend is usable.
	Ping(ctx context.Context) error

	Close() error
}
