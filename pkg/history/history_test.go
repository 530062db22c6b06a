package history

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
)

func TestNewRun(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewRun("rules/trade.yaml", started)
	b := NewRun("rules/trade.yaml", started)

	if a.ID == uuid.Nil || a.ID == b.ID {
		t.Errorf("expected distinct non-nil IDs, got %s and %s", a.ID, b.ID)
	}
	if a.ID.Version() != 4 {
		t.Errorf("ID version = %d, want 4", a.ID.Version())
	}
	if a.File != "rules/trade.yaml" || !a.StartedAt.Equal(started) {
		t.Errorf("run = %+v", a)
	}
}

func TestAddDiagnostics(t *testing.T) {
	errs := brlerrors.NewErrorList()
	errs.AddErrorWithSuggestion(brlerrors.CodeContextUnknown, "unknown context 'Trad'",
		ast.Location{File: "r.yaml", Line: 4, Column: 7}, "Did you mean 'Trade'?")
	errs.AddError(brlerrors.CodeOperatorUnknown, "unknown operator 'notfy'",
		ast.Location{File: "r.yaml", Line: 9, Column: 3})

	run := NewRun("r.yaml", time.Now())
	run.AddDiagnostics(errs)
	run.AddDiagnostics(nil)

	if len(run.Diagnostics) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(run.Diagnostics))
	}
	first := run.Diagnostics[0]
	if first.Code != "context-unknown" || first.Line != 4 || first.Column != 7 || first.Suggestion != "Did you mean 'Trade'?" {
		t.Errorf("first diagnostic = %+v", first)
	}
	if run.Diagnostics[1].Code != "operator-unknown" {
		t.Errorf("second code = %q", run.Diagnostics[1].Code)
	}
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := NewStorageError("sqlite", "store", cause)

	if !errors.Is(err, cause) {
		t.Error("StorageError should unwrap to its cause")
	}
	want := "storage error [backend=sqlite, operation=store]: disk I/O error"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var se *StorageError
	wrapped := &RetentionError{Days: 30, Cause: err}
	if !errors.As(wrapped, &se) || se.Operation != "store" {
		t.Error("RetentionError should unwrap to the StorageError")
	}
}
