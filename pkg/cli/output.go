package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"mercator-hq/saturn/pkg/engine"
	"mercator-hq/saturn/pkg/history"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// ParseFormat validates a --format flag value. An empty value selects text.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want text, json or csv)", s)
	}
}

// Formatter writes command results.
type Formatter interface {
	WriteReports(w io.Writer, reports []*engine.Report) error
	WriteRuns(w io.Writer, runs []*history.Run) error
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}

// WriteReports writes resolution reports in the given format.
func WriteReports(w io.Writer, format OutputFormat, reports []*engine.Report) error {
	return NewFormatter(format).WriteReports(w, reports)
}

// WriteRuns writes stored runs in the given format.
func WriteRuns(w io.Writer, format OutputFormat, runs []*history.Run) error {
	return NewFormatter(format).WriteRuns(w, runs)
}

// Summary totals a set of reports.
type Summary struct {
	Files           int `json:"files"`
	Clean           int `json:"clean"`
	WithDiagnostics int `json:"with_diagnostics"`
	Failed          int `json:"failed"`
	Diagnostics     int `json:"diagnostics"`
}

// Summarize totals reports by outcome.
func Summarize(reports []*engine.Report) Summary {
	var s Summary
	for _, r := range reports {
		s.Files++
		s.Diagnostics += r.Diagnostics.Count()
		switch r.Outcome {
		case history.OutcomeClean:
			s.Clean++
		case history.OutcomeDiagnostics:
			s.WithDiagnostics++
		default:
			s.Failed++
		}
	}
	return s
}

// TextFormatter formats output as plain text.
type TextFormatter struct{}

// WriteReports prints one line per diagnostic followed by a summary.
func (f *TextFormatter) WriteReports(w io.Writer, reports []*engine.Report) error {
	ew := &errWriter{w: w}
	for _, r := range reports {
		switch {
		case r.Outcome == history.OutcomeFailed:
			ew.printf("✗ %s: failed to parse\n", r.File)
		case r.OK():
			ew.printf("✓ %s: %d declaration(s) resolved\n", r.File, r.Resolved)
		default:
			ew.printf("✗ %s: %d diagnostic(s), %d resolved, %d skipped\n",
				r.File, r.Diagnostics.Count(), r.Resolved, r.Skipped)
		}
		for _, d := range r.Diagnostics.Errors {
			ew.printf("%s\n", d.Short())
			if d.Suggestion != "" {
				ew.printf("    = suggestion: %s\n", d.Suggestion)
			}
		}
	}

	s := Summarize(reports)
	ew.printf("\n%d file(s): %d clean, %d with diagnostics, %d failed (%d diagnostic(s))\n",
		s.Files, s.Clean, s.WithDiagnostics, s.Failed, s.Diagnostics)
	return ew.err
}

// WriteRuns prints runs as an aligned table.
func (f *TextFormatter) WriteRuns(w io.Writer, runs []*history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	ew := &errWriter{w: tw}
	ew.printf("ID\tSTARTED\tFILE\tOUTCOME\tRESOLVED\tSKIPPED\tDIAGNOSTICS\tDURATION\n")
	for _, r := range runs {
		ew.printf("%s\t%s\t%s\t%s\t%d/%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.File, r.Outcome,
			r.Resolved, r.Declarations, r.Skipped, len(r.Diagnostics),
			r.Duration.Round(time.Microsecond))
	}
	if ew.err != nil {
		return ew.err
	}
	return tw.Flush()
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

type reportJSON struct {
	RunID        string               `json:"run_id"`
	File         string               `json:"file"`
	Outcome      string               `json:"outcome"`
	DurationMS   float64              `json:"duration_ms"`
	Declarations int                  `json:"declarations"`
	Resolved     int                  `json:"resolved"`
	Skipped      int                  `json:"skipped"`
	Diagnostics  []history.Diagnostic `json:"diagnostics"`
}

// WriteReports writes {"files": [...], "summary": {...}}.
func (f *JSONFormatter) WriteReports(w io.Writer, reports []*engine.Report) error {
	out := struct {
		Files   []reportJSON `json:"files"`
		Summary Summary      `json:"summary"`
	}{
		Files:   make([]reportJSON, 0, len(reports)),
		Summary: Summarize(reports),
	}
	for _, r := range reports {
		diags := history.DiagnosticsFrom(r.Diagnostics)
		if diags == nil {
			diags = []history.Diagnostic{}
		}
		out.Files = append(out.Files, reportJSON{
			RunID:        r.RunID.String(),
			File:         r.File,
			Outcome:      r.Outcome,
			DurationMS:   float64(r.Duration) / float64(time.Millisecond),
			Declarations: r.Declarations,
			Resolved:     r.Resolved,
			Skipped:      r.Skipped,
			Diagnostics:  diags,
		})
	}
	return f.encode(w, out)
}

// WriteRuns writes the runs as a JSON array.
func (f *JSONFormatter) WriteRuns(w io.Writer, runs []*history.Run) error {
	if runs == nil {
		runs = []*history.Run{}
	}
	return f.encode(w, runs)
}

func (f *JSONFormatter) encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// CSVFormatter formats output as CSV with a header row.
type CSVFormatter struct{}

// ReportHeaders are the columns written by CSVFormatter.WriteReports.
var ReportHeaders = []string{"file", "line", "column", "code", "message", "suggestion"}

// RunHeaders are the columns written by CSVFormatter.WriteRuns.
var RunHeaders = []string{"id", "started_at", "file", "outcome", "declarations", "resolved", "skipped", "diagnostics", "duration_ms"}

// WriteReports writes one row per diagnostic.
func (f *CSVFormatter) WriteReports(w io.Writer, reports []*engine.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportHeaders); err != nil {
		return err
	}
	for _, r := range reports {
		for _, d := range r.Diagnostics.Errors {
			file := d.Location.File
			if file == "" {
				file = r.File
			}
			record := []string{
				file,
				strconv.Itoa(d.Location.Line),
				strconv.Itoa(d.Location.Column),
				string(d.Code),
				d.Message,
				d.Suggestion,
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRuns writes one row per run.
func (f *CSVFormatter) WriteRuns(w io.Writer, runs []*history.Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RunHeaders); err != nil {
		return err
	}
	for _, r := range runs {
		record := []string{
			r.ID.String(),
			r.StartedAt.UTC().Format(time.RFC3339Nano),
			r.File,
			r.Outcome,
			strconv.Itoa(r.Declarations),
			strconv.Itoa(r.Resolved),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(len(r.Diagnostics)),
			strconv.FormatInt(r.Duration.Milliseconds(), 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// errWriter keeps the first write error so printing code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
