package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mercator-hq/saturn/pkg/cli"
)

func setResolveFlags(format string, failOnError bool) {
	resolveFlags.format = format
	resolveFlags.failOnError = failOnError
}

func TestResolveRules(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		failOnError bool
		wantExit    int
		wantOutput  string
	}{
		{
			name:       "clean file",
			args:       []string{tradeRules},
			wantExit:   cli.ExitOK,
			wantOutput: "4 declaration(s) resolved",
		},
		{
			name:       "diagnostics reported without failing",
			args:       []string{brokenRules},
			wantExit:   cli.ExitOK,
			wantOutput: "[context-unknown]",
		},
		{
			name:        "diagnostics fail with fail-on-error",
			args:        []string{brokenRules},
			failOnError: true,
			wantExit:    cli.ExitDiagnostics,
			wantOutput:  "[operator-unknown]",
		},
		{
			name:        "clean file passes with fail-on-error",
			args:        []string{tradeRules},
			failOnError: true,
			wantExit:    cli.ExitOK,
			wantOutput:  "1 clean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, "")
			setResolveFlags("text", tt.failOnError)

			cmd, out := newTestCommand()
			err := resolveRules(cmd, tt.args)
			if got := cli.ExitCode(err); got != tt.wantExit {
				t.Fatalf("exit code = %d, want %d (err = %v)", got, tt.wantExit, err)
			}
			if !strings.Contains(out.String(), tt.wantOutput) {
				t.Errorf("output missing %q\n%s", tt.wantOutput, out.String())
			}
		})
	}
}

func TestResolveRulesConfiguredPaths(t *testing.T) {
	writeConfig(t, "")
	setResolveFlags("json", false)

	cmd, out := newTestCommand()
	if err := resolveRules(cmd, nil); err != nil {
		t.Fatalf("resolveRules() error = %v", err)
	}

	var decoded struct {
		Summary cli.Summary `json:"summary"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	want := cli.Summary{Files: 2, Clean: 1, WithDiagnostics: 1, Diagnostics: decoded.Summary.Diagnostics}
	if decoded.Summary != want || decoded.Summary.Diagnostics == 0 {
		t.Errorf("summary = %+v", decoded.Summary)
	}
}

func TestResolveRulesFailOnErrorFromConfig(t *testing.T) {
	writeConfig(t, "resolver:\n  fail_on_error: true\n")
	setResolveFlags("text", false)

	cmd, _ := newTestCommand()
	err := resolveRules(cmd, []string{brokenRules})
	var diag *cli.DiagnosticsError
	if !errors.As(err, &diag) {
		t.Fatalf("error = %v, want DiagnosticsError", err)
	}
	if diag.Files != 1 {
		t.Errorf("Files = %d, want 1", diag.Files)
	}
}

func TestResolveRulesFailOnErrorDisabledByFlag(t *testing.T) {
	writeConfig(t, "resolver:\n  fail_on_error: true\n")
	setResolveFlags("text", false)

	cmd, _ := newTestCommand()
	cmd.Flags().BoolVar(&resolveFlags.failOnError, "fail-on-error", false, "")
	if err := cmd.Flags().Set("fail-on-error", "false"); err != nil {
		t.Fatal(err)
	}
	if err := resolveRules(cmd, []string{brokenRules}); err != nil {
		t.Errorf("resolveRules() error = %v, want nil with --fail-on-error=false", err)
	}
}

func TestResolveRulesErrors(t *testing.T) {
	t.Run("invalid format", func(t *testing.T) {
		writeConfig(t, "")
		setResolveFlags("xml", false)
		cmd, _ := newTestCommand()
		if err := resolveRules(cmd, []string{tradeRules}); err == nil {
			t.Error("expected error for unsupported format")
		}
	})

	t.Run("missing config file", func(t *testing.T) {
		writeConfig(t, "")
		cfgFile = "testdata/does-not-exist.yaml"
		setResolveFlags("text", false)
		cmd, _ := newTestCommand()
		err := resolveRules(cmd, []string{tradeRules})
		var cfgErr *cli.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("error = %v, want ConfigError", err)
		}
	})

	t.Run("missing rule file", func(t *testing.T) {
		writeConfig(t, "")
		setResolveFlags("text", false)
		cmd, _ := newTestCommand()
		err := resolveRules(cmd, []string{"testdata/nonexistent.yaml"})
		var cmdErr *cli.CommandError
		if !errors.As(err, &cmdErr) {
			t.Errorf("error = %v, want CommandError", err)
		}
	})

	t.Run("invalid log level override", func(t *testing.T) {
		writeConfig(t, "")
		logLevel = "verbose"
		setResolveFlags("text", false)
		cmd, _ := newTestCommand()
		if err := resolveRules(cmd, []string{tradeRules}); err == nil {
			t.Error("expected error for invalid log level")
		}
	})
}

func TestLintRules(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantExit int
	}{
		{"clean", []string{tradeRules}, cli.ExitOK},
		{"diagnostics", []string{brokenRules}, cli.ExitDiagnostics},
		{"directory", []string{"../../testdata/rules"}, cli.ExitDiagnostics},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, "")
			lintFlags.format = "csv"

			cmd, out := newTestCommand()
			err := lintRules(cmd, tt.args)
			if got := cli.ExitCode(err); got != tt.wantExit {
				t.Fatalf("exit code = %d, want %d (err = %v)", got, tt.wantExit, err)
			}
			if !strings.HasPrefix(out.String(), strings.Join(cli.ReportHeaders, ",")) {
				t.Errorf("output should start with the CSV header\n%s", out.String())
			}
		})
	}
}
