package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"missing model path", func(c *Config) { c.Model.Path = "" }, "model.path"},
		{"no rule paths", func(c *Config) { c.Rules.Paths = nil }, "rules.paths"},
		{"extension without dot", func(c *Config) { c.Rules.Extensions = []string{"yaml"} }, "rules.extensions[0]"},
		{"negative debounce", func(c *Config) { c.Rules.Debounce = -1 }, "rules.debounce"},
		{"unknown backend", func(c *Config) { c.History.Backend = "s3" }, "history.backend"},
		{"unknown sqlite driver", func(c *Config) {
			c.History.Backend = "sqlite"
			c.History.SQLite.Driver = "pgx"
		}, "history.sqlite.driver"},
		{"sqlite without path", func(c *Config) {
			c.History.Backend = "sqlite"
			c.History.SQLite.Path = ""
		}, "history.sqlite.path"},
		{"bad cron", func(c *Config) { c.History.Retention.PruneSchedule = "every day" }, "history.retention.prune_schedule"},
		{"negative retention", func(c *Config) { c.History.Retention.Days = -1 }, "history.retention.days"},
		{"bad log level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"bad log format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"metrics path", func(c *Config) {
			c.Telemetry.Metrics.Enabled = true
			c.Telemetry.Metrics.Path = "metrics"
		}, "telemetry.metrics.path"},
		{"tracing without endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
		{"bad sampler", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, "telemetry.tracing.sampler"},
		{"git without repository", func(c *Config) { c.Rules.Git.Enabled = true }, "rules.git.repository"},
		{"git token missing", func(c *Config) {
			c.Rules.Git.Enabled = true
			c.Rules.Git.Repository = "https://example.com/rules.git"
			c.Rules.Git.Auth.Type = "token"
		}, "rules.git.auth.token"},
		{"git ssh key missing", func(c *Config) {
			c.Rules.Git.Enabled = true
			c.Rules.Git.Repository = "git@example.com:rules.git"
			c.Rules.Git.Auth.Type = "ssh"
		}, "rules.git.auth.ssh_key_path"},
		{"git unknown auth", func(c *Config) {
			c.Rules.Git.Enabled = true
			c.Rules.Git.Repository = "https://example.com/rules.git"
			c.Rules.Git.Auth.Type = "oauth"
		}, "rules.git.auth.type"},
		{"ratio out of range", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			validationErr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			found := false
			for _, fe := range validationErr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %v", tt.field, validationErr)
			}
		})
	}
}

func TestValidate_SQLiteDrivers(t *testing.T) {
	for _, driver := range []string{"sqlite", "sqlite3"} {
		t.Run(driver, func(t *testing.T) {
			cfg := Default()
			cfg.History.Backend = "sqlite"
			cfg.History.SQLite.Driver = driver
			if err := Validate(cfg); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestValidate_GitDisabledIgnoresGitFields(t *testing.T) {
	cfg := Default()
	cfg.Rules.Git.Auth.Type = "oauth"
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() = %v, want nil while git is disabled", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	err := Validate(&Config{})
	validationErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Errors) < 3 {
		t.Errorf("expected several errors, got %d", len(validationErr.Errors))
	}
	if !strings.Contains(validationErr.Error(), "errors:") {
		t.Errorf("message should list errors: %s", validationErr.Error())
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      ValidationError
		contains string
	}{
		{"empty errors", ValidationError{}, "configuration validation failed"},
		{"single error", ValidationError{Errors: []FieldError{{Field: "model.path", Message: "required"}}}, "model.path: required"},
		{"multiple errors", ValidationError{Errors: []FieldError{
			{Field: "model.path", Message: "required"},
			{Field: "rules.paths", Message: "required"},
		}}, "2 errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if msg := tt.err.Error(); !strings.Contains(msg, tt.contains) {
				t.Errorf("expected error message to contain %q, got: %s", tt.contains, msg)
			}
		})
	}
}
