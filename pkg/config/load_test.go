package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saturn.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
model:
  path: ./trading.yaml
operators:
  catalogues: [./builtins.yaml, ./extra.yaml]
rules:
  paths: [./rules]
  watch: true
  debounce: 250ms
resolver:
  fail_on_error: true
history:
  enabled: true
  backend: sqlite
  sqlite:
    path: /tmp/history.db
    driver: sqlite3
  retention:
    days: 7
telemetry:
  logging:
    level: debug
    format: json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Model.Path != "./trading.yaml" {
		t.Errorf("model path = %q", cfg.Model.Path)
	}
	if len(cfg.Operators.Catalogues) != 2 || cfg.Operators.Catalogues[1] != "./extra.yaml" {
		t.Errorf("catalogues = %v", cfg.Operators.Catalogues)
	}
	if !cfg.Rules.Watch || cfg.Rules.Debounce != 250*time.Millisecond {
		t.Errorf("rules = %+v", cfg.Rules)
	}
	if !cfg.Resolver.FailOnError {
		t.Error("fail_on_error not loaded")
	}
	if cfg.History.SQLite.Driver != "sqlite3" || cfg.History.Retention.Days != 7 {
		t.Errorf("history = %+v", cfg.History)
	}
	// Defaults fill what the file leaves out.
	if cfg.History.Retention.PruneSchedule != DefaultRetentionSchedule {
		t.Errorf("prune schedule = %q", cfg.History.Retention.PruneSchedule)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "model:\n  path: [unclosed\n")
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		path := writeConfig(t, "history:\n  backend: postgres\n")
		_, err := LoadConfig(path)
		var validationErr ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError in error chain, got %T: %v", err, err)
		}
		if validationErr.Errors[0].Field != "history.backend" {
			t.Errorf("field = %q", validationErr.Errors[0].Field)
		}
	})
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
model:
  path: ./file-model.yaml
telemetry:
  logging:
    level: info
`)

	t.Setenv("SATURN_MODEL_PATH", "./env-model.yaml")
	t.Setenv("SATURN_OPERATORS_CATALOGUES", "a.yaml, b.yaml")
	t.Setenv("SATURN_RULES_DEBOUNCE", "2s")
	t.Setenv("SATURN_RULES_WATCH", "true")
	t.Setenv("SATURN_HISTORY_RETENTION_DAYS", "90")
	t.Setenv("SATURN_TELEMETRY_LOGGING_LEVEL", "debug")
	t.Setenv("SATURN_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Model.Path != "./env-model.yaml" {
		t.Errorf("model path = %q, want env value", cfg.Model.Path)
	}
	if len(cfg.Operators.Catalogues) != 2 || cfg.Operators.Catalogues[1] != "b.yaml" {
		t.Errorf("catalogues = %v", cfg.Operators.Catalogues)
	}
	if cfg.Rules.Debounce != 2*time.Second || !cfg.Rules.Watch {
		t.Errorf("rules = %+v", cfg.Rules)
	}
	if cfg.History.Retention.Days != 90 {
		t.Errorf("retention days = %d", cfg.History.Retention.Days)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("sample ratio = %v", cfg.Telemetry.Tracing.SampleRatio)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("SATURN_RULES_DEBOUNCE", "soon")
	t.Setenv("SATURN_HISTORY_ENABLED", "maybe")
	t.Setenv("SATURN_RULES_MAX_DEPTH", "deep")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Rules.Debounce != DefaultRulesDebounce || cfg.History.Enabled || cfg.Rules.MaxDepth != DefaultRulesMaxDepth {
		t.Errorf("invalid env values were applied: %+v", cfg)
	}
}

func TestLoadConfigWithEnvOverrides_RevalidatesOverrides(t *testing.T) {
	t.Setenv("SATURN_HISTORY_SQLITE_DRIVER", "postgres")
	t.Setenv("SATURN_HISTORY_BACKEND", "sqlite")

	if _, err := LoadConfigWithEnvOverrides(""); err == nil {
		t.Error("expected validation error after overrides")
	}
}
