package config

import (
	"reflect"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"model path", cfg.Model.Path, DefaultModelPath},
		{"rules paths", cfg.Rules.Paths, []string{DefaultRulesPath}},
		{"rules extensions", cfg.Rules.Extensions, []string{".yaml", ".yml"}},
		{"rules debounce", cfg.Rules.Debounce, 100 * time.Millisecond},
		{"rules max depth", cfg.Rules.MaxDepth, 64},
		{"git branch", cfg.Rules.Git.Branch, "main"},
		{"git poll interval", cfg.Rules.Git.PollInterval, 30 * time.Second},
		{"git auth type", cfg.Rules.Git.Auth.Type, "none"},
		{"secrets env prefix", cfg.Secrets.EnvPrefix, "SATURN_SECRET_"},
		{"history backend", cfg.History.Backend, "memory"},
		{"sqlite driver", cfg.History.SQLite.Driver, "sqlite"},
		{"sqlite path", cfg.History.SQLite.Path, "data/history.db"},
		{"retention days", cfg.History.Retention.Days, 30},
		{"prune schedule", cfg.History.Retention.PruneSchedule, "0 3 * * *"},
		{"logging level", cfg.Telemetry.Logging.Level, "info"},
		{"logging format", cfg.Telemetry.Logging.Format, "text"},
		{"metrics path", cfg.Telemetry.Metrics.Path, "/metrics"},
		{"tracing sampler", cfg.Telemetry.Tracing.Sampler, "always"},
		{"tracing ratio", cfg.Telemetry.Tracing.SampleRatio, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if cfg.History.Enabled || cfg.Rules.Git.Enabled || cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Tracing.Enabled {
		t.Error("optional features should be disabled by default")
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Rules:   RulesConfig{Paths: []string{"a.yaml"}, MaxDepth: 8},
		History: HistoryConfig{Backend: "sqlite", SQLite: SQLiteConfig{Driver: "sqlite3"}},
	}
	ApplyDefaults(cfg)

	if len(cfg.Rules.Paths) != 1 || cfg.Rules.Paths[0] != "a.yaml" {
		t.Errorf("rules paths = %v", cfg.Rules.Paths)
	}
	if cfg.Rules.MaxDepth != 8 {
		t.Errorf("max depth = %d, want 8", cfg.Rules.MaxDepth)
	}
	if cfg.History.SQLite.Driver != "sqlite3" {
		t.Errorf("driver = %q, want sqlite3", cfg.History.SQLite.Driver)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	first := Default()
	second := Default()
	ApplyDefaults(second)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("ApplyDefaults is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("Validate(Default()) = %v", err)
	}
}
