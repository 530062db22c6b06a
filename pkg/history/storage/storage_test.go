package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/history"
)

var base = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func newRun(file string, startedAt time.Time, diagnostics ...history.Diagnostic) *history.Run {
	run := history.NewRun(file, startedAt)
	run.Duration = 12 * time.Millisecond
	run.Declarations = 3
	run.Resolved = 3 - len(diagnostics)
	run.Skipped = len(diagnostics)
	run.Outcome = history.OutcomeClean
	if len(diagnostics) > 0 {
		run.Outcome = history.OutcomeDiagnostics
		run.Diagnostics = diagnostics
	}
	return run
}

func newSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(config.SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "nested", "history.db"),
		Driver:       DriverModernc,
		MaxOpenConns: 1,
		BusyTimeout:  time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func backends(t *testing.T) map[string]history.Storage {
	return map[string]history.Storage{
		"memory": NewMemoryStorage(),
		"sqlite": newSQLite(t),
	}
}

func TestStoreAndGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			run := newRun("rules/trade.yaml", base, history.Diagnostic{
				Code: "context-unknown", Message: "unknown context 'Trad'",
				File: "rules/trade.yaml", Line: 4, Column: 7, Suggestion: "Did you mean 'Trade'?",
			})

			if err := s.Store(ctx, run); err != nil {
				t.Fatalf("Store() error = %v", err)
			}
			got, err := s.Get(ctx, run.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}

			if got.ID != run.ID || got.File != run.File || got.Outcome != history.OutcomeDiagnostics {
				t.Errorf("Get() = %+v", got)
			}
			if !got.StartedAt.Equal(base) || got.Duration != run.Duration {
				t.Errorf("timing = %v/%v, want %v/%v", got.StartedAt, got.Duration, base, run.Duration)
			}
			if got.Resolved != 2 || got.Skipped != 1 || got.Declarations != 3 {
				t.Errorf("counts = %d/%d/%d", got.Declarations, got.Resolved, got.Skipped)
			}
			if len(got.Diagnostics) != 1 || got.Diagnostics[0] != run.Diagnostics[0] {
				t.Errorf("diagnostics = %+v", got.Diagnostics)
			}

			if _, err := s.Get(ctx, uuid.New()); !errors.Is(err, history.ErrNotFound) {
				t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestList(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 4; i++ {
				if err := s.Store(ctx, newRun("a.yaml", base.Add(time.Duration(i)*time.Hour))); err != nil {
					t.Fatal(err)
				}
			}
			if err := s.Store(ctx, newRun("b.yaml", base.Add(30*time.Minute))); err != nil {
				t.Fatal(err)
			}

			tests := []struct {
				name      string
				query     *history.Query
				wantCount int
				wantFirst time.Time
			}{
				{name: "all", query: nil, wantCount: 5, wantFirst: base.Add(3 * time.Hour)},
				{name: "by file", query: &history.Query{File: "b.yaml"}, wantCount: 1, wantFirst: base.Add(30 * time.Minute)},
				{name: "limit", query: &history.Query{File: "a.yaml", Limit: 2}, wantCount: 2, wantFirst: base.Add(3 * time.Hour)},
				{name: "since", query: &history.Query{Since: base.Add(2 * time.Hour)}, wantCount: 2, wantFirst: base.Add(3 * time.Hour)},
				{name: "no match", query: &history.Query{File: "c.yaml"}, wantCount: 0},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					runs, err := s.List(ctx, tt.query)
					if err != nil {
						t.Fatalf("List() error = %v", err)
					}
					if len(runs) != tt.wantCount {
						t.Fatalf("got %d runs, want %d", len(runs), tt.wantCount)
					}
					if tt.wantCount > 0 && !runs[0].StartedAt.Equal(tt.wantFirst) {
						t.Errorf("first run started %v, want %v", runs[0].StartedAt, tt.wantFirst)
					}
					for i := 1; i < len(runs); i++ {
						if runs[i].StartedAt.After(runs[i-1].StartedAt) {
							t.Error("runs not sorted newest first")
						}
					}
				})
			}
		})
	}
}

func TestDeleteBefore(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			old := newRun("a.yaml", base.AddDate(0, 0, -40))
			recent := newRun("a.yaml", base)
			for _, r := range []*history.Run{old, recent} {
				if err := s.Store(ctx, r); err != nil {
					t.Fatal(err)
				}
			}

			n, err := s.DeleteBefore(ctx, base.AddDate(0, 0, -30))
			if err != nil {
				t.Fatalf("DeleteBefore() error = %v", err)
			}
			if n != 1 {
				t.Errorf("deleted %d runs, want 1", n)
			}
			if _, err := s.Get(ctx, old.ID); !errors.Is(err, history.ErrNotFound) {
				t.Error("old run survived pruning")
			}
			if _, err := s.Get(ctx, recent.ID); err != nil {
				t.Errorf("recent run lost: %v", err)
			}
		})
	}
}

func TestPingAndClose(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()
	if err := m.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	_ = m.Close()

	err := m.Ping(ctx)
	var se *history.StorageError
	if !errors.As(err, &se) || se.Backend != "memory" {
		t.Errorf("Ping() after Close = %v", err)
	}
	if err := m.Store(ctx, newRun("a.yaml", base)); err == nil {
		t.Error("Store() after Close should fail")
	}

	s := newSQLite(t)
	if err := s.Ping(ctx); err != nil {
		t.Errorf("sqlite Ping() error = %v", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.HistoryConfig
		want    string
		wantErr bool
	}{
		{name: "default", cfg: config.HistoryConfig{}, want: "memory"},
		{name: "memory", cfg: config.HistoryConfig{Backend: "memory"}, want: "memory"},
		{
			name: "sqlite",
			cfg: config.HistoryConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{
				Path: filepath.Join(t.TempDir(), "h.db"), Driver: DriverModernc,
			}},
			want: "sqlite",
		},
		{name: "unknown backend", cfg: config.HistoryConfig{Backend: "postgres"}, wantErr: true},
		{
			name:    "unknown driver",
			cfg:     config.HistoryConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{Path: "x.db", Driver: "pgx"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(&tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer s.Close()
			switch s.(type) {
			case *MemoryStorage:
				if tt.want != "memory" {
					t.Errorf("got memory backend, want %s", tt.want)
				}
			case *SQLiteStorage:
				if tt.want != "sqlite" {
					t.Errorf("got sqlite backend, want %s", tt.want)
				}
			}
		})
	}
}
