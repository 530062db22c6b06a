package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/history"
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3, needs cgo
)

// SQLiteStorage stores runs in a SQLite database.
type SQLiteStorage struct {
	db     *sql.DB
	config config.SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database at cfg.Path, creating its directory
// and schema as needed.
func NewSQLiteStorage(cfg config.SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverModernc
	}
	if cfg.Driver != DriverModernc && cfg.Driver != DriverMattn {
		return nil, history.NewStorageError("sqlite", "open", fmt.Errorf("unsupported driver %q", cfg.Driver))
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "history.storage.sqlite")

	if dir := filepath.Dir(cfg.Path); dir != "." && !strings.HasPrefix(cfg.Path, ":memory:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, history.NewStorageError("sqlite", "mkdir", err)
		}
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "open", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	s := &SQLiteStorage{db: db, config: cfg, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite history storage initialized",
		"path", cfg.Path,
		"driver", cfg.Driver,
	)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return history.NewStorageError("sqlite", "enable_wal", err)
	}
	if s.config.BusyTimeout > 0 {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
			return history.NewStorageError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return history.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion, time.Now().UnixNano()); err != nil {
		return history.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return history.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return history.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Store inserts run.
func (s *SQLiteStorage) Store(ctx context.Context, run *history.Run) error {
	var diagnostics any
	if len(run.Diagnostics) > 0 {
		data, err := json.Marshal(run.Diagnostics)
		if err != nil {
			return history.NewStorageError("sqlite", "store", err)
		}
		diagnostics = string(data)
	}
	var failure any
	if run.Failure != "" {
		failure = run.Failure
	}

	_, err := s.db.ExecContext(ctx, insertRun,
		run.ID.String(), run.File, run.StartedAt.UnixNano(), int64(run.Duration),
		run.Declarations, run.Resolved, run.Skipped,
		run.Outcome, failure, diagnostics,
	)
	if err != nil {
		return history.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Get returns the run with id.
func (s *SQLiteStorage) Get(ctx context.Context, id uuid.UUID) (*history.Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+" WHERE id = ?", id.String())
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, history.ErrNotFound
	}
	if err != nil {
		return nil, history.NewStorageError("sqlite", "get", err)
	}
	return run, nil
}

// List returns matching runs, newest first.
func (s *SQLiteStorage) List(ctx context.Context, query *history.Query) ([]*history.Run, error) {
	if query == nil {
		query = &history.Query{}
	}

	var conditions []string
	var args []any
	if query.File != "" {
		conditions = append(conditions, "file = ?")
		args = append(args, query.File)
	}
	if !query.Since.IsZero() {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, query.Since.UnixNano())
	}

	sqlQuery := selectRuns
	if len(conditions) > 0 {
		sqlQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	sqlQuery += " ORDER BY started_at DESC"
	if query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "list", err)
	}
	defer rows.Close()

	runs := []*history.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, history.NewStorageError("sqlite", "scan", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, history.NewStorageError("sqlite", "list", err)
	}
	return runs, nil
}

// DeleteBefore removes runs started before cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, history.NewStorageError("sqlite", "delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, history.NewStorageError("sqlite", "delete", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return history.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return history.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite history storage closed")
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*history.Run, error) {
	var (
		id, file, outcome    string
		startedAt, duration  int64
		failure, diagnostics sql.NullString
		run                  history.Run
	)
	err := row.Scan(&id, &file, &startedAt, &duration,
		&run.Declarations, &run.Resolved, &run.Skipped,
		&outcome, &failure, &diagnostics)
	if err != nil {
		return nil, err
	}

	run.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	run.File = file
	run.StartedAt = time.Unix(0, startedAt)
	run.Duration = time.Duration(duration)
	run.Outcome = outcome
	run.Failure = failure.String
	if diagnostics.Valid && diagnostics.String != "" {
		if err := json.Unmarshal([]byte(diagnostics.String), &run.Diagnostics); err != nil {
			return nil, fmt.Errorf("invalid diagnostics for run %s: %w", id, err)
		}
	}
	return &run, nil
}
