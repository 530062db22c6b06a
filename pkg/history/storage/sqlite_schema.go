package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the run history tables. Times are stored as Unix
// nanoseconds so both drivers round-trip them identically.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    file TEXT NOT NULL,
    started_at INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    declarations INTEGER NOT NULL,
    resolved INTEGER NOT NULL,
    skipped INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    failure TEXT,
    diagnostics TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_file ON runs(file, started_at);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, ?)
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion reads the newest schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertRun = `
INSERT INTO runs (
    id, file, started_at, duration_ns,
    declarations, resolved, skipped,
    outcome, failure, diagnostics
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectRuns = `
SELECT id, file, started_at, duration_ns,
    declarations, resolved, skipped,
    outcome, failure, diagnostics
FROM runs`
