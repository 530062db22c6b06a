// Package storage provides history.Storage backends.
//
// MemoryStorage keeps runs for the life of the process. SQLiteStorage
// persists them and works with either SQLite driver:
//
//	history:
//	  backend: sqlite
//	  sqlite:
//	    path: data/history.db
//	    driver: sqlite    # modernc.org/sqlite, pure Go
//	    # driver: sqlite3 # github.com/mattn/go-sqlite3, requires cgo
//
// Diagnostics are stored as a JSON column; runs are indexed by start time
// and by file.
package storage
