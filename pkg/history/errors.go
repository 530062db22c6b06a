package history

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string // "memory" or "sqlite"
	Operation string // "store", "get", "list", ...
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// RetentionError reports a failed prune.
type RetentionError struct {
	Days  int
	Cause error
}

func (e *RetentionError) Error() string {
	return fmt.Sprintf("retention error [days=%d]: %v", e.Days, e.Cause)
}

func (e *RetentionError) Unwrap() error {
	return e.Cause
}
