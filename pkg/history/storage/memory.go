package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/history"
)

// MemoryStorage keeps runs in a map. It is the default backend and loses
// its contents when the process exits.
type MemoryStorage struct {
	runs   map[uuid.UUID]*history.Run
	mu     sync.RWMutex
	closed bool
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{runs: make(map[uuid.UUID]*history.Run)}
}

// Store saves a copy of run.
func (s *MemoryStorage) Store(ctx context.Context, run *history.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return history.NewStorageError("memory", "store", errClosed)
	}
	s.runs[run.ID] = copyRun(run)
	return nil
}

// Get returns the run with id.
func (s *MemoryStorage) Get(ctx context.Context, id uuid.UUID) (*history.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, history.ErrNotFound
	}
	return copyRun(run), nil
}

// List returns matching runs, newest first.
func (s *MemoryStorage) List(ctx context.Context, query *history.Query) ([]*history.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == nil {
		query = &history.Query{}
	}

	results := []*history.Run{}
	for _, run := range s.runs {
		if query.File != "" && run.File != query.File {
			continue
		}
		if !query.Since.IsZero() && run.StartedAt.Before(query.Since) {
			continue
		}
		results = append(results, copyRun(run))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].StartedAt.After(results[j].StartedAt)
	})
	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}
	return results, nil
}

// DeleteBefore removes runs started before cutoff.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, run := range s.runs {
		if run.StartedAt.Before(cutoff) {
			delete(s.runs, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping fails once the storage is closed.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return history.NewStorageError("memory", "ping", errClosed)
	}
	return nil
}

// Close drops every run.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[uuid.UUID]*history.Run)
	s.closed = true
	return nil
}

// Count returns the number of stored runs.
func (s *MemoryStorage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

func copyRun(run *history.Run) *history.Run {
	c := *run
	c.Diagnostics = append([]history.Diagnostic(nil), run.Diagnostics...)
	return &c
}
