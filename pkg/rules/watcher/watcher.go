package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/rules"
)

// Config contains configuration for the rule watcher.
type Config struct {
	// Paths are the rule files or directories to watch.
	Paths []string

	// Debounce is the quiet period after the last change before the
	// callback runs.
	Debounce time.Duration

	// Extensions selects which files inside watched directories count.
	Extensions []string
}

// ConfigFrom builds a watcher config from the rules section.
func ConfigFrom(cfg config.RulesConfig) *Config {
	return &Config{
		Paths:      cfg.Paths,
		Debounce:   cfg.Debounce,
		Extensions: cfg.Extensions,
	}
}

// ChangeFunc receives the rule files changed during one debounce window,
// sorted. Files may have been removed since.
type ChangeFunc func(ctx context.Context, changed []string) error

// FileWatcher watches rule files and directories and reports changes in
// debounced batches.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *Config
	debounce *Debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher. Nothing is watched until Watch is called.
func New(cfg *Config, logger *slog.Logger) (*FileWatcher, error) {
	if cfg == nil || len(cfg.Paths) == 0 {
		return nil, errors.New("no rule paths to watch")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = config.DefaultRulesDebounce
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = config.DefaultRulesExtensions
	}
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  w,
		logger:   logger.With("component", "rules.watcher"),
		config:   cfg,
		debounce: NewDebouncer(cfg.Debounce),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, invoking onChange
// after each burst of changes. Errors from onChange are logged.
func (fw *FileWatcher) Watch(ctx context.Context, onChange ChangeFunc) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return errors.New("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	defer close(fw.doneCh)

	for _, path := range fw.config.Paths {
		if err := fw.addPath(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	fw.logger.Info("rule watcher started",
		"paths", fw.config.Paths,
		"debounce_ms", fw.config.Debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("rule watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("rule watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			fw.handle(ctx, event, onChange)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			fw.logger.Error("rule watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handle(ctx context.Context, event fsnotify.Event, onChange ChangeFunc) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !rules.IsHidden(event.Name) {
			if err := fw.addDirectory(event.Name); err != nil {
				fw.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if !fw.shouldProcess(event) {
		return
	}

	fw.logger.Debug("rule file event", "path", event.Name, "op", event.Op.String())
	fw.debounce.Add(event.Name, func(changed []string) {
		fw.logger.Info("rule files changed", "count", len(changed))
		if err := onChange(ctx, changed); err != nil {
			fw.logger.Error("rule change handler failed", "error", err)
		}
	})
}

// Stop stops a running watcher and releases its resources.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	running := fw.running
	fw.running = false
	fw.mu.Unlock()

	if running {
		close(fw.stopCh)
		<-fw.doneCh
	}
	fw.debounce.Stop()

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// WatchList returns the directories and files registered with fsnotify.
func (fw *FileWatcher) WatchList() []string {
	return fw.watcher.WatchList()
}

func (fw *FileWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fw.addDirectory(path)
	}
	return fw.watcher.Add(path)
}

func (fw *FileWatcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && rules.IsHidden(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		fw.logger.Debug("watching directory", "path", path)
		return nil
	})
}

// shouldProcess filters out chmod-only events, hidden files and files with
// other extensions.
func (fw *FileWatcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if rules.IsHidden(event.Name) {
		return false
	}
	return rules.HasExtension(event.Name, fw.config.Extensions)
}
