package git

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/rules"
)

// ChangeFunc receives the absolute paths of rule files touched by a pull,
// sorted. Deleted files are included.
type ChangeFunc func(ctx context.Context, changed []string) error

// PullHook observes every pull. err is nil on success.
type PullHook func(result *PullResult, err error)

// Poller pulls a Repository on an interval.
type Poller struct {
	repo       *Repository
	interval   time.Duration
	extensions []string
	logger     *slog.Logger
	onPull     PullHook
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithPullHook sets a hook called after each pull.
func WithPullHook(hook PullHook) PollerOption {
	return func(p *Poller) { p.onPull = hook }
}

// NewPoller creates a poller for repo. Only files with one of extensions
// under the repository's rule path are reported.
func NewPoller(repo *Repository, interval time.Duration, extensions []string, logger *slog.Logger, opts ...PollerOption) *Poller {
	if interval <= 0 {
		interval = config.DefaultGitPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{
		repo:       repo,
		interval:   interval,
		extensions: extensions,
		logger:     logger.With("component", "rules.git.poller"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled. Pull and callback errors are logged and
// polling continues.
func (p *Poller) Run(ctx context.Context, onChange ChangeFunc) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("rule repository poller started", "interval", p.interval.String())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("rule repository poller stopped")
			return nil
		case <-ticker.C:
			if err := p.Check(ctx, onChange); err != nil {
				p.logger.Error("rule repository poll failed", "error", err)
			}
		}
	}
}

// Check pulls once and calls onChange when rule files changed.
func (p *Poller) Check(ctx context.Context, onChange ChangeFunc) error {
	result, err := p.repo.Pull(ctx)
	if p.onPull != nil {
		p.onPull(result, err)
	}
	if err != nil {
		return err
	}
	if !result.HadChanges() {
		return nil
	}

	changed := p.ruleFiles(result.ChangedFiles)
	if len(changed) == 0 {
		p.logger.Debug("no rule files in pulled changes", "changed_files", len(result.ChangedFiles))
		return nil
	}
	p.logger.Info("rule files changed upstream",
		"count", len(changed),
		"to_sha", shortSHA(result.ToSHA),
	)
	return onChange(ctx, changed)
}

// ruleFiles maps repository-relative paths to absolute rule file paths.
func (p *Poller) ruleFiles(paths []string) []string {
	root := filepath.Clean(p.repo.RulesPath())
	var files []string
	for _, rel := range paths {
		abs := filepath.Join(p.repo.LocalPath(), filepath.FromSlash(rel))
		if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
			continue
		}
		if hiddenUnder(root, abs) || !rules.HasExtension(abs, p.extensions) {
			continue
		}
		files = append(files, abs)
	}
	sort.Strings(files)
	return files
}

// hiddenUnder reports whether any element of path below root is hidden.
func hiddenUnder(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if rules.IsHidden(part) {
			return true
		}
	}
	return false
}
