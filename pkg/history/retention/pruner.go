package retention

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/history"
)

// Pruner deletes runs older than the retention period.
type Pruner struct {
	storage history.Storage
	config  config.RetentionConfig
	logger  *slog.Logger
	now     func() time.Time

	// onPrune, when set, receives the number of runs removed by each prune.
	onPrune func(int64)
}

// PrunerOption configures a Pruner.
type PrunerOption func(*Pruner)

// WithLogger sets the pruner's logger.
func WithLogger(logger *slog.Logger) PrunerOption {
	return func(p *Pruner) { p.logger = logger }
}

// WithPruneHook registers a callback invoked after every successful prune.
func WithPruneHook(fn func(deleted int64)) PrunerOption {
	return func(p *Pruner) { p.onPrune = fn }
}

// NewPruner creates a pruner for storage.
func NewPruner(storage history.Storage, cfg config.RetentionConfig, opts ...PrunerOption) *Pruner {
	p := &Pruner{
		storage: storage,
		config:  cfg,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "history.retention")
	return p
}

// Cutoff returns the start time before which runs are pruned. The zero
// time means nothing is pruned.
func (p *Pruner) Cutoff() time.Time {
	if p.config.Days <= 0 {
		return time.Time{}
	}
	return p.now().AddDate(0, 0, -p.config.Days)
}

// Prune removes expired runs and returns how many were removed. It is a
// no-op when retention is disabled.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := p.Cutoff()
	if cutoff.IsZero() {
		p.logger.Debug("retention disabled, nothing pruned")
		return 0, nil
	}

	deleted, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, &history.RetentionError{Days: p.config.Days, Cause: err}
	}
	if p.onPrune != nil {
		p.onPrune(deleted)
	}

	if deleted > 0 {
		p.logger.Info("pruned history runs",
			"deleted_count", deleted,
			"retention_days", p.config.Days,
			"cutoff", cutoff,
		)
	} else {
		p.logger.Debug("no history runs pruned", "retention_days", p.config.Days)
	}
	return deleted, nil
}
