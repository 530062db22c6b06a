package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/engine"
	"mercator-hq/saturn/pkg/history"
	"mercator-hq/saturn/pkg/history/storage"
	"mercator-hq/saturn/pkg/rules"
	rulesgit "mercator-hq/saturn/pkg/rules/git"
	"mercator-hq/saturn/pkg/secrets"
	"mercator-hq/saturn/pkg/telemetry/logging"
	"mercator-hq/saturn/pkg/telemetry/metrics"
	"mercator-hq/saturn/pkg/telemetry/tracing"
)

const shutdownTimeout = 5 * time.Second

// app holds the components shared by the commands that resolve rules.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	history history.Storage
	repo    *rulesgit.Repository
}

// newApp builds logging, metrics, tracing and, when enabled, run history and
// the rule repository from cfg. Logs go to the command's error stream so reports on stdout stay
// machine readable.
func newApp(cmd *cobra.Command, cfg *config.Config) (*app, error) {
	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr()))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(Version))
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		tracer:  tracer,
	}

	if cfg.History.Enabled {
		store, err := storage.New(&cfg.History, logger)
		if err != nil {
			_ = tracer.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		a.history = store
	}

	if cfg.Rules.Git.Enabled {
		repo, err := newRepository(cmd.Context(), cfg, logger)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to open rule repository: %w", err)
		}
		a.repo = repo
	}
	return a, nil
}

// newRepository resolves secret references in the git credentials and
// prepares the rule repository.
func newRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*rulesgit.Repository, error) {
	resolver, err := secrets.FromConfig(cfg.Secrets)
	if err != nil {
		return nil, err
	}
	gitCfg := cfg.Rules.Git
	if err := resolver.ResolveGitAuth(ctx, &gitCfg.Auth); err != nil {
		return nil, err
	}
	return rulesgit.NewRepository(gitCfg, logger)
}

// engine creates a resolution engine wired to the app's telemetry.
func (a *app) engine() (*engine.Engine, error) {
	opts := []engine.Option{
		engine.WithLogger(a.logger),
		engine.WithMetrics(a.metrics),
		engine.WithTracer(a.tracer),
	}
	if a.history != nil {
		opts = append(opts, engine.WithHistory(a.history))
	}
	return engine.NewFromConfig(a.cfg, opts...)
}

// rulePaths are the configured rule paths, or the rule directory of the
// repository clone when rules come from git.
func (a *app) rulePaths() []string {
	if a.repo != nil {
		return []string{a.repo.RulesPath()}
	}
	return a.cfg.Rules.Paths
}

// syncRules brings the repository clone up to date.
func (a *app) syncRules(ctx context.Context) error {
	result, err := a.repo.Sync(ctx)
	a.metrics.RecordGitPull(result != nil && result.HadChanges(), err)
	if err != nil {
		return fmt.Errorf("failed to sync rule repository: %w", err)
	}
	if commit, err := a.repo.CurrentCommit(); err == nil {
		a.logger.Info("rules synced from repository", "sha", commit.SHA, "branch", commit.Branch)
	}
	return nil
}

// ruleFiles expands args, or the configured rule paths when args is empty.
// Without args the repository clone is synced first when rules come from git.
func (a *app) ruleFiles(ctx context.Context, args []string) ([]string, error) {
	paths := args
	if len(paths) == 0 {
		if a.repo != nil {
			if err := a.syncRules(ctx); err != nil {
				return nil, err
			}
		}
		paths = a.rulePaths()
	}
	files, err := rules.Discover(paths, a.cfg.Rules.Extensions)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no rule files found in %v", paths)
	}
	return files, nil
}

// Close flushes pending spans and closes the history store.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			errs = append(errs, fmt.Errorf("history close: %w", err))
		}
	}
	return errors.Join(errs...)
}
