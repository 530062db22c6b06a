package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/engine"
	"mercator-hq/saturn/pkg/history/retention"
	"mercator-hq/saturn/pkg/rules"
	rulesgit "mercator-hq/saturn/pkg/rules/git"
	"mercator-hq/saturn/pkg/rules/watcher"
	"mercator-hq/saturn/pkg/telemetry/health"
	"mercator-hq/saturn/pkg/telemetry/metrics"
)

var watchFlags struct {
	format      string
	metricsAddr string
}

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-resolve rule files whenever they change",
	Long: `Resolve rule files once, then watch them and re-resolve every file that
changes. Changes are batched over rules.debounce. When rules.git is enabled
the repository is pulled every rules.git.poll_interval instead and the rule
files touched by new commits are re-resolved.

When metrics are enabled an HTTP server exposes Prometheus metrics together
with /health, /ready and /version. When history is enabled expired runs are
pruned on history.retention.prune_schedule.

Stop with Ctrl-C.

Examples:
  # Watch the configured rule paths
  saturn watch --config saturn.yaml

  # Watch a directory and serve metrics on another port
  saturn watch rules/ --metrics-addr 127.0.0.1:9100`,
	RunE: watchRules,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.format, "format", "f", "text", "output format: text, json, csv")
	watchCmd.Flags().StringVar(&watchFlags.metricsAddr, "metrics-addr", "", "override telemetry.metrics.address")
}

func watchRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(watchFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Rules.Paths = args
		cfg.Rules.Git.Enabled = false
	}
	if watchFlags.metricsAddr != "" {
		cfg.Telemetry.Metrics.Address = watchFlags.metricsAddr
	}

	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := a.engine()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session := &watchSession{
		app:    a,
		engine: e,
		out:    cmd.OutOrStdout(),
		format: format,
	}

	files, err := a.ruleFiles(ctx, nil)
	if err != nil {
		return err
	}
	a.metrics.SetWatchedFiles(len(files))
	if err := session.resolve(ctx, files); err != nil {
		return err
	}

	if cfg.Telemetry.Metrics.Enabled {
		srv := session.server()
		go func() {
			a.logger.Info("metrics server listening", "address", srv.Addr, "path", cfg.Telemetry.Metrics.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if a.history != nil {
		pruner := retention.NewPruner(a.history, cfg.History.Retention,
			retention.WithLogger(a.logger),
			retention.WithPruneHook(a.metrics.RecordPruned),
		)
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start retention scheduler: %w", err)
		}
		defer scheduler.Stop()
	}

	if a.repo != nil {
		poller := rulesgit.NewPoller(a.repo, cfg.Rules.Git.PollInterval, cfg.Rules.Extensions, a.logger,
			rulesgit.WithPullHook(func(result *rulesgit.PullResult, err error) {
				a.metrics.RecordGitPull(result != nil && result.HadChanges(), err)
			}),
		)
		return poller.Run(ctx, session.changed)
	}

	w, err := watcher.New(watcher.ConfigFrom(cfg.Rules), a.logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	return w.Watch(ctx, session.changed)
}

// watchSession re-resolves rule files reported by the watcher.
type watchSession struct {
	app    *app
	engine *engine.Engine
	out    io.Writer
	format cli.OutputFormat
}

// changed resolves every changed file that still exists and refreshes the
// watched file count.
func (s *watchSession) changed(ctx context.Context, paths []string) error {
	var present []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			s.app.logger.Info("rule file removed", "file", path)
			continue
		}
		present = append(present, path)
	}

	if files, err := rules.Discover(s.app.rulePaths(), s.app.cfg.Rules.Extensions); err == nil {
		s.app.metrics.SetWatchedFiles(len(files))
	}

	if len(present) == 0 {
		return nil
	}
	return s.resolve(ctx, present)
}

func (s *watchSession) resolve(ctx context.Context, files []string) error {
	reports, err := s.engine.ResolveFiles(ctx, files)
	if err != nil {
		s.app.metrics.RecordReload(metrics.OutcomeFailed)
		return err
	}
	s.app.metrics.RecordReload(reloadOutcome(reports))
	return cli.WriteReports(s.out, s.format, reports)
}

// server builds the metrics and health HTTP server.
func (s *watchSession) server() *http.Server {
	cfg := s.app.cfg

	checker := health.New(2 * time.Second)
	checker.Register("rules", func(ctx context.Context) error {
		for _, path := range s.app.rulePaths() {
			if _, err := os.Stat(path); err != nil {
				return err
			}
		}
		return nil
	})
	if s.app.history != nil {
		checker.Register("history", s.app.history.Ping)
	}
	if s.app.repo != nil {
		checker.Register("git", func(ctx context.Context) error {
			_, err := s.app.repo.CurrentCommit()
			return err
		})
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Telemetry.Metrics.Path, s.app.metrics.Handler())
	health.Mount(mux, checker, versionInfo())

	return &http.Server{
		Addr:              cfg.Telemetry.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// reloadOutcome is the worst outcome among reports.
func reloadOutcome(reports []*engine.Report) string {
	s := cli.Summarize(reports)
	switch {
	case s.Failed > 0:
		return metrics.OutcomeFailed
	case s.WithDiagnostics > 0:
		return metrics.OutcomeDiagnostics
	default:
		return metrics.OutcomeClean
	}
}
