package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/history"
	"mercator-hq/saturn/pkg/history/retention"
)

var historyFlags struct {
	file   string
	limit  int
	since  time.Duration
	format string
	days   int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded resolution runs",
	Long: `List resolution runs recorded in the history store, newest first.

Runs are recorded by resolve and watch when history.enabled is set. The memory
backend does not outlive the process, so listing is only useful with the
sqlite backend.

Examples:
  # Last runs of one file
  saturn history --file rules/trade.yaml

  # Runs from the last day as CSV
  saturn history --since 24h --format csv

  # Diagnostics of one run
  saturn history show 0b6f1c9e-4f1a-4a55-9f43-2b1a0b8c7d21`,
	RunE: listHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  showHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than the retention period",
	Long: `Delete runs older than history.retention.days, or --days when given.

The watch command prunes on history.retention.prune_schedule; this command
prunes once.`,
	RunE: pruneHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.Flags().StringVar(&historyFlags.file, "file", "", "only runs of this rule file")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 0, "max results (default history.list_limit)")
	historyCmd.Flags().DurationVar(&historyFlags.since, "since", 0, "only runs started within this duration")
	historyCmd.PersistentFlags().StringVarP(&historyFlags.format, "format", "f", "text", "output format: text, json, csv")

	historyPruneCmd.Flags().IntVar(&historyFlags.days, "days", 0, "retention in days (default history.retention.days)")
}

// openHistory loads the configuration and opens the history store even when
// recording is disabled.
func openHistory(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.History.Enabled = true

	a, err := newApp(cmd, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.History.Backend != "sqlite" {
		a.logger.Warn("history backend does not persist between runs", "backend", cfg.History.Backend)
	}
	return a, nil
}

func listHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return err
	}

	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	query := &history.Query{
		File:  historyFlags.file,
		Limit: historyFlags.limit,
	}
	if query.Limit <= 0 {
		query.Limit = a.cfg.History.ListLimit
	}
	if historyFlags.since > 0 {
		query.Since = time.Now().Add(-historyFlags.since)
	}

	runs, err := a.history.List(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	return cli.WriteRuns(cmd.OutOrStdout(), format, runs)
}

func showHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", args[0], err)
	}

	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	run, err := a.history.Get(cmd.Context(), id)
	if err != nil {
		return cli.NewCommandError("history show", err)
	}

	out := cmd.OutOrStdout()
	if err := cli.WriteRuns(out, format, []*history.Run{run}); err != nil {
		return err
	}
	if format != cli.FormatText {
		return nil
	}

	if run.Failure != "" {
		fmt.Fprintf(out, "\nfailure: %s\n", run.Failure)
	}
	if len(run.Diagnostics) > 0 {
		fmt.Fprintln(out)
	}
	for _, d := range run.Diagnostics {
		fmt.Fprintf(out, "%s:%d:%d: [%s] %s\n", d.File, d.Line, d.Column, d.Code, d.Message)
		if d.Suggestion != "" {
			fmt.Fprintf(out, "    = suggestion: %s\n", d.Suggestion)
		}
	}
	return nil
}

func pruneHistory(cmd *cobra.Command, args []string) error {
	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	policy := a.cfg.History.Retention
	if historyFlags.days > 0 {
		policy.Days = historyFlags.days
	}

	pruner := retention.NewPruner(a.history, policy,
		retention.WithLogger(a.logger),
		retention.WithPruneHook(a.metrics.RecordPruned),
	)
	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}

	if policy.Days <= 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Retention disabled, nothing pruned.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d run(s) started before %s.\n",
		deleted, pruner.Cutoff().Format(time.RFC3339))
	return nil
}
