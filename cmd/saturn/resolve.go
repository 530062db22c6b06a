package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/engine"
)

var resolveFlags struct {
	format      string
	failOnError bool
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [paths...]",
	Short: "Resolve rule files against the business model",
	Long: `Resolve rule files against the configured business model and operator
catalogues, then print every diagnostic.

Paths may be files or directories; directories are searched for files with one
of the configured rule extensions. Without paths the rule paths from the
configuration are used.

When history is enabled each file's run is recorded.

Examples:
  # Resolve the configured rule paths
  saturn resolve --config saturn.yaml

  # Resolve one directory as JSON
  saturn resolve rules/ --format json

  # Exit with status 2 when any diagnostic is reported
  saturn resolve rules/ --fail-on-error`,
	RunE: resolveRules,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveFlags.format, "format", "f", "text", "output format: text, json, csv")
	resolveCmd.Flags().BoolVar(&resolveFlags.failOnError, "fail-on-error", false, "exit with status 2 when any diagnostic is reported (default resolver.fail_on_error)")
}

func resolveRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(resolveFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	failOnError := cfg.Resolver.FailOnError || resolveFlags.failOnError
	if cmd.Flags().Changed("fail-on-error") {
		failOnError = resolveFlags.failOnError
	}

	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	reports, err := a.resolve(cmd, args)
	if err != nil {
		return cli.NewCommandError("resolve", err)
	}
	if err := cli.WriteReports(cmd.OutOrStdout(), format, reports); err != nil {
		return err
	}
	return checkReports(reports, failOnError)
}

// resolve discovers the rule files named by args and resolves each.
func (a *app) resolve(cmd *cobra.Command, args []string) ([]*engine.Report, error) {
	files, err := a.ruleFiles(cmd.Context(), args)
	if err != nil {
		return nil, err
	}
	e, err := a.engine()
	if err != nil {
		return nil, err
	}
	return e.ResolveFiles(cmd.Context(), files)
}

// checkReports returns a DiagnosticsError when failOnError is set and any
// report is not clean.
func checkReports(reports []*engine.Report, failOnError bool) error {
	if !failOnError {
		return nil
	}
	s := cli.Summarize(reports)
	if s.Clean == s.Files {
		return nil
	}
	return &cli.DiagnosticsError{
		Files:       s.Files - s.Clean,
		Diagnostics: s.Diagnostics,
	}
}
