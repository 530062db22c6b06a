package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/cli"
)

var lintFlags struct {
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Check rule files and fail on any diagnostic",
	Long: `Check rule files for names that cannot be resolved.

Lint resolves like the resolve command but never records history, and exits
with status 2 when any file has diagnostics. It is intended for CI.

Examples:
  # Lint a directory
  saturn lint rules/

  # Lint with CSV output for an annotator
  saturn lint rules/ --format csv`,
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.format, "format", "f", "text", "output format: text, json, csv")
}

func lintRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.History.Enabled = false

	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	reports, err := a.resolve(cmd, args)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}
	if err := cli.WriteReports(cmd.OutOrStdout(), format, reports); err != nil {
		return err
	}
	return checkReports(reports, true)
}
