package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/cli"
	"mercator-hq/saturn/pkg/config"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Saturn - semantic resolver for business rules",
	Long: `Saturn resolves business rules against a business model.

Rule files are parsed into rule trees and every name they use is bound to a
model element, attribute, enumeration literal, variable, parameter or operator.
Names that cannot be bound are reported as diagnostics with a file, line and
column, and where possible a suggested fix.

Configuration is read from the file given with --config. Any setting can be
overridden with a SATURN_<SECTION>_<FIELD> environment variable.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the status derived from its
// error.
func Execute() {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// Diagnostics have already been printed with the report.
		var diag *cli.DiagnosticsError
		if !errors.As(err, &diag) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.ExitCode(err))
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log format (json, text, console)")
}

// loadConfig reads the configuration file, applies environment and flag
// overrides, and installs the result as the process configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}

	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Telemetry.Logging.Format = logFormat
	}

	config.SetConfig(cfg)
	return cfg, nil
}
