/*
Package cli provides command-line helpers for the saturn command.

Output Formatting:

Resolution reports and stored runs can be written as text, JSON or CSV:

	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	if err := cli.WriteReports(os.Stdout, format, reports); err != nil {
		return err
	}

Text output prints one "file:line:col: [code] message" line per diagnostic,
which editors and CI annotators pick up directly.

Errors:

DiagnosticsError marks a run that completed but reported diagnostics while
fail-on-error was requested. ExitCode turns it into exit status 2 and every
other error into 1.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
