package cli

import (
	"errors"
	"fmt"
)

// Exit codes returned by the saturn command.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitDiagnostics = 2
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// DiagnosticsError is returned when rule files produced diagnostics and the
// caller asked for that to be treated as a failure.
type DiagnosticsError struct {
	Files       int
	Diagnostics int
}

func (e *DiagnosticsError) Error() string {
	return fmt.Sprintf("%d diagnostic(s) in %d file(s)", e.Diagnostics, e.Files)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var diag *DiagnosticsError
	if errors.As(err, &diag) {
		return ExitDiagnostics
	}
	return ExitError
}
