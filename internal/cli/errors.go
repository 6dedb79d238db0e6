// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for the inkwell CLI commands.
//
// Command handlers always return errors instead of printing and
// swallowing them; main decides how to display them and which exit
// code the process ends with.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/inkwell-tui/internal/api"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates the backend rejected the API key
	ExitAuthError = 4
	// ExitNetworkError indicates the backend was unreachable or failing
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // command that failed (e.g. "sessions", "entries")
	Action  string // action being performed (e.g. "show", "delete")
	Reason  string // human-readable reason
	Err     error  // underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError represents invalid command-line input.
type UsageError struct {
	Field  string // what was wrong (e.g. "session id", "format")
	Value  string // the value that was provided
	Reason string // why it was rejected
	Usage  string // one-line correct invocation (optional)
}

func (e *UsageError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Usage != "" {
		msg += fmt.Sprintf("\nUsage: %s", e.Usage)
	}
	return msg
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(field, usage string) error {
	return &UsageError{
		Field:  field,
		Reason: "required argument missing",
		Usage:  usage,
	}
}

// ErrInvalidArgument reports an argument with a bad value.
func ErrInvalidArgument(field, value, reason string) error {
	return &UsageError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError prints an error consistently. In JSON mode errors go
// out as a JSON envelope on stdout; otherwise as styled text.
func DisplayError(err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		output := map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		}
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			output["error_type"] = "usage_error"
			output["field"] = usageErr.Field
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		encoder.Encode(output)
		return
	}

	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("error:"), err.Error())
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	switch {
	case errors.Is(err, api.ErrNotConfigured):
		return ExitConfigError
	case errors.Is(err, api.ErrAuthFailed):
		return ExitAuthError
	case errors.Is(err, api.ErrNotFound):
		return ExitNotFoundError
	case errors.Is(err, api.ErrServerError), errors.Is(err, api.ErrRateLimited):
		return ExitNetworkError
	}

	var tty *TTYRequiredError
	if errors.As(err, &tty) {
		return ExitUsageError
	}

	return ExitGeneralError
}

// HandleErrorAndExit displays an error and exits with its code. For
// fatal errors in main command dispatch.
func HandleErrorAndExit(err error, jsonMode bool) {
	if err == nil {
		return
	}
	DisplayError(err, jsonMode)
	os.Exit(GetExitCode(err))
}
