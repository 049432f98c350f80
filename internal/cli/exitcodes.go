package cli

import (
	"errors"
	"fmt"

	"github.com/yaklabco/poscheck/pkg/runner"
)

// Exit codes for poscheck. The first three mirror runner exit statuses.
const (
	// ExitSuccess indicates no offense at or above the fail level.
	ExitSuccess = runner.ExitClean

	// ExitOffenses indicates offenses at or above the fail level.
	ExitOffenses = runner.ExitOffenses

	// ExitInternalError indicates a crashed check, an unreadable file, a
	// failed write or any other failure of the tool itself.
	ExitInternalError = runner.ExitInternalError

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65
)

// ErrOffensesFound is returned when a run reports failing offenses.
var ErrOffensesFound = errors.New("offenses found")

// ExitError carries an exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitWith wraps err with an exit code.
func exitWith(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}

// ExitCodeFromResult maps a run result onto an exit code.
func ExitCodeFromResult(result *runner.Result) int {
	if result == nil {
		return ExitSuccess
	}
	return result.ExitStatus
}

// ExitCode returns the exit code for an error returned by a command.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitInternalError
}
