// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/wasupdate/wasupdate/internal/install"
)

const (
	// ExitOK is returned when the run succeeded, including "already up to date".
	ExitOK = 0
	// ExitPolicy covers script, contract, location and configuration failures.
	ExitPolicy = 1
	// ExitIO covers download and filesystem failures while installing.
	ExitIO = 2
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// classifyExitCode maps a failed run to the process exit code. Anything that
// is not an install I/O failure is something the user fixes in the script,
// the config or the flags.
func classifyExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, install.ErrIO):
		return ExitIO
	default:
		return ExitPolicy
	}
}
