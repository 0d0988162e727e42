// SPDX-License-Identifier: MPL-2.0

package toolrun

import "strconv"

type (
	// ExitCode represents a process completion status. The zero value (0)
	// means success.
	ExitCode int

	// Result is the outcome of one tool invocation. A non-nil Error means
	// the tool could not be run at all; a non-zero ExitCode with a nil
	// Error means the tool ran and reported failure.
	Result struct {
		ExitCode ExitCode
		Error    error
	}
)

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination
// rather than infrastructure failures.
func NewExitCodeResult(code ExitCode) *Result {
	return &Result{ExitCode: code}
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// Success returns true if the command executed successfully.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}
