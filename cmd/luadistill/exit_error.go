// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

const (
	// exitFatal means the build failed and no bundle was written.
	exitFatal = 1
	// exitUsage means invalid flags, arguments or configuration.
	exitUsage = 2
	// exitPostProcess means the bundle was written but a post-processing
	// step failed.
	exitPostProcess = 3
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
