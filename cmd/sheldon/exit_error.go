// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

// ExitError carries a specific process exit code through the cobra/fang
// error path.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }
