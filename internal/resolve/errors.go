// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"

	"github.com/luadistill/luadistill/internal/dag"
	"github.com/luadistill/luadistill/internal/module"
)

var (
	// ErrMissingEntry is the sentinel error wrapped by MissingEntryError.
	ErrMissingEntry = errors.New("missing entry file")
	// ErrMissingDependency is the sentinel error wrapped by MissingDependencyError.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrCycle is returned (wrapped in CycleError) when modules require each
	// other in a loop and the cycle policy is CycleFail.
	ErrCycle = dag.ErrCycle
)

type (
	// MissingEntryError is returned when the entry file is not given, does not
	// exist, or lacks the Lua extension.
	MissingEntryError struct {
		Path   string
		Reason string
	}

	// MissingDependencyError is returned when a required module does not map
	// to an existing file.
	MissingDependencyError struct {
		// Path is the translated file path that was looked up.
		Path string
		// ID is the identifier as written in the require call.
		ID module.ID
		// RequiredBy is the path of the file containing the require.
		RequiredBy string
	}

	// CycleError names the modules of a require loop, starting and ending
	// with the module that was re-entered.
	CycleError = dag.CycleError

	// CyclePolicy selects how require loops are handled.
	CyclePolicy string

	// InvalidCyclePolicyError is returned for an unknown CyclePolicy value.
	InvalidCyclePolicyError struct {
		Value CyclePolicy
	}
)

const (
	// CycleFail aborts resolution with a CycleError when a module that is
	// still being resolved is required again.
	CycleFail CyclePolicy = "fail"
	// CycleAllow tolerates loops. A re-entered file is scanned again, but its
	// requires were already recorded as visited, so the walk stops there and
	// the first registration of each module wins.
	CycleAllow CyclePolicy = "allow"
)

// ErrInvalidCyclePolicy is the sentinel error wrapped by InvalidCyclePolicyError.
var ErrInvalidCyclePolicy = errors.New("invalid cycle policy")

// Error implements the error interface.
func (e *MissingEntryError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("missing main entrance lua file: %s", e.Reason)
	}
	return fmt.Sprintf("bad main entrance file %s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrMissingEntry.
func (e *MissingEntryError) Unwrap() error {
	return ErrMissingEntry
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing file at %s for module %q, required by: %s", e.Path, e.ID, e.RequiredBy)
}

// Unwrap returns ErrMissingDependency.
func (e *MissingDependencyError) Unwrap() error {
	return ErrMissingDependency
}

// Error implements the error interface.
func (e *InvalidCyclePolicyError) Error() string {
	return fmt.Sprintf("invalid cycle policy %q (valid: %s, %s)", e.Value, CycleFail, CycleAllow)
}

// Unwrap returns ErrInvalidCyclePolicy.
func (e *InvalidCyclePolicyError) Unwrap() error {
	return ErrInvalidCyclePolicy
}

// Validate returns an error if the policy is not recognized.
// The zero value is accepted and means CycleFail.
func (p CyclePolicy) Validate() error {
	switch p {
	case "", CycleFail, CycleAllow:
		return nil
	default:
		return &InvalidCyclePolicyError{Value: p}
	}
}

// String returns the policy name.
func (p CyclePolicy) String() string {
	return string(p)
}
