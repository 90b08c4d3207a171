// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/luadistill/luadistill/internal/module"
)

const (
	// CycleFail aborts the build on a require loop.
	CycleFail CyclePolicy = "fail"
	// CycleAllow bundles require loops and leaves them to the runtime loader.
	CycleAllow CyclePolicy = "allow"

	defaultDebounce = 300 * time.Millisecond
)

var (
	// ErrInvalidCyclePolicy is returned when a CyclePolicy value is not recognized.
	ErrInvalidCyclePolicy = errors.New("invalid cycle policy")
	// ErrInvalidToolPath is returned when a tool path is whitespace-only.
	ErrInvalidToolPath = errors.New("invalid tool path")
	// ErrInvalidDebounce is returned for a negative debounce.
	ErrInvalidDebounce = errors.New("invalid debounce")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// CyclePolicy selects how require loops are handled.
	// Defined locally to keep config free of the resolver; the CLI converts
	// at the boundary.
	CyclePolicy string

	// InvalidCyclePolicyError is returned when a CyclePolicy value is not recognized.
	InvalidCyclePolicyError struct {
		Value CyclePolicy
	}

	// ToolPath names an external executable. The zero value means "use the
	// default name from PATH".
	ToolPath string

	// InvalidToolPathError is returned when a ToolPath is non-empty but
	// whitespace-only.
	InvalidToolPathError struct {
		Field string
		Value ToolPath
	}

	// InvalidConfigError collects field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Excludes are left to the host's native loader.
		Excludes []string `json:"excludes" mapstructure:"excludes"`
		// Output is a bundle path (with extension) or a directory.
		Output string `json:"output" mapstructure:"output"`
		// Minify runs LuaSrcDiet on the bundle.
		Minify bool `json:"minify" mapstructure:"minify"`
		// LuaJIT compiles the bundle to bytecode.
		LuaJIT bool `json:"luajit" mapstructure:"luajit"`
		// CyclePolicy selects how require loops are handled.
		CyclePolicy CyclePolicy `json:"cycle_policy" mapstructure:"cycle_policy"`
		// Tools overrides the post-processing executables.
		Tools ToolsConfig `json:"tools" mapstructure:"tools"`
		// Watch configures build --watch.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ToolsConfig names the post-processing executables.
	ToolsConfig struct {
		LuaSrcDiet ToolPath `json:"luasrcdiet" mapstructure:"luasrcdiet"`
		LuaJIT     ToolPath `json:"luajit" mapstructure:"luajit"`
	}

	// WatchConfig configures rebuild-on-change.
	WatchConfig struct {
		// Debounce is the quiet period before a rebuild.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		// Ignore are doublestar globs relative to the entry directory.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose enables debug logging and rendered issue guidance.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Excludes:    []string{},
		CyclePolicy: CycleFail,
		Watch: WatchConfig{
			Debounce: defaultDebounce,
			Ignore:   []string{},
		},
	}
}

// String returns the string representation of the CyclePolicy.
func (p CyclePolicy) String() string { return string(p) }

// IsValid returns whether the CyclePolicy is a known value.
func (p CyclePolicy) IsValid() (bool, []error) {
	switch p {
	case CycleFail, CycleAllow:
		return true, nil
	default:
		return false, []error{&InvalidCyclePolicyError{Value: p}}
	}
}

// Error implements the error interface for InvalidCyclePolicyError.
func (e *InvalidCyclePolicyError) Error() string {
	return fmt.Sprintf("invalid cycle policy %q (valid: %s, %s)", e.Value, CycleFail, CycleAllow)
}

// Unwrap returns ErrInvalidCyclePolicy for errors.Is() compatibility.
func (e *InvalidCyclePolicyError) Unwrap() error { return ErrInvalidCyclePolicy }

// String returns the string representation of the ToolPath.
func (p ToolPath) String() string { return string(p) }

func (p ToolPath) validate(field string) error {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return &InvalidToolPathError{Field: field, Value: p}
	}
	return nil
}

// Error implements the error interface for InvalidToolPathError.
func (e *InvalidToolPathError) Error() string {
	return fmt.Sprintf("invalid %s path %q: non-empty value must not be whitespace-only", e.Field, e.Value)
}

// Unwrap returns ErrInvalidToolPath for errors.Is() compatibility.
func (e *InvalidToolPathError) Unwrap() error { return ErrInvalidToolPath }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig and the field errors, so errors.Is() matches
// both the sentinel and each field's own sentinel.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// IsValid checks the fields CUE cannot see, such as values that arrived
// through environment variables.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.CyclePolicy.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, name := range c.Excludes {
		if err := module.ID(name).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("excludes: %w", err))
		}
	}
	if err := c.Tools.LuaSrcDiet.validate("tools.luasrcdiet"); err != nil {
		errs = append(errs, err)
	}
	if err := c.Tools.LuaJIT.validate("tools.luajit"); err != nil {
		errs = append(errs, err)
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce %s: %w", c.Watch.Debounce, ErrInvalidDebounce))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Validate is IsValid as a single error.
func (c Config) Validate() error {
	if valid, errs := c.IsValid(); !valid {
		return errs[0]
	}
	return nil
}

// ExcludeIDs returns Excludes parsed as module identifiers, trimmed and
// deduplicated.
func (c Config) ExcludeIDs() ([]module.ID, error) {
	return module.ParseList(strings.Join(c.Excludes, ","))
}
