// SPDX-License-Identifier: MPL-2.0

package postprocess

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/luadistill/luadistill/internal/output"
)

const (
	// DefaultLuaSrcDiet is the minifier executable looked up on PATH.
	DefaultLuaSrcDiet = "luasrcdiet"
	// DefaultLuaJIT is the bytecode compiler executable looked up on PATH.
	DefaultLuaJIT = "luajit"
)

// ErrStepFailed is the sentinel error wrapped by StepError.
var ErrStepFailed = errors.New("post-processing step failed")

type (
	// Step is one external tool invocation.
	Step struct {
		// Name identifies the step in logs ("minify", "luajit").
		Name string
		// Input is the file the step reads.
		Input string
		// Output is the file the step produces.
		Output string
		// Args is the command line, program first.
		Args []string
	}

	// Result records how a step ended.
	Result struct {
		Step     Step
		ExitCode int
		Err      error
	}

	// StepError reports a failed step.
	StepError struct {
		Step     Step
		ExitCode int
		Cause    error
	}

	// Tools names the external executables.
	Tools struct {
		LuaSrcDiet string
		LuaJIT     string
	}

	// Plan selects which steps to run.
	Plan struct {
		Minify bool
		JIT    bool
		Tools  Tools
	}

	// Runner executes steps through the shell interpreter.
	Runner struct {
		dir    string
		env    []string
		stdout io.Writer
		stderr io.Writer
	}
)

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Step.Name, strings.Join(e.Step.Args, " "), e.Cause)
	}
	return fmt.Sprintf("%s: %s: exit status %d", e.Step.Name, strings.Join(e.Step.Args, " "), e.ExitCode)
}

// Unwrap returns ErrStepFailed.
func (e *StepError) Unwrap() error {
	return ErrStepFailed
}

// Steps lists the steps of the plan for the given output paths, in order:
// minify, compile the bundle, compile the minified bundle.
func (p Plan) Steps(paths output.Paths) []Step {
	diet := p.Tools.LuaSrcDiet
	if diet == "" {
		diet = DefaultLuaSrcDiet
	}
	jit := p.Tools.LuaJIT
	if jit == "" {
		jit = DefaultLuaJIT
	}

	var steps []Step
	if p.Minify {
		steps = append(steps, Step{
			Name:   "minify",
			Input:  paths.Merged,
			Output: paths.Minified,
			Args:   []string{diet, paths.Merged, "-o", paths.Minified},
		})
	}
	if p.JIT {
		steps = append(steps, Step{
			Name:   "luajit",
			Input:  paths.Merged,
			Output: paths.MergedJIT,
			Args:   []string{jit, "-b", paths.Merged, paths.MergedJIT},
		})
	}
	if p.JIT && p.Minify {
		steps = append(steps, Step{
			Name:   "luajit",
			Input:  paths.Minified,
			Output: paths.MinifiedJIT,
			Args:   []string{jit, "-b", paths.Minified, paths.MinifiedJIT},
		})
	}
	return steps
}

// NewRunner creates a Runner executing in dir. nil writers discard output.
func NewRunner(dir string, stdout, stderr io.Writer) *Runner {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Runner{
		dir:    dir,
		env:    os.Environ(),
		stdout: stdout,
		stderr: stderr,
	}
}

// Script renders the step as a shell command line.
func (s Step) Script() (string, error) {
	quoted := make([]string, 0, len(s.Args))
	for _, arg := range s.Args {
		q, err := syntax.Quote(arg, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("failed to quote argument %q: %w", arg, err)
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " "), nil
}

// Run executes one step. A non-zero exit status is returned as *StepError.
func (r *Runner) Run(ctx context.Context, step Step) error {
	if len(step.Args) == 0 {
		return &StepError{Step: step, Cause: errors.New("empty command")}
	}

	script, err := step.Script()
	if err != nil {
		return &StepError{Step: step, Cause: err}
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), step.Name)
	if err != nil {
		return &StepError{Step: step, Cause: fmt.Errorf("failed to parse command: %w", err)}
	}

	runner, err := interp.New(
		interp.Dir(r.dir),
		interp.Env(expand.ListEnviron(r.env...)),
		interp.StdIO(nil, r.stdout, r.stderr),
	)
	if err != nil {
		return &StepError{Step: step, Cause: fmt.Errorf("failed to create interpreter: %w", err)}
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &StepError{Step: step, ExitCode: int(exitStatus)}
		}
		return &StepError{Step: step, ExitCode: 1, Cause: err}
	}
	return nil
}

// RunAll executes steps in order and reports every outcome. A failed step does
// not prevent the following ones from running.
func (r *Runner) RunAll(ctx context.Context, steps []Step) []Result {
	results := make([]Result, 0, len(steps))
	for _, step := range steps {
		res := Result{Step: step}
		if err := r.Run(ctx, step); err != nil {
			res.Err = err
			var stepErr *StepError
			if errors.As(err, &stepErr) {
				res.ExitCode = stepErr.ExitCode
			}
		}
		results = append(results, res)
	}
	return results
}

// Failed returns the errors of all failed results.
func Failed(results []Result) []error {
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errs
}
