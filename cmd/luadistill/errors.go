// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/luadistill/luadistill/internal/config"
	"github.com/luadistill/luadistill/internal/issue"
	"github.com/luadistill/luadistill/internal/module"
	"github.com/luadistill/luadistill/internal/postprocess"
	"github.com/luadistill/luadistill/internal/resolve"
)

// classifyError maps a command failure to its exit code and issue catalog ID.
func classifyError(err error) (code int, issueID issue.Id) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, 0
	}

	switch {
	case errors.Is(err, postprocess.ErrStepFailed):
		return exitPostProcess, issue.PostProcessFailedId
	case errors.Is(err, module.ErrInvalidID):
		return exitUsage, issue.InvalidExcludeId
	case errors.Is(err, resolve.ErrInvalidCyclePolicy),
		errors.Is(err, config.ErrInvalidConfig):
		return exitUsage, issue.ConfigLoadFailedId
	case errors.Is(err, resolve.ErrMissingEntry):
		return exitFatal, issue.MissingEntryId
	case errors.Is(err, resolve.ErrMissingDependency):
		return exitFatal, issue.MissingDependencyId
	case errors.Is(err, resolve.ErrCycle):
		return exitFatal, issue.DependencyCycleId
	}

	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue == issue.ConfigLoadFailedId {
		return exitUsage, ae.Issue
	}
	return exitFatal, 0
}

// actionable attaches operation, resource and suggestions to err. Errors that
// are already actionable are returned unchanged.
func actionable(err error, entry string) error {
	var (
		ae      *issue.ActionableError
		exitErr *ExitError
	)
	if errors.As(err, &ae) || errors.As(err, &exitErr) {
		return err
	}

	op := "bundle"
	if entry != "" {
		op += " " + entry
	}
	ctx := issue.NewErrorContext().WithOperation(op)

	var (
		missingDep *resolve.MissingDependencyError
		cycle      *resolve.CycleError
		stepErr    *postprocess.StepError
	)
	switch {
	case errors.As(err, &missingDep):
		ctx.WithIssue(issue.MissingDependencyId).
			WithSuggestion(fmt.Sprintf("Create %s", missingDep.Path)).
			WithSuggestion(fmt.Sprintf("Or leave %q to the host with --excludes %s", missingDep.ID, missingDep.ID))
	case errors.As(err, &cycle):
		ctx.WithIssue(issue.DependencyCycleId).
			WithSuggestions(
				"Move the shared code into a module both sides can require",
				"Or bundle anyway with --cycle-policy allow",
			)
	case errors.As(err, &stepErr):
		ctx.WithOperation("post-process " + stepErr.Step.Input).
			WithIssue(issue.PostProcessFailedId).
			WithSuggestion("Check that the tool is installed and on PATH").
			WithSuggestion("Or point tools.luasrcdiet or tools.luajit at the executable in luadistill.cue")
	case errors.Is(err, resolve.ErrMissingEntry):
		ctx.WithIssue(issue.MissingEntryId).
			WithSuggestions(
				"Pass the entry file as an argument or with --input",
				"The entry file must exist and end in .lua",
			)
	case errors.Is(err, module.ErrInvalidID):
		ctx.WithOperation("parse excludes").
			WithIssue(issue.InvalidExcludeId).
			WithSuggestion("Package names may only use letters, digits and . _ - /")
	case errors.Is(err, resolve.ErrInvalidCyclePolicy):
		ctx.WithOperation("parse flags").
			WithSuggestion(fmt.Sprintf("Use --cycle-policy %s or %s", resolve.CycleFail, resolve.CycleAllow))
	}

	return ctx.Wrap(err).BuildError()
}

// fail renders err to stderr and returns the ExitError that carries its exit
// code. In verbose mode the catalog entry for the failure is rendered too.
func fail(stderr io.Writer, err error, verbose bool) error {
	code, issueID := classifyError(err)
	renderError(stderr, err, issueID, verbose)
	return &ExitError{Code: code}
}

// renderError prints the styled error message, then the optional issue help
// section.
func renderError(stderr io.Writer, err error, issueID issue.Id, verbose bool) {
	fmt.Fprintf(stderr, "\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))

	if !verbose || issueID == 0 {
		return
	}

	if catalogEntry := issue.Get(issueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("dark")
		if renderErr != nil {
			log.Warn("failed to render issue catalog entry", "issueID", issueID, "error", renderErr)
			return
		}
		fmt.Fprint(stderr, rendered)
	}
}
