// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/wasupdate/wasupdate/internal/install"
	"github.com/wasupdate/wasupdate/internal/issue"
	"github.com/wasupdate/wasupdate/internal/policy"
	"github.com/wasupdate/wasupdate/internal/runafter"
)

// describeError attaches the operation, resource and remediation hints the
// user needs to the error returned by an update run.
func describeError(err error, p updateParams) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}

	var (
		contractErr *policy.ContractError
		installErr  *install.InstallError
		processErr  *runafter.ProcessError
	)
	switch {
	case errors.Is(err, policy.ErrScriptNotFound):
		return issue.NewErrorContext().
			WithOperation("load update script").
			WithResource(p.script).
			WithSuggestion("Run 'wasupdate init' to write a starter script").
			WithSuggestion("Pass --script to use a script at another path").
			WithIssue(issue.ScriptNotFoundId).
			Wrap(err).
			Build()

	case errors.As(err, &contractErr):
		return issue.NewErrorContext().
			WithOperation("validate update script").
			WithResource(p.script).
			WithSuggestions(contractSuggestions(contractErr.Rule)...).
			WithIssue(issue.ContractViolationId).
			Wrap(err).
			Build()

	case errors.Is(err, policy.ErrScript):
		return issue.NewErrorContext().
			WithOperation("run update script").
			WithResource(p.script).
			WithSuggestion("Make the version functions print a single semantic version such as 1.4.0").
			WithSuggestion("Run with --verbose to see the script's diagnostics").
			WithIssue(issue.ScriptFailedId).
			Wrap(err).
			Build()

	case errors.Is(err, install.ErrInvalidLocation):
		ctx := issue.NewErrorContext().
			WithOperation("install update").
			WithSuggestion("Print an absolute http(s) URL or an existing file path from install_version").
			WithIssue(issue.InvalidLocationId).
			Wrap(err)
		if errors.As(err, &installErr) {
			ctx = ctx.WithResource(installErr.Path)
		}
		return ctx.Build()

	case errors.Is(err, install.ErrIO):
		ctx := issue.NewErrorContext().
			WithOperation("install update").
			WithSuggestion("Check the network connection and that the release exists").
			WithSuggestion("Check that the install directory is writable, or use --target-dir").
			WithIssue(issue.InstallFailedId).
			Wrap(err)
		if errors.As(err, &installErr) {
			ctx = ctx.WithResource(installErr.Path)
		}
		return ctx.Build()

	case errors.As(err, &processErr):
		return issue.NewErrorContext().
			WithOperation("run post-update command").
			WithResource(processErr.Program).
			WithSuggestion("Check the program name; it is looked up in PATH and next to the executable").
			WithIssue(issue.RunAfterFailedId).
			Wrap(err).
			Build()
	}

	return issue.WrapWithContext(err, "update", p.script)
}

func contractSuggestions(rule policy.Rule) []string {
	switch rule {
	case policy.RuleSyntax:
		return []string{"Fix the shell syntax error at the reported position"}
	case policy.RuleMissing:
		return []string{"Declare current_version, latest_version and install_version"}
	case policy.RuleParamCount:
		return []string{
			"current_version and latest_version take no parameters",
			"install_version takes exactly one parameter ($1) and must not use $@, $* or $#",
		}
	case policy.RuleVisibility:
		return []string{"Move the function to the top level of the script"}
	case policy.RuleParamName:
		return []string{`Bind the parameter with: local version="$1"`}
	}
	return nil
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
