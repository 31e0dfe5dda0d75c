// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/wasupdate/wasupdate/internal/config"
	"github.com/wasupdate/wasupdate/internal/install"
	"github.com/wasupdate/wasupdate/internal/issue"
	"github.com/wasupdate/wasupdate/internal/policy"
	"github.com/wasupdate/wasupdate/internal/runafter"
	"github.com/wasupdate/wasupdate/internal/selfupdate"
)

// updateParams bundles the streams, resolved settings and flags for one
// update run so that runUpdate can be tested without a Cobra command.
type updateParams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
	cfg    *config.Config

	script  string
	output  config.OutputFormat
	verbose bool

	showCurrent bool
	showLatest  bool
	showInstall bool
	dry         bool
	background  bool
	targetDir   string
	runAfter    []string
}

// runUpdate is the root command's logic.
//
// Flow:
//  1. Load and validate the policy script.
//  2. Resolve the current and then the latest version.
//  3. Resolve the install location when it is needed: to print it, for a dry
//     run, or because the versions differ.
//  4. Stop here for --dry.
//  5. Install when the versions differ.
//  6. Start the post-update command, if any. Its failure is reported but
//     does not turn a completed update into a failed one.
func runUpdate(ctx context.Context, p updateParams) error {
	rep, err := performUpdate(ctx, p)
	if err != nil {
		return reportFailure(p, describeError(err, p))
	}
	if err := renderReport(p.stdout, p.output, rep); err != nil {
		return &ExitError{Code: ExitIO, Err: err}
	}
	if p.dry || len(p.runAfter) == 0 {
		return nil
	}

	runner := runafter.New(
		runafter.WithStdio(p.stdin, p.stdout, p.stderr),
		runafter.WithLogger(p.logger),
	)
	cmd := runafter.Command{Argv: p.runAfter, Background: p.background, ExeDir: rep.exeDir}
	if err := runner.Run(ctx, cmd); err != nil {
		ae := describeError(err, p)
		fmt.Fprintln(p.stderr, WarningStyle.Render("Warning: ")+ae.Format(p.verbose))
	}
	return nil
}

// performUpdate does steps 1 to 5 and collects what happened.
func performUpdate(ctx context.Context, p updateParams) (*report, error) {
	contract, err := policy.Load(ctx, policy.FileSource(p.script), policyOptions(p)...)
	if err != nil {
		return nil, err
	}

	installer := newInstaller(p)
	updater := selfupdate.NewUpdater(contract,
		selfupdate.WithInstaller(installer),
		selfupdate.WithLogger(p.logger),
	)

	check, err := updater.Check(ctx)
	if err != nil {
		return nil, err
	}
	if p.output == config.OutputText {
		if p.showCurrent {
			fmt.Fprintln(p.stdout, check.Current)
		}
		if p.showLatest {
			fmt.Fprintln(p.stdout, check.Latest)
		}
	}

	rep := &report{
		Script:     p.script,
		Current:    check.Current.String(),
		Latest:     check.Latest.String(),
		Prerelease: check.Latest.IsPrerelease(),
		UpToDate:   check.UpToDate,
		DryRun:     p.dry,
		Message:    check.Message,
	}
	// The exe dir only feeds the post-update lookup, which tolerates "".
	rep.exeDir, _ = installer.TargetDir()

	if p.dry || p.showInstall || !check.UpToDate {
		location, err := updater.Locate(ctx, check)
		if err != nil {
			return nil, err
		}
		rep.Location = location
		if p.showInstall && p.output == config.OutputText {
			fmt.Fprintln(p.stdout, location)
		}
	}

	if p.dry || check.UpToDate {
		return rep, nil
	}

	result, err := updater.InstallFrom(ctx, check, rep.Location)
	if err != nil {
		return nil, err
	}
	rep.Installed = true
	rep.Archive = result.Archive.String()
	rep.TargetDir = result.TargetDir
	return rep, nil
}

func policyOptions(p updateParams) []policy.Option {
	opts := []policy.Option{
		policy.WithLogger(p.logger),
		policy.WithFetchTimeout(p.cfg.HTTP.FetchTimeout),
		policy.WithUserAgent(p.cfg.HTTP.UserAgent),
	}
	if p.targetDir != "" {
		opts = append(opts, policy.WithExeDir(p.targetDir))
	}
	return opts
}

func newInstaller(p updateParams) *install.Installer {
	fetcher := install.NewHTTPFetcher(
		install.WithTimeout(p.cfg.HTTP.DownloadTimeout),
		install.WithUserAgent(p.cfg.HTTP.UserAgent),
		install.WithFetchLogger(p.logger),
	)
	opts := []install.Option{
		install.WithFetcher(fetcher),
		install.WithProgress(&logProgress{logger: p.logger}),
		install.WithLogger(p.logger),
	}
	if p.targetDir != "" {
		opts = append(opts, install.WithTargetDir(p.targetDir))
	}
	return install.New(opts...)
}

// reportFailure prints err in the selected format and returns the ExitError
// carrying its exit code.
func reportFailure(p updateParams, err error) error {
	code := classifyExitCode(err)
	if p.output == config.OutputJSON {
		if renderErr := renderJSON(p.stdout, failureReport{Error: err.Error(), ExitCode: code}); renderErr != nil {
			p.logger.Error("rendering failure", "err", renderErr)
		}
		return &ExitError{Code: code, Err: err}
	}

	fmt.Fprintln(p.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, p.verbose))
	var ae *issue.ActionableError
	if p.verbose && errors.As(err, &ae) {
		if guide, guideErr := ae.Guide("dark"); guideErr == nil && guide != "" {
			fmt.Fprint(p.stderr, guide)
		}
	}
	return &ExitError{Code: code, Err: err}
}
