// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wasupdate/wasupdate/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// rootFlags holds every flag value; config values fill in the ones the
	// user did not set on the command line.
	rootFlags struct {
		configPath  string
		script      string
		showCurrent bool
		showLatest  bool
		showInstall bool
		dry         bool
		background  bool
		targetDir   string
		output      string
		verbose     bool
	}

	// settings is the resolved view of flags over configuration.
	settings struct {
		loaded     *config.Loaded
		cfg        *config.Config
		script     string
		output     config.OutputFormat
		verbose    bool
		background bool
		logger     *log.Logger
	}
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// newRootCommand builds the command tree. Each call returns independent
// state so tests can run commands side by side.
func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	s := &settings{}

	root := &cobra.Command{
		Use:   "wasupdate [flags] [-- command [args...]]",
		Short: "Update a program in place from a shell-scripted release policy",
		Long: TitleStyle.Render("wasupdate") + SubtitleStyle.Render(" - self-update driven by a shell script") + `

wasupdate asks a small shell script which version is installed, which
version is the latest, and where that version can be downloaded. When the
two versions differ it downloads the artifact (zip, tar, tar.gz or a plain
file) and unpacks it next to the executable. The command given after "--"
runs afterwards, whether or not an update was needed.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'wasupdate init' to write a starter wasupdate.sh
  2. Edit current_version, latest_version and install_version
  3. Run 'wasupdate --dry' to see what would happen

` + SubtitleStyle.Render("Examples:") + `
  wasupdate                       Update if a newer release exists
  wasupdate --dry                 Show versions and location only
  wasupdate -- myapp --serve      Update, then start myapp
  wasupdate --output json         Machine-readable result`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.resolve(cmd, flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p := updateParams{
				stdin:       cmd.InOrStdin(),
				stdout:      cmd.OutOrStdout(),
				stderr:      cmd.ErrOrStderr(),
				logger:      s.logger,
				cfg:         s.cfg,
				script:      s.script,
				output:      s.output,
				verbose:     s.verbose,
				showCurrent: flags.showCurrent,
				showLatest:  flags.showLatest,
				showInstall: flags.showInstall,
				dry:         flags.dry,
				background:  s.background,
				targetDir:   flags.targetDir,
				runAfter:    args,
			}
			return runUpdate(cmd.Context(), p)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/wasupdate/config.cue)")
	pf.StringVar(&flags.script, "script", config.DefaultScript, "policy script path")
	pf.StringVarP(&flags.output, "output", "o", string(config.OutputText), "output format: text or json")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	f := root.Flags()
	f.BoolVar(&flags.showCurrent, "current", false, "print the current version, then continue")
	f.BoolVar(&flags.showLatest, "latest", false, "print the latest version, then continue")
	f.BoolVar(&flags.showInstall, "install", false, "print the install location of the latest version, then continue")
	f.BoolVar(&flags.dry, "dry", false, "resolve versions and location, then stop without installing")
	f.BoolVar(&flags.background, "background", false, "start the post-update command detached")
	f.StringVar(&flags.targetDir, "target-dir", "", "install into this directory instead of the executable's")

	root.AddCommand(newInitCommand(s))
	root.AddCommand(newConfigCommand(s))
	root.AddCommand(newVersionCommand())

	return root
}

// resolve loads configuration and lets explicitly set flags win over it.
func (s *settings) resolve(cmd *cobra.Command, flags *rootFlags) error {
	loaded, err := config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, flags.verbose))
		return &ExitError{Code: ExitPolicy, Err: err}
	}
	s.loaded = loaded
	cfg := loaded.Config
	s.cfg = cfg

	changed := cmd.Flags().Changed
	s.script = cfg.Script
	if changed("script") {
		s.script = flags.script
	}
	s.output = cfg.UI.Output
	if changed("output") {
		s.output = config.OutputFormat(flags.output)
	}
	if ok, errs := s.output.IsValid(); !ok {
		err := errors.Join(errs...)
		fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+err.Error())
		return &ExitError{Code: ExitPolicy, Err: err}
	}
	s.verbose = flags.verbose || cfg.UI.Verbose
	s.background = flags.background || cfg.RunAfter.Background
	s.logger = newLogger(cmd.ErrOrStderr(), s.verbose)

	return nil
}

// newLogger builds the single stderr logger threaded through every package.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "wasupdate",
		Level:           level,
		ReportTimestamp: false,
	})
}

// Execute runs the root command with fang styling and exits with the code
// carried by an ExitError.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		newRootCommand(),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitPolicy)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the wasupdate version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "wasupdate "+getVersionString())
			return nil
		},
	}
}
