// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wasupdate/wasupdate/internal/issue"
	"github.com/wasupdate/wasupdate/internal/policy"
)

// newInitCommand creates `wasupdate init`, which writes the starter policy
// script to the configured script path.
func newInitCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter update script",
		Long: `Write a starter update script to wasupdate.sh, or to the path given
with --script. The script declares the three functions wasupdate calls:
current_version, latest_version and install_version.

An existing file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := writeScript(s.script); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, s.verbose))
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}

			out := cmd.OutOrStdout()
			absPath, err := filepath.Abs(s.script)
			if err != nil {
				absPath = s.script
			}
			fmt.Fprintf(out, "%s Created %s\n", SuccessStyle.Render("✓"), absPath)
			fmt.Fprintln(out)
			fmt.Fprintln(out, SubtitleStyle.Render("Next steps:"))
			fmt.Fprintln(out, "  1. Make current_version print the installed version")
			fmt.Fprintln(out, "  2. Make latest_version print the newest released version")
			fmt.Fprintln(out, "  3. Make install_version print where that version can be downloaded")
			fmt.Fprintln(out, "  4. Run 'wasupdate --dry' to check the result")
			return nil
		},
	}
}

// writeScript creates path with the starter script and fails when the file
// already exists.
func writeScript(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o755)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return issue.NewErrorContext().
				WithOperation("write update script").
				WithResource(path).
				WithSuggestion("Remove or rename the existing file").
				WithSuggestion("Use --script to write the starter script elsewhere").
				WithIssue(issue.ScriptExistsId).
				Wrap(err).
				BuildError()
		}
		return issue.WrapWithContext(err, "write update script", path)
	}

	if _, err := f.WriteString(policy.DefaultScript); err != nil {
		_ = f.Close()
		return issue.WrapWithContext(err, "write update script", path)
	}
	if err := f.Close(); err != nil {
		return issue.WrapWithContext(err, "write update script", path)
	}
	return nil
}
