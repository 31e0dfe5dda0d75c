// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newConfigCommand creates `wasupdate config` and its subcommands.
func newConfigCommand(s *settings) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect wasupdate configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration wasupdate would use, after applying built-in
defaults, the config file and WASUPDATE_* environment variables, in the
config.cue format. The first line names the config file that was read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), s.loaded.Describe())
			return err
		},
	})

	return configCmd
}
