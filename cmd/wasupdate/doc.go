// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the wasupdate command line.
//
// The root command runs one update: it loads the policy script, asks it for
// the current and latest versions, installs the latest one next to the
// executable when they differ, and finally launches the command given after
// "--". Subcommands write a starter script (init), print the effective
// configuration (config show) and report the build (version).
package cmd
