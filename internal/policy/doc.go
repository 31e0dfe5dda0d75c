// SPDX-License-Identifier: MPL-2.0

// Package policy loads the user's update policy script and invokes it.
//
// The script is a shell program interpreted in-process with mvdan.cc/sh. It
// must declare three top-level functions:
//
//	current_version() { ... }   # prints the installed version
//	latest_version()  { ... }   # prints the newest available version
//	install_version() {         # prints a path or URL for $1
//	    local version="$1"
//	    ...
//	}
//
// Load parses and validates the script once, producing a Contract. Every
// call then runs on a fresh interpreter: the script's top level executes
// first so functions and globals are defined, then the requested function
// is called with errexit enabled.
//
// Scripts run in a sandbox. External programs are only reachable through the
// host builtins fetch, run and jq, and file redirections may not write
// anywhere except /dev/null.
package policy
