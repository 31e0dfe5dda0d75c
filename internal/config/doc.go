// SPDX-License-Identifier: MPL-2.0

// Package config loads wasupdate settings using Viper with CUE as the file format.
//
// The file is looked up at the path given with --config, then in the platform
// configuration directory (wasupdate/config.cue under $XDG_CONFIG_HOME on Linux,
// ~/Library/Application Support on macOS, %APPDATA% on Windows), then as
// ./config.cue. A missing file means defaults. WASUPDATE_* environment
// variables override file values.
//
// Files are validated against the embedded config_schema.cue before decoding.
package config
