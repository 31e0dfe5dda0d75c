// SPDX-License-Identifier: MPL-2.0

// Package semver parses and compares semantic versions as defined by
// semver.org 2.0.0.
//
// Parsing is strict: a version has exactly three numeric core components
// without leading zeros and no "v" prefix. Ordering follows the semver
// precedence rules (build metadata is ignored); equality is structural and
// includes build metadata.
package semver
