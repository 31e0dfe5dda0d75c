// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints; the catalog in issue.go holds longer Markdown guidance,
// rendered with glamour, that the CLI prints for well-known failures.
package issue
