// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the small helpers shared by CUE-backed file loaders:
// a size guard applied before compilation and an error formatter that turns
// CUE error paths into JSON-path notation prefixed by the file name.
package cueutil
