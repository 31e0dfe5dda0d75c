// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"path"
	"strings"
)

// windowsReservedNames cannot be used as file names on Windows, with or
// without an extension.
//
//nolint:gochecknoglobals // Read-only lookup table.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindowsReservedName reports whether name (ignoring its extension) is a
// reserved device name on Windows.
func IsWindowsReservedName(name string) bool {
	upper := strings.ToUpper(name)
	if idx := strings.LastIndex(upper, "."); idx != -1 {
		upper = upper[:idx]
	}
	return windowsReservedNames[upper]
}

// SanitizeFileName reduces an untrusted name (from a URL or an HTTP header)
// to a single path element that is safe to create inside a directory. It
// returns fallback when nothing usable remains.
func SanitizeFileName(name, fallback string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(path.Clean("/" + name))
	name = strings.TrimSpace(name)

	switch name {
	case "", ".", "..", "/":
		return fallback
	}

	if IsWindows() && IsWindowsReservedName(name) {
		return "_" + name
	}
	return name
}
