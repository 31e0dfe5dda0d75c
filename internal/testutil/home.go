// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// SetHomeDir points every per-user location wasupdate consults at dir for
// the rest of the test: the home directory, and the platform's config root
// inside it (XDG_CONFIG_HOME, APPDATA).
//
// Platform handling:
//   - Windows: Sets USERPROFILE and APPDATA
//   - Linux/macOS: Sets HOME and XDG_CONFIG_HOME
func SetHomeDir(t testing.TB, dir string) {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		t.Setenv("USERPROFILE", dir)
		t.Setenv("APPDATA", filepath.Join(dir, "AppData", "Roaming"))
	default:
		t.Setenv("HOME", dir)
		t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	}
}

// ClearEnvPrefix blanks every environment variable whose name starts with
// prefix for the rest of the test. Viper treats empty variables as unset.
func ClearEnvPrefix(t testing.TB, prefix string) {
	t.Helper()

	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, prefix) {
			t.Setenv(key, "")
		}
	}
}
