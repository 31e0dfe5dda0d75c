// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestSetHomeDir(t *testing.T) {
	dir := t.TempDir()
	SetHomeDir(t, dir)

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir: %v", err)
	}
	if home != dir {
		t.Errorf("UserHomeDir() = %q, want %q", home, dir)
	}

	key, want := "XDG_CONFIG_HOME", filepath.Join(dir, ".config")
	if runtime.GOOS == "windows" {
		key, want = "APPDATA", filepath.Join(dir, "AppData", "Roaming")
	}
	if got := os.Getenv(key); got != want {
		t.Errorf("%s = %q, want %q", key, got, want)
	}
}

func TestClearEnvPrefix(t *testing.T) {
	t.Setenv("WASUPDATE_TESTUTIL_A", "1")
	t.Setenv("WASUPDATE_TESTUTIL_B", "2")
	t.Setenv("OTHER_TESTUTIL", "3")

	ClearEnvPrefix(t, "WASUPDATE_TESTUTIL_")

	if v := os.Getenv("WASUPDATE_TESTUTIL_A"); v != "" {
		t.Errorf("WASUPDATE_TESTUTIL_A = %q, want empty", v)
	}
	if v := os.Getenv("WASUPDATE_TESTUTIL_B"); v != "" {
		t.Errorf("WASUPDATE_TESTUTIL_B = %q, want empty", v)
	}
	if v := os.Getenv("OTHER_TESTUTIL"); v != "3" {
		t.Errorf("OTHER_TESTUTIL = %q, want 3", v)
	}
}
