// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestIsWindowsReservedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"con", true},
		{"NUL.exe", true},
		{"com1.log", true},
		{"lpt9", true},
		{"confile", false},
		{"com10", false},
		{"tool.tar.gz", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsWindowsReservedName(tt.input); got != tt.want {
			t.Errorf("IsWindowsReservedName(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "tool-1.0.0.tar.gz", "tool-1.0.0.tar.gz"},
		{"nested", "releases/v1/tool.zip", "tool.zip"},
		{"traversal", "../../etc/passwd", "passwd"},
		{"backslashes", `..\..\tool.exe`, "tool.exe"},
		{"empty", "", "download"},
		{"dot", ".", "download"},
		{"dotdot", "..", "download"},
		{"slash", "/", "download"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeFileName(tt.input, "download"); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExecutableDir(t *testing.T) {
	// Not parallel: overrides package-level test seams.
	origExec, origEval := osExecutable, evalSymlinks
	t.Cleanup(func() {
		osExecutable, evalSymlinks = origExec, origEval
	})

	bin := filepath.Join("opt", "tool", "bin", "tool")
	osExecutable = func() (string, error) { return bin, nil }
	evalSymlinks = func(p string) (string, error) { return p, nil }

	dir, err := ExecutableDir()
	if err != nil {
		t.Fatalf("ExecutableDir() error = %v", err)
	}
	if want := filepath.Dir(bin); dir != want {
		t.Errorf("ExecutableDir() = %q, want %q", dir, want)
	}

	evalSymlinks = func(string) (string, error) { return "", errors.New("boom") }
	if _, err := ExecutableDir(); err == nil {
		t.Error("expected error when symlink resolution fails")
	}
}
