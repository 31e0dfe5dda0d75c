// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

var (
	//nolint:gochecknoglobals // Test seam for os.Executable().
	osExecutable = os.Executable

	//nolint:gochecknoglobals // Test seam for filepath.EvalSymlinks().
	evalSymlinks = filepath.EvalSymlinks
)

// ExecutablePath returns the absolute, symlink-resolved path to the currently
// running binary.
func ExecutablePath() (string, error) {
	p, err := osExecutable()
	if err != nil {
		return "", fmt.Errorf("determining executable path: %w", err)
	}

	resolved, err := evalSymlinks(p)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", p, err)
	}

	return resolved, nil
}

// ExecutableDir returns the directory containing the running binary. This is
// the installation target for updates and the fallback search directory for
// commands that are not on PATH.
func ExecutableDir() (string, error) {
	p, err := ExecutablePath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}
