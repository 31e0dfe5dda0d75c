// SPDX-License-Identifier: MPL-2.0

package install

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// errEscapesRoot marks archive entries whose resolved location lies outside
// the extraction root (e.g. "../../etc/passwd" or a write through a symlink).
var errEscapesRoot = errors.New("path escapes extraction root")

// entryPath joins an archive entry name onto root. It reports false for
// absolute names and names that climb out of root; such entries are skipped.
func entryPath(root, name string) (string, bool) {
	name = filepath.FromSlash(name)
	if name == "" || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", false
	}
	clean := filepath.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(root, clean), true
}

// ensureParent creates the parent directory of target and verifies that,
// after resolving symlinks, it still lies inside root.
func ensureParent(root, target string) error {
	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return ioError("create directory", parent, err)
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return ioError("resolve directory", root, err)
	}
	realParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return ioError("resolve directory", parent, err)
	}
	rel, err := filepath.Rel(realRoot, realParent)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ioError("extract", target, fmt.Errorf("%w: parent resolves to %s", errEscapesRoot, realParent))
	}
	return nil
}

// removeExisting clears whatever occupies path: a plain removal first, then a
// recursive removal for non-empty directories. A missing path is not an error.
func removeExisting(path string) error {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return ioError("stat", path, err)
	}
	if err := os.Remove(path); err == nil {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return ioError("remove", path, err)
	}
	return nil
}
