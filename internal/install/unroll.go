// SPDX-License-Identifier: MPL-2.0

package install

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Unroll flattens a single wrapper directory: every child of path is moved
// into path's parent, replacing anything already there, and path itself is
// removed. A missing path or a path that is not a directory is left alone.
//
// The wrapper is first renamed to a hidden sibling so a child that shares the
// wrapper's name (tool-2.0.0/tool-2.0.0) can take its place.
func Unroll(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return ioError("stat", path, err)
	}
	if !info.IsDir() {
		return nil
	}

	parent := filepath.Dir(path)
	staging, err := os.MkdirTemp(parent, ".unroll-*")
	if err != nil {
		return ioError("create directory", parent, err)
	}
	wrapper := filepath.Join(staging, filepath.Base(path))
	if err := os.Rename(path, wrapper); err != nil {
		_ = os.Remove(staging)
		return ioError("rename", path, err)
	}

	entries, err := os.ReadDir(wrapper)
	if err != nil {
		return ioError("read directory", wrapper, err)
	}
	for _, entry := range entries {
		src := filepath.Join(wrapper, entry.Name())
		dst := filepath.Join(parent, entry.Name())
		if err := removeExisting(dst); err != nil {
			return err
		}
		if err := os.Rename(src, dst); err != nil {
			return ioError("rename", src, err)
		}
	}

	if err := os.RemoveAll(staging); err != nil {
		return ioError("remove", staging, err)
	}
	return nil
}
