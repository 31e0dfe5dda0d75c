// SPDX-License-Identifier: MPL-2.0

package install

import (
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/wasupdate/wasupdate/pkg/platform"
)

// maxSymlinkTarget bounds the size of a zip entry read as a symlink target.
const maxSymlinkTarget = 4 << 10

// extractZip unpacks the zip archive at archivePath into root, entry by entry
// in archive order. Stored permission bits are restored on POSIX systems.
func (i *Installer) extractZip(archivePath, root string) (err error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return ioError("open zip archive", archivePath, err)
	}
	defer func() {
		// Read-only archive handle; close errors are not actionable.
		_ = zr.Close()
	}()

	for _, f := range zr.File {
		target, ok := entryPath(root, f.Name)
		if !ok {
			i.logger.Warn("skipping zip entry outside extraction root", "entry", f.Name)
			continue
		}

		mode := f.Mode()
		switch {
		case mode.IsDir() || strings.HasSuffix(f.Name, "/"):
			if err := os.MkdirAll(target, 0o755); err != nil {
				return ioError("create directory", target, err)
			}
			if err := restoreMode(target, mode.Perm()|0o700); err != nil {
				return err
			}
			continue

		case mode&fs.ModeSymlink != 0:
			if err := i.extractZipSymlink(f, root, target); err != nil {
				return err
			}
			continue
		}

		if err := ensureParent(root, target); err != nil {
			return err
		}
		if err := writeZipFile(f, target); err != nil {
			return err
		}
		if err := restoreMode(target, mode.Perm()); err != nil {
			return err
		}
		i.logger.Debug("extracted", "entry", f.Name, "bytes", f.UncompressedSize64)
	}

	return nil
}

// writeZipFile copies the contents of a single zip entry to target,
// replacing (not following) any symlink already at that location.
func writeZipFile(f *zip.File, target string) (err error) {
	rc, err := f.Open()
	if err != nil {
		return ioError("open zip entry", f.Name, err)
	}
	defer func() { _ = rc.Close() }() // read-only entry reader

	if info, statErr := os.Lstat(target); statErr == nil && info.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return ioError("remove", target, err)
		}
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return ioError("create file", target, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = ioError("close file", target, closeErr)
		}
	}()

	//nolint:gosec // G110: artifacts come from the user's own policy script.
	if _, err := io.Copy(out, rc); err != nil {
		return ioError("write file", target, err)
	}
	return nil
}

// extractZipSymlink recreates a symlink entry; its content is the link target.
func (i *Installer) extractZipSymlink(f *zip.File, root, target string) error {
	rc, err := f.Open()
	if err != nil {
		return ioError("open zip entry", f.Name, err)
	}
	link, err := io.ReadAll(io.LimitReader(rc, maxSymlinkTarget))
	_ = rc.Close() // read-only entry reader
	if err != nil {
		return ioError("read zip entry", f.Name, err)
	}

	if err := ensureParent(root, target); err != nil {
		return err
	}
	if err := removeExisting(target); err != nil {
		return err
	}
	if err := os.Symlink(string(link), target); err != nil {
		return ioError("create symlink", target, err)
	}
	i.logger.Debug("extracted symlink", "entry", f.Name, "target", string(link))
	return nil
}

// restoreMode applies stored permission bits on POSIX systems. Windows has no
// equivalent, so the call is a no-op there.
func restoreMode(path string, perm fs.FileMode) error {
	if platform.IsWindows() || perm == 0 {
		return nil
	}
	if err := os.Chmod(path, perm); err != nil {
		return ioError("set permissions", path, err)
	}
	return nil
}
