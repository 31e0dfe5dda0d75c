// SPDX-License-Identifier: MPL-2.0

package install

import (
	"io"
	"os"
	"path/filepath"
)

// installPlain copies src to dir/<base name of src>, replacing whatever was
// there. The source mode bits are carried over.
func (i *Installer) installPlain(src, dir string) (string, error) {
	dest := filepath.Join(dir, filepath.Base(src))

	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", ioError("stat", src, err)
	}
	if destInfo, err := os.Stat(dest); err == nil && os.SameFile(srcInfo, destInfo) {
		i.logger.Debug("artifact already in place", "path", dest)
		return dest, nil
	}

	if err := removeExisting(dest); err != nil {
		return "", err
	}
	if err := copyFile(src, dest, srcInfo.Mode().Perm()); err != nil {
		return "", err
	}
	return dest, nil
}

// copyFile copies src to a freshly created dest with the given permissions.
func copyFile(src, dest string, perm os.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return ioError("open file", src, err)
	}
	defer func() { _ = in.Close() }() // read-only handle

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return ioError("create file", dest, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = ioError("close file", dest, closeErr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return ioError("copy file", dest, err)
	}
	// OpenFile applies the umask; set the exact bits afterwards.
	return restoreMode(dest, perm)
}
