// SPDX-License-Identifier: MPL-2.0

package install

import (
	"archive/tar"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
)

// extractTarGz decompresses archivePath and unpacks the inner tar stream.
func (i *Installer) extractTarGz(archivePath, root string) (err error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return ioError("open archive", archivePath, err)
	}
	defer func() { _ = f.Close() }() // read-only handle

	gz, err := gzip.NewReader(f)
	if err != nil {
		return ioError("decompress archive", archivePath, err)
	}
	defer func() { _ = gz.Close() }()

	return i.extractTarStream(gz, archivePath, root)
}

// extractTar unpacks the uncompressed tar archive at archivePath into root.
func (i *Installer) extractTar(archivePath, root string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return ioError("open archive", archivePath, err)
	}
	defer func() { _ = f.Close() }() // read-only handle

	return i.extractTarStream(f, archivePath, root)
}

// extractTarStream honors directory, regular file, symlink and hard link
// entries. Other entry types (devices, FIFOs) are skipped. Modification times
// are restored after all entries are written so later writes into a directory
// do not clobber its mtime.
func (i *Installer) extractTarStream(r io.Reader, archivePath, root string) error {
	type dirTime struct {
		path  string
		mtime time.Time
	}
	var dirs []dirTime

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ioError("read archive", archivePath, err)
		}

		target, ok := entryPath(root, hdr.Name)
		if !ok {
			i.logger.Warn("skipping tar entry outside extraction root", "entry", hdr.Name)
			continue
		}
		mode := fs.FileMode(hdr.Mode).Perm() //nolint:gosec // G115: tar mode bits fit in FileMode

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return ioError("create directory", target, err)
			}
			if err := restoreMode(target, mode|0o700); err != nil {
				return err
			}
			dirs = append(dirs, dirTime{path: target, mtime: hdr.ModTime})

		case tar.TypeReg, tar.TypeRegA: //nolint:staticcheck // TypeRegA still appears in old archives
			if err := ensureParent(root, target); err != nil {
				return err
			}
			if err := writeTarFile(tr, target, mode); err != nil {
				return err
			}
			if err := restoreMode(target, mode); err != nil {
				return err
			}
			restoreMtime(target, hdr.ModTime)

		case tar.TypeSymlink:
			if err := ensureParent(root, target); err != nil {
				return err
			}
			if err := removeExisting(target); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return ioError("create symlink", target, err)
			}

		case tar.TypeLink:
			source, ok := entryPath(root, hdr.Linkname)
			if !ok {
				i.logger.Warn("skipping hard link outside extraction root", "entry", hdr.Name, "link", hdr.Linkname)
				continue
			}
			if err := ensureParent(root, target); err != nil {
				return err
			}
			if err := removeExisting(target); err != nil {
				return err
			}
			if err := os.Link(source, target); err != nil {
				return ioError("create hard link", target, err)
			}

		default:
			i.logger.Debug("skipping unsupported tar entry", "entry", hdr.Name, "type", string(hdr.Typeflag))
			continue
		}
		i.logger.Debug("extracted", "entry", hdr.Name)
	}

	// Deepest directories first so parents are stamped last.
	for idx := len(dirs) - 1; idx >= 0; idx-- {
		restoreMtime(dirs[idx].path, dirs[idx].mtime)
	}
	return nil
}

// writeTarFile writes the current tar entry to target. A symlink already at
// target is replaced instead of being followed.
func writeTarFile(r io.Reader, target string, mode fs.FileMode) (err error) {
	if info, statErr := os.Lstat(target); statErr == nil && info.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return ioError("remove", target, err)
		}
	}
	if mode == 0 {
		mode = 0o644
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return ioError("create file", target, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = ioError("close file", target, closeErr)
		}
	}()

	//nolint:gosec // G110: artifacts come from the user's own policy script.
	if _, err := io.Copy(out, r); err != nil {
		return ioError("write file", target, err)
	}
	return nil
}

// restoreMtime is best effort; a filesystem that rejects timestamps does not
// invalidate the extracted content.
func restoreMtime(path string, mtime time.Time) {
	if mtime.IsZero() {
		return
	}
	_ = os.Chtimes(filepath.Clean(path), mtime, mtime)
}
