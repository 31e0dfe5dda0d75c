// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/tar"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// ArchiveEntry describes one member of a test archive. A Name ending in "/"
// is a directory; a non-empty Link makes the entry a symlink.
type ArchiveEntry struct {
	Name    string
	Content string
	Mode    fs.FileMode
	Link    string
}

// entryTime is the fixed modification time of every generated entry.
var entryTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) //nolint:gochecknoglobals // fixed fixture

// ZipBytes builds an in-memory zip archive from entries.
func ZipBytes(t testing.TB, entries ...ArchiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: entryTime}
		content := e.Content
		switch {
		case strings.HasSuffix(e.Name, "/"):
			hdr.SetMode(fs.ModeDir | modeOr(e.Mode, 0o755))
		case e.Link != "":
			hdr.SetMode(fs.ModeSymlink | 0o777)
			content = e.Link
		default:
			hdr.SetMode(modeOr(e.Mode, 0o644))
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("zip entry %s: %v", e.Name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// TarBytes builds an in-memory tar archive from entries.
func TarBytes(t testing.TB, entries ...ArchiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, ModTime: entryTime}
		switch {
		case strings.HasSuffix(e.Name, "/"):
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = int64(modeOr(e.Mode, 0o755))
		case e.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
			hdr.Mode = 0o777
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Mode = int64(modeOr(e.Mode, 0o644))
			hdr.Size = int64(len(e.Content))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Content)); err != nil {
				t.Fatalf("tar write %s: %v", e.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	return buf.Bytes()
}

// TarGzBytes builds an in-memory gzip-compressed tar archive from entries.
func TarGzBytes(t testing.TB, entries ...ArchiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(TarBytes(t, entries...)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

// WriteArchive writes data to dir/name and returns the full path.
func WriteArchive(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("failed to write archive %s: %v", p, err)
	}
	return p
}

func modeOr(m, fallback fs.FileMode) fs.FileMode {
	if m == 0 {
		return fallback
	}
	return m
}
