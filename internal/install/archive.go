// SPDX-License-Identifier: MPL-2.0

package install

import (
	"path/filepath"
	"strings"
)

const (
	// PlainFile is any artifact that is not a recognized archive. It is copied
	// as-is into the target directory.
	PlainFile ArchiveKind = iota
	// Zip is a .zip archive.
	Zip
	// Tar is an uncompressed .tar archive.
	Tar
	// TarGz is a gzip-compressed tar archive (.gz or .tgz).
	TarGz
)

// ArchiveKind is the extension-based classification of an artifact.
type ArchiveKind int

// String returns a human-readable name for the archive kind.
func (k ArchiveKind) String() string {
	switch k {
	case PlainFile:
		return "plain"
	case Zip:
		return "zip"
	case Tar:
		return "tar"
	case TarGz:
		return "tar.gz"
	}
	return "unknown"
}

// ClassifyArchive maps the final path segment of name to an ArchiveKind.
// Matching is a case-sensitive exact suffix match; every string maps to
// exactly one kind.
func ClassifyArchive(name string) ArchiveKind {
	base := filepath.Base(name)
	switch {
	case strings.HasSuffix(base, ".zip"):
		return Zip
	case strings.HasSuffix(base, ".tar"):
		return Tar
	case strings.HasSuffix(base, ".gz"), strings.HasSuffix(base, ".tgz"):
		return TarGz
	default:
		return PlainFile
	}
}

// archiveBaseName returns the name an archive's wrapper directory is expected
// to have: the file name with its archive suffix removed.
func archiveBaseName(kind ArchiveKind, name string) string {
	base := filepath.Base(name)
	switch kind {
	case Zip:
		return strings.TrimSuffix(base, ".zip")
	case Tar:
		return strings.TrimSuffix(base, ".tar")
	case TarGz:
		for _, suffix := range []string{".tar.gz", ".tgz", ".gz"} {
			if strings.HasSuffix(base, suffix) {
				return strings.TrimSuffix(base, suffix)
			}
		}
	case PlainFile:
	}
	return base
}
