// SPDX-License-Identifier: MPL-2.0

// Package install places an update artifact next to the running executable.
//
// The pipeline is:
//   - location.go: classify the input as a local file or a remote URL
//   - fetch.go: stream a remote artifact into a temporary directory
//   - archive.go: classify the artifact by file name (zip, tar, tar.gz, plain)
//   - extract_zip.go, extract_tar.go, plain.go: materialize it in the target directory
//   - unroll.go: flatten a single wrapping top-level directory
//   - install.go: Installer, which composes the steps above
//
// Extraction writes directly into the target directory. A failure midway
// leaves the files written so far in place; there is no rollback.
package install
