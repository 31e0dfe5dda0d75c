// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/wasupdate/wasupdate/pkg/platform"
)

// ErrNoTargetDir is returned when the executable directory cannot be
// determined and no target directory was configured.
var ErrNoTargetDir = errors.New("cannot determine install target directory")

type (
	// Installer materializes an update artifact in the target directory,
	// which defaults to the directory of the running executable.
	Installer struct {
		fetcher  Fetcher
		progress ProgressObserver
		logger   *log.Logger

		targetOnce sync.Once
		targetDir  string
		targetErr  error
	}

	// Option configures an Installer during construction.
	Option func(*Installer)

	// Result describes a completed install.
	Result struct {
		// Location is the classified input.
		Location Location
		// Archive is the artifact's archive kind.
		Archive ArchiveKind
		// Artifact is the local path of the artifact that was installed. For
		// remote locations it pointed into a temporary directory that no
		// longer exists.
		Artifact string
		// TargetDir is the directory the artifact was installed into.
		TargetDir string
	}
)

// WithTargetDir installs into dir instead of the executable directory.
func WithTargetDir(dir string) Option {
	return func(i *Installer) {
		i.targetDir = dir
		i.targetOnce.Do(func() {})
	}
}

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(i *Installer) {
		i.fetcher = f
	}
}

// WithProgress sets the observer notified during downloads.
func WithProgress(p ProgressObserver) Option {
	return func(i *Installer) {
		i.progress = p
	}
}

// WithLogger sets the logger for install diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(i *Installer) {
		i.logger = l
	}
}

// New creates an Installer.
func New(opts ...Option) *Installer {
	i := &Installer{
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.fetcher == nil {
		i.fetcher = NewHTTPFetcher(WithFetchLogger(i.logger))
	}
	return i
}

// TargetDir returns the install target directory, resolving the executable
// directory on first use.
func (i *Installer) TargetDir() (string, error) {
	i.targetOnce.Do(func() {
		dir, err := platform.ExecutableDir()
		if err != nil {
			i.targetErr = fmt.Errorf("%w: %w", ErrNoTargetDir, err)
			return
		}
		i.targetDir = dir
	})
	return i.targetDir, i.targetErr
}

// Install classifies location, downloads it when remote and places its
// contents in the target directory.
func (i *Installer) Install(ctx context.Context, location string) (*Result, error) {
	loc, err := ClassifyLocation(location)
	if err != nil {
		return nil, err
	}

	target, err := i.TargetDir()
	if err != nil {
		return nil, ioError("resolve target directory", location, err)
	}

	artifact := loc.Path
	if loc.Kind == LocationRemote {
		tmp, err := os.MkdirTemp("", "wasupdate-download-*")
		if err != nil {
			return nil, ioError("create directory", os.TempDir(), err)
		}
		defer func() {
			if rmErr := os.RemoveAll(tmp); rmErr != nil {
				i.logger.Warn("failed to remove download directory", "dir", tmp, "error", rmErr)
			}
		}()

		artifact, err = i.fetcher.Fetch(ctx, loc.URL, tmp, i.progress)
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind := ClassifyArchive(artifact)
	i.logger.Info("installing artifact", "artifact", filepath.Base(artifact), "kind", kind, "target", target)

	if err := i.place(kind, artifact, target); err != nil {
		return nil, err
	}

	return &Result{
		Location:  loc,
		Archive:   kind,
		Artifact:  artifact,
		TargetDir: target,
	}, nil
}

// place dispatches on the archive kind and flattens the wrapper directory
// archives conventionally carry.
func (i *Installer) place(kind ArchiveKind, artifact, target string) error {
	var err error
	switch kind {
	case Zip:
		err = i.extractZip(artifact, target)
	case Tar:
		err = i.extractTar(artifact, target)
	case TarGz:
		err = i.extractTarGz(artifact, target)
	case PlainFile:
		_, err = i.installPlain(artifact, target)
		return err
	}
	if err != nil {
		return err
	}

	base := archiveBaseName(kind, artifact)
	if base == "" || base == "." {
		return nil
	}
	return Unroll(filepath.Join(target, base))
}
