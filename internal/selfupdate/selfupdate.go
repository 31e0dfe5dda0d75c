// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/wasupdate/wasupdate/internal/install"
	"github.com/wasupdate/wasupdate/internal/policy"
	"github.com/wasupdate/wasupdate/pkg/semver"
)

// ErrUpToDate is returned by Apply when the check found nothing to install.
var ErrUpToDate = errors.New("already up to date")

type (
	// ArtifactInstaller places the artifact found at a path or URL.
	// *install.Installer implements it.
	ArtifactInstaller interface {
		Install(ctx context.Context, location string) (*install.Result, error)
	}

	// UpdateCheck holds the result of comparing the installed version with
	// the latest one reported by the policy.
	UpdateCheck struct {
		Current  semver.Version
		Latest   semver.Version
		UpToDate bool   // True when both versions are identical
		Message  string // Human-readable status message
	}

	// Plan describes what Run would do, without installing anything.
	Plan struct {
		Check *UpdateCheck
		// Location is where the latest version would be installed from. It is
		// resolved even when no update is needed.
		Location   string
		WillUpdate bool
	}

	// Outcome reports a completed Run.
	Outcome struct {
		Check *UpdateCheck
		// Location is empty when no update was needed.
		Location string
		// Result is nil when no update was needed.
		Result *install.Result
	}

	// Updater composes a version policy with an artifact installer into the
	// update flow: check, locate, install.
	Updater struct {
		policy    policy.VersionPolicy
		installer ArtifactInstaller
		logger    *log.Logger
	}

	// UpdaterOption configures an Updater during construction.
	UpdaterOption func(*Updater)
)

// Installed reports whether the run installed an artifact.
func (o *Outcome) Installed() bool { return o.Result != nil }

// WithInstaller overrides the default installer, which targets the
// directory of the running executable.
func WithInstaller(i ArtifactInstaller) UpdaterOption {
	return func(u *Updater) {
		u.installer = i
	}
}

// WithLogger sets the logger for update progress.
func WithLogger(l *log.Logger) UpdaterOption {
	return func(u *Updater) {
		u.logger = l
	}
}

// NewUpdater creates an Updater driven by p.
func NewUpdater(p policy.VersionPolicy, opts ...UpdaterOption) *Updater {
	u := &Updater{
		policy: p,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.installer == nil {
		u.installer = install.New(install.WithLogger(u.logger))
	}
	return u
}

// Check asks the policy for the current and then the latest version. The
// versions are compared structurally, build metadata included: any
// difference, including a latest version older than the current one, means
// an update is due.
func (u *Updater) Check(ctx context.Context) (*UpdateCheck, error) {
	current, err := u.policy.CurrentVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving current version: %w", err)
	}
	latest, err := u.policy.LatestVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving latest version: %w", err)
	}

	check := &UpdateCheck{Current: current, Latest: latest}
	switch {
	case current.Equal(latest):
		check.UpToDate = true
		check.Message = fmt.Sprintf("Already up to date: %s", current)
	case latest.Less(current):
		check.Message = fmt.Sprintf("Current version %s differs from latest %s; installing %s.", current, latest, latest)
	default:
		check.Message = fmt.Sprintf("Update available: %s -> %s", current, latest)
	}
	u.logger.Debug("version check", "current", current, "latest", latest, "up_to_date", check.UpToDate)

	return check, nil
}

// Locate asks the policy where the latest version of check can be installed
// from.
func (u *Updater) Locate(ctx context.Context, check *UpdateCheck) (string, error) {
	if check == nil {
		return "", errors.New("update check must not be nil")
	}
	location, err := u.policy.InstallVersion(ctx, check.Latest.String())
	if err != nil {
		return "", fmt.Errorf("resolving install location for %s: %w", check.Latest, err)
	}
	return location, nil
}

// Apply locates and installs the latest version of check. It returns
// ErrUpToDate without touching the policy or the filesystem when check found
// the versions identical.
func (u *Updater) Apply(ctx context.Context, check *UpdateCheck) (string, *install.Result, error) {
	if check == nil {
		return "", nil, errors.New("update check must not be nil")
	}
	if check.UpToDate {
		return "", nil, ErrUpToDate
	}

	location, err := u.Locate(ctx, check)
	if err != nil {
		return "", nil, err
	}

	result, err := u.InstallFrom(ctx, check, location)
	return location, result, err
}

// InstallFrom installs the latest version of check from a location already
// obtained with Locate. Unlike Apply it does not consult check.UpToDate.
func (u *Updater) InstallFrom(ctx context.Context, check *UpdateCheck, location string) (*install.Result, error) {
	if check == nil {
		return nil, errors.New("update check must not be nil")
	}

	u.logger.Info("installing update", "version", check.Latest, "location", location)
	result, err := u.installer.Install(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("installing %s: %w", check.Latest, err)
	}
	return result, nil
}

// Run performs a full update. When the versions are identical it stops after
// the check and reports success without calling install_version.
func (u *Updater) Run(ctx context.Context) (*Outcome, error) {
	check, err := u.Check(ctx)
	if err != nil {
		return nil, err
	}
	if check.UpToDate {
		u.logger.Info(check.Message)
		return &Outcome{Check: check}, nil
	}

	location, result, err := u.Apply(ctx, check)
	if err != nil {
		return nil, err
	}
	return &Outcome{Check: check, Location: location, Result: result}, nil
}

// Plan resolves the current version, latest version and install location and
// reports whether Run would install, without installing.
func (u *Updater) Plan(ctx context.Context) (*Plan, error) {
	check, err := u.Check(ctx)
	if err != nil {
		return nil, err
	}
	location, err := u.Locate(ctx, check)
	if err != nil {
		return nil, err
	}
	return &Plan{Check: check, Location: location, WillUpdate: !check.UpToDate}, nil
}
