// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"context"

	"github.com/wasupdate/wasupdate/pkg/semver"
)

type (
	// VersionPolicy answers the three questions an update needs: which
	// version is installed, which is newest, and where to get a given one.
	VersionPolicy interface {
		CurrentVersion(ctx context.Context) (semver.Version, error)
		LatestVersion(ctx context.Context) (semver.Version, error)
		InstallVersion(ctx context.Context, version string) (string, error)
	}

	// Static is a VersionPolicy built from plain functions. A nil function
	// reports the corresponding policy function as missing.
	Static struct {
		Current func(ctx context.Context) (semver.Version, error)
		Latest  func(ctx context.Context) (semver.Version, error)
		Install func(ctx context.Context, version string) (string, error)
	}
)

var (
	_ VersionPolicy = (*Contract)(nil)
	_ VersionPolicy = Static{}
)

// Fixed returns a Static policy with constant versions. location maps the
// requested version to a path or URL.
func Fixed(current, latest semver.Version, location func(version string) string) Static {
	return Static{
		Current: func(context.Context) (semver.Version, error) { return current, nil },
		Latest:  func(context.Context) (semver.Version, error) { return latest, nil },
		Install: func(_ context.Context, version string) (string, error) { return location(version), nil },
	}
}

// CurrentVersion implements VersionPolicy.
func (s Static) CurrentVersion(ctx context.Context) (semver.Version, error) {
	if s.Current == nil {
		return semver.Version{}, &ContractError{Function: fnCurrentVersion, Rule: RuleMissing, Detail: "function is not declared"}
	}
	return s.Current(ctx)
}

// LatestVersion implements VersionPolicy.
func (s Static) LatestVersion(ctx context.Context) (semver.Version, error) {
	if s.Latest == nil {
		return semver.Version{}, &ContractError{Function: fnLatestVersion, Rule: RuleMissing, Detail: "function is not declared"}
	}
	return s.Latest(ctx)
}

// InstallVersion implements VersionPolicy.
func (s Static) InstallVersion(ctx context.Context, version string) (string, error) {
	if s.Install == nil {
		return "", &ContractError{Function: fnInstallVersion, Rule: RuleMissing, Detail: "function is not declared"}
	}
	return s.Install(ctx, version)
}
