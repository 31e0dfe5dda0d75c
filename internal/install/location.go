// SPDX-License-Identifier: MPL-2.0

package install

import (
	"net/url"
	"os"
)

const (
	// LocationLocal is an existing regular file on the local filesystem.
	LocationLocal LocationKind = 1

	// LocationRemote is a URL with a scheme and a host.
	LocationRemote LocationKind = 2
)

type (
	// LocationKind tells how an install location must be materialized.
	LocationKind int

	// Location is a classified install location. Classification happens once;
	// the pipeline never re-interprets Raw.
	Location struct {
		Raw  string
		Kind LocationKind
		// Path is set for LocationLocal.
		Path string
		// URL is set for LocationRemote.
		URL *url.URL
	}
)

// String returns a human-readable name for the location kind.
func (k LocationKind) String() string {
	switch k {
	case LocationLocal:
		return "local"
	case LocationRemote:
		return "remote"
	}
	return "unknown"
}

// ClassifyLocation decides whether raw names an existing regular file or a
// URL. Local files win when both readings are possible. No network request is
// made to disambiguate.
func ClassifyLocation(raw string) (Location, error) {
	if raw != "" {
		if info, err := os.Stat(raw); err == nil && info.Mode().IsRegular() {
			return Location{Raw: raw, Kind: LocationLocal, Path: raw}, nil
		}
	}

	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		return Location{Raw: raw, Kind: LocationRemote, URL: u}, nil
	}

	return Location{}, &InstallError{Kind: KindInvalidLocation, Op: "classify location", Path: raw}
}
