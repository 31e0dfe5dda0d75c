// SPDX-License-Identifier: MPL-2.0

package semver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	xsemver "golang.org/x/mod/semver"
)

// ErrInvalidVersion is the sentinel error wrapped by ParseError.
var ErrInvalidVersion = errors.New("invalid semantic version")

// versionRegex is the semver.org reference expression.
var versionRegex = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
	`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
	`(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

type (
	// Version is a parsed semantic version. The zero value is 0.0.0.
	Version struct {
		Major      uint64
		Minor      uint64
		Patch      uint64
		Prerelease string // dot-separated identifiers without the leading '-'
		Build      string // dot-separated identifiers without the leading '+'
	}

	// ParseError is returned when a string is not a valid semantic version.
	// It keeps the raw input so callers can show exactly what was rejected.
	ParseError struct {
		Raw    string
		Reason string
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid semantic version %q: %s", e.Raw, e.Reason)
}

// Unwrap returns ErrInvalidVersion so callers can use errors.Is.
func (e *ParseError) Unwrap() error { return ErrInvalidVersion }

// Parse parses s as a strict semantic version. Surrounding whitespace is not
// trimmed; callers that read versions from program output trim first.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, &ParseError{Raw: s, Reason: "empty string"}
	}
	if strings.HasPrefix(s, "v") || strings.HasPrefix(s, "V") {
		return Version{}, &ParseError{Raw: s, Reason: "unexpected 'v' prefix"}
	}

	m := versionRegex.FindStringSubmatch(s)
	if m == nil {
		return Version{}, &ParseError{Raw: s, Reason: "expected MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]"}
	}

	var v Version
	var err error
	if v.Major, err = strconv.ParseUint(m[1], 10, 64); err != nil {
		return Version{}, &ParseError{Raw: s, Reason: "major component out of range"}
	}
	if v.Minor, err = strconv.ParseUint(m[2], 10, 64); err != nil {
		return Version{}, &ParseError{Raw: s, Reason: "minor component out of range"}
	}
	if v.Patch, err = strconv.ParseUint(m[3], 10, 64); err != nil {
		return Version{}, &ParseError{Raw: s, Reason: "patch component out of range"}
	}
	v.Prerelease = m[4]
	v.Build = m[5]

	return v, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the normalized form, e.g. "1.2.3-rc.1+build.5".
func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		b.WriteByte('-')
		b.WriteString(v.Prerelease)
	}
	if v.Build != "" {
		b.WriteByte('+')
		b.WriteString(v.Build)
	}
	return b.String()
}

// Equal reports structural equality, build metadata included.
func (v Version) Equal(other Version) bool {
	return v == other
}

// Compare returns -1, 0 or +1 according to semver precedence. Build metadata
// does not participate, so two versions may compare 0 without being Equal.
func (v Version) Compare(other Version) int {
	return xsemver.Compare("v"+v.String(), "v"+other.String())
}

// Less reports whether v has lower precedence than other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// IsPrerelease reports whether v carries pre-release identifiers.
func (v Version) IsPrerelease() bool {
	return v.Prerelease != ""
}

// MarshalText implements encoding.TextMarshaler so versions render as plain
// strings in JSON output.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
