// SPDX-License-Identifier: MPL-2.0

package install

import (
	"errors"
	"fmt"
)

const (
	// KindInvalidLocation means the location is neither an existing regular
	// file nor a syntactically valid URL.
	KindInvalidLocation ErrorKind = 1

	// KindIO covers every filesystem and network failure during download,
	// extraction or normalization, including non-2xx HTTP responses.
	KindIO ErrorKind = 2
)

var (
	// ErrInvalidLocation is wrapped by InstallError values of KindInvalidLocation.
	ErrInvalidLocation = errors.New("invalid install location")

	// ErrIO is wrapped by InstallError values of KindIO.
	ErrIO = errors.New("install I/O failure")
)

type (
	// ErrorKind classifies an InstallError.
	ErrorKind int

	// InstallError reports a failed install. Op names the operation that
	// failed (e.g. "download", "create file") and Path the file, directory or
	// URL it was applied to.
	InstallError struct {
		Kind ErrorKind
		Op   string
		Path string
		Err  error
	}
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidLocation:
		return "invalid location"
	case KindIO:
		return "io"
	}
	return "unknown"
}

// Error implements the error interface.
func (e *InstallError) Error() string {
	if e.Kind == KindInvalidLocation {
		return fmt.Sprintf("location %q is neither an existing file nor a valid URL", e.Path)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s %s failed", e.Op, e.Path)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause, so
// errors.Is works for ErrIO as well as for os.ErrPermission and friends.
func (e *InstallError) Unwrap() []error {
	errs := make([]error, 0, 2)
	switch e.Kind {
	case KindInvalidLocation:
		errs = append(errs, ErrInvalidLocation)
	case KindIO:
		errs = append(errs, ErrIO)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ioError wraps err as a KindIO InstallError. Errors that already are
// InstallErrors pass through unchanged so the innermost operation is kept.
func ioError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ie *InstallError
	if errors.As(err, &ie) {
		return err
	}
	return &InstallError{Kind: KindIO, Op: op, Path: path, Err: err}
}
