// SPDX-License-Identifier: MPL-2.0

package install

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/wasupdate/wasupdate/internal/testutil"
)

func TestClassifyLocation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "tool.zip")
	testutil.MustWriteFile(t, file, "zip", 0o644)

	tests := []struct {
		name    string
		raw     string
		want    LocationKind
		wantErr bool
	}{
		{name: "existing file", raw: file, want: LocationLocal},
		{name: "https url", raw: "https://example.com/tool-2.0.0.zip", want: LocationRemote},
		{name: "http url with port", raw: "http://127.0.0.1:8080/tool", want: LocationRemote},
		{name: "directory is not a file", raw: dir, wantErr: true},
		{name: "missing file", raw: filepath.Join(dir, "missing.zip"), wantErr: true},
		{name: "scheme without host", raw: "file:relative", wantErr: true},
		{name: "free text", raw: "not a location", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loc, err := ClassifyLocation(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLocation) {
					t.Fatalf("ClassifyLocation(%q) error = %v, want ErrInvalidLocation", tt.raw, err)
				}
				var ie *InstallError
				if !errors.As(err, &ie) || ie.Kind != KindInvalidLocation {
					t.Errorf("error %v is not an InstallError of KindInvalidLocation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ClassifyLocation(%q) unexpected error: %v", tt.raw, err)
			}
			if loc.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", loc.Kind, tt.want)
			}
			if loc.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", loc.Raw, tt.raw)
			}
			if loc.Kind == LocationRemote && loc.URL == nil {
				t.Error("remote location has nil URL")
			}
		})
	}
}

func TestInstallError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := ioError("write file", "/tmp/x", cause)

	if !errors.Is(err, ErrIO) {
		t.Error("expected errors.Is(err, ErrIO)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is(err, cause)")
	}
	if errors.Is(err, ErrInvalidLocation) {
		t.Error("I/O error must not match ErrInvalidLocation")
	}

	// Wrapping again keeps the innermost operation.
	if again := ioError("extract", "/tmp", err); again != err { //nolint:errorlint // identity check
		t.Errorf("ioError re-wrapped an InstallError: %v", again)
	}
	if ioError("noop", "", nil) != nil {
		t.Error("ioError(nil) should be nil")
	}
}
