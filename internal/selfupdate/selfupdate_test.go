// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/wasupdate/wasupdate/internal/install"
	"github.com/wasupdate/wasupdate/internal/policy"
	"github.com/wasupdate/wasupdate/internal/testutil"
	"github.com/wasupdate/wasupdate/pkg/semver"
)

type (
	// recordingInstaller captures Install calls without touching the disk.
	recordingInstaller struct {
		calls []string
		err   error
	}

	// countingPolicy wraps a policy and counts install_version calls.
	countingPolicy struct {
		policy.VersionPolicy
		installCalls int
	}
)

func (r *recordingInstaller) Install(_ context.Context, location string) (*install.Result, error) {
	r.calls = append(r.calls, location)
	if r.err != nil {
		return nil, r.err
	}
	return &install.Result{Artifact: location, TargetDir: "/target"}, nil
}

func (c *countingPolicy) InstallVersion(ctx context.Context, version string) (string, error) {
	c.installCalls++
	return c.VersionPolicy.InstallVersion(ctx, version)
}

func fixed(current, latest string) *countingPolicy {
	return &countingPolicy{VersionPolicy: policy.Fixed(
		semver.MustParse(current),
		semver.MustParse(latest),
		func(v string) string { return "https://example.com/tool-" + v + ".zip" },
	)}
}

func TestUpdater_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		current  string
		latest   string
		upToDate bool
	}{
		{"equal", "1.0.0", "1.0.0", true},
		{"newer available", "1.0.0", "1.0.1", false},
		{"latest older than current", "2.0.0", "1.9.9", false},
		{"build metadata differs", "1.0.0+a", "1.0.0+b", false},
		{"prerelease to release", "1.0.0-rc.1", "1.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u := NewUpdater(fixed(tt.current, tt.latest), WithInstaller(&recordingInstaller{}))
			check, err := u.Check(context.Background())
			if err != nil {
				t.Fatalf("Check() error: %v", err)
			}
			if check.UpToDate != tt.upToDate {
				t.Errorf("UpToDate = %v, want %v", check.UpToDate, tt.upToDate)
			}
			if check.Current.String() != tt.current || check.Latest.String() != tt.latest {
				t.Errorf("versions = %s/%s, want %s/%s", check.Current, check.Latest, tt.current, tt.latest)
			}
			if check.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestUpdater_RunUpToDateSkipsInstall(t *testing.T) {
	t.Parallel()

	p := fixed("1.0.0", "1.0.0")
	inst := &recordingInstaller{}
	out, err := NewUpdater(p, WithInstaller(inst)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out.Installed() {
		t.Error("Installed() = true, want false")
	}
	if p.installCalls != 0 {
		t.Errorf("install_version called %d times, want 0", p.installCalls)
	}
	if len(inst.calls) != 0 {
		t.Errorf("installer called with %v, want no calls", inst.calls)
	}
}

func TestUpdater_RunInstallsLatest(t *testing.T) {
	t.Parallel()

	p := fixed("1.0.0", "1.0.1")
	inst := &recordingInstaller{}
	out, err := NewUpdater(p, WithInstaller(inst)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	want := "https://example.com/tool-1.0.1.zip"
	if len(inst.calls) != 1 || inst.calls[0] != want {
		t.Fatalf("installer calls = %v, want [%s]", inst.calls, want)
	}
	if !out.Installed() || out.Location != want {
		t.Errorf("Outcome = %+v, want installed from %s", out, want)
	}
}

func TestUpdater_ApplyUpToDateGuard(t *testing.T) {
	t.Parallel()

	p := fixed("1.0.0", "1.0.0")
	inst := &recordingInstaller{}
	u := NewUpdater(p, WithInstaller(inst))

	check, err := u.Check(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := u.Apply(context.Background(), check); !errors.Is(err, ErrUpToDate) {
		t.Errorf("Apply() error = %v, want ErrUpToDate", err)
	}
	if p.installCalls != 0 || len(inst.calls) != 0 {
		t.Error("Apply on an up-to-date check must not locate or install")
	}
}

func TestUpdater_InstallFromIgnoresUpToDate(t *testing.T) {
	t.Parallel()

	p := fixed("1.0.0", "1.0.0")
	inst := &recordingInstaller{}
	u := NewUpdater(p, WithInstaller(inst))

	check, err := u.Check(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	result, err := u.InstallFrom(context.Background(), check, "/tmp/tool.zip")
	if err != nil {
		t.Fatalf("InstallFrom() error: %v", err)
	}
	if result.Artifact != "/tmp/tool.zip" || len(inst.calls) != 1 {
		t.Errorf("InstallFrom() = %+v, calls %v", result, inst.calls)
	}
	if p.installCalls != 0 {
		t.Error("InstallFrom must not call install_version")
	}
}

func TestUpdater_Plan(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		current, latest string
		willUpdate      bool
	}{
		{"1.0.0", "1.0.0", false},
		{"1.0.0", "1.2.0", true},
	} {
		inst := &recordingInstaller{}
		plan, err := NewUpdater(fixed(tc.current, tc.latest), WithInstaller(inst)).Plan(context.Background())
		if err != nil {
			t.Fatalf("Plan() error: %v", err)
		}
		if plan.WillUpdate != tc.willUpdate {
			t.Errorf("%s -> %s: WillUpdate = %v, want %v", tc.current, tc.latest, plan.WillUpdate, tc.willUpdate)
		}
		if want := "https://example.com/tool-" + tc.latest + ".zip"; plan.Location != want {
			t.Errorf("Location = %q, want %q", plan.Location, want)
		}
		if len(inst.calls) != 0 {
			t.Errorf("Plan() installed %v", inst.calls)
		}
	}
}

func TestUpdater_ErrorsPropagate(t *testing.T) {
	t.Parallel()

	scriptErr := &policy.ScriptError{Function: "latest_version", Err: errors.New("exit status 1")}
	p := policy.Static{
		Current: func(context.Context) (semver.Version, error) { return semver.MustParse("1.0.0"), nil },
		Latest:  func(context.Context) (semver.Version, error) { return semver.Version{}, scriptErr },
		Install: func(context.Context, string) (string, error) { return "unused", nil },
	}
	_, err := NewUpdater(p, WithInstaller(&recordingInstaller{})).Run(context.Background())
	if !errors.Is(err, policy.ErrScript) {
		t.Errorf("Run() error = %v, want policy.ErrScript", err)
	}

	installErr := &install.InstallError{Kind: install.KindInvalidLocation, Op: "classify location", Path: "nowhere"}
	inst := &recordingInstaller{err: installErr}
	_, err = NewUpdater(fixed("1.0.0", "2.0.0"), WithInstaller(inst)).Run(context.Background())
	if !errors.Is(err, install.ErrInvalidLocation) {
		t.Errorf("Run() error = %v, want install.ErrInvalidLocation", err)
	}
}

func TestUpdater_ScriptDrivenInstall(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	target := t.TempDir()
	testutil.WriteArchive(t, src, "tool-1.0.1.zip", testutil.ZipBytes(t,
		testutil.ArchiveEntry{Name: "tool-1.0.1/"},
		testutil.ArchiveEntry{Name: "tool-1.0.1/tool", Content: "1.0.1\n", Mode: 0o755},
	))
	testutil.MustWriteFile(t, filepath.Join(target, "tool"), "1.0.0\n", 0o755)

	script := `current_version() { read -r v < "$TARGET/tool"; echo "$v"; }
latest_version() { echo 1.0.1; }
install_version() {
    local version="$1"
    echo "$SRC/tool-${version}.zip"
}
`
	contract, err := policy.Load(context.Background(), policy.InlineSource(script),
		policy.WithEnv("TARGET="+filepath.ToSlash(target), "SRC="+filepath.ToSlash(src)))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	u := NewUpdater(contract, WithInstaller(install.New(install.WithTargetDir(target))))
	out, err := u.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !out.Installed() || out.Result.Archive != install.Zip {
		t.Fatalf("Outcome = %+v, want a zip install", out)
	}
	if got := testutil.MustReadFile(t, filepath.Join(target, "tool")); got != "1.0.1\n" {
		t.Errorf("tool = %q, want 1.0.1", got)
	}

	// A second run sees the new version and does nothing.
	out, err = u.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	if out.Installed() || !out.Check.UpToDate {
		t.Errorf("second Outcome = %+v, want up to date", out)
	}
}
