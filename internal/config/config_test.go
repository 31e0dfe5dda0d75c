// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/wasupdate/wasupdate/internal/issue"
	"github.com/wasupdate/wasupdate/internal/testutil"
	"github.com/wasupdate/wasupdate/pkg/platform"
)

// isolate points every lookup location at empty temporary directories so the
// developer's own config and environment cannot leak into a test.
func isolate(t *testing.T) LoadOptions {
	t.Helper()

	t.Chdir(t.TempDir())
	testutil.ClearEnvPrefix(t, "WASUPDATE_")
	return LoadOptions{ConfigDirPath: t.TempDir()}
}

func load(t *testing.T, opts LoadOptions) (*Config, string, error) {
	t.Helper()
	return loadWithOptions(context.Background(), opts)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Script != "wasupdate.sh" {
		t.Errorf("Script = %q, want wasupdate.sh", cfg.Script)
	}
	if cfg.HTTP.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %s, want 30s", cfg.HTTP.FetchTimeout)
	}
	if cfg.HTTP.DownloadTimeout != 30*time.Minute {
		t.Errorf("DownloadTimeout = %s, want 30m", cfg.HTTP.DownloadTimeout)
	}
	if cfg.UI.Output != OutputText {
		t.Errorf("Output = %q, want text", cfg.UI.Output)
	}
	if cfg.RunAfter.Background || cfg.UI.Verbose {
		t.Error("expected boolean settings to default to false")
	}
	if ok, errs := cfg.IsValid(); !ok {
		t.Errorf("default config should be valid, got %v", errs)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	opts := isolate(t)

	cfg, path, err := load(t, opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", *cfg)
	}
}

func TestLoadFromConfigDir(t *testing.T) {
	opts := isolate(t)
	cuePath := filepath.Join(opts.ConfigDirPath, "config.cue")
	testutil.MustWriteFile(t, cuePath, `
script: "tools/update.sh"
http: { fetch_timeout: "5s", user_agent: "acme-updater" }
run_after: background: true
ui: output: "json"
`, 0o644)

	cfg, path, err := load(t, opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != cuePath {
		t.Errorf("path = %q, want %q", path, cuePath)
	}
	if cfg.Script != "tools/update.sh" {
		t.Errorf("Script = %q", cfg.Script)
	}
	if cfg.HTTP.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %s, want 5s", cfg.HTTP.FetchTimeout)
	}
	if cfg.HTTP.DownloadTimeout != DefaultDownloadTimeout {
		t.Errorf("DownloadTimeout = %s, want default", cfg.HTTP.DownloadTimeout)
	}
	if cfg.HTTP.UserAgent != "acme-updater" {
		t.Errorf("UserAgent = %q", cfg.HTTP.UserAgent)
	}
	if !cfg.RunAfter.Background {
		t.Error("expected Background to be true")
	}
	if cfg.UI.Output != OutputJSON {
		t.Errorf("Output = %q, want json", cfg.UI.Output)
	}
}

func TestLoadFallsBackToWorkingDirectory(t *testing.T) {
	opts := isolate(t)
	testutil.MustWriteFile(t, "config.cue", `ui: verbose: true`+"\n", 0o644)

	cfg, path, err := load(t, opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != "config.cue" {
		t.Errorf("path = %q, want config.cue", path)
	}
	if !cfg.UI.Verbose {
		t.Error("expected Verbose from ./config.cue")
	}
}

func TestLoadExplicitFile(t *testing.T) {
	opts := isolate(t)
	testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), `script: "ignored.sh"`+"\n", 0o644)
	explicit := filepath.Join(t.TempDir(), "custom.cue")
	testutil.MustWriteFile(t, explicit, `script: "chosen.sh"`+"\n", 0o644)
	opts.ConfigFilePath = explicit

	cfg, path, err := load(t, opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != explicit || cfg.Script != "chosen.sh" {
		t.Errorf("got path %q script %q, want the explicit file", path, cfg.Script)
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	opts := isolate(t)
	opts.ConfigFilePath = filepath.Join(t.TempDir(), "absent.cue")

	_, _, err := load(t, opts)
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActionableError, got %T: %v", err, err)
	}
	if ae.Resource != opts.ConfigFilePath {
		t.Errorf("Resource = %q, want %q", ae.Resource, opts.ConfigFilePath)
	}
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", `colour: "red"` + "\n", "colour"},
		{"bad output", `ui: output: "yaml"` + "\n", "ui.output"},
		{"bad duration", `http: fetch_timeout: "soon"` + "\n", "http.fetch_timeout"},
		{"wrong type", `run_after: background: "yes"` + "\n", "run_after.background"},
		{"empty script", `script: ""` + "\n", "script"},
		{"syntax error", `ui: {` + "\n", "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := isolate(t)
			testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), tt.content, 0o644)

			_, _, err := load(t, opts)
			if err == nil {
				t.Fatal("expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("expected ActionableError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	opts := isolate(t)
	testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), `ui: output: "json"`+"\n", 0o644)
	t.Setenv("WASUPDATE_UI_OUTPUT", "text")
	t.Setenv("WASUPDATE_HTTP_DOWNLOAD_TIMEOUT", "2m")
	t.Setenv("WASUPDATE_RUN_AFTER_BACKGROUND", "true")

	cfg, _, err := load(t, opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UI.Output != OutputText {
		t.Errorf("Output = %q, want env override text", cfg.UI.Output)
	}
	if cfg.HTTP.DownloadTimeout != 2*time.Minute {
		t.Errorf("DownloadTimeout = %s, want 2m", cfg.HTTP.DownloadTimeout)
	}
	if !cfg.RunAfter.Background {
		t.Error("expected Background from environment")
	}
}

func TestLoadZeroTimeoutDisablesDeadline(t *testing.T) {
	opts := isolate(t)
	testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), `http: download_timeout: "0s"`+"\n", 0o644)

	cfg, _, err := load(t, opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.DownloadTimeout != 0 {
		t.Errorf("DownloadTimeout = %s, want 0", cfg.HTTP.DownloadTimeout)
	}
}

func TestLoadEnvironmentValidation(t *testing.T) {
	opts := isolate(t)
	t.Setenv("WASUPDATE_UI_OUTPUT", "xml")

	_, _, err := load(t, opts)
	if !errors.Is(err, ErrInvalidOutputFormat) {
		t.Fatalf("expected ErrInvalidOutputFormat, got %v", err)
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoad_ReportsSource(t *testing.T) {
	opts := isolate(t)

	loaded, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Source != "" {
		t.Errorf("Source = %q, want empty without a config file", loaded.Source)
	}
	if got := loaded.Describe(); !strings.HasPrefix(got, "// source: built-in defaults\n") {
		t.Errorf("Describe() = %q", got)
	}

	path := filepath.Join(opts.ConfigDirPath, "config.cue")
	testutil.MustWriteFile(t, path, `script: "release.sh"`+"\n", 0o644)

	loaded, err = Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Source != path {
		t.Errorf("Source = %q, want %q", loaded.Source, path)
	}
	if loaded.Config.Script != "release.sh" {
		t.Errorf("Script = %q, want release.sh", loaded.Config.Script)
	}
	got := loaded.Describe()
	if !strings.HasPrefix(got, "// source: "+path+"\n") || !strings.Contains(got, `script: "release.sh"`) {
		t.Errorf("Describe() = %q", got)
	}
}

func TestGenerateCUERoundTrip(t *testing.T) {
	opts := isolate(t)
	want := DefaultConfig()
	want.Script = "bin/update.sh"
	want.HTTP.DownloadTimeout = 90 * time.Minute
	want.UI.Output = OutputJSON
	testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), GenerateCUE(want), 0o644)

	got, _, err := load(t, opts)
	if err != nil {
		t.Fatalf("load generated config: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip = %+v, want %+v", *got, *want)
	}
}

func TestOutputFormatIsValid(t *testing.T) {
	t.Parallel()

	for _, f := range []OutputFormat{OutputText, OutputJSON} {
		if ok, _ := f.IsValid(); !ok {
			t.Errorf("%q should be valid", f)
		}
	}
	ok, errs := OutputFormat("table").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidOutputFormat) {
		t.Errorf("IsValid(table) = %v, %v", ok, errs)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS == platform.Windows || runtime.GOOS == platform.Darwin {
		t.Skip("XDG lookup applies to Linux and other Unix systems")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if want := filepath.Join(xdg, "wasupdate"); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}
}
