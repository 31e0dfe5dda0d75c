// SPDX-License-Identifier: MPL-2.0

package runafter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/wasupdate/wasupdate/internal/testutil"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("helpers are shell scripts")
	}
}

func writeHelper(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	testutil.MustWriteFile(t, p, "#!/bin/sh\n"+body, 0o755)
	return p
}

func TestRun_EmptyCommand(t *testing.T) {
	t.Parallel()

	if err := New().Run(context.Background(), Command{}); err != nil {
		t.Errorf("Run(empty) error: %v", err)
	}
	if err := New().Run(context.Background(), Command{Argv: []string{""}}); err != nil {
		t.Errorf("Run(blank) error: %v", err)
	}
}

func TestRun_AttachedInheritsStreams(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	dir := t.TempDir()
	helper := writeHelper(t, dir, "echoer", "read -r line\necho \"got $line $1\"\necho oops >&2\n")

	var stdout, stderr bytes.Buffer
	r := New(WithStdio(strings.NewReader("input\n"), &stdout, &stderr))
	if err := r.Run(context.Background(), Command{Argv: []string{helper, "arg"}}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := stdout.String(); got != "got input arg\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := stderr.String(); got != "oops\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestRun_FallsBackToExeDir(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	dir := t.TempDir()
	writeHelper(t, dir, "wasupdate-runafter-helper", "echo fallback\n")

	var stdout bytes.Buffer
	r := New(WithStdio(nil, &stdout, &bytes.Buffer{}))
	err := r.Run(context.Background(), Command{Argv: []string{"wasupdate-runafter-helper"}, ExeDir: dir})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if stdout.String() != "fallback\n" {
		t.Errorf("stdout = %q, want fallback", stdout.String())
	}
}

func TestRun_Failures(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	dir := t.TempDir()
	failing := writeHelper(t, dir, "failing", "exit 3\n")

	tests := []struct {
		name    string
		cmd     Command
		wantRaw error
	}{
		{"not found anywhere", Command{Argv: []string{"wasupdate-no-such-program"}, ExeDir: dir}, nil},
		{"not found without exe dir", Command{Argv: []string{"wasupdate-no-such-program"}}, exec.ErrNotFound},
		{"non-zero exit", Command{Argv: []string{failing}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := New(WithStdio(nil, &bytes.Buffer{}, &bytes.Buffer{})).Run(context.Background(), tt.cmd)
			var pe *ProcessError
			if !errors.As(err, &pe) {
				t.Fatalf("Run() error = %v, want *ProcessError", err)
			}
			if !errors.Is(err, ErrProcess) {
				t.Error("error does not wrap ErrProcess")
			}
			if tt.wantRaw != nil && !errors.Is(err, tt.wantRaw) {
				t.Errorf("error %v does not wrap %v", err, tt.wantRaw)
			}
		})
	}

	var exitErr *exec.ExitError
	err := New(WithStdio(nil, &bytes.Buffer{}, &bytes.Buffer{})).Run(context.Background(), Command{Argv: []string{failing}})
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Errorf("Run() error = %v, want exit code 3", err)
	}
}

func TestRun_BackgroundDoesNotWait(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	dir := t.TempDir()
	marker := filepath.Join(dir, "done")
	helper := writeHelper(t, dir, "slow", "sleep 1\ntouch \"$1\"\n")

	start := time.Now()
	err := New().Run(context.Background(), Command{Argv: []string{helper, marker}, Background: true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 900*time.Millisecond {
		t.Errorf("background Run() took %v, expected it not to wait", elapsed)
	}
	if _, err := os.Stat(marker); err == nil {
		t.Error("marker exists immediately; command was waited on")
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(marker); err == nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Error("background command never ran")
}
