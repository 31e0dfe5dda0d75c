// SPDX-License-Identifier: MPL-2.0

// Package runafter launches the command the user asked to run once an update
// has been handled, typically the freshly installed program itself.
package runafter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrProcess is wrapped by every ProcessError.
var ErrProcess = errors.New("post-update command failed")

type (
	// Command is a program to start after the update.
	Command struct {
		// Argv is the program name followed by its arguments.
		Argv []string
		// Background starts the program detached: stdin and stdout go to the
		// null device, stderr stays attached, and Run does not wait.
		Background bool
		// ExeDir is searched when the program is not found on PATH.
		ExeDir string
	}

	// ProcessError reports a command that could not be started or, when
	// attached, exited unsuccessfully.
	ProcessError struct {
		Program string
		Err     error
	}

	// Runner starts post-update commands.
	Runner struct {
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
		logger *log.Logger
	}

	// Option configures a Runner.
	Option func(*Runner)
)

// Error implements the error interface.
func (e *ProcessError) Error() string {
	return fmt.Sprintf("running %s: %v", e.Program, e.Err)
}

// Unwrap exposes ErrProcess and the underlying cause.
func (e *ProcessError) Unwrap() []error { return []error{ErrProcess, e.Err} }

// WithStdio replaces the streams an attached command inherits.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdin, r.stdout, r.stderr = stdin, stdout, stderr
	}
}

// WithLogger sets the logger for launch diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// New creates a Runner bound to the process's standard streams.
func New(opts ...Option) *Runner {
	r := &Runner{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts c. The program is resolved on PATH first; if it is not found
// there, it is retried once relative to c.ExeDir.
func (r *Runner) Run(ctx context.Context, c Command) error {
	if len(c.Argv) == 0 || c.Argv[0] == "" {
		return nil
	}
	program, args := c.Argv[0], c.Argv[1:]

	cmd, err := r.start(ctx, c, program, args)
	if errors.Is(err, exec.ErrNotFound) && c.ExeDir != "" && !strings.ContainsAny(program, `/\`) {
		fallback := filepath.Join(c.ExeDir, program)
		r.logger.Debug("command not on PATH, trying executable directory", "command", program, "path", fallback)
		cmd, err = r.start(ctx, c, fallback, args)
	}
	if err != nil {
		return &ProcessError{Program: program, Err: err}
	}

	if c.Background {
		r.logger.Debug("started background command", "command", program, "pid", cmd.Process.Pid)
		// Reap the child when it exits so it does not linger as a zombie.
		go func() { _ = cmd.Wait() }()
		return nil
	}

	if err := cmd.Wait(); err != nil {
		return &ProcessError{Program: program, Err: err}
	}
	return nil
}

func (r *Runner) start(ctx context.Context, c Command, program string, args []string) (*exec.Cmd, error) {
	var cmd *exec.Cmd
	if c.Background {
		// A detached command must outlive this process's context.
		cmd = exec.Command(program, args...) //nolint:gosec,noctx // user-requested command
		cmd.Stdin = nil
		cmd.Stdout = nil
		cmd.Stderr = r.stderr
	} else {
		cmd = exec.CommandContext(ctx, program, args...) //nolint:gosec // user-requested command
		cmd.Stdin = r.stdin
		cmd.Stdout = r.stdout
		cmd.Stderr = r.stderr
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}
