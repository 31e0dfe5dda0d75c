// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// runCommand implements `run COMMAND...`: the arguments are joined, split on
// whitespace and executed as a host program. Its standard output is captured
// and written to the script's standard output once it exits successfully.
type runCommand struct {
	// exeDir resolves the directory searched when the program is not on PATH.
	exeDir func() string
	env    func() []string
	logger *log.Logger
}

// Name implements Command.
func (c *runCommand) Name() string { return "run" }

// Run implements Command.
func (c *runCommand) Run(ctx context.Context, args []string) error {
	hc := GetHandlerContext(ctx)
	fields := strings.Fields(strings.Join(args[1:], " "))
	if len(fields) == 0 {
		return usage(hc, "run COMMAND [ARGS...]")
	}

	out, err := c.exec(ctx, hc, fields[0], fields[1:])
	if errors.Is(err, exec.ErrNotFound) && !strings.ContainsAny(fields[0], `/\`) {
		if dir := c.exeDir(); dir != "" {
			fallback := filepath.Join(dir, fields[0])
			c.logger.Debug("command not on PATH, trying executable directory", "command", fields[0], "path", fallback)
			out, err = c.exec(ctx, hc, fallback, fields[1:])
		}
	}
	if err != nil {
		return fail(hc, "run", "%s: %v", fields[0], err)
	}

	if _, err := hc.Stdout.Write(out); err != nil {
		return fail(hc, "run", "writing output: %v", err)
	}
	return nil
}

func (c *runCommand) exec(ctx context.Context, hc *HandlerContext, name string, args []string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = hc.Dir
	cmd.Env = c.env()
	cmd.Stdout = &stdout
	cmd.Stderr = hc.Stderr
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}
