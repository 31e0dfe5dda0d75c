// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/wasupdate/wasupdate/pkg/platform"
)

const (
	// EnvExeDir names the directory of the running executable.
	EnvExeDir = "WASUPDATE_EXE_DIR"
	// EnvScriptDir names the directory containing the policy script.
	EnvScriptDir = "WASUPDATE_SCRIPT_DIR"

	// devNull is the only path scripts may open for writing.
	devNull = "/dev/null"
)

// errWriteDenied is reported when a script redirects output into a file.
var errWriteDenied = errors.New("writing files is not allowed in policy scripts")

// engine runs functions of a parsed script. It holds no interpreter state
// between calls.
type engine struct {
	file      *syntax.File
	calls     map[string]*syntax.File
	builtins  *Registry
	logger    *log.Logger
	scriptDir string
	extraEnv  []string

	exeDirOnce sync.Once
	exeDirPath string
}

func newEngine(file *syntax.File, src Source, s *settings) (*engine, error) {
	e := &engine{
		file:       file,
		calls:      make(map[string]*syntax.File, len(requirements)),
		logger:     s.logger,
		scriptDir:  src.Dir(),
		extraEnv:   s.env,
		exeDirPath: s.exeDir,
	}

	parser := syntax.NewParser()
	for _, req := range requirements {
		call, err := parser.Parse(strings.NewReader(req.name+` "$@"`), req.name)
		if err != nil {
			return nil, fmt.Errorf("preparing call to %s: %w", req.name, err)
		}
		e.calls[req.name] = call
	}

	base := s.client
	if base == nil {
		base = &http.Client{}
	}
	client := *base
	client.Timeout = s.fetchTimeout

	e.builtins = NewRegistry()
	e.builtins.Register(&fetchCommand{client: &client, userAgent: s.userAgent})
	e.builtins.Register(&runCommand{exeDir: e.exeDir, env: e.environ, logger: s.logger})
	e.builtins.Register(jqCommand{})

	return e, nil
}

// exeDir resolves the executable directory once. An unresolvable directory
// yields "" and disables the run fallback.
func (e *engine) exeDir() string {
	e.exeDirOnce.Do(func() {
		if e.exeDirPath != "" {
			return
		}
		dir, err := platform.ExecutableDir()
		if err != nil {
			e.logger.Debug("executable directory unavailable", "error", err)
			return
		}
		e.exeDirPath = dir
	})
	return e.exeDirPath
}

// environ is the process environment plus the wasupdate variables. Later
// entries override earlier ones.
func (e *engine) environ() []string {
	env := os.Environ()
	if dir := e.exeDir(); dir != "" {
		env = append(env, EnvExeDir+"="+dir)
	}
	if e.scriptDir != "" {
		env = append(env, EnvScriptDir+"="+e.scriptDir)
	}
	return append(env, e.extraEnv...)
}

// call runs the script's top level followed by fn with args as positional
// parameters, on a runner that is discarded afterwards. It returns the
// trimmed standard output and the captured standard error.
func (e *engine) call(ctx context.Context, fn string, args ...string) (out, errOut string, err error) {
	callStmt, ok := e.calls[fn]
	if !ok {
		return "", "", fmt.Errorf("unknown policy function %q", fn)
	}

	var stdout, stderr bytes.Buffer
	params := append([]string{"-e", "--"}, args...)
	runner, err := interp.New(
		interp.Env(expand.ListEnviron(e.environ()...)),
		interp.StdIO(nil, &stdout, &stderr),
		interp.ExecHandlers(e.builtins.execHandler),
		interp.OpenHandler(sandboxOpen(interp.DefaultOpenHandler())),
		interp.Params(params...),
	)
	if err != nil {
		return "", "", fmt.Errorf("creating interpreter: %w", err)
	}

	e.logger.Debug("calling policy function", "function", fn, "args", args)

	if err := runner.Run(ctx, e.file); err != nil {
		return "", stderr.String(), fmt.Errorf("running script top level: %w", err)
	}
	if runner.Exited() {
		return "", stderr.String(), fmt.Errorf("script exited before %s was called", fn)
	}

	// Output of the top level is not part of the function's result.
	stdout.Reset()

	err = runner.Run(ctx, callStmt)
	out = cleanOutput(stdout.String())
	errOut = stderr.String()
	if errOut != "" {
		e.logger.Debug("policy function stderr", "function", fn, "stderr", strings.TrimSpace(errOut))
	}
	return out, errOut, err
}

// cleanOutput trims surrounding whitespace and replaces invalid UTF-8.
func cleanOutput(s string) string {
	return strings.ToValidUTF8(strings.TrimSpace(s), "\uFFFD")
}

// sandboxOpen refuses redirections that would create, truncate or write a
// file other than /dev/null.
func sandboxOpen(next interp.OpenHandlerFunc) interp.OpenHandlerFunc {
	const writeFlags = os.O_WRONLY | os.O_RDWR | os.O_APPEND | os.O_CREATE | os.O_TRUNC
	return func(ctx context.Context, path string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
		if flag&writeFlags != 0 && path != devNull {
			return nil, fmt.Errorf("%s: %w", path, errWriteDenied)
		}
		return next(ctx, path, flag, perm)
	}
}
