// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"mvdan.cc/sh/v3/interp"
)

// exitNotFound is the shell's status for an unknown command.
const exitNotFound = 127

type (
	// Command is a host builtin callable from policy scripts.
	Command interface {
		// Name returns the command name as written in scripts.
		Name() string

		// Run executes the command. args[0] is the command name. A failure the
		// script should observe is reported as an interp.ExitStatus error; any
		// other error aborts the whole invocation.
		Run(ctx context.Context, args []string) error
	}

	// Registry maps builtin names to implementations. It is safe for
	// concurrent use; pipelines run builtins on separate goroutines.
	Registry struct {
		mu       sync.RWMutex
		commands map[string]Command
	}

	// HandlerContext carries the standard streams and environment of the
	// shell statement running a builtin.
	HandlerContext struct {
		Stdin     io.Reader
		Stdout    io.Writer
		Stderr    io.Writer
		Dir       string
		LookupEnv func(string) (string, bool)
	}

	handlerContextKey struct{}
)

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd. It panics on an empty or duplicate name.
func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := cmd.Name()
	if name == "" {
		panic("policy: cannot register builtin with empty name")
	}
	if _, exists := r.commands[name]; exists {
		panic(fmt.Sprintf("policy: builtin %q already registered", name))
	}
	r.commands[name] = cmd
}

// Lookup retrieves a builtin by name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the registered builtin names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// execHandler dispatches commands to the registry. Anything not registered is
// refused with status 127 instead of falling through to the host. A panicking
// builtin fails with status 1 like any other builtin error.
func (r *Registry) execHandler(_ interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) (err error) {
		if cmd, ok := r.Lookup(args[0]); ok {
			defer func() {
				if rec := recover(); rec != nil {
					err = fail(GetHandlerContext(ctx), args[0], "internal error: %v", rec)
				}
			}()
			return cmd.Run(ctx, args)
		}
		hc := GetHandlerContext(ctx)
		fmt.Fprintf(hc.Stderr, "%s: external commands are not available in policy scripts; use run %s\n", args[0], args[0])
		return interp.NewExitStatus(exitNotFound)
	}
}

// WithHandlerContext stores hc in ctx. Tests use it to call builtins without
// an interpreter.
func WithHandlerContext(ctx context.Context, hc *HandlerContext) context.Context {
	return context.WithValue(ctx, handlerContextKey{}, hc)
}

// GetHandlerContext returns the HandlerContext stored by WithHandlerContext,
// or the one the interpreter attached to ctx.
func GetHandlerContext(ctx context.Context) *HandlerContext {
	if hc, ok := ctx.Value(handlerContextKey{}).(*HandlerContext); ok {
		return hc
	}
	hc := interp.HandlerCtx(ctx)
	return &HandlerContext{
		Stdin:  hc.Stdin,
		Stdout: hc.Stdout,
		Stderr: hc.Stderr,
		Dir:    hc.Dir,
		LookupEnv: func(name string) (string, bool) {
			v := hc.Env.Get(name)
			return v.Str, v.Set
		},
	}
}

// fail writes a diagnostic to the builtin's stderr and returns status 1.
func fail(hc *HandlerContext, name, format string, args ...any) error {
	fmt.Fprintf(hc.Stderr, name+": "+format+"\n", args...)
	return interp.NewExitStatus(1)
}

// usage writes a usage line and returns status 2.
func usage(hc *HandlerContext, synopsis string) error {
	fmt.Fprintf(hc.Stderr, "usage: %s\n", synopsis)
	return interp.NewExitStatus(2)
}
