// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/syntax"

	"github.com/wasupdate/wasupdate/pkg/semver"
)

// Contract is a parsed policy script known to declare current_version,
// latest_version and install_version with the required shape. Only Load
// constructs one.
type Contract struct {
	source Source
	engine *engine
}

// Load parses src and validates it against the function contract.
//
// Validation checks latest_version, then current_version, then
// install_version. For each function it reports, in order: a missing
// declaration, a wrong number of positional parameters, a declaration that
// is not at the top level, and (install_version only) a parameter that is
// not bound to a variable named version. The first violation is returned as
// a *ContractError.
func Load(ctx context.Context, src Source, opts ...Option) (*Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &settings{
		logger:       log.New(io.Discard),
		fetchTimeout: DefaultFetchTimeout,
		userAgent:    "wasupdate",
	}
	for _, opt := range opts {
		opt(s)
	}

	text, err := src.read()
	if err != nil {
		return nil, err
	}

	file, err := syntax.NewParser().Parse(strings.NewReader(text), src.Name())
	if err != nil {
		return nil, &ContractError{Rule: RuleSyntax, Detail: err.Error()}
	}
	if err := validate(file); err != nil {
		return nil, err
	}

	eng, err := newEngine(file, src, s)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("policy script loaded", "script", src.Name())

	return &Contract{source: src, engine: eng}, nil
}

func validate(file *syntax.File) error {
	funcs := collectFuncs(file)
	for _, req := range requirements {
		shape, ok := funcs[req.name]
		if !ok {
			return &ContractError{Function: req.name, Rule: RuleMissing, Detail: "function is not declared"}
		}
		line := shape.decl.Pos().Line()

		if shape.variadic {
			return &ContractError{
				Function: req.name,
				Rule:     RuleParamCount,
				Detail:   fmt.Sprintf("line %d: uses $@, $* or $#; must take exactly %d parameter(s)", line, req.arity),
			}
		}
		if shape.arity != req.arity {
			return &ContractError{
				Function: req.name,
				Rule:     RuleParamCount,
				Detail:   fmt.Sprintf("line %d: uses %d positional parameter(s), must take exactly %d", line, shape.arity, req.arity),
			}
		}
		if !shape.topLevel {
			return &ContractError{
				Function: req.name,
				Rule:     RuleVisibility,
				Detail:   fmt.Sprintf("line %d: declared inside another command; declare it at the top level of the script", line),
			}
		}
		if req.binds != "" && !bindsFirstParam(shape.decl, req.binds) {
			return &ContractError{
				Function: req.name,
				Rule:     RuleParamName,
				Detail:   fmt.Sprintf(`line %d: parameter must be named %s (e.g. local %s="$1")`, line, req.binds, req.binds),
			}
		}
	}
	return nil
}

// Source returns the script the contract was loaded from.
func (c *Contract) Source() Source { return c.source }

// CurrentVersion runs current_version and parses its output.
func (c *Contract) CurrentVersion(ctx context.Context) (semver.Version, error) {
	return c.version(ctx, fnCurrentVersion)
}

// LatestVersion runs latest_version and parses its output.
func (c *Contract) LatestVersion(ctx context.Context) (semver.Version, error) {
	return c.version(ctx, fnLatestVersion)
}

// InstallVersion runs install_version with version as $1 and returns its
// trimmed output, a path or URL that is not interpreted here.
func (c *Contract) InstallVersion(ctx context.Context, version string) (string, error) {
	out, stderr, err := c.engine.call(ctx, fnInstallVersion, version)
	if err != nil {
		return "", &ScriptError{Function: fnInstallVersion, Raw: out, Stderr: stderr, Err: err}
	}
	return out, nil
}

func (c *Contract) version(ctx context.Context, fn string) (semver.Version, error) {
	out, stderr, err := c.engine.call(ctx, fn)
	if err != nil {
		return semver.Version{}, &ScriptError{Function: fn, Raw: out, Stderr: stderr, Err: err}
	}
	v, err := semver.Parse(out)
	if err != nil {
		return semver.Version{}, &ScriptError{Function: fn, Raw: out, Err: err}
	}
	return v, nil
}
