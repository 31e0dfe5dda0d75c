// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// RuleSyntax reports a script that does not parse.
	RuleSyntax Rule = "syntax"
	// RuleMissing reports a required function that is not declared.
	RuleMissing Rule = "missing"
	// RuleParamCount reports a function that uses the wrong number of
	// positional parameters.
	RuleParamCount Rule = "parameter-count"
	// RuleVisibility reports a function that is not declared at the top
	// level of the script.
	RuleVisibility Rule = "visibility"
	// RuleParamName reports an install_version that does not bind $1 to a
	// variable named version.
	RuleParamName Rule = "parameter-name"
)

var (
	// ErrContract is wrapped by every ContractError.
	ErrContract = errors.New("policy script violates the function contract")

	// ErrScript is wrapped by every ScriptError.
	ErrScript = errors.New("policy script failed")

	// ErrScriptNotFound is returned by Load when the script file does not exist.
	ErrScriptNotFound = errors.New("policy script not found")
)

type (
	// Rule names the contract requirement a script failed.
	Rule string

	// ContractError describes why a script was rejected at load time.
	// Function is empty for syntax errors.
	ContractError struct {
		Function string
		Rule     Rule
		Detail   string
	}

	// ScriptError describes a failed function invocation: a non-zero exit
	// status or output that could not be interpreted.
	ScriptError struct {
		Function string
		// Raw is the trimmed standard output of the call.
		Raw string
		// Stderr is the captured standard error of the call.
		Stderr string
		Err    error
	}
)

// Error implements the error interface.
func (e *ContractError) Error() string {
	if e.Function == "" {
		return fmt.Sprintf("policy script %s error: %s", e.Rule, e.Detail)
	}
	return fmt.Sprintf("policy function %s: %s: %s", e.Function, e.Rule, e.Detail)
}

// Unwrap returns ErrContract so callers can use errors.Is.
func (e *ContractError) Unwrap() error { return ErrContract }

// Error implements the error interface.
func (e *ScriptError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %v", e.Function, e.Err)
	if e.Raw != "" {
		fmt.Fprintf(&sb, " (output %q)", e.Raw)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		fmt.Fprintf(&sb, ": %s", msg)
	}
	return sb.String()
}

// Unwrap exposes ErrScript and the underlying cause.
func (e *ScriptError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrScript}
	}
	return []error{ErrScript, e.Err}
}
