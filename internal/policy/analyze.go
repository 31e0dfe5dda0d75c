// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"strconv"

	"mvdan.cc/sh/v3/syntax"
)

const (
	fnCurrentVersion = "current_version"
	fnLatestVersion  = "latest_version"
	fnInstallVersion = "install_version"

	// installParamName is the variable install_version must bind $1 to.
	installParamName = "version"
)

type (
	// funcShape is what validation needs to know about one declared function.
	funcShape struct {
		decl *syntax.FuncDecl
		// topLevel is true when the declaration is a direct statement of the
		// script file, i.e. defined as soon as the script's top level runs.
		topLevel bool
		// arity is the highest positional parameter referenced by the body.
		arity int
		// variadic is set when the body uses $@, $* or $#.
		variadic bool
	}

	// requirement is one function the contract demands.
	requirement struct {
		name  string
		arity int
		// binds names the variable $1 must be assigned to, if any.
		binds string
	}
)

// requirements in validation order.
//
//nolint:gochecknoglobals // immutable table
var requirements = []requirement{
	{name: fnLatestVersion, arity: 0},
	{name: fnCurrentVersion, arity: 0},
	{name: fnInstallVersion, arity: 1, binds: installParamName},
}

// collectFuncs indexes every function declaration in file. When a name is
// declared more than once, a top-level declaration wins over nested ones and
// later top-level declarations win over earlier ones, mirroring which body
// the shell would run.
func collectFuncs(file *syntax.File) map[string]*funcShape {
	topLevel := make(map[*syntax.FuncDecl]bool, len(file.Stmts))
	for _, st := range file.Stmts {
		if fd, ok := st.Cmd.(*syntax.FuncDecl); ok {
			topLevel[fd] = true
		}
	}

	funcs := make(map[string]*funcShape)
	syntax.Walk(file, func(node syntax.Node) bool {
		fd, ok := node.(*syntax.FuncDecl)
		if !ok || fd.Name == nil {
			return true
		}
		shape := &funcShape{decl: fd, topLevel: topLevel[fd]}
		shape.arity, shape.variadic = positionalUsage(fd)

		if _, seen := funcs[fd.Name.Value]; !seen || shape.topLevel {
			funcs[fd.Name.Value] = shape
		}
		return true
	})
	return funcs
}

// positionalUsage scans a function body for positional parameter
// references. Bodies of nested function declarations have their own
// parameters and are skipped.
func positionalUsage(fd *syntax.FuncDecl) (arity int, variadic bool) {
	if fd.Body == nil {
		return 0, false
	}
	syntax.Walk(fd.Body, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.FuncDecl:
			return false
		case *syntax.ParamExp:
			if n.Param == nil {
				return true
			}
			switch name := n.Param.Value; name {
			case "@", "*", "#":
				variadic = true
			default:
				if idx, err := strconv.Atoi(name); err == nil && idx > arity {
					arity = idx
				}
			}
		}
		return true
	})
	return arity, variadic
}

// bindsFirstParam reports whether the function body assigns exactly $1 to
// the variable name, either as a plain assignment or through a declaration
// builtin such as local or declare.
func bindsFirstParam(fd *syntax.FuncDecl, name string) bool {
	if fd.Body == nil {
		return false
	}
	found := false
	syntax.Walk(fd.Body, func(node syntax.Node) bool {
		if found {
			return false
		}
		switch n := node.(type) {
		case *syntax.FuncDecl:
			return false
		case *syntax.CallExpr:
			for _, as := range n.Assigns {
				if isParamBinding(as, name) {
					found = true
				}
			}
		case *syntax.DeclClause:
			for _, as := range n.Args {
				if isParamBinding(as, name) {
					found = true
				}
			}
		}
		return !found
	})
	return found
}

// isParamBinding matches name=$1, name="$1", name=${1} and name="${1}".
func isParamBinding(as *syntax.Assign, name string) bool {
	if as == nil || as.Naked || as.Append || as.Index != nil || as.Array != nil {
		return false
	}
	if as.Name == nil || as.Name.Value != name || as.Value == nil {
		return false
	}
	parts := as.Value.Parts
	if len(parts) != 1 {
		return false
	}
	if dq, ok := parts[0].(*syntax.DblQuoted); ok {
		if len(dq.Parts) != 1 {
			return false
		}
		return isFirstParam(dq.Parts[0])
	}
	return isFirstParam(parts[0])
}

// isFirstParam reports whether part is a bare $1 or ${1} expansion.
func isFirstParam(part syntax.WordPart) bool {
	pe, ok := part.(*syntax.ParamExp)
	if !ok || pe.Param == nil || pe.Param.Value != "1" {
		return false
	}
	return !pe.Excl && !pe.Length && !pe.Width && pe.Index == nil &&
		pe.Slice == nil && pe.Repl == nil && pe.Exp == nil && pe.Names == 0
}
