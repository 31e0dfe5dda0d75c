// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmespath/go-jmespath"
)

// jqCommand implements `jq QUERY [JSON]`: a JMESPath query over a JSON
// document taken from the second argument or standard input. String results
// print without quotes so they can feed straight into version parsing.
type jqCommand struct{}

// Name implements Command.
func (jqCommand) Name() string { return "jq" }

// Run implements Command.
func (jqCommand) Run(ctx context.Context, args []string) error {
	hc := GetHandlerContext(ctx)
	if len(args) < 2 || len(args) > 3 {
		return usage(hc, "jq QUERY [JSON]")
	}
	query := args[1]

	var raw []byte
	if len(args) == 3 {
		raw = []byte(args[2])
	} else {
		if hc.Stdin == nil {
			return fail(hc, "jq", "no JSON input")
		}
		data, err := io.ReadAll(hc.Stdin)
		if err != nil {
			return fail(hc, "jq", "reading input: %v", err)
		}
		raw = data
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fail(hc, "jq", "invalid JSON input: %v", err)
	}

	result, err := search(query, doc)
	if err != nil {
		return fail(hc, "jq", "query %q: %v", query, err)
	}

	if s, ok := result.(string); ok {
		_, err = fmt.Fprintln(hc.Stdout, s)
	} else {
		var encoded []byte
		if encoded, err = json.Marshal(result); err == nil {
			_, err = fmt.Fprintln(hc.Stdout, string(encoded))
		}
	}
	if err != nil {
		return fail(hc, "jq", "writing output: %v", err)
	}
	return nil
}

// search runs a JMESPath query. go-jmespath panics when a function receives
// an argument of the wrong type, e.g. merge() on a string.
func search(query string, doc any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("evaluating query: %v", r)
		}
	}()
	return jmespath.Search(query, doc)
}
