// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"context"
	"io"
	"net/http"
)

// fetchCommand implements `fetch URL`: an HTTP GET whose body is streamed to
// standard output.
type fetchCommand struct {
	client    *http.Client
	userAgent string
}

// Name implements Command.
func (c *fetchCommand) Name() string { return "fetch" }

// Run implements Command.
func (c *fetchCommand) Run(ctx context.Context, args []string) error {
	hc := GetHandlerContext(ctx)
	if len(args) != 2 {
		return usage(hc, "fetch URL")
	}
	target := args[1]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return fail(hc, "fetch", "%v", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fail(hc, "fetch", "%v", err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(hc, "fetch", "GET %s: unexpected status %s", target, resp.Status)
	}
	if _, err := io.Copy(hc.Stdout, resp.Body); err != nil {
		return fail(hc, "fetch", "reading %s: %v", target, err)
	}
	return nil
}
