// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wasupdate/wasupdate/pkg/platform"
)

const (
	// copyBufferSize bounds the memory used while streaming a download.
	copyBufferSize = 32 << 10

	// fallbackFileName is used when neither the response nor the URL yields
	// a usable file name.
	fallbackFileName = "download"
)

type (
	// Fetcher retrieves a remote artifact into dir and returns the local path.
	Fetcher interface {
		Fetch(ctx context.Context, src *url.URL, dir string, progress ProgressObserver) (string, error)
	}

	// ProgressObserver receives byte-level download progress. Implementations
	// live outside the pipeline (progress bars, log lines); a panicking
	// observer is ignored rather than aborting the download.
	ProgressObserver interface {
		// Start is called once the response headers are known. total is -1
		// when the server did not announce a length.
		Start(name string, total int64)
		// Advance reports n more bytes written to disk.
		Advance(n int64)
		// Finish is called after the body has been fully written.
		Finish()
	}

	// StatusError reports a non-2xx HTTP response.
	StatusError struct {
		URL        string
		StatusCode int
		Status     string
	}

	// HTTPFetcher downloads artifacts over HTTP(S).
	HTTPFetcher struct {
		client    *http.Client
		userAgent string
		logger    *log.Logger
	}

	// FetcherOption configures an HTTPFetcher during construction.
	FetcherOption func(*HTTPFetcher)

	// progressWriter forwards write sizes to a ProgressObserver.
	progressWriter struct {
		w        io.Writer
		observer ProgressObserver
	}
)

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// WithHTTPClient sets a custom HTTP client, useful for tests or proxies.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// WithTimeout bounds the whole download, body included. Zero disables the
// timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		c := *f.client
		c.Timeout = d
		f.client = &c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithFetchLogger sets the logger used for request diagnostics.
func WithFetchLogger(l *log.Logger) FetcherOption {
	return func(f *HTTPFetcher) {
		f.logger = l
	}
}

// NewHTTPFetcher creates an HTTPFetcher. Defaults: a client without timeout
// (cancellation comes from the context) and User-Agent "wasupdate".
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{},
		userAgent: "wasupdate",
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads src into dir. The file name comes from the
// Content-Disposition header when present, otherwise from the last URL path
// segment. The body is streamed to disk; it is never held in memory.
func (f *HTTPFetcher) Fetch(ctx context.Context, src *url.URL, dir string, progress ProgressObserver) (_ string, err error) {
	display := redactURL(src)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.String(), http.NoBody)
	if err != nil {
		return "", ioError("download", display, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	f.logger.Debug("downloading artifact", "url", display)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", ioError("download", display, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", ioError("download", display, &StatusError{
			URL:        display,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		})
	}

	name := responseFileName(resp, src)
	dest := filepath.Join(dir, name)

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", ioError("create file", dest, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = ioError("close file", dest, closeErr)
		}
	}()

	notify(func() { progress.Start(name, resp.ContentLength) }, progress)

	pw := &progressWriter{w: out, observer: progress}
	written, err := io.CopyBuffer(pw, resp.Body, make([]byte, copyBufferSize))
	if err != nil {
		return "", ioError("download", display, err)
	}

	notify(func() { progress.Finish() }, progress)
	f.logger.Debug("artifact downloaded", "file", dest, "bytes", written)

	return dest, nil
}

// Write implements io.Writer.
func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if n > 0 {
		notify(func() { p.observer.Advance(int64(n)) }, p.observer)
	}
	return n, err
}

// notify runs an observer callback, swallowing panics. A nil observer is
// skipped.
func notify(call func(), observer ProgressObserver) {
	if observer == nil {
		return
	}
	defer func() { _ = recover() }() //nolint:errcheck // observer failures must not abort the download
	call()
}

// responseFileName picks the local file name for a download.
func responseFileName(resp *http.Response, src *url.URL) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := params["filename"]; name != "" {
				return platform.SanitizeFileName(name, fallbackFileName)
			}
		}
	}

	// Redirects change the final URL; prefer it so names like
	// ".../download?id=3" resolved to ".../tool.zip" keep their extension.
	final := src
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}
	return platform.SanitizeFileName(path.Base(final.Path), fallbackFileName)
}

// redactURL strips credentials, query parameters and fragments from a URL
// for safe inclusion in logs and error messages.
func redactURL(u *url.URL) string {
	c := *u
	c.User = nil
	c.RawQuery = ""
	c.Fragment = ""
	return c.String()
}
