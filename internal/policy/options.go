// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultFetchTimeout bounds a single `fetch` request.
const DefaultFetchTimeout = 30 * time.Second

type (
	// Option configures Load.
	Option func(*settings)

	settings struct {
		logger       *log.Logger
		client       *http.Client
		fetchTimeout time.Duration
		userAgent    string
		exeDir       string
		env          []string
	}
)

// WithLogger sets the logger for script diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithHTTPClient sets the client used by the fetch builtin. The fetch
// timeout is applied to a copy of it.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		s.client = c
	}
}

// WithFetchTimeout bounds each fetch request. Zero disables the timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.fetchTimeout = d
	}
}

// WithUserAgent sets the User-Agent header of fetch requests.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.userAgent = ua
	}
}

// WithExeDir overrides the executable directory exposed to scripts and used
// as the fallback search directory of the run builtin.
func WithExeDir(dir string) Option {
	return func(s *settings) {
		s.exeDir = dir
	}
}

// WithEnv appends KEY=VALUE entries to the script environment.
func WithEnv(kv ...string) Option {
	return func(s *settings) {
		s.env = append(s.env, kv...)
	}
}
