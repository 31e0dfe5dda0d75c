// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	// OutputText renders results as styled human-readable lines.
	OutputText OutputFormat = "text"
	// OutputJSON renders results as a single JSON document.
	OutputJSON OutputFormat = "json"

	// DefaultScript is the policy script looked up when none is configured.
	DefaultScript = "wasupdate.sh"
	// DefaultUserAgent is sent with downloads and script fetches.
	DefaultUserAgent = "wasupdate"
	// DefaultFetchTimeout bounds a single fetch made by the policy script.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultDownloadTimeout bounds the artifact download.
	DefaultDownloadTimeout = 30 * time.Minute
)

var (
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// OutputFormat selects how the CLI presents results.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	// It wraps ErrInvalidOutputFormat for errors.Is() compatibility.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// InvalidConfigError collects every field error found in a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the root configuration structure.
	Config struct {
		// Script is the policy script path.
		Script string `json:"script" mapstructure:"script"`
		// HTTP configures downloads and script fetches.
		HTTP HTTPConfig `json:"http" mapstructure:"http"`
		// RunAfter configures the post-update command.
		RunAfter RunAfterConfig `json:"run_after" mapstructure:"run_after"`
		// UI configures presentation.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// HTTPConfig configures network access.
	// A zero timeout disables the deadline.
	HTTPConfig struct {
		FetchTimeout    time.Duration `json:"fetch_timeout" mapstructure:"fetch_timeout"`
		DownloadTimeout time.Duration `json:"download_timeout" mapstructure:"download_timeout"`
		UserAgent       string        `json:"user_agent" mapstructure:"user_agent"`
	}

	// RunAfterConfig configures the command launched after an update.
	RunAfterConfig struct {
		// Background detaches the command instead of waiting for it.
		Background bool `json:"background" mapstructure:"background"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Output selects text or json rendering.
		Output OutputFormat `json:"output" mapstructure:"output"`
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: text, json)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error {
	return ErrInvalidOutputFormat
}

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is one of the defined formats,
// and a list of validation errors if it is not.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case OutputText, OutputJSON:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid config: %v", e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid config: %d field errors: %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns the sentinel and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// IsValid checks the constraints the schema cannot express on decoded values.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if c.Script == "" {
		errs = append(errs, errors.New("script: must not be empty"))
	}
	if c.HTTP.FetchTimeout < 0 {
		errs = append(errs, fmt.Errorf("http.fetch_timeout: must not be negative, got %s", c.HTTP.FetchTimeout))
	}
	if c.HTTP.DownloadTimeout < 0 {
		errs = append(errs, fmt.Errorf("http.download_timeout: must not be negative, got %s", c.HTTP.DownloadTimeout))
	}
	if _, fieldErrs := c.UI.Output.IsValid(); len(fieldErrs) > 0 {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Script: DefaultScript,
		HTTP: HTTPConfig{
			FetchTimeout:    DefaultFetchTimeout,
			DownloadTimeout: DefaultDownloadTimeout,
			UserAgent:       DefaultUserAgent,
		},
		RunAfter: RunAfterConfig{
			Background: false,
		},
		UI: UIConfig{
			Output:  OutputText,
			Verbose: false,
		},
	}
}
