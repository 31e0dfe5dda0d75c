// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the platform config directory when set.
		ConfigDirPath string
	}

	// Loaded is the effective configuration of one wasupdate run.
	Loaded struct {
		Config *Config
		// Source is the config file that was read, or "" when only defaults
		// and WASUPDATE_* overrides apply.
		Source string
	}
)

// Load resolves defaults, the config file selected by opts and environment
// overrides into a validated Config.
func Load(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	cfg, path, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Source: path}, nil
}

// Describe renders the configuration in the config.cue format, preceded by a
// comment naming where it came from.
func (l *Loaded) Describe() string {
	source := "built-in defaults"
	if l.Source != "" {
		source = l.Source
	}
	return "// source: " + source + "\n" + GenerateCUE(l.Config)
}
