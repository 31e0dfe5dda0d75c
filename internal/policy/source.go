// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// inlineName is the file name reported for scripts given as text.
const inlineName = "<inline>"

// Source identifies a policy script: a file on disk or literal text.
type Source struct {
	path string
	text string
}

// FileSource reads the script from path when it is loaded.
func FileSource(path string) Source {
	return Source{path: path}
}

// InlineSource uses text as the script.
func InlineSource(text string) Source {
	return Source{text: text}
}

// Name returns the path for file sources and "<inline>" otherwise.
func (s Source) Name() string {
	if s.path == "" {
		return inlineName
	}
	return s.path
}

// Dir returns the absolute directory of a file source, or "" for inline
// scripts.
func (s Source) Dir() string {
	if s.path == "" {
		return ""
	}
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return filepath.Dir(s.path)
	}
	return filepath.Dir(abs)
}

func (s Source) read() (string, error) {
	if s.path == "" {
		return s.text, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrScriptNotFound, s.path)
		}
		return "", fmt.Errorf("reading policy script: %w", err)
	}
	return string(data), nil
}
