// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	units "github.com/docker/go-units"

	"github.com/wasupdate/wasupdate/internal/config"
)

type (
	// report is the outcome of an update run, rendered as text or JSON.
	report struct {
		Script     string `json:"script"`
		Current    string `json:"current"`
		Latest     string `json:"latest"`
		Prerelease bool   `json:"prerelease"`
		UpToDate   bool   `json:"up_to_date"`
		Location   string `json:"location,omitempty"`
		DryRun     bool   `json:"dry_run"`
		Installed  bool   `json:"installed"`
		Archive    string `json:"archive,omitempty"`
		TargetDir  string `json:"target_dir,omitempty"`
		Message    string `json:"message"`

		exeDir string
	}

	// failureReport is printed instead of a report in JSON mode.
	failureReport struct {
		Error    string `json:"error"`
		ExitCode int    `json:"exit_code"`
	}

	// logProgress turns download progress into log lines.
	logProgress struct {
		logger  *log.Logger
		name    string
		total   int64
		written int64
	}
)

func renderReport(w io.Writer, format config.OutputFormat, rep *report) error {
	if format == config.OutputJSON {
		return renderJSON(w, rep)
	}
	_, err := io.WriteString(w, formatReport(rep))
	return err
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

func formatReport(rep *report) string {
	var sb strings.Builder

	if rep.DryRun {
		fmt.Fprintf(&sb, "%s %s\n", SubtitleStyle.Render("Current version:"), VersionStyle.Render(rep.Current))
		fmt.Fprintf(&sb, "%s  %s\n", SubtitleStyle.Render("Latest version:"), VersionStyle.Render(rep.Latest))
		fmt.Fprintf(&sb, "%s  %s\n", SubtitleStyle.Render("Install from:"), CmdStyle.Render(rep.Location))
		if rep.UpToDate {
			fmt.Fprintf(&sb, "\n%s\n", rep.Message)
		} else {
			fmt.Fprintf(&sb, "\nWould update %s → %s%s (dry run, nothing installed)\n", rep.Current, rep.Latest, prereleaseNote(rep))
		}
		return sb.String()
	}

	if !rep.Installed {
		fmt.Fprintf(&sb, "%s %s\n", SuccessStyle.Render("✓"), rep.Message)
		return sb.String()
	}

	fmt.Fprintf(&sb, "%s Updated %s → %s%s\n",
		SuccessStyle.Render("✓"), VersionStyle.Render(rep.Current), VersionStyle.Render(rep.Latest), prereleaseNote(rep))
	fmt.Fprintf(&sb, "  %s %s\n", SubtitleStyle.Render("from:"), CmdStyle.Render(rep.Location))
	fmt.Fprintf(&sb, "  %s   %s\n", SubtitleStyle.Render("into:"), CmdStyle.Render(rep.TargetDir))
	return sb.String()
}

func prereleaseNote(rep *report) string {
	if !rep.Prerelease {
		return ""
	}
	return " " + WarningStyle.Render("(pre-release)")
}

func (p *logProgress) Start(name string, total int64) {
	p.name, p.total, p.written = name, total, 0
	size := "unknown size"
	if total >= 0 {
		size = units.HumanSize(float64(total))
	}
	p.logger.Info("downloading", "file", name, "size", size)
}

func (p *logProgress) Advance(n int64) {
	p.written += n
}

func (p *logProgress) Finish() {
	p.logger.Debug("download complete", "file", p.name, "written", units.HumanSize(float64(p.written)))
}
