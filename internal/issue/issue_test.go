// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func plainRender(t *testing.T) {
	t.Helper()
	originalRender := render
	t.Cleanup(func() { render = originalRender })
	render = func(in string, _ string) (string, error) { return in, nil }
}

func TestId_Constants(t *testing.T) {
	if ScriptNotFoundId != 1 {
		t.Errorf("ScriptNotFoundId = %d, want 1", ScriptNotFoundId)
	}

	seen := make(map[Id]bool)
	for _, iss := range Values() {
		if seen[iss.Id()] {
			t.Errorf("duplicate ID: %d", iss.Id())
		}
		seen[iss.Id()] = true
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		contains string
	}{
		{ScriptNotFoundId, "No update script found"},
		{ContractViolationId, "install_version"},
		{ScriptFailedId, "semantic version"},
		{InvalidLocationId, "Invalid install location"},
		{InstallFailedId, "could not be installed"},
		{ConfigLoadFailedId, "config show"},
		{RunAfterFailedId, "post-update command"},
		{ScriptExistsId, "already exists"},
	}

	for _, tt := range tests {
		iss := Get(tt.id)
		if iss == nil {
			t.Errorf("Get(%d) returned nil", tt.id)
			continue
		}
		if iss.Id() != tt.id {
			t.Errorf("Get(%d).Id() = %d", tt.id, iss.Id())
		}
		if !strings.Contains(string(iss.MarkdownMsg()), tt.contains) {
			t.Errorf("Get(%d) markdown should contain %q", tt.id, tt.contains)
		}
	}

	if Get(Id(9999)) != nil {
		t.Error("Get() of an unknown ID should return nil")
	}
}

func TestValues(t *testing.T) {
	values := Values()
	if len(values) != int(ScriptExistsId) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), ScriptExistsId)
	}
	for i, iss := range values {
		if iss.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want ordered ids", i, iss.Id())
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	iss := Get(ContractViolationId)
	links := iss.ExtLinks()
	if len(links) == 0 {
		t.Fatal("expected external links")
	}
	links[0] = "mutated"
	if iss.ExtLinks()[0] == "mutated" {
		t.Error("ExtLinks() should return a clone")
	}
	if len(iss.DocLinks()) != 0 {
		t.Errorf("DocLinks() = %v, want none", iss.DocLinks())
	}
}

func TestIssue_Render_WithLinks(t *testing.T) {
	plainRender(t)

	rendered, err := Get(ConfigLoadFailedId).Render("")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(rendered, "## See also") || !strings.Contains(rendered, "https://cuelang.org/docs/") {
		t.Errorf("Render() should append links, got:\n%s", rendered)
	}
}

func TestIssue_Render_NoLinks(t *testing.T) {
	plainRender(t)

	rendered, err := Get(ScriptNotFoundId).Render("")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(rendered, "See also") {
		t.Errorf("Render() should not add a links section, got:\n%s", rendered)
	}
}

func TestAllIssuesRenderWithGlamour(t *testing.T) {
	for _, iss := range Values() {
		rendered, err := iss.Render("notty")
		if err != nil {
			t.Errorf("Issue %d failed to render: %v", iss.Id(), err)
		}
		if strings.TrimSpace(rendered) == "" {
			t.Errorf("Issue %d rendered to empty string", iss.Id())
		}
	}
}
