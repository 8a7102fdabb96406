// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id       Id
		contains string
	}{
		{ContextLoadFailedId, "packaged application context"},
		{PluginInitFailedId, "capability failed to initialize"},
		{EventLoopStartFailedId, "windowing system"},
		{DuplicateCapabilityId, "same capability"},
		{ConfigLoadFailedId, "user configuration"},
		{ShellEnvUnavailableId, "login shell environment"},
	}

	for _, tt := range tests {
		i := Get(tt.id)
		if i == nil {
			t.Fatalf("Get(%d) = nil", tt.id)
		}
		if i.Id() != tt.id {
			t.Errorf("Get(%d).Id() = %d", tt.id, i.Id())
		}
		if !strings.Contains(string(i.MarkdownMsg()), tt.contains) {
			t.Errorf("Get(%d) markdown does not contain %q", tt.id, tt.contains)
		}
	}

	if Get(Id(9999)) != nil {
		t.Error("Get(9999) should be nil")
	}
}

func TestValues_Ordered(t *testing.T) {
	t.Parallel()

	vals := Values()
	if len(vals) != 6 {
		t.Fatalf("len(Values()) = %d, want 6", len(vals))
	}
	for i := 1; i < len(vals); i++ {
		if vals[i-1].Id() >= vals[i].Id() {
			t.Errorf("Values() not ordered at %d", i)
		}
	}
}

func TestIssue_DocLinksIsCopy(t *testing.T) {
	t.Parallel()

	i := Get(ContextLoadFailedId)
	links := i.DocLinks()
	if len(links) == 0 {
		t.Fatal("expected doc links")
	}
	links[0] = "modified"
	if i.DocLinks()[0] == "modified" {
		t.Error("DocLinks() must return a copy")
	}
}

// Not parallel: swaps the package-level renderer.
func TestIssue_Render(t *testing.T) {
	original := render
	t.Cleanup(func() { render = original })

	var gotStyle string
	render = func(in, style string) (string, error) {
		gotStyle = style
		return in, nil
	}

	out, err := Get(ContextLoadFailedId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if gotStyle != "notty" {
		t.Errorf("style = %q, want notty", gotStyle)
	}
	if !strings.Contains(out, "## See also") || !strings.Contains(out, "cuelang.org") {
		t.Errorf("Render() output missing links:\n%s", out)
	}
}
