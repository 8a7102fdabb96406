// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"slices"
	"sync"
	"testing"

	"github.com/asdf-gui/asdf-gui/internal/appctx"
)

func lookupFrom(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

func TestNewFSScope_ExpandsGrants(t *testing.T) {
	t.Parallel()

	grants := appctx.Scope{
		Allow: []string{"$HOME/.tool-versions", "$APPDATA/**"},
		Deny:  []string{"$HOME/.ssh/**"},
	}
	s, err := NewFSScope(grants, lookupFrom(map[string]string{
		"HOME":    "/home/alice",
		"APPDATA": "/home/alice/.local/share/io.example",
	}))
	if err != nil {
		t.Fatalf("NewFSScope() error = %v", err)
	}

	wantAllowed := []string{"/home/alice/.tool-versions", "/home/alice/.local/share/io.example/**"}
	if got := s.Allowed(); !slices.Equal(got, wantAllowed) {
		t.Errorf("Allowed() = %v, want %v", got, wantAllowed)
	}
	if got := s.Forbidden(); !slices.Equal(got, []string{"/home/alice/.ssh/**"}) {
		t.Errorf("Forbidden() = %v", got)
	}
}

func TestFSScope_IsAllowed(t *testing.T) {
	t.Parallel()

	s, err := NewFSScope(appctx.Scope{
		Allow: []string{"/home/u/.tool-versions", "/home/u/.default-*", "/data/**", "/home/u/**"},
		Deny:  []string{"/home/u/.ssh/**"},
	}, lookupFrom(nil))
	if err != nil {
		t.Fatalf("NewFSScope() error = %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"exact file", "/home/u/.tool-versions", true},
		{"star prefix", "/home/u/.default-npm-packages", true},
		{"double star nested", "/data/a/b/c.json", true},
		{"forbidden wins over allow", "/home/u/.ssh/id_ed25519", false},
		{"outside scope", "/etc/passwd", false},
		{"path is cleaned", "/data/x/../y.json", true},
		{"traversal out of scope", "/data/../etc/passwd", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := s.IsAllowed(tt.path); got != tt.want {
				t.Errorf("IsAllowed(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFSScope_StarDoesNotCrossSlash(t *testing.T) {
	t.Parallel()

	s, err := NewFSScope(appctx.Scope{Allow: []string{"/home/u/.default-*"}}, lookupFrom(nil))
	if err != nil {
		t.Fatalf("NewFSScope() error = %v", err)
	}
	if s.IsAllowed("/home/u/.default-x/nested") {
		t.Error("single star matched across a directory separator")
	}
}

func TestFSScope_Directory(t *testing.T) {
	t.Parallel()

	s, err := NewFSScope(appctx.Scope{}, lookupFrom(nil))
	if err != nil {
		t.Fatalf("NewFSScope() error = %v", err)
	}
	if err := s.AllowDirectory("/opt/my[app]", false); err != nil {
		t.Fatalf("AllowDirectory() error = %v", err)
	}
	if err := s.AllowDirectory("/srv/tree/", true); err != nil {
		t.Fatalf("AllowDirectory() error = %v", err)
	}
	if err := s.AllowDirectory("/data/{a,b}*", false); err != nil {
		t.Fatalf("AllowDirectory() error = %v", err)
	}

	if !s.IsAllowed("/opt/my[app]/file") {
		t.Error("literal brackets in directory name were not matched")
	}
	if s.IsAllowed("/opt/mya/file") {
		t.Error("brackets in directory name were treated as a character class")
	}
	if s.IsAllowed("/opt/my[app]/a/b") {
		t.Error("non-recursive directory grant matched a nested path")
	}
	if !s.IsAllowed("/srv/tree/a/b/c") {
		t.Error("recursive directory grant did not match a nested path")
	}
	if !s.IsAllowed("/data/{a,b}*/f") {
		t.Error("literal braces and star in directory name were not matched")
	}
	if s.IsAllowed("/data/{a,b}x/f") {
		t.Error("star in directory name was treated as a wildcard")
	}
}

func TestFSScope_OnChange(t *testing.T) {
	t.Parallel()

	s, err := NewFSScope(appctx.Scope{Allow: []string{"/a"}}, lookupFrom(nil))
	if err != nil {
		t.Fatalf("NewFSScope() error = %v", err)
	}

	var (
		mu      sync.Mutex
		changes []ScopeChange
	)
	s.OnChange(func(c ScopeChange) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})

	if err := s.Allow("/a", "/b"); err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	// Nothing new, no notification.
	if err := s.Allow("/b"); err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if err := s.Forbid("/c"); err != nil {
		t.Fatalf("Forbid() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2: %+v", len(changes), changes)
	}
	if changes[0].Forbidden || !slices.Equal(changes[0].Patterns, []string{"/b"}) {
		t.Errorf("changes[0] = %+v", changes[0])
	}
	if !changes[1].Forbidden || !slices.Equal(changes[1].Patterns, []string{"/c"}) {
		t.Errorf("changes[1] = %+v", changes[1])
	}
}

func TestFSScope_InvalidPattern(t *testing.T) {
	t.Parallel()

	s, err := NewFSScope(appctx.Scope{}, lookupFrom(nil))
	if err != nil {
		t.Fatalf("NewFSScope() error = %v", err)
	}
	if err := s.Allow("/a/[unterminated"); err == nil {
		t.Error("Allow() with an unterminated bracket should fail")
	}
	if len(s.Allowed()) != 0 {
		t.Errorf("Allowed() = %v after failed Allow", s.Allowed())
	}
}

func TestFSScope_InvalidPatternKeepsExistingRules(t *testing.T) {
	t.Parallel()

	s, err := NewFSScope(appctx.Scope{
		Allow: []string{"/home/u/**"},
		Deny:  []string{"/home/u/private/**"},
	}, lookupFrom(nil))
	if err != nil {
		t.Fatalf("NewFSScope() error = %v", err)
	}
	changes := 0
	s.OnChange(func(ScopeChange) { changes++ })

	if s.IsAllowed("/home/u/private/key") {
		t.Fatal("IsAllowed(/home/u/private/key) = true before the failed batch")
	}
	if err := s.Forbid("/home/u/secret", "["); err == nil {
		t.Fatal("Forbid() with an invalid pattern in the batch should fail")
	}
	if err := s.Allow("/tmp/**", "/var/[x"); err == nil {
		t.Fatal("Allow() with an invalid pattern in the batch should fail")
	}

	if got, want := s.Forbidden(), []string{"/home/u/private/**"}; !slices.Equal(got, want) {
		t.Errorf("Forbidden() = %v, want %v", got, want)
	}
	if got, want := s.Allowed(), []string{"/home/u/**"}; !slices.Equal(got, want) {
		t.Errorf("Allowed() = %v, want %v", got, want)
	}
	if s.IsAllowed("/home/u/private/key") {
		t.Error("deny rule lost after a failed Forbid batch")
	}
	if !s.IsAllowed("/home/u/secret") {
		t.Error("valid half of a failed Forbid batch was applied")
	}
	if s.IsAllowed("/tmp/a") {
		t.Error("valid half of a failed Allow batch was applied")
	}
	if changes != 0 {
		t.Errorf("OnChange fired %d times for failed batches", changes)
	}
}
