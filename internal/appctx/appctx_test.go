// SPDX-License-Identifier: MPL-2.0

package appctx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Packaged(t *testing.T) {
	t.Parallel()

	ctx, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if ctx.Identifier != "io.github.asdf-gui" {
		t.Errorf("Identifier = %q", ctx.Identifier)
	}
	main, ok := ctx.Window("main")
	if !ok {
		t.Fatal("main window not declared")
	}
	if main.URL != "index.html" {
		t.Errorf("default url = %q, want index.html", main.URL)
	}
	if !main.Resizable || main.Fullscreen {
		t.Errorf("window defaults not applied: %+v", main)
	}
	if ctx.Plugins.PersistedScope.File != ".persisted-scope" {
		t.Errorf("persisted-scope file = %q", ctx.Plugins.PersistedScope.File)
	}
	if got := ctx.Plugins.KeyValueStore.Autosave(); got != 200*time.Millisecond {
		t.Errorf("Autosave() = %v", got)
	}
	if len(ctx.SearchPath.Extra) == 0 {
		t.Error("expected search path extras")
	}
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	doc := `
identifier:   "org.example.app"
product_name: "Example"
version:      "1.2.3"
windows: [{label: "main", title: "Example"}]
security: fs_scope: {}
search_path: {}
plugins: {
	"persisted-scope": {}
	"key-value-store": {}
}
`
	ctx, err := Parse([]byte(doc), "minimal.cue")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if w := ctx.Windows[0]; w.Width != 800 || w.Height != 600 {
		t.Errorf("window size defaults = %dx%d", w.Width, w.Height)
	}
	if got := ctx.Plugins.KeyValueStore.Stores; len(got) != 1 || got[0] != "settings" {
		t.Errorf("stores default = %v", got)
	}
	if ctx.Plugins.KeyValueStore.Autosave() != 0 {
		t.Error("autosave should default to disabled")
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	base := `
identifier:   "org.example.app"
product_name: "Example"
version:      "1.2.3"
security: fs_scope: {}
search_path: {}
plugins: {
	"persisted-scope": {}
	"key-value-store": {}
}
`
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "no windows",
			doc:     base + `windows: []`,
			wantErr: "windows",
		},
		{
			name:    "bad label",
			doc:     base + `windows: [{label: "Main Window", title: "x"}]`,
			wantErr: "windows[0].label",
		},
		{
			name:    "duplicate labels",
			doc:     base + `windows: [{label: "main", title: "a"}, {label: "main", title: "b"}]`,
			wantErr: `duplicate label "main"`,
		},
		{
			name:    "unknown field",
			doc:     base + `windows: [{label: "main", title: "a"}]` + "\ntheme: \"dark\"",
			wantErr: "theme",
		},
		{
			name:    "syntax",
			doc:     `identifier: "x`,
			wantErr: "bad.cue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.doc), "bad.cue")
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "context.cue")
	if err := os.WriteFile(path, Packaged(), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.cue")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
