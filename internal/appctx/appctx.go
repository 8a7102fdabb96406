// SPDX-License-Identifier: MPL-2.0

// Package appctx holds the static context packaged with the application:
// identifier, window definitions, filesystem grants and plugin settings.
//
// The context is a CUE document embedded at build time and validated
// against an embedded schema. It is read-only for the life of the process.
package appctx

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/asdf-gui/asdf-gui/internal/cueutil"
)

// DefaultFilename names the embedded document in error messages.
const DefaultFilename = "context.cue"

var (
	//go:embed context_schema.cue
	schema []byte

	//go:embed context.cue
	packaged []byte
)

type (
	// Context is the decoded static context.
	Context struct {
		Identifier  string     `json:"identifier"`
		ProductName string     `json:"product_name"`
		Version     string     `json:"version"`
		Windows     []Window   `json:"windows"`
		Security    Security   `json:"security"`
		SearchPath  SearchPath `json:"search_path"`
		Plugins     Plugins    `json:"plugins"`
	}

	// Window describes one window opened when the event loop starts.
	Window struct {
		Label      string `json:"label"`
		Title      string `json:"title"`
		URL        string `json:"url"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		Resizable  bool   `json:"resizable"`
		Fullscreen bool   `json:"fullscreen"`
	}

	// Security holds permission grants.
	Security struct {
		FSScope Scope `json:"fs_scope"`
	}

	// Scope lists glob patterns. Variables such as $HOME and $APPDATA are
	// expanded when the scope is built.
	Scope struct {
		Allow []string `json:"allow"`
		Deny  []string `json:"deny"`
	}

	// SearchPath lists directories appended to PATH by the normalizer.
	SearchPath struct {
		Extra []string `json:"extra"`
	}

	// Plugins holds per-capability settings.
	Plugins struct {
		PersistedScope PersistedScopeSettings `json:"persisted-scope"`
		KeyValueStore  KeyValueStoreSettings  `json:"key-value-store"`
	}

	// PersistedScopeSettings configures the persisted-scope plugin.
	PersistedScopeSettings struct {
		File string `json:"file"`
	}

	// KeyValueStoreSettings configures the key-value-store plugin.
	KeyValueStoreSettings struct {
		Stores     []string `json:"stores"`
		AutosaveMS int      `json:"autosave_ms"`
	}

	// Loader produces the static context. The runner calls it once.
	Loader func() (*Context, error)
)

// Autosave returns the debounce delay for store autosave, zero when disabled.
func (s KeyValueStoreSettings) Autosave() time.Duration {
	return time.Duration(s.AutosaveMS) * time.Millisecond
}

// Window returns the window with label, if declared.
func (c *Context) Window(label string) (Window, bool) {
	for _, w := range c.Windows {
		if w.Label == label {
			return w, true
		}
	}
	return Window{}, false
}

// Packaged returns the raw embedded document.
func Packaged() []byte {
	return packaged
}

// Load decodes the embedded context.
func Load() (*Context, error) {
	return Parse(packaged, DefaultFilename)
}

// LoadFile decodes a context document from disk. Used by tooling to
// validate a document before it is embedded.
func LoadFile(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read context: %w", err)
	}
	return Parse(data, path)
}

// Parse validates data against the schema and decodes it.
func Parse(data []byte, filename string) (*Context, error) {
	res, err := cueutil.Decode[Context](schema, data, "#Context", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	if err := validate(res.Value); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return res.Value, nil
}

// validate checks constraints the schema cannot express.
func validate(c *Context) error {
	seen := make(map[string]int, len(c.Windows))
	for i, w := range c.Windows {
		if first, ok := seen[w.Label]; ok {
			return fmt.Errorf("windows[%d]: duplicate label %q (same as windows[%d])", i, w.Label, first)
		}
		seen[w.Label] = i
	}

	stores := make(map[string]struct{}, len(c.Plugins.KeyValueStore.Stores))
	for i, name := range c.Plugins.KeyValueStore.Stores {
		if _, ok := stores[name]; ok {
			return fmt.Errorf("plugins.key-value-store.stores[%d]: duplicate store %q", i, name)
		}
		stores[name] = struct{}{}
	}
	return nil
}
