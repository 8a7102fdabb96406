// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/asdf-gui/asdf-gui/internal/plugins/store"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

func newStoreCommand(app *App) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Read key-value stores kept by the shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var format string
	dump := &cobra.Command{
		Use:   "dump NAME",
		Short: "Print the contents of a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			static, err := app.loadContext()
			if err != nil {
				return err
			}
			name := args[0]
			names := static.Plugins.KeyValueStore.Stores
			if len(names) == 0 {
				names = []string{store.DefaultStore}
			}
			if !slices.Contains(names, name) {
				return fmt.Errorf("%w: %q (configured: %v)", store.ErrUnknownStore, name, names)
			}
			dir, err := app.dataDir(cmd.Context(), static)
			if err != nil {
				return err
			}
			data, err := store.ReadFile(filepath.Join(dir, name+".json"))
			if err != nil {
				return err
			}

			out, err := encodeStore(data, format)
			if err != nil {
				return err
			}
			_, err = app.stdout.Write(out)
			return err
		},
	}
	dump.Flags().StringVar(&format, "format", "json", "output format: json or toml")

	storeCmd.AddCommand(dump)
	return storeCmd
}

// encodeStore renders a store document. TOML has no null, so null values
// are omitted from TOML output.
func encodeStore(data map[string]json.RawMessage, format string) ([]byte, error) {
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	switch format {
	case "json":
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case "toml":
		doc := make(map[string]any, len(data))
		for k, raw := range data {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("decode %q: %w", k, err)
			}
			if v != nil {
				doc[k] = dropNulls(v)
			}
		}
		return toml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unknown format %q (want json or toml)", format)
	}
}

func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			if e == nil {
				delete(t, k)
				continue
			}
			t[k] = dropNulls(e)
		}
	case []any:
		out := t[:0]
		for _, e := range t {
			if e != nil {
				out = append(out, dropNulls(e))
			}
		}
		return out
	}
	return v
}
