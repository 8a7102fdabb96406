// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Window: {
	label:  string & =~"^[a-z][a-z0-9-]*$"
	width?: int & >0
}
`

type testWindow struct {
	Label string `json:"label"`
	Width int    `json:"width,omitempty"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		opts      []Option
		wantLabel string
		wantErr   string
	}{
		{
			name:      "valid document",
			data:      `label: "main", width: 800`,
			wantLabel: "main",
		},
		{
			name:      "optional field omitted",
			data:      `label: "settings"`,
			wantLabel: "settings",
		},
		{
			name:    "constraint violation names the field",
			data:    `label: "Main"`,
			opts:    []Option{WithFilename("context.cue")},
			wantErr: "context.cue: label",
		},
		{
			name:    "syntax error",
			data:    `label: "main`,
			opts:    []Option{WithFilename("broken.cue")},
			wantErr: "broken.cue",
		},
		{
			name:    "size limit",
			data:    `label: "main"`,
			opts:    []Option{WithMaxFileSize(4), WithFilename("big.cue")},
			wantErr: "exceeds maximum 4 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := Decode[testWindow]([]byte(testSchema), []byte(tt.data), "#Window", tt.opts...)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if res.Value.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", res.Value.Label, tt.wantLabel)
			}
		})
	}
}

func TestUnify_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := Unify([]byte(testSchema), []byte(`label: "main"`), "#Nope")
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"identifier"}, "identifier"},
		{[]string{"windows", "0", "label"}, "windows[0].label"},
		{[]string{"security", "fs_scope", "allow", "2"}, "security.fs_scope.allow[2]"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.in); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
