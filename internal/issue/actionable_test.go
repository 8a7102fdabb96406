// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "start event loop"},
			want: "failed to start event loop",
		},
		{
			name: "operation and resource",
			err:  &ActionableError{Operation: "initialize plugin", Resource: "key-value-store"},
			want: "failed to initialize plugin: key-value-store",
		},
		{
			name: "full",
			err: &ActionableError{
				Operation: "initialize plugin",
				Resource:  "key-value-store",
				Cause:     errors.New("permission denied"),
			},
			want: "failed to initialize plugin: key-value-store: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("load static context").
		Wrap(fs.ErrNotExist).
		BuildError()

	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("errors.Is(%v, fs.ErrNotExist) = false", err)
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("open settings.json: permission denied")
	err := NewErrorContext().
		WithOperation("initialize plugin").
		WithResource("key-value-store").
		WithSuggestion("Check that the data directory is writable").
		WithIssue(PluginInitFailedId).
		Wrap(&wrapped{inner}).
		Build()

	plain := err.Format(false)
	if !strings.Contains(plain, "  • Check that the data directory is writable") {
		t.Errorf("Format(false) missing suggestion:\n%s", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Errorf("Format(false) should not include the chain:\n%s", plain)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "2. open settings.json: permission denied") {
		t.Errorf("Format(true) missing chain entry:\n%s", verbose)
	}
	if err.IssueID != PluginInitFailedId {
		t.Errorf("IssueID = %d, want %d", err.IssueID, PluginInitFailedId)
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	if ae := NewErrorContext().WithResource("x").Build(); ae != nil {
		t.Errorf("Build() = %v, want nil", ae)
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want nil", err)
	}
}

func TestErrorContext_BuildCopiesSuggestions(t *testing.T) {
	t.Parallel()

	ec := NewErrorContext().WithOperation("load config").WithSuggestion("first")
	ae := ec.Build()
	ec.WithSuggestion("second")

	if len(ae.Suggestions) != 1 {
		t.Errorf("Suggestions = %v, want only the hint added before Build", ae.Suggestions)
	}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "store: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }
