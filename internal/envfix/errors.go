// SPDX-License-Identifier: MPL-2.0

package envfix

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDelimitedOutput means the login shell output did not contain the
	// delimited env dump (the profile probably exited early).
	ErrNoDelimitedOutput = errors.New("shell output has no delimited environment")
	// ErrNoPath means the login shell environment has no PATH.
	ErrNoPath = errors.New("login shell environment has no PATH")
)

// FixupError reports a failed normalization. It is never fatal.
type FixupError struct {
	// Op is the step that failed: "query shell", "parse shell output",
	// "set PATH".
	Op    string
	Shell string
	Err   error
}

func (e *FixupError) Error() string {
	if e.Shell != "" {
		return fmt.Sprintf("environment fixup: %s (%s): %v", e.Op, e.Shell, e.Err)
	}
	return fmt.Sprintf("environment fixup: %s: %v", e.Op, e.Err)
}

func (e *FixupError) Unwrap() error { return e.Err }
