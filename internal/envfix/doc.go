// SPDX-License-Identifier: MPL-2.0

// Package envfix repairs PATH for processes launched outside a terminal.
//
// Desktop launchers (Finder, Dock, application menus) start the process
// without sourcing the user's shell profile, so directories such as
// ~/.asdf/shims are missing from PATH. Normalize asks the user's login shell
// for its environment and merges that shell's PATH into the process. Only
// PATH is ever written.
//
// The fixup is best effort. Callers log the returned *FixupError and carry
// on with the environment they were started with.
package envfix
