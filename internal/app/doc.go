// SPDX-License-Identifier: MPL-2.0

// Package app is the composition root. Main normalizes the process
// environment, composes the capability plugins in a fixed order, loads the
// static context, finalizes the shell and runs its event loop, mapping the
// outcome to a process exit code.
//
// Startup is all-or-nothing: any failure before the event loop runs is
// fatal, reported once on stderr with remediation guidance, and exits 1.
package app
