// SPDX-License-Identifier: MPL-2.0

// Package testutil holds helpers shared by the test suites: environment
// and home directory overrides, polling for asynchronous effects and a
// manually driven clock for debounce timers.
package testutil
