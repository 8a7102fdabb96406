// SPDX-License-Identifier: MPL-2.0

// Package issue turns startup failures into operator-facing diagnostics.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The catalog maps each fatal failure kind to Markdown
// guidance that is rendered with glamour beneath the error line.
package issue
