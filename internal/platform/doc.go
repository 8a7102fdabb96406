// SPDX-License-Identifier: MPL-2.0

// Package platform holds what differs between desktop platforms: per-user
// config and data directories, and which file names are portable.
package platform
