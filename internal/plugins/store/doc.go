// SPDX-License-Identifier: MPL-2.0

// Package store provides the key-value-store capability: named JSON
// documents under the application data directory, one file per store,
// exposed to the frontend through plugin commands.
//
// Mutations are held in memory and written on the save command, at
// shutdown, and after a quiet period when autosave is configured.
package store
