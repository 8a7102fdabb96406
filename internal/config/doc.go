// SPDX-License-Identifier: MPL-2.0

// Package config loads the optional per-user settings of the desktop shell
// using Viper with CUE as the file format.
//
// The file is config.cue in the platform config directory
// (~/.config/asdf-gui on Linux, ~/Library/Application Support/asdf-gui on
// macOS, %APPDATA%\asdf-gui on Windows). It is validated against the
// embedded config_schema.cue. ASDF_GUI_* environment variables override
// file values, for example ASDF_GUI_LOG_LEVEL=debug.
//
// These settings tune ambient behaviour only (logging, data location, the
// PATH fixup). Windows, identifiers and permissions come from the packaged
// static context and cannot be changed here.
package config
