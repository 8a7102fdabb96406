// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// GOOS values the desktop shell distinguishes.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// Dirs resolves per-user directories for one application. Getenv and Home
// default to the process environment; tests replace them.
type Dirs struct {
	GOOS   string
	Getenv func(string) string
	Home   func() (string, error)
}

// HostDirs returns Dirs for the running process.
func HostDirs() Dirs {
	return Dirs{GOOS: runtime.GOOS, Getenv: os.Getenv, Home: os.UserHomeDir}
}

// ConfigDir returns the configuration directory for name:
// %APPDATA%\name on Windows, ~/Library/Application Support/name on macOS and
// $XDG_CONFIG_HOME/name (default ~/.config/name) elsewhere.
func (d Dirs) ConfigDir(name string) (string, error) {
	base, err := d.configBase()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, name), nil
}

// DataDir returns the data directory for name. Only Linux distinguishes it
// from the config directory ($XDG_DATA_HOME, default ~/.local/share).
func (d Dirs) DataDir(name string) (string, error) {
	if d.goos() != Linux {
		return d.ConfigDir(name)
	}
	if dir := d.getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, name), nil
	}
	home, err := d.home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", name), nil
}

func (d Dirs) configBase() (string, error) {
	switch d.goos() {
	case Windows:
		if dir := d.getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		profile := d.getenv("USERPROFILE")
		if profile == "" {
			return "", errors.New("neither APPDATA nor USERPROFILE is set")
		}
		return filepath.Join(profile, "AppData", "Roaming"), nil
	case Darwin:
		home, err := d.home()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if dir := d.getenv("XDG_CONFIG_HOME"); dir != "" {
			return dir, nil
		}
		home, err := d.home()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config"), nil
	}
}

func (d Dirs) goos() string {
	if d.GOOS == "" {
		return runtime.GOOS
	}
	return d.GOOS
}

func (d Dirs) getenv(key string) string {
	if d.Getenv == nil {
		return os.Getenv(key)
	}
	return d.Getenv(key)
}

func (d Dirs) home() (string, error) {
	get := d.Home
	if get == nil {
		get = os.UserHomeDir
	}
	home, err := get()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return home, nil
}
