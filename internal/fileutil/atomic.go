// SPDX-License-Identifier: MPL-2.0

// Package fileutil holds small filesystem helpers shared by plugins that
// persist state under the application data directory.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirPerm is used when creating the data directory.
const DirPerm = 0o700

// WriteFile replaces path with data. The bytes go to a temp file in the
// same directory first, so readers never observe a partially written file
// and the final rename stays on one filesystem.
func WriteFile(path string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if writeErr := func() (writeErr error) {
		defer func() {
			if closeErr := tmp.Close(); closeErr != nil && writeErr == nil {
				writeErr = closeErr
			}
		}()
		if _, writeErr = tmp.Write(data); writeErr != nil {
			return writeErr
		}
		return tmp.Sync()
	}(); writeErr != nil {
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}

	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	renamed = true
	return nil
}

// ReadFileIfExists returns the contents of path, or nil and no error when
// the file does not exist.
func ReadFileIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}
