// SPDX-License-Identifier: MPL-2.0

package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/asdf-gui/asdf-gui/internal/fileutil"
)

const filePerm = 0o600

type (
	// Store is one named key-value document backed by <dataDir>/<name>.json.
	Store struct {
		name string
		path string

		mu    sync.Mutex
		data  map[string]json.RawMessage
		dirty bool

		// onChange runs without the lock after every mutation.
		onChange func()
	}

	// Entry is a key and its JSON value.
	Entry struct {
		Key   string          `json:"key"`
		Value json.RawMessage `json:"value"`
	}
)

// Open loads the store at path. A missing file yields an empty store.
func Open(name, path string) (*Store, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = make(map[string]json.RawMessage)
	}
	return &Store{name: name, path: path, data: data}, nil
}

// ReadFile decodes a store file. It returns nil and no error when the file
// does not exist.
func ReadFile(path string) (map[string]json.RawMessage, error) {
	raw, err := fileutil.ReadFileIfExists(path)
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", path, err)
	}
	if raw == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", path, err)
	}
	return data, nil
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Get returns the value for key.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return slices.Clone(v), ok
}

// Has reports whether key is set.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// Set stores value under key. value must be valid JSON.
func (s *Store) Set(key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, value); err != nil {
		return err
	}
	s.mutate(func() bool {
		s.data[key] = compact.Bytes()
		return true
	})
	return nil
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	var existed bool
	s.mutate(func() bool {
		_, existed = s.data[key]
		delete(s.data, key)
		return existed
	})
	return existed
}

// Clear removes every key.
func (s *Store) Clear() {
	s.mutate(func() bool {
		if len(s.data) == 0 {
			return false
		}
		clear(s.data)
		return true
	})
}

// Keys returns the keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.data))
}

// Entries returns every entry sorted by key.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.data))
	for _, k := range slices.Sorted(maps.Keys(s.data)) {
		entries = append(entries, Entry{Key: k, Value: slices.Clone(s.data[k])})
	}
	return entries
}

// Len returns the number of keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Dirty reports whether there are unsaved changes.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Save writes the store to disk if it has unsaved changes.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store %s: %w", s.name, err)
	}
	if err := fileutil.WriteFile(s.path, append(raw, '\n'), filePerm); err != nil {
		return fmt.Errorf("save store %s: %w", s.name, err)
	}
	s.dirty = false
	return nil
}

func (s *Store) mutate(fn func() (changed bool)) {
	s.mu.Lock()
	changed := fn()
	if changed {
		s.dirty = true
	}
	notify := s.onChange
	s.mu.Unlock()

	if changed && notify != nil {
		notify()
	}
}
