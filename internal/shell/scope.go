// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/asdf-gui/asdf-gui/internal/appctx"

	"mvdan.cc/sh/v3/pattern"
	"mvdan.cc/sh/v3/shell"
)

type (
	// FSScope is the set of filesystem paths the frontend may touch.
	// Patterns are shell globs where * and ? stop at slashes and a **
	// path element crosses directories. A forbidden match always wins.
	FSScope struct {
		mu        sync.RWMutex
		allowed   []scopePattern
		forbidden []scopePattern
		listeners []func(ScopeChange)
	}

	// ScopeChange is delivered to OnChange listeners after a mutation.
	ScopeChange struct {
		Forbidden bool
		Patterns  []string
	}

	scopePattern struct {
		raw string
		re  *regexp.Regexp
	}
)

// NewFSScope builds a scope from static grants. $VARS in patterns are
// expanded with lookup.
func NewFSScope(grants appctx.Scope, lookup func(string) string) (*FSScope, error) {
	s := &FSScope{}

	allow, err := expandPatterns(grants.Allow, lookup)
	if err != nil {
		return nil, err
	}
	deny, err := expandPatterns(grants.Deny, lookup)
	if err != nil {
		return nil, err
	}

	if s.allowed, err = appendPatterns(nil, allow); err != nil {
		return nil, err
	}
	if s.forbidden, err = appendPatterns(nil, deny); err != nil {
		return nil, err
	}
	return s, nil
}

func expandPatterns(patterns []string, lookup func(string) string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		expanded, err := shell.Expand(p, lookup)
		if err != nil {
			return nil, fmt.Errorf("expand scope pattern %q: %w", p, err)
		}
		out = append(out, expanded)
	}
	return out, nil
}

func compilePattern(raw string) (scopePattern, error) {
	norm := filepath.ToSlash(raw)
	expr, err := pattern.Regexp(norm, pattern.Filenames|pattern.EntireString)
	if err != nil {
		return scopePattern{}, fmt.Errorf("invalid scope pattern %q: %w", raw, err)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return scopePattern{}, fmt.Errorf("invalid scope pattern %q: %w", raw, err)
	}
	return scopePattern{raw: norm, re: re}, nil
}

// appendPatterns compiles every raw pattern before touching dst. On error
// dst is returned unchanged, so a bad pattern in a batch adds nothing.
func appendPatterns(dst []scopePattern, raws []string) ([]scopePattern, error) {
	compiled := make([]scopePattern, 0, len(raws))
	for _, raw := range raws {
		p, err := compilePattern(raw)
		if err != nil {
			return dst, err
		}
		compiled = append(compiled, p)
	}

	out := slices.Clip(dst)
	for _, p := range compiled {
		if slices.ContainsFunc(out, func(q scopePattern) bool { return q.raw == p.raw }) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Allow adds glob patterns to the allow list.
func (s *FSScope) Allow(patterns ...string) error {
	return s.add(false, patterns)
}

// Forbid adds glob patterns to the deny list.
func (s *FSScope) Forbid(patterns ...string) error {
	return s.add(true, patterns)
}

// AllowDirectory allows dir's children, or its whole tree when recursive.
func (s *FSScope) AllowDirectory(dir string, recursive bool) error {
	return s.Allow(directoryPattern(dir, recursive))
}

// ForbidDirectory is the deny-list counterpart of AllowDirectory.
func (s *FSScope) ForbidDirectory(dir string, recursive bool) error {
	return s.Forbid(directoryPattern(dir, recursive))
}

func directoryPattern(dir string, recursive bool) string {
	dir = strings.TrimSuffix(filepath.ToSlash(filepath.Clean(dir)), "/")
	quoted := pattern.QuoteMeta(dir, pattern.Filenames)
	if recursive {
		return quoted + "/**"
	}
	return quoted + "/*"
}

func (s *FSScope) add(forbid bool, raws []string) error {
	if len(raws) == 0 {
		return nil
	}

	s.mu.Lock()
	var added []string
	list := &s.allowed
	if forbid {
		list = &s.forbidden
	}
	before := len(*list)
	next, err := appendPatterns(*list, raws)
	if err == nil {
		*list = next
		added = rawPatterns(next[before:])
	}
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if len(added) == 0 {
		return nil
	}
	for _, fn := range listeners {
		fn(ScopeChange{Forbidden: forbid, Patterns: added})
	}
	return nil
}

// IsAllowed reports whether path matches an allow pattern and no deny
// pattern.
func (s *FSScope) IsAllowed(path string) bool {
	p := filepath.ToSlash(filepath.Clean(path))

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.forbidden {
		if f.re.MatchString(p) {
			return false
		}
	}
	for _, a := range s.allowed {
		if a.re.MatchString(p) {
			return true
		}
	}
	return false
}

// Allowed returns the allow patterns in insertion order.
func (s *FSScope) Allowed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rawPatterns(s.allowed)
}

// Forbidden returns the deny patterns in insertion order.
func (s *FSScope) Forbidden() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rawPatterns(s.forbidden)
}

// OnChange registers fn to run after every mutation that added patterns.
// fn runs on the mutating goroutine without the scope lock held.
func (s *FSScope) OnChange(fn func(ScopeChange)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func rawPatterns(ps []scopePattern) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.raw
	}
	return out
}
