// SPDX-License-Identifier: MPL-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/asdf-gui/asdf-gui/internal/shell"
)

// ErrUnknownStore is returned for commands naming an unconfigured store.
var ErrUnknownStore = errors.New("unknown store")

type command struct {
	name    string
	handler shell.CommandHandler
}

func (p *Plugin) commands() []command {
	return []command{
		{"clear", p.withStore(func(s *Store, _ Request) (any, error) {
			s.Clear()
			return nil, nil
		})},
		{"delete", p.withKey(func(s *Store, req Request) (any, error) {
			return s.Delete(req.Key), nil
		})},
		{"entries", p.withStore(func(s *Store, _ Request) (any, error) {
			return s.Entries(), nil
		})},
		{"get", p.withKey(func(s *Store, req Request) (any, error) {
			v, ok := s.Get(req.Key)
			if !ok {
				v = json.RawMessage("null")
			}
			return GetReply{Value: v, Exists: ok}, nil
		})},
		{"has", p.withKey(func(s *Store, req Request) (any, error) {
			return s.Has(req.Key), nil
		})},
		{"keys", p.withStore(func(s *Store, _ Request) (any, error) {
			return s.Keys(), nil
		})},
		{"length", p.withStore(func(s *Store, _ Request) (any, error) {
			return s.Len(), nil
		})},
		{"save", p.withStore(func(s *Store, _ Request) (any, error) {
			return nil, s.Save()
		})},
		{"set", p.withKey(func(s *Store, req Request) (any, error) {
			if len(req.Value) == 0 {
				return nil, errors.New("value is required")
			}
			return nil, s.Set(req.Key, req.Value)
		})},
	}
}

func (p *Plugin) withStore(fn func(*Store, Request) (any, error)) shell.CommandHandler {
	return func(_ context.Context, payload json.RawMessage) (any, error) {
		req, err := shell.DecodePayload[Request](payload)
		if err != nil {
			return nil, err
		}
		s, ok := p.stores[req.Store]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStore, req.Store)
		}
		return fn(s, req)
	}
}

func (p *Plugin) withKey(fn func(*Store, Request) (any, error)) shell.CommandHandler {
	return p.withStore(func(s *Store, req Request) (any, error) {
		if req.Key == "" {
			return nil, errors.New("key is required")
		}
		return fn(s, req)
	})
}
