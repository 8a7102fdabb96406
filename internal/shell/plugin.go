// SPDX-License-Identifier: MPL-2.0

package shell

import "context"

// CapabilityID names the single capability a plugin provides, for example
// "persisted-scope" or "key-value-store". It is unique within a Builder.
type CapabilityID string

type (
	// Plugin extends the shell with one capability. Initialize is called
	// exactly once while the Builder is finalized, in registration order.
	// Plugins may register command handlers through the Builder.
	Plugin interface {
		Capability() CapabilityID
		Initialize(ctx context.Context, b *Builder) error
	}

	// Shutdowner is implemented by plugins holding resources. Shutdown runs
	// when the event loop exits, or when a later plugin fails to initialize.
	Shutdowner interface {
		Shutdown(ctx context.Context) error
	}

	funcPlugin struct {
		id   CapabilityID
		init func(context.Context, *Builder) error
	}
)

// NewPlugin adapts a function into a Plugin.
func NewPlugin(id CapabilityID, init func(context.Context, *Builder) error) Plugin {
	return &funcPlugin{id: id, init: init}
}

func (p *funcPlugin) Capability() CapabilityID { return p.id }

func (p *funcPlugin) Initialize(ctx context.Context, b *Builder) error {
	if p.init == nil {
		return nil
	}
	return p.init(ctx, b)
}
