// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"encoding/json"
	"strings"
)

// commandPrefix marks commands contributed by plugins.
const commandPrefix = "plugin:"

// CommandHandler serves one plugin command. It runs on the event loop
// goroutine; the returned value is encoded as the JSON reply.
type CommandHandler func(ctx context.Context, payload json.RawMessage) (any, error)

// CommandName returns the dispatch name of a plugin command, for example
// "plugin:key-value-store|get".
func CommandName(capability CapabilityID, command string) string {
	return commandPrefix + string(capability) + "|" + command
}

// ParseCommandName splits a dispatch name into capability and command.
func ParseCommandName(name string) (CapabilityID, string, bool) {
	rest, ok := strings.CutPrefix(name, commandPrefix)
	if !ok {
		return "", "", false
	}
	capability, command, ok := strings.Cut(rest, "|")
	if !ok || capability == "" || command == "" {
		return "", "", false
	}
	return CapabilityID(capability), command, true
}

// DecodePayload unmarshals a command payload into T. An empty payload
// yields the zero value.
func DecodePayload[T any](payload json.RawMessage) (T, error) {
	var v T
	if len(payload) == 0 {
		return v, nil
	}
	err := json.Unmarshal(payload, &v)
	return v, err
}
