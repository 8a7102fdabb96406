// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles CUE documents against embedded schemas.
//
// Both the packaged static context and the optional user config go through
// the same three steps: compile the schema, unify the document with the
// schema's root definition, then validate and decode.
//
//	//go:embed context_schema.cue
//	var schema []byte
//
//	res, err := cueutil.Decode[Context](schema, data, "#Context",
//	    cueutil.WithFilename("context.cue"))
package cueutil
