// Package tools defines the shared [Tool] type used by all built-in tool
// packages in ToonForge. Each sub-package exports a constructor function that
// returns a slice of [Tool] values ready for registration with the MCP server.
package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// Definition is a tool's caller-facing schema: its name, description, and
// JSON Schema input specification.
type Definition struct {
	// Name is the tool's unique identifier.
	Name string

	// Description explains what the tool does (shown to the calling host).
	Description string

	// InputSchema is the JSON Schema describing the tool's arguments.
	InputSchema *jsonschema.Schema
}

// Tool represents a built-in tool ready for registration with the MCP server.
//
// Handler is the tool boundary: a total function that always returns an
// envelope (or its TOON text form when the response formatter is enabled).
// Validation failures, resource errors, and unexpected faults are all folded
// into error envelopes; the error return is reserved for representation
// failures that make even the envelope unprintable. Implementations must be
// safe for concurrent use and must respect context cancellation.
type Tool struct {
	// Definition is the tool's caller-facing schema.
	Definition Definition

	// Handler executes the tool with JSON-encoded args. The result is either
	// a structured envelope or a TOON-encoded string, depending on the
	// response formatter configuration.
	Handler func(ctx context.Context, args string) (any, error)
}
