// Package mcp provides an MCP (Model Context Protocol) server adapter for tingbok.
// It lets AI assistants resolve concepts, labels and category paths.
package mcp

import "errors"

// ErrMissingResolver is returned when the resolver service is not provided.
var ErrMissingResolver = errors.New("mcp: resolver service is required")
