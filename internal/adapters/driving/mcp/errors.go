// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants ingest pages into the session index and ask
// questions against it.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
