package mcp

import (
	"github.com/custodia-labs/scheme-research/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Retrieval is the shared question answering session.
	Retrieval driving.RetrievalService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
