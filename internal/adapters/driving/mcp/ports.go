package mcp

import (
	"github.com/tingbok/tingbok/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Resolver resolves concepts and labels.
	Resolver driving.ResolverService

	// Hierarchy builds hierarchy paths. Optional.
	Hierarchy driving.HierarchyService

	// Stats reports cache statistics. Optional.
	Stats driving.CacheStatsService

	// Vocabulary serves the package vocabulary. Optional.
	Vocabulary driving.VocabularyService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Resolver == nil {
		return ErrMissingResolver
	}
	return nil
}
