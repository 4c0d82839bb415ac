package rest

import (
	"github.com/tingbok/tingbok/internal/core/ports/driving"
)

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// Resolver serves concepts and labels.
	Resolver driving.ResolverService

	// Hierarchy builds hierarchy paths. Optional.
	Hierarchy driving.HierarchyService

	// Stats reports cache statistics. Optional.
	Stats driving.CacheStatsService

	// Vocabulary serves the package vocabulary. Optional.
	Vocabulary driving.VocabularyService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Resolver == nil {
		return ErrMissingResolver
	}
	return nil
}
