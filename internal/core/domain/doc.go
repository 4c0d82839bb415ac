// Package domain defines the core business entities for tingbok.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: an upstream knowledge base (agrovoc, dbpedia, wikidata)
//   - Concept: the canonical normalised SKOS concept
//   - CachedEntry: a cache record keyed by source, URI and kind
//   - HierarchyPath: a label-resolved walk from a concept to its root
//   - RootMapping: static near-root to canonical category configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
