// Package connectors provides the upstream adapters, one per SKOS source.
// Each adapter knows how to fetch and normalise concepts from a specific
// source (AGROVOC, DBpedia, Wikidata).
//
// Adapters are built from settings by NewUpstreams at startup.
package connectors
