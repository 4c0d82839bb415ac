// Package agrovoc is the upstream adapter for the FAO AGROVOC thesaurus.
//
// Concepts are fetched from the Skosmos REST API as JSON-LD:
//
//	GET {base}/data/?uri={concept-uri}&format=application/ld+json
//
// The response "graph" holds the requested concept node and nodes for its
// neighbours, so broader labels come from the same document.
package agrovoc
