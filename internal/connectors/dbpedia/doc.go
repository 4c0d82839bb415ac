// Package dbpedia is the upstream adapter for DBpedia resources.
//
// Resources are read from the linked-data JSON export, {base}/data/{Local}.json,
// which maps subject URIs to predicate URIs to lists of RDF terms. Broader
// concepts come from skos:broader, falling back to dbo:broader.
package dbpedia
