// Package wikidata is the upstream adapter for Wikidata items.
//
// Entities are read through the MediaWiki Action API (wbgetentities). Broader
// concepts are the values of "subclass of" (P279) claims, in claim order; their
// labels are fetched with one follow-up request.
package wikidata
