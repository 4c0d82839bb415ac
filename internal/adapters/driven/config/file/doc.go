// Package file provides the TOML file implementation of driven.ConfigStore.
//
// The file is optional: a missing file yields domain.DefaultSettings().
// Values present in the file override the defaults field by field, and the
// root mapping tables extend the built-in table unless replace is set.
//
//	[cache]
//	backend = "file"
//	dir = "~/.cache/tingbok/skos"
//	ttl = "1440h"
//	negative_ttl = "168h"
//
//	[sources.wikidata]
//	requests_per_second = 5
//	timeout = "15s"
//
//	[root_mapping.label.agrovoc]
//	"plant products" = "food"
package file
