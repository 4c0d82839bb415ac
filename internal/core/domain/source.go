package domain

import (
	"net/url"
	"strings"
)

// Source identifies an upstream knowledge base.
// The identifiers are part of the on-disk cache format and must not change.
type Source string

// Supported sources.
const (
	// SourceAgrovoc is the FAO AGROVOC thesaurus served through Skosmos.
	SourceAgrovoc Source = "agrovoc"

	// SourceDBpedia is the DBpedia linked-data service.
	SourceDBpedia Source = "dbpedia"

	// SourceWikidata is the Wikidata structured knowledge base.
	SourceWikidata Source = "wikidata"
)

// AllSources returns the supported sources in a stable order.
func AllSources() []Source {
	return []Source{SourceAgrovoc, SourceDBpedia, SourceWikidata}
}

// IsValid returns true if the source is recognised.
func (s Source) IsValid() bool {
	switch s {
	case SourceAgrovoc, SourceDBpedia, SourceWikidata:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Source) String() string {
	return string(s)
}

// Description returns a human-readable description of the source.
func (s Source) Description() string {
	switch s {
	case SourceAgrovoc:
		return "AGROVOC thesaurus (Skosmos REST)"
	case SourceDBpedia:
		return "DBpedia linked data"
	case SourceWikidata:
		return "Wikidata knowledge base"
	default:
		return "Unknown"
	}
}

// uriPrefixes maps URI namespaces (without scheme) to their owning source.
var uriPrefixes = []struct {
	prefix string
	source Source
}{
	{"aims.fao.org/aos/agrovoc/", SourceAgrovoc},
	{"dbpedia.org/resource/", SourceDBpedia},
	{"www.wikidata.org/entity/", SourceWikidata},
	{"wikidata.org/entity/", SourceWikidata},
}

// SourceForURI returns the source owning uri, based on its namespace.
func SourceForURI(uri string) (Source, bool) {
	rest := uri
	switch {
	case strings.HasPrefix(rest, "http://"):
		rest = strings.TrimPrefix(rest, "http://")
	case strings.HasPrefix(rest, "https://"):
		rest = strings.TrimPrefix(rest, "https://")
	default:
		return "", false
	}
	for _, p := range uriPrefixes {
		if strings.HasPrefix(rest, p.prefix) && len(rest) > len(p.prefix) {
			return p.source, true
		}
	}
	return "", false
}

// LocalName returns the last path segment of a URI, unescaped,
// with underscores turned into spaces. Used as a last-resort label.
func LocalName(uri string) string {
	trimmed := strings.TrimRight(uri, "/")
	if i := strings.LastIndexAny(trimmed, "/#"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if unescaped, err := url.PathUnescape(trimmed); err == nil {
		trimmed = unescaped
	}
	trimmed = strings.TrimPrefix(trimmed, "Category:")
	return strings.ReplaceAll(trimmed, "_", " ")
}
