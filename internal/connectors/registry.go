package connectors

import (
	"sort"

	"github.com/tingbok/tingbok/internal/connectors/agrovoc"
	"github.com/tingbok/tingbok/internal/connectors/dbpedia"
	"github.com/tingbok/tingbok/internal/connectors/wikidata"
	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
)

// Builder creates an upstream adapter from source settings.
type Builder func(settings domain.SourceSettings) driven.Upstream

// builders holds the built-in adapters.
var builders = map[domain.Source]Builder{
	domain.SourceAgrovoc: func(s domain.SourceSettings) driven.Upstream {
		return agrovoc.NewFromSettings(s)
	},
	domain.SourceDBpedia: func(s domain.SourceSettings) driven.Upstream {
		return dbpedia.NewFromSettings(s)
	},
	domain.SourceWikidata: func(s domain.SourceSettings) driven.Upstream {
		return wikidata.NewFromSettings(s)
	},
}

// NewUpstreams builds an adapter for every enabled source in settings.
// Sources without settings or without a built-in adapter are skipped.
func NewUpstreams(settings map[domain.Source]domain.SourceSettings) map[domain.Source]driven.Upstream {
	out := make(map[domain.Source]driven.Upstream, len(settings))
	for source, s := range settings {
		if !s.Enabled {
			continue
		}
		build, ok := builders[source]
		if !ok {
			continue
		}
		out[source] = build(s)
	}
	return out
}

// SupportedSources returns the sources with a built-in adapter.
func SupportedSources() []domain.Source {
	out := make([]domain.Source, 0, len(builders))
	for source := range builders {
		out = append(out, source)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
