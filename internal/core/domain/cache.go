package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind namespaces cache entries for the same URI.
type Kind string

// Cache entry kinds.
const (
	// KindConcept holds a normalised Concept.
	KindConcept Kind = "concept"

	// KindLabels holds all known labels of a URI.
	KindLabels Kind = "labels"

	// KindNotFound is a negative entry. It has no payload.
	KindNotFound Kind = "not_found"
)

// IsValid returns true if the kind can be requested from the resolver.
func (k Kind) IsValid() bool {
	return k == KindConcept || k == KindLabels
}

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// ConceptKey uniquely identifies a cacheable unit.
//
// A key names either a URI or, for label lookups, a (Lang, Label) pair.
// Label is stored lower-cased.
type ConceptKey struct {
	Source Source `json:"source"`
	URI    string `json:"uri,omitempty"`
	Lang   string `json:"lang,omitempty"`
	Label  string `json:"label,omitempty"`
}

// IsLabel reports whether the key names a label lookup.
func (k ConceptKey) IsLabel() bool {
	return k.Label != ""
}

// ID returns the URI, or "lang:label" for label keys.
func (k ConceptKey) ID() string {
	if k.IsLabel() {
		return k.Lang + ":" + k.Label
	}
	return k.URI
}

// String returns "source:uri" or "source:lang:label".
func (k ConceptKey) String() string {
	return fmt.Sprintf("%s:%s", k.Source, k.ID())
}

// KeyForURI builds a ConceptKey from a URI by namespace lookup.
func KeyForURI(uri string) (ConceptKey, error) {
	source, ok := SourceForURI(uri)
	if !ok {
		return ConceptKey{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, uri)
	}
	return ConceptKey{Source: source, URI: uri}, nil
}

// KeyForLabel builds a label-lookup key. lang defaults to "en".
func KeyForLabel(source Source, label, lang string) (ConceptKey, error) {
	if !source.IsValid() {
		return ConceptKey{}, fmt.Errorf("%w: %q", ErrUnsupportedSource, source)
	}
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return ConceptKey{}, fmt.Errorf("%w: empty label", ErrInvalidInput)
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = "en"
	}
	return ConceptKey{Source: source, Lang: lang, Label: label}, nil
}

// CachedEntry is one cache record.
//
// Requested is the kind the entry answers (concept or labels). Kind is the
// stored shape: equal to Requested for positive entries, KindNotFound for
// negative ones.
type CachedEntry struct {
	Key       ConceptKey
	Requested Kind
	Kind      Kind
	Payload   json.RawMessage
	FetchedAt time.Time
	TTL       time.Duration
}

// IsFresh reports whether now < FetchedAt + TTL.
func (e *CachedEntry) IsFresh(now time.Time) bool {
	return now.Before(e.FetchedAt.Add(e.TTL))
}

// IsNegative reports whether the entry records an upstream NotFound.
func (e *CachedEntry) IsNegative() bool {
	return e.Kind == KindNotFound
}

// Concept decodes a concept payload.
func (e *CachedEntry) Concept() (*Concept, error) {
	var c Concept
	if err := json.Unmarshal(e.Payload, &c); err != nil {
		return nil, fmt.Errorf("decoding concept payload: %w", err)
	}
	return &c, nil
}

// LabelsRecord is the labels payload shape.
type LabelsRecord struct {
	URI    string `json:"uri"`
	Source Source `json:"source"`
	Labels Labels `json:"labels"`
}

// Labels decodes a labels payload.
func (e *CachedEntry) Labels() (Labels, error) {
	var r LabelsRecord
	if err := json.Unmarshal(e.Payload, &r); err != nil {
		return nil, fmt.Errorf("decoding labels payload: %w", err)
	}
	if r.Labels == nil {
		r.Labels = Labels{}
	}
	return r.Labels, nil
}

// CacheStats holds aggregate counts over the cache store.
type CacheStats struct {
	Concepts int                   `json:"concept"`
	Labels   int                   `json:"labels"`
	NotFound int                   `json:"not_found"`
	BySource map[Source]SourceStat `json:"by_source"`
	Location string                `json:"location,omitempty"`
}

// SourceStat holds per-source counts.
type SourceStat struct {
	Concepts int `json:"concept"`
	Labels   int `json:"labels"`
	NotFound int `json:"not_found"`
}

// Add increments the counter for kind, both in total and for source.
func (s *CacheStats) Add(source Source, kind Kind) {
	s.AddN(source, kind, 1)
}

// AddN adds n to the counter for kind, both in total and for source.
func (s *CacheStats) AddN(source Source, kind Kind, n int) {
	if s.BySource == nil {
		s.BySource = make(map[Source]SourceStat)
	}
	st := s.BySource[source]
	switch kind {
	case KindConcept:
		s.Concepts += n
		st.Concepts += n
	case KindLabels:
		s.Labels += n
		st.Labels += n
	case KindNotFound:
		s.NotFound += n
		st.NotFound += n
	default:
		return
	}
	s.BySource[source] = st
}
