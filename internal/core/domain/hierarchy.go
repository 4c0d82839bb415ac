package domain

import (
	"strings"
)

// StopReason says why a hierarchy walk ended.
type StopReason string

// Hierarchy terminal reasons.
const (
	// StopMappedRoot means the walk hit a RootMapping entry.
	StopMappedRoot StopReason = "mapped-root"

	// StopNaturalTop means the last concept has no broader relation.
	StopNaturalTop StopReason = "natural-top"

	// StopDepthExceeded means the hop limit was reached.
	StopDepthExceeded StopReason = "depth-exceeded"

	// StopCycleDetected means the next broader concept was already on the path.
	StopCycleDetected StopReason = "cycle-detected"

	// StopUpstreamError means a mid-path hop failed; the path is partial.
	StopUpstreamError StopReason = "upstream-error"

	// StopBrokenLink means a broader URI could not be resolved to a concept.
	StopBrokenLink StopReason = "broken-link"

	// StopNotFound means the starting concept does not exist upstream.
	StopNotFound StopReason = "not-found"
)

// IsComplete reports whether the walk reached a root rather than being cut short.
func (r StopReason) IsComplete() bool {
	return r == StopMappedRoot || r == StopNaturalTop
}

// HierarchyStep is one label-resolved concept on a path.
type HierarchyStep struct {
	URI    string `json:"uri"`
	Label  string `json:"label"`
	Source Source `json:"source"`
	Labels Labels `json:"labels,omitempty"`

	// OriginalLabel is set when Label was replaced by a mapped root name.
	OriginalLabel string `json:"originalLabel,omitempty"`
}

// HierarchyPath runs from the queried concept up to (and including) the root.
type HierarchyPath struct {
	URI    string          `json:"uri"`
	Found  bool            `json:"found"`
	Steps  []HierarchyStep `json:"steps"`
	Reason StopReason      `json:"reason"`
	Root   string          `json:"root,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Breadcrumb renders the path root first, e.g. "food/vegetables/potatoes".
func (p *HierarchyPath) Breadcrumb() string {
	parts := make([]string, 0, len(p.Steps))
	for i := len(p.Steps) - 1; i >= 0; i-- {
		parts = append(parts, NormalizeLabel(p.Steps[i].Label))
	}
	return strings.Join(parts, "/")
}

// URIMap maps each breadcrumb prefix to the URI of its last segment.
// A mapped root is a synthetic category and is left out.
func (p *HierarchyPath) URIMap() map[string]string {
	out := make(map[string]string, len(p.Steps))
	prefix := ""
	for i := len(p.Steps) - 1; i >= 0; i-- {
		seg := NormalizeLabel(p.Steps[i].Label)
		if prefix == "" {
			prefix = seg
		} else {
			prefix += "/" + seg
		}
		if i == len(p.Steps)-1 && p.Reason == StopMappedRoot {
			continue
		}
		if p.Steps[i].URI != "" {
			out[prefix] = p.Steps[i].URI
		}
	}
	return out
}

// RootMapping translates near-root concepts into canonical root categories.
// Entries match by URI first, then by lower-cased preferred label.
type RootMapping struct {
	ByURI   map[Source]map[string]string `toml:"uri" json:"uri"`
	ByLabel map[Source]map[string]string `toml:"label" json:"label"`
}

// Lookup returns the canonical root name for a concept, if mapped.
func (m *RootMapping) Lookup(source Source, uri, label string) (string, bool) {
	if m == nil {
		return "", false
	}
	if name, ok := m.ByURI[source][uri]; ok && name != "" {
		return name, true
	}
	if label == "" {
		return "", false
	}
	if name, ok := m.ByLabel[source][strings.ToLower(strings.TrimSpace(label))]; ok && name != "" {
		return name, true
	}
	return "", false
}

// Len returns the number of entries across all sources.
func (m *RootMapping) Len() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, t := range m.ByURI {
		n += len(t)
	}
	for _, t := range m.ByLabel {
		n += len(t)
	}
	return n
}

// DefaultRootMapping returns the AGROVOC near-root table. Canonical names
// follow the root concepts of the package vocabulary.
func DefaultRootMapping() *RootMapping {
	return &RootMapping{
		ByURI: map[Source]map[string]string{},
		ByLabel: map[Source]map[string]string{
			SourceAgrovoc: {
				"products":           "food",
				"plant products":     "food",
				"animal products":    "food",
				"processed products": "food",
				"aquatic products":   "food",
				"equipment":          "tools",
				"materials":          "materials",
				"chemicals":          "chemicals",
				"organisms":          "organisms",
			},
		},
	}
}
