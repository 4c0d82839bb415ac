package domain

import (
	"encoding/json"
	"strings"
)

// BroaderRef is a labelled reference to a broader (parent) concept.
type BroaderRef struct {
	URI   string `json:"uri"`
	Label string `json:"label"`
}

// UnmarshalJSON also accepts a bare URI string, as written by older tools.
func (b *BroaderRef) UnmarshalJSON(data []byte) error {
	var uri string
	if err := json.Unmarshal(data, &uri); err == nil {
		*b = BroaderRef{URI: uri}
		return nil
	}
	type plain BroaderRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = BroaderRef(p)
	return nil
}

// Labels maps BCP-47 language codes to labels.
type Labels map[string]string

// Filter returns the labels for the requested languages.
// An empty language list returns a copy of all labels.
func (l Labels) Filter(languages []string) Labels {
	out := make(Labels, len(languages))
	if len(languages) == 0 {
		for lang, v := range l {
			out[lang] = v
		}
		return out
	}
	for _, lang := range languages {
		if v, ok := l[lang]; ok {
			out[lang] = v
		}
	}
	return out
}

// Preferred picks a label in the first available language of prefs,
// then English, then any language in sorted order.
func (l Labels) Preferred(prefs ...string) (string, string) {
	order := append(append([]string{}, prefs...), "en")
	for _, lang := range order {
		if v := l[lang]; v != "" {
			return v, lang
		}
	}
	best := ""
	for lang := range l {
		if l[lang] != "" && (best == "" || lang < best) {
			best = lang
		}
	}
	if best == "" {
		return "", ""
	}
	return l[best], best
}

// Concept is the canonical form every upstream response is normalised into.
// Field names follow the shared cache record format.
type Concept struct {
	URI          string              `json:"uri"`
	PrefLabel    string              `json:"prefLabel"`
	Lang         string              `json:"lang,omitempty"`
	AltLabels    map[string][]string `json:"altLabels,omitempty"`
	Broader      []BroaderRef        `json:"broader"`
	Narrower     []string            `json:"narrower,omitempty"`
	Source       Source              `json:"source"`
	Description  string              `json:"description,omitempty"`
	WikipediaURL string              `json:"wikipediaUrl,omitempty"`
}

// Clone returns a deep copy so callers can mutate their result freely.
func (c *Concept) Clone() *Concept {
	if c == nil {
		return nil
	}
	out := *c
	if c.Broader != nil {
		out.Broader = append([]BroaderRef(nil), c.Broader...)
	}
	if c.Narrower != nil {
		out.Narrower = append([]string(nil), c.Narrower...)
	}
	if c.AltLabels != nil {
		out.AltLabels = make(map[string][]string, len(c.AltLabels))
		for lang, alts := range c.AltLabels {
			out.AltLabels[lang] = append([]string(nil), alts...)
		}
	}
	return &out
}

// UnlabelledBroader returns the indexes of broader refs missing a label.
func (c *Concept) UnlabelledBroader() []int {
	var idx []int
	for i, b := range c.Broader {
		if strings.TrimSpace(b.Label) == "" {
			idx = append(idx, i)
		}
	}
	return idx
}

// NormalizeLabel turns a label into a breadcrumb path component
// (lowercase, spaces and hyphens become underscores).
func NormalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(label)
}
