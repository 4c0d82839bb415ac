package dbpedia

import (
	"encoding/json"
	"strings"
)

// lookupResponse is the DBpedia Lookup /api/search envelope.
type lookupResponse struct {
	Docs []lookupDoc `json:"docs"`
}

// lookupDoc fields are arrays in current Lookup releases and plain strings
// in older ones.
type lookupDoc struct {
	Resource stringList `json:"resource"`
	Label    stringList `json:"label"`
	Comment  stringList `json:"comment"`
}

// stringList accepts a string or an array of strings. Lookup wraps matched
// terms in <B> tags, which are removed.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*l = nil
			return nil
		}
		items = []string{s}
	}
	out := make(stringList, 0, len(items))
	for _, item := range items {
		if item = stripHighlight(item); item != "" {
			out = append(out, item)
		}
	}
	*l = out
	return nil
}

var highlightReplacer = strings.NewReplacer("<B>", "", "</B>", "", "<b>", "", "</b>", "")

func stripHighlight(s string) string {
	return strings.TrimSpace(highlightReplacer.Replace(s))
}

func (r *lookupResponse) best(label string) *lookupDoc {
	if len(r.Docs) == 0 {
		return nil
	}
	for i := range r.Docs {
		for _, l := range r.Docs[i].Label {
			if strings.EqualFold(l, label) {
				return &r.Docs[i]
			}
		}
	}
	return &r.Docs[0]
}
