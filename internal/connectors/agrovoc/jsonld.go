package agrovoc

import (
	"encoding/json"
	"strings"
)

// document is the Skosmos JSON-LD envelope.
type document struct {
	Graph []node `json:"graph"`
}

// node is one JSON-LD graph node. Skosmos emits single values as bare objects
// or strings and repeated values as arrays, so the fields below accept both.
type node struct {
	URI       string     `json:"uri"`
	PrefLabel langValues `json:"prefLabel"`
	AltLabel  langValues `json:"altLabel"`
	Broader   uriRefs    `json:"broader"`
	Narrower  uriRefs    `json:"narrower"`
}

type langValue struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

type langValues []langValue

func (v *langValues) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		items = []json.RawMessage{data}
	}
	out := make(langValues, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s != "" {
				out = append(out, langValue{Value: s})
			}
			continue
		}
		var lv langValue
		if err := json.Unmarshal(item, &lv); err != nil {
			return err
		}
		if lv.Value != "" {
			out = append(out, lv)
		}
	}
	*v = out
	return nil
}

type uriRefs []string

func (r *uriRefs) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		items = []json.RawMessage{data}
	}
	out := make(uriRefs, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		var ref struct {
			URI string `json:"uri"`
		}
		if err := json.Unmarshal(item, &ref); err != nil {
			return err
		}
		if ref.URI != "" {
			out = append(out, ref.URI)
		}
	}
	*r = out
	return nil
}

// find returns the graph node for uri.
func (d *document) find(uri string) *node {
	for i := range d.Graph {
		if d.Graph[i].URI == uri {
			return &d.Graph[i]
		}
	}
	return nil
}

// labels collects labels by language. Untagged values are ignored when a
// tagged value exists, and the first value per language wins.
func (v langValues) labels() map[string]string {
	out := make(map[string]string, len(v))
	for _, lv := range v {
		if lv.Lang == "" {
			continue
		}
		if _, ok := out[lv.Lang]; !ok {
			out[lv.Lang] = lv.Value
		}
	}
	if len(out) == 0 && len(v) > 0 {
		out[""] = v[0].Value
	}
	return out
}

// grouped collects every value per language.
func (v langValues) grouped() map[string][]string {
	if len(v) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, lv := range v {
		out[lv.Lang] = append(out[lv.Lang], lv.Value)
	}
	return out
}

// searchResponse is the Skosmos /search/ envelope.
type searchResponse struct {
	Results []searchHit `json:"results"`
}

type searchHit struct {
	URI       string     `json:"uri"`
	PrefLabel langValues `json:"prefLabel"`
	AltLabel  langValues `json:"altLabel"`
}

func (r *searchResponse) best(label string) *searchHit {
	if len(r.Results) == 0 {
		return nil
	}
	for i := range r.Results {
		hit := &r.Results[i]
		for _, lv := range append(append(langValues{}, hit.PrefLabel...), hit.AltLabel...) {
			if strings.EqualFold(lv.Value, label) {
				return hit
			}
		}
	}
	return &r.Results[0]
}
