package wikidata

import "encoding/json"

// response is the wbgetentities envelope.
type response struct {
	Entities map[string]entity `json:"entities"`
	Error    *apiError         `json:"error"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type entity struct {
	ID           string                   `json:"id"`
	Missing      *string                  `json:"missing"`
	Labels       map[string]monolingual   `json:"labels"`
	Aliases      map[string][]monolingual `json:"aliases"`
	Descriptions map[string]monolingual   `json:"descriptions"`
	Claims       map[string][]claim       `json:"claims"`
	Sitelinks    map[string]sitelink      `json:"sitelinks"`
}

type monolingual struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// claim keeps the data value raw: its shape depends on the property type
// (string, time, quantity, monolingualtext, wikibase-entityid).
type claim struct {
	Rank     string `json:"rank"`
	Mainsnak struct {
		Snaktype  string `json:"snaktype"`
		Datavalue struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

// entityID returns the target of a wikibase-entityid value, or "".
func (c *claim) entityID() string {
	dv := c.Mainsnak.Datavalue
	if dv.Type != "" && dv.Type != "wikibase-entityid" {
		return ""
	}
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(dv.Value, &v); err != nil {
		return ""
	}
	return v.ID
}

// searchResponse is the wbsearchentities envelope.
type searchResponse struct {
	Search []searchHit `json:"search"`
	Error  *apiError   `json:"error"`
}

type searchHit struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type sitelink struct {
	Site  string `json:"site"`
	Title string `json:"title"`
}
