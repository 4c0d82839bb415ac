package domain

// VocabularyConcept is one entry of the static package vocabulary.
type VocabularyConcept struct {
	ID           string              `json:"id"`
	PrefLabel    string              `json:"prefLabel"`
	AltLabel     map[string][]string `json:"altLabel"`
	Broader      []string            `json:"broader"`
	Narrower     []string            `json:"narrower"`
	URI          string              `json:"uri,omitempty"`
	Labels       Labels              `json:"labels"`
	Description  string              `json:"description,omitempty"`
	WikipediaURL string              `json:"wikipediaUrl,omitempty"`
}
