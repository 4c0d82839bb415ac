package dbpedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tingbok/tingbok/internal/connectors/httpapi"
	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
)

// RDF predicates read from the export.
const (
	PredLabel          = "http://www.w3.org/2000/01/rdf-schema#label"
	PredComment        = "http://www.w3.org/2000/01/rdf-schema#comment"
	PredSKOSBroader    = "http://www.w3.org/2004/02/skos/core#broader"
	PredSKOSNarrower   = "http://www.w3.org/2004/02/skos/core#narrower"
	PredOntoBroader    = "http://dbpedia.org/ontology/broader"
	PredPrimaryTopicOf = "http://xmlns.com/foaf/0.1/isPrimaryTopicOf"
)

const resourceSegment = "/resource/"

// Verify interface compliance.
var _ driven.Upstream = (*Connector)(nil)

// term is one RDF term in the JSON export.
type term struct {
	Type  string    `json:"type"`
	Value termValue `json:"value"`
	Lang  string    `json:"lang"`
}

// termValue holds string values. Typed literals exported as bare numbers or
// booleans, such as dbo:wikiPageID, read as empty.
type termValue string

func (v *termValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*v = ""
		return nil
	}
	*v = termValue(s)
	return nil
}

// resource maps predicate URIs to their objects.
type resource map[string][]term

// export maps subject URIs to resources.
type export map[string]resource

// Connector fetches DBpedia resources.
type Connector struct {
	client   *httpapi.Client
	search   *httpapi.Client
	language string
}

// New creates a DBpedia connector. language picks the preferred label.
func New(cfg httpapi.Config, language string) *Connector {
	cfg.Source = domain.SourceDBpedia
	if language == "" {
		language = "en"
	}
	data, search := httpapi.NewClients(cfg)
	return &Connector{
		client:   data,
		search:   search,
		language: language,
	}
}

// NewFromSettings creates a connector from source settings.
func NewFromSettings(s domain.SourceSettings) *Connector {
	return New(httpapi.ConfigFromSettings(domain.SourceDBpedia, s), s.Language)
}

// Source returns the source identifier.
func (c *Connector) Source() domain.Source {
	return domain.SourceDBpedia
}

// Lookup fetches and normalises a resource.
func (c *Connector) Lookup(ctx context.Context, uri string) (*domain.Concept, error) {
	data, res, err := c.fetch(ctx, "lookup", uri)
	if err != nil {
		return nil, err
	}

	labels := literals(res[PredLabel])
	prefLabel, lang := labels.Preferred(c.language)
	if prefLabel == "" {
		prefLabel = domain.LocalName(uri)
	}
	description, _ := literals(res[PredComment]).Preferred(c.language)

	concept := &domain.Concept{
		URI:         uri,
		PrefLabel:   prefLabel,
		Lang:        lang,
		Broader:     c.broader(data, res),
		Narrower:    uris(res[PredSKOSNarrower]),
		Source:      domain.SourceDBpedia,
		Description: description,
	}
	for _, t := range res[PredPrimaryTopicOf] {
		if t.Type == "uri" && strings.Contains(string(t.Value), "wikipedia.org/wiki/") {
			concept.WikipediaURL = string(t.Value)
			break
		}
	}
	return concept, nil
}

// Labels returns rdfs:label values in every language.
func (c *Connector) Labels(ctx context.Context, uri string) (domain.Labels, error) {
	_, res, err := c.fetch(ctx, "labels", uri)
	if err != nil {
		return nil, err
	}
	labels := literals(res[PredLabel])
	delete(labels, "")
	return labels, nil
}

// BroaderOf returns the broader resources of uri in export order.
func (c *Connector) BroaderOf(ctx context.Context, uri string) ([]domain.BroaderRef, error) {
	data, res, err := c.fetch(ctx, "broader", uri)
	if err != nil {
		return nil, err
	}
	return c.broader(data, res), nil
}

// Search queries DBpedia Lookup. The first doc with a label equal to label
// wins, otherwise the first doc. Broader refs come from the data export.
func (c *Connector) Search(ctx context.Context, label, lang string) (*domain.Concept, error) {
	if lang == "" {
		lang = c.language
	}
	query := url.Values{
		"query":      {label},
		"format":     {"JSON"},
		"maxResults": {"5"},
		"language":   {lang},
	}
	var resp lookupResponse
	if err := c.search.GetJSON(ctx, "search", label, "/search", query, &resp); err != nil {
		return nil, err
	}

	doc := resp.best(label)
	if doc == nil || len(doc.Resource) == 0 || doc.Resource[0] == "" {
		return nil, fmt.Errorf("%w: dbpedia search %q", domain.ErrNotFound, label)
	}
	uri := doc.Resource[0]

	broader, err := c.BroaderOf(ctx, uri)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	concept := &domain.Concept{
		URI:       uri,
		PrefLabel: label,
		Lang:      lang,
		Broader:   broader,
		Source:    domain.SourceDBpedia,
	}
	if len(doc.Label) > 0 {
		concept.PrefLabel = doc.Label[0]
	}
	if len(doc.Comment) > 0 {
		concept.Description = doc.Comment[0]
	}
	return concept, nil
}

func (c *Connector) fetch(ctx context.Context, op, uri string) (export, resource, error) {
	local, err := localPart(uri)
	if err != nil {
		return nil, nil, err
	}

	var data export
	if err := c.client.GetJSON(ctx, op, uri, "/data/"+local+".json", nil, &data); err != nil {
		return nil, nil, err
	}

	// The export always uses the http form of the subject.
	res, ok := data[uri]
	if !ok {
		res, ok = data["http://dbpedia.org"+resourceSegment+local]
	}
	if !ok || len(res) == 0 {
		return nil, nil, fmt.Errorf("%w: dbpedia %s: resource not in export", domain.ErrNotFound, uri)
	}
	return data, res, nil
}

func (c *Connector) broader(data export, res resource) []domain.BroaderRef {
	terms := res[PredSKOSBroader]
	if len(terms) == 0 {
		terms = res[PredOntoBroader]
	}

	refs := make([]domain.BroaderRef, 0, len(terms))
	for _, uri := range uris(terms) {
		ref := domain.BroaderRef{URI: uri}
		if br, ok := data[uri]; ok {
			if label := literals(br[PredLabel])[c.language]; label != "" {
				ref.Label = label
			}
		}
		refs = append(refs, ref)
	}
	return refs
}

// localPart extracts the path segment after /resource/, escaping the
// characters that would otherwise end the URL path.
func localPart(uri string) (string, error) {
	i := strings.Index(uri, resourceSegment)
	if i < 0 || i+len(resourceSegment) == len(uri) {
		return "", fmt.Errorf("%w: not a dbpedia resource: %s", domain.ErrUnsupportedSource, uri)
	}
	local := uri[i+len(resourceSegment):]
	local = strings.ReplaceAll(local, "?", "%3F")
	local = strings.ReplaceAll(local, "#", "%23")
	return local, nil
}

// literals collects literal values by language; the first per language wins.
func literals(terms []term) domain.Labels {
	out := make(domain.Labels, len(terms))
	for _, t := range terms {
		if t.Type != "literal" || t.Value == "" {
			continue
		}
		if _, ok := out[t.Lang]; !ok {
			out[t.Lang] = string(t.Value)
		}
	}
	return out
}

// uris returns the values of uri-typed terms in order.
func uris(terms []term) []string {
	var out []string
	for _, t := range terms {
		if t.Type == "uri" && t.Value != "" {
			out = append(out, string(t.Value))
		}
	}
	return out
}
