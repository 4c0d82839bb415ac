package agrovoc

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/tingbok/tingbok/internal/connectors/httpapi"
	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Upstream = (*Connector)(nil)

// Connector fetches AGROVOC concepts.
type Connector struct {
	client   *httpapi.Client
	search   *httpapi.Client
	language string
}

// New creates an AGROVOC connector. language picks the preferred label.
func New(cfg httpapi.Config, language string) *Connector {
	cfg.Source = domain.SourceAgrovoc
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
	return New(httpapi.ConfigFromSettings(domain.SourceAgrovoc, s), s.Language)
}

// Source returns the source identifier.
func (c *Connector) Source() domain.Source {
	return domain.SourceAgrovoc
}

// Lookup fetches and normalises a concept.
func (c *Connector) Lookup(ctx context.Context, uri string) (*domain.Concept, error) {
	doc, n, err := c.fetch(ctx, "lookup", uri)
	if err != nil {
		return nil, err
	}

	labels := domain.Labels(n.PrefLabel.labels())
	prefLabel, lang := labels.Preferred(c.language)
	if prefLabel == "" {
		prefLabel = domain.LocalName(uri)
	}

	return &domain.Concept{
		URI:       uri,
		PrefLabel: prefLabel,
		Lang:      lang,
		AltLabels: n.AltLabel.grouped(),
		Broader:   c.broader(doc, n),
		Narrower:  append([]string(nil), n.Narrower...),
		Source:    domain.SourceAgrovoc,
	}, nil
}

// Labels returns prefLabels of uri in every language.
func (c *Connector) Labels(ctx context.Context, uri string) (domain.Labels, error) {
	_, n, err := c.fetch(ctx, "labels", uri)
	if err != nil {
		return nil, err
	}
	labels := domain.Labels(n.PrefLabel.labels())
	delete(labels, "")
	return labels, nil
}

// BroaderOf returns the broader concepts of uri in document order.
func (c *Connector) BroaderOf(ctx context.Context, uri string) ([]domain.BroaderRef, error) {
	doc, n, err := c.fetch(ctx, "broader", uri)
	if err != nil {
		return nil, err
	}
	return c.broader(doc, n), nil
}

// Search queries the Skosmos search endpoint. The first hit whose preferred
// or alternative label equals label wins, otherwise the first hit.
func (c *Connector) Search(ctx context.Context, label, lang string) (*domain.Concept, error) {
	if lang == "" {
		lang = c.language
	}
	query := url.Values{
		"query": {label},
		"lang":  {lang},
	}
	var resp searchResponse
	if err := c.search.GetJSON(ctx, "search", label, "/search/", query, &resp); err != nil {
		return nil, err
	}

	hit := resp.best(label)
	if hit == nil || hit.URI == "" {
		return nil, fmt.Errorf("%w: agrovoc search %q", domain.ErrNotFound, label)
	}

	broader, err := c.BroaderOf(ctx, hit.URI)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	prefLabel := label
	if len(hit.PrefLabel) > 0 {
		prefLabel = hit.PrefLabel[0].Value
	}
	return &domain.Concept{
		URI:       hit.URI,
		PrefLabel: prefLabel,
		Lang:      lang,
		Broader:   broader,
		Source:    domain.SourceAgrovoc,
	}, nil
}

func (c *Connector) fetch(ctx context.Context, op, uri string) (*document, *node, error) {
	query := url.Values{
		"uri":    {uri},
		"format": {"application/ld+json"},
	}
	var doc document
	if err := c.client.GetJSON(ctx, op, uri, "/data/", query, &doc); err != nil {
		return nil, nil, err
	}
	n := doc.find(uri)
	if n == nil {
		return nil, nil, fmt.Errorf("%w: agrovoc %s: concept not in graph", domain.ErrNotFound, uri)
	}
	return &doc, n, nil
}

// broader labels each broader URI from its graph node, if present.
func (c *Connector) broader(doc *document, n *node) []domain.BroaderRef {
	refs := make([]domain.BroaderRef, 0, len(n.Broader))
	for _, uri := range n.Broader {
		ref := domain.BroaderRef{URI: uri}
		if bn := doc.find(uri); bn != nil {
			ref.Label, _ = domain.Labels(bn.PrefLabel.labels()).Preferred(c.language)
		}
		refs = append(refs, ref)
	}
	return refs
}
