package wikidata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/tingbok/tingbok/internal/connectors/httpapi"
	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
)

const (
	// EntityPrefix is the canonical entity URI prefix.
	EntityPrefix = "http://www.wikidata.org/entity/"

	// PropSubclassOf is the "subclass of" property.
	PropSubclassOf = "P279"

	apiPath = "/w/api.php"

	// maxIDsPerRequest is the wbgetentities limit for anonymous clients.
	maxIDsPerRequest = 50
)

var entityIDPattern = regexp.MustCompile(`^[QP][0-9]+$`)

// Verify interface compliance.
var _ driven.Upstream = (*Connector)(nil)

// Connector fetches Wikidata items.
type Connector struct {
	client   *httpapi.Client
	search   *httpapi.Client
	language string
}

// New creates a Wikidata connector. language picks the preferred label.
func New(cfg httpapi.Config, language string) *Connector {
	cfg.Source = domain.SourceWikidata
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
	return New(httpapi.ConfigFromSettings(domain.SourceWikidata, s), s.Language)
}

// Source returns the source identifier.
func (c *Connector) Source() domain.Source {
	return domain.SourceWikidata
}

// Lookup fetches and normalises an item.
func (c *Connector) Lookup(ctx context.Context, uri string) (*domain.Concept, error) {
	id, err := EntityID(uri)
	if err != nil {
		return nil, err
	}
	e, err := c.entity(ctx, "lookup", uri, id, "labels|aliases|descriptions|claims|sitelinks")
	if err != nil {
		return nil, err
	}

	labels := monolingualLabels(e.Labels)
	prefLabel, lang := labels.Preferred(c.language)
	if prefLabel == "" {
		prefLabel = id
	}
	description, _ := monolingualLabels(e.Descriptions).Preferred(c.language)

	broader, err := c.labelBroader(ctx, uri, broaderIDs(e))
	if err != nil {
		return nil, err
	}

	concept := &domain.Concept{
		URI:          uri,
		PrefLabel:    prefLabel,
		Lang:         lang,
		Broader:      broader,
		Source:       domain.SourceWikidata,
		Description:  description,
		WikipediaURL: c.wikipediaURL(e),
	}
	if len(e.Aliases) > 0 {
		concept.AltLabels = make(map[string][]string, len(e.Aliases))
		for lang, aliases := range e.Aliases {
			for _, a := range aliases {
				if a.Value != "" {
					concept.AltLabels[lang] = append(concept.AltLabels[lang], a.Value)
				}
			}
		}
	}
	return concept, nil
}

// Labels returns the item's labels in every language.
func (c *Connector) Labels(ctx context.Context, uri string) (domain.Labels, error) {
	id, err := EntityID(uri)
	if err != nil {
		return nil, err
	}
	e, err := c.entity(ctx, "labels", uri, id, "labels")
	if err != nil {
		return nil, err
	}
	return monolingualLabels(e.Labels), nil
}

// BroaderOf returns the P279 targets of uri in claim order.
func (c *Connector) BroaderOf(ctx context.Context, uri string) ([]domain.BroaderRef, error) {
	id, err := EntityID(uri)
	if err != nil {
		return nil, err
	}
	e, err := c.entity(ctx, "broader", uri, id, "claims")
	if err != nil {
		return nil, err
	}
	return c.labelBroader(ctx, uri, broaderIDs(e))
}

// Search finds an item with wbsearchentities. The first hit whose label
// equals label wins, otherwise the first hit. Broader refs come from the
// item's P279 claims.
func (c *Connector) Search(ctx context.Context, label, lang string) (*domain.Concept, error) {
	if lang == "" {
		lang = c.language
	}
	query := url.Values{
		"action":   {"wbsearchentities"},
		"search":   {label},
		"language": {lang},
		"uselang":  {lang},
		"type":     {"item"},
		"limit":    {"5"},
		"format":   {"json"},
	}
	var resp searchResponse
	if err := c.search.GetJSON(ctx, "search", label, apiPath, query, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, &domain.UpstreamError{
			Source: domain.SourceWikidata,
			Op:     "search",
			URI:    label,
			Err:    fmt.Errorf("api error %s: %s", resp.Error.Code, resp.Error.Info),
		}
	}

	hit := bestHit(resp.Search, label)
	if hit == nil || !entityIDPattern.MatchString(hit.ID) {
		return nil, fmt.Errorf("%w: wikidata search %q", domain.ErrNotFound, label)
	}
	uri := EntityURI(hit.ID)

	broader, err := c.BroaderOf(ctx, uri)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	prefLabel := hit.Label
	if prefLabel == "" {
		prefLabel = label
	}
	return &domain.Concept{
		URI:         uri,
		PrefLabel:   prefLabel,
		Lang:        lang,
		Broader:     broader,
		Source:      domain.SourceWikidata,
		Description: hit.Description,
	}, nil
}

func bestHit(hits []searchHit, label string) *searchHit {
	if len(hits) == 0 {
		return nil
	}
	for i := range hits {
		if strings.EqualFold(hits[i].Label, label) {
			return &hits[i]
		}
	}
	return &hits[0]
}

// EntityID extracts the entity id from an entity URI.
func EntityID(uri string) (string, error) {
	id := uri[strings.LastIndex(uri, "/")+1:]
	if !entityIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: not a wikidata entity: %s", domain.ErrUnsupportedSource, uri)
	}
	return id, nil
}

// EntityURI returns the canonical URI of an entity id.
func EntityURI(id string) string {
	return EntityPrefix + id
}

func (c *Connector) entity(ctx context.Context, op, uri, id, props string) (*entity, error) {
	resp, err := c.get(ctx, op, uri, []string{id}, props)
	if err != nil {
		return nil, err
	}
	e, ok := resp.Entities[id]
	if !ok || e.Missing != nil {
		return nil, fmt.Errorf("%w: wikidata %s", domain.ErrNotFound, id)
	}
	return &e, nil
}

func (c *Connector) get(ctx context.Context, op, uri string, ids []string, props string) (*response, error) {
	query := url.Values{
		"action": {"wbgetentities"},
		"ids":    {strings.Join(ids, "|")},
		"props":  {props},
		"format": {"json"},
	}
	var resp response
	if err := c.client.GetJSON(ctx, op, uri, apiPath, query, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		if resp.Error.Code == "no-such-entity" {
			return nil, fmt.Errorf("%w: wikidata %s", domain.ErrNotFound, uri)
		}
		return nil, &domain.UpstreamError{
			Source: domain.SourceWikidata,
			Op:     op,
			URI:    uri,
			Err:    fmt.Errorf("api error %s: %s", resp.Error.Code, resp.Error.Info),
		}
	}
	return &resp, nil
}

// labelBroader resolves labels for broader ids in batched follow-up calls.
// A failed label call leaves labels empty rather than failing the lookup.
func (c *Connector) labelBroader(ctx context.Context, uri string, ids []string) ([]domain.BroaderRef, error) {
	refs := make([]domain.BroaderRef, len(ids))
	for i, id := range ids {
		refs[i] = domain.BroaderRef{URI: EntityURI(id)}
	}

	for start := 0; start < len(ids); start += maxIDsPerRequest {
		end := min(start+maxIDsPerRequest, len(ids))
		resp, err := c.get(ctx, "broader-labels", uri, ids[start:end], "labels")
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}
		for i := start; i < end; i++ {
			if e, ok := resp.Entities[ids[i]]; ok {
				refs[i].Label, _ = monolingualLabels(e.Labels).Preferred(c.language)
			}
		}
	}
	return refs, nil
}

func (c *Connector) wikipediaURL(e *entity) string {
	for _, lang := range []string{c.language, "en"} {
		if link, ok := e.Sitelinks[lang+"wiki"]; ok && link.Title != "" {
			title := strings.ReplaceAll(link.Title, " ", "_")
			return "https://" + lang + ".wikipedia.org/wiki/" + url.PathEscape(title)
		}
	}
	return ""
}

// broaderIDs returns P279 value targets, skipping deprecated claims and
// repeated targets.
func broaderIDs(e *entity) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, cl := range e.Claims[PropSubclassOf] {
		if cl.Rank == "deprecated" || cl.Mainsnak.Snaktype != "value" {
			continue
		}
		id := cl.entityID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func monolingualLabels(m map[string]monolingual) domain.Labels {
	out := make(domain.Labels, len(m))
	for lang, v := range m {
		if v.Value != "" {
			out[lang] = v.Value
		}
	}
	return out
}
