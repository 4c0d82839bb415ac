package wikidata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tingbok/tingbok/internal/connectors/httpapi"
	"github.com/tingbok/tingbok/internal/core/domain"
)

const hammerEntity = `{"entities": {"Q25294": {
  "type": "item",
  "id": "Q25294",
  "labels": {
    "en": {"language": "en", "value": "hammer"},
    "nb": {"language": "nb", "value": "hammer"},
    "de": {"language": "de", "value": "Hammer"}
  },
  "aliases": {"en": [{"language": "en", "value": "claw hammer"}]},
  "descriptions": {"en": {"language": "en", "value": "tool used to deliver an impact"}},
  "claims": {
  "P18": [
    {"rank": "normal", "mainsnak": {"snaktype": "value", "property": "P18",
      "datavalue": {"type": "string", "value": "Claw-hammer.jpg"}}}
  ],
  "P646": [
    {"rank": "normal", "mainsnak": {"snaktype": "value", "property": "P646", "datatype": "external-id",
      "datavalue": {"type": "string", "value": "/m/03q8w"}}}
  ],
  "P373": [
    {"rank": "normal", "mainsnak": {"snaktype": "value", "property": "P373",
      "datavalue": {"type": "string", "value": "Hammers"}}}
  ],
  "P2067": [
    {"rank": "normal", "mainsnak": {"snaktype": "value", "property": "P2067",
      "datavalue": {"type": "quantity", "value": {"amount": "+0.5", "unit": "http://www.wikidata.org/entity/Q11570"}}}}
  ],
  "P279": [
    {"rank": "normal", "mainsnak": {"snaktype": "value", "property": "P279",
      "datavalue": {"type": "wikibase-entityid", "value": {"entity-type": "item", "numeric-id": 1371849, "id": "Q1371849"}}}},
    {"rank": "normal", "mainsnak": {"snaktype": "somevalue", "property": "P279"}},
    {"rank": "deprecated", "mainsnak": {"snaktype": "value", "property": "P279",
      "datavalue": {"value": {"id": "Q1"}}}},
    {"rank": "normal", "mainsnak": {"snaktype": "value", "property": "P279",
      "datavalue": {"value": {"id": "Q39546"}}}}
  ]
  },
  "sitelinks": {"enwiki": {"site": "enwiki", "title": "Hammer"}}
}}, "success": 1}`

const broaderLabels = `{"entities": {
  "Q1371849": {"id": "Q1371849", "labels": {"en": {"language": "en", "value": "hand tool"}}},
  "Q39546": {"id": "Q39546", "labels": {"de": {"language": "de", "value": "Werkzeug"}}}
}, "success": 1}`

type fakeAPI struct {
	calls     int32
	responses map[string]string
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.calls, 1)
		assert.Equal(t, "/w/api.php", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("format"))
		var key string
		switch q.Get("action") {
		case "wbsearchentities":
			assert.Equal(t, "item", q.Get("type"))
			key = "search " + q.Get("language") + " " + q.Get("search")
		default:
			assert.Equal(t, "wbgetentities", q.Get("action"))
			key = q.Get("ids") + " " + q.Get("props")
		}
		body, ok := f.responses[key]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(body))
	}
}

func newTestConnector(t *testing.T, responses map[string]string) (*Connector, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{responses: responses}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	return New(httpapi.Config{
		BaseURL:        srv.URL,
		Timeout:        time.Second,
		MaxRetries:     0,
		InitialBackoff: time.Millisecond,
	}, "en"), api
}

func TestEntityID(t *testing.T) {
	id, err := EntityID("http://www.wikidata.org/entity/Q42")
	require.NoError(t, err)
	assert.Equal(t, "Q42", id)

	_, err = EntityID("http://www.wikidata.org/entity/L123")
	assert.ErrorIs(t, err, domain.ErrUnsupportedSource)

	assert.Equal(t, "http://www.wikidata.org/entity/Q42", EntityURI("Q42"))
}

func TestConnector_Lookup(t *testing.T) {
	c, api := newTestConnector(t, map[string]string{
		"Q25294 labels|aliases|descriptions|claims|sitelinks": hammerEntity,
		"Q1371849|Q39546 labels":                              broaderLabels,
	})

	concept, err := c.Lookup(context.Background(), "http://www.wikidata.org/entity/Q25294")
	require.NoError(t, err)

	assert.Equal(t, "hammer", concept.PrefLabel)
	assert.Equal(t, "en", concept.Lang)
	assert.Equal(t, domain.SourceWikidata, concept.Source)
	assert.Equal(t, "tool used to deliver an impact", concept.Description)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Hammer", concept.WikipediaURL)
	assert.Equal(t, map[string][]string{"en": {"claw hammer"}}, concept.AltLabels)

	// Claim order is kept; somevalue and deprecated claims are skipped.
	assert.Equal(t, []domain.BroaderRef{
		{URI: "http://www.wikidata.org/entity/Q1371849", Label: "hand tool"},
		{URI: "http://www.wikidata.org/entity/Q39546", Label: "Werkzeug"},
	}, concept.Broader)
	assert.Equal(t, int32(2), atomic.LoadInt32(&api.calls))
}

func TestConnector_Labels(t *testing.T) {
	c, _ := newTestConnector(t, map[string]string{
		"Q25294 labels": hammerEntity,
	})

	labels, err := c.Labels(context.Background(), "http://www.wikidata.org/entity/Q25294")
	require.NoError(t, err)
	assert.Equal(t, domain.Labels{"en": "hammer", "nb": "hammer", "de": "Hammer"}, labels)
}

func TestConnector_BroaderOf_NoClaims(t *testing.T) {
	c, api := newTestConnector(t, map[string]string{
		"Q35120 claims": `{"entities": {"Q35120": {"id": "Q35120", "claims": {}}}}`,
	})

	broader, err := c.BroaderOf(context.Background(), "http://www.wikidata.org/entity/Q35120")
	require.NoError(t, err)
	assert.Empty(t, broader)
	assert.Equal(t, int32(1), atomic.LoadInt32(&api.calls))
}

func TestConnector_BroaderLabelFailureKeepsRefs(t *testing.T) {
	c, _ := newTestConnector(t, map[string]string{
		"Q25294 claims": hammerEntity,
		// The label call is unregistered and answered with 400.
	})

	broader, err := c.BroaderOf(context.Background(), "http://www.wikidata.org/entity/Q25294")
	require.NoError(t, err)
	require.Len(t, broader, 2)
	assert.Empty(t, broader[0].Label)
	assert.Empty(t, broader[1].Label)
}

func TestConnector_NotFound(t *testing.T) {
	c, _ := newTestConnector(t, map[string]string{
		"Q999999999 labels": `{"entities": {"Q999999999": {"id": "Q999999999", "missing": ""}}, "success": 1}`,
		"Q888888888 labels": `{"error": {"code": "no-such-entity", "info": "Could not find an entity with the ID \"Q888888888\"."}}`,
	})

	_, err := c.Labels(context.Background(), "http://www.wikidata.org/entity/Q999999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.Labels(context.Background(), "http://www.wikidata.org/entity/Q888888888")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConnector_APIError(t *testing.T) {
	c, _ := newTestConnector(t, map[string]string{
		"Q1 labels": `{"error": {"code": "maxlag", "info": "Waiting for a database server"}}`,
	})

	_, err := c.Labels(context.Background(), "http://www.wikidata.org/entity/Q1")
	require.Error(t, err)
	assert.True(t, domain.IsUpstream(err))
	assert.True(t, strings.Contains(err.Error(), "maxlag"))
}

func TestConnector_BroaderOf_IgnoresNonItemClaims(t *testing.T) {
	c, _ := newTestConnector(t, map[string]string{
		"Q25294 claims":          hammerEntity,
		"Q1371849|Q39546 labels": broaderLabels,
	})

	broader, err := c.BroaderOf(context.Background(), "http://www.wikidata.org/entity/Q25294")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://www.wikidata.org/entity/Q1371849",
		"http://www.wikidata.org/entity/Q39546",
	}, []string{broader[0].URI, broader[1].URI})
}

const hammerSearch = `{"searchinfo": {"search": "hammer"}, "search": [
  {"id": "Q1148065", "label": "Hammer Films", "description": "British film production company"},
  {"id": "Q25294", "label": "hammer", "description": "tool used to deliver an impact"}
], "success": 1}`

func TestConnector_Search(t *testing.T) {
	c, _ := newTestConnector(t, map[string]string{
		"search en Hammer":       hammerSearch,
		"Q25294 claims":          hammerEntity,
		"Q1371849|Q39546 labels": broaderLabels,
	})

	concept, err := c.Search(context.Background(), "Hammer", "en")
	require.NoError(t, err)

	assert.Equal(t, "http://www.wikidata.org/entity/Q25294", concept.URI)
	assert.Equal(t, "hammer", concept.PrefLabel)
	assert.Equal(t, "tool used to deliver an impact", concept.Description)
	assert.Equal(t, domain.SourceWikidata, concept.Source)
	assert.Equal(t, []domain.BroaderRef{
		{URI: "http://www.wikidata.org/entity/Q1371849", Label: "hand tool"},
		{URI: "http://www.wikidata.org/entity/Q39546", Label: "Werkzeug"},
	}, concept.Broader)
}

func TestConnector_Search_NoHits(t *testing.T) {
	c, _ := newTestConnector(t, map[string]string{
		"search nb unicorns": `{"search": [], "success": 1}`,
	})

	_, err := c.Search(context.Background(), "unicorns", "nb")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConnector_Search_APIError(t *testing.T) {
	c, _ := newTestConnector(t, map[string]string{
		"search en hammer": `{"error": {"code": "maxlag", "info": "Waiting for a database server"}}`,
	})

	_, err := c.Search(context.Background(), "hammer", "")
	require.Error(t, err)
	assert.True(t, domain.IsUpstream(err))
}
