package agrovoc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tingbok/tingbok/internal/connectors/httpapi"
	"github.com/tingbok/tingbok/internal/core/domain"
)

const (
	potatoes       = "http://aims.fao.org/aos/agrovoc/c_12332"
	rootVegetables = "http://aims.fao.org/aos/agrovoc/c_8171"
	tubers         = "http://aims.fao.org/aos/agrovoc/c_7979"
)

const potatoesDoc = `{
  "@context": {"skos": "http://www.w3.org/2004/02/skos/core#"},
  "graph": [
    {
      "uri": "http://aims.fao.org/aos/agrovoc/c_12332",
      "type": "skos:Concept",
      "prefLabel": [
        {"lang": "en", "value": "potatoes"},
        {"lang": "nb", "value": "poteter"},
        {"lang": "de", "value": "Kartoffeln"}
      ],
      "altLabel": {"lang": "en", "value": "Irish potatoes"},
      "broader": [
        {"uri": "http://aims.fao.org/aos/agrovoc/c_8171"},
        {"uri": "http://aims.fao.org/aos/agrovoc/c_7979"}
      ],
      "narrower": {"uri": "http://aims.fao.org/aos/agrovoc/c_99999"}
    },
    {
      "uri": "http://aims.fao.org/aos/agrovoc/c_8171",
      "prefLabel": [
        {"lang": "nb", "value": "rotgrønnsaker"},
        {"lang": "en", "value": "root vegetables"}
      ]
    }
  ]
}`

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(httpapi.Config{
		BaseURL:        srv.URL,
		Timeout:        time.Second,
		MaxRetries:     1,
		InitialBackoff: time.Millisecond,
	}, "en")
}

func serveDoc(t *testing.T, docs map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/", r.URL.Path)
		assert.Equal(t, "application/ld+json", r.URL.Query().Get("format"))
		body, ok := docs[r.URL.Query().Get("uri")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}
}

func TestConnector_Source(t *testing.T) {
	c := New(httpapi.Config{}, "")
	assert.Equal(t, domain.SourceAgrovoc, c.Source())
	assert.Equal(t, "en", c.language)
}

func TestConnector_Lookup(t *testing.T) {
	c := newTestConnector(t, serveDoc(t, map[string]string{potatoes: potatoesDoc}))

	concept, err := c.Lookup(context.Background(), potatoes)
	require.NoError(t, err)

	assert.Equal(t, potatoes, concept.URI)
	assert.Equal(t, "potatoes", concept.PrefLabel)
	assert.Equal(t, "en", concept.Lang)
	assert.Equal(t, domain.SourceAgrovoc, concept.Source)
	assert.Equal(t, map[string][]string{"en": {"Irish potatoes"}}, concept.AltLabels)
	assert.Equal(t, []string{"http://aims.fao.org/aos/agrovoc/c_99999"}, concept.Narrower)

	// Broader order follows the document; unlabelled refs stay empty.
	require.Len(t, concept.Broader, 2)
	assert.Equal(t, domain.BroaderRef{URI: rootVegetables, Label: "root vegetables"}, concept.Broader[0])
	assert.Equal(t, domain.BroaderRef{URI: tubers}, concept.Broader[1])
}

func TestConnector_Lookup_PreferredLanguage(t *testing.T) {
	srv := httptest.NewServer(serveDoc(t, map[string]string{potatoes: potatoesDoc}))
	defer srv.Close()
	c := New(httpapi.Config{BaseURL: srv.URL, MaxRetries: 0}, "nb")

	concept, err := c.Lookup(context.Background(), potatoes)
	require.NoError(t, err)
	assert.Equal(t, "poteter", concept.PrefLabel)
	assert.Equal(t, "nb", concept.Lang)
	assert.Equal(t, "rotgrønnsaker", concept.Broader[0].Label)
}

func TestConnector_Labels(t *testing.T) {
	c := newTestConnector(t, serveDoc(t, map[string]string{potatoes: potatoesDoc}))

	labels, err := c.Labels(context.Background(), potatoes)
	require.NoError(t, err)
	assert.Equal(t, domain.Labels{"en": "potatoes", "nb": "poteter", "de": "Kartoffeln"}, labels)
}

func TestConnector_BroaderOf(t *testing.T) {
	c := newTestConnector(t, serveDoc(t, map[string]string{potatoes: potatoesDoc}))

	broader, err := c.BroaderOf(context.Background(), potatoes)
	require.NoError(t, err)
	assert.Equal(t, []string{rootVegetables, tubers}, []string{broader[0].URI, broader[1].URI})
}

func TestConnector_SingleValueShapes(t *testing.T) {
	doc := `{"graph": [{
		"uri": "http://aims.fao.org/aos/agrovoc/c_8171",
		"prefLabel": "root vegetables",
		"broader": "http://aims.fao.org/aos/agrovoc/c_8079"
	}]}`
	c := newTestConnector(t, serveDoc(t, map[string]string{rootVegetables: doc}))

	concept, err := c.Lookup(context.Background(), rootVegetables)
	require.NoError(t, err)
	assert.Equal(t, "root vegetables", concept.PrefLabel)
	require.Len(t, concept.Broader, 1)
	assert.Equal(t, "http://aims.fao.org/aos/agrovoc/c_8079", concept.Broader[0].URI)

	labels, err := c.Labels(context.Background(), rootVegetables)
	require.NoError(t, err)
	assert.Empty(t, labels)
}

func TestConnector_TopConceptHasNoBroader(t *testing.T) {
	doc := `{"graph": [{"uri": "http://aims.fao.org/aos/agrovoc/c_330919", "prefLabel": {"lang": "en", "value": "products"}}]}`
	c := newTestConnector(t, serveDoc(t, map[string]string{"http://aims.fao.org/aos/agrovoc/c_330919": doc}))

	broader, err := c.BroaderOf(context.Background(), "http://aims.fao.org/aos/agrovoc/c_330919")
	require.NoError(t, err)
	assert.Empty(t, broader)
}

func TestConnector_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"404", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }},
		{"empty body", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }},
		{"not in graph", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"graph": [{"uri": "http://aims.fao.org/aos/agrovoc/c_1"}]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConnector(t, tt.handler)
			_, err := c.Lookup(context.Background(), potatoes)
			assert.ErrorIs(t, err, domain.ErrNotFound)
			assert.False(t, domain.IsUpstream(err))
		})
	}
}

func TestConnector_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"malformed", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"graph": [`)) }},
		{"wrong shape", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"graph": [{"prefLabel": 42}]}`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConnector(t, tt.handler)
			_, err := c.Labels(context.Background(), potatoes)
			require.Error(t, err)
			assert.True(t, domain.IsUpstream(err))
			assert.False(t, errors.Is(err, domain.ErrNotFound))
		})
	}
}

const potatoSearch = `{
  "@context": {"skos": "http://www.w3.org/2004/02/skos/core#"},
  "uri": "",
  "results": [
    {"uri": "http://aims.fao.org/aos/agrovoc/c_7979", "type": ["skos:Concept"], "prefLabel": "tubers", "lang": "en", "vocab": "agrovoc"},
    {"uri": "http://aims.fao.org/aos/agrovoc/c_12332", "type": ["skos:Concept"], "prefLabel": "potatoes", "altLabel": "Irish potatoes", "lang": "en", "vocab": "agrovoc"}
  ]
}`

func serveSearch(t *testing.T, results string, docs map[string]string) http.HandlerFunc {
	data := serveDoc(t, docs)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/" {
			_, _ = w.Write([]byte(results))
			return
		}
		data(w, r)
	}
}

func TestConnector_Search(t *testing.T) {
	var query, lang string
	search := serveSearch(t, potatoSearch, map[string]string{potatoes: potatoesDoc})
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/" {
			query, lang = r.URL.Query().Get("query"), r.URL.Query().Get("lang")
		}
		search(w, r)
	})

	concept, err := c.Search(context.Background(), "Irish Potatoes", "en")
	require.NoError(t, err)

	assert.Equal(t, "Irish Potatoes", query)
	assert.Equal(t, "en", lang)
	assert.Equal(t, potatoes, concept.URI)
	assert.Equal(t, "potatoes", concept.PrefLabel)
	assert.Equal(t, domain.SourceAgrovoc, concept.Source)
	require.Len(t, concept.Broader, 2)
	assert.Equal(t, "root vegetables", concept.Broader[0].Label)
}

func TestConnector_Search_FirstHitWithoutExactMatch(t *testing.T) {
	c := newTestConnector(t, serveSearch(t, potatoSearch, map[string]string{}))

	concept, err := c.Search(context.Background(), "spuds", "")
	require.NoError(t, err)

	assert.Equal(t, tubers, concept.URI)
	assert.Equal(t, "tubers", concept.PrefLabel)
	assert.Empty(t, concept.Broader)
}

func TestConnector_Search_NoResults(t *testing.T) {
	c := newTestConnector(t, serveSearch(t, `{"results": []}`, nil))

	_, err := c.Search(context.Background(), "unicorns", "en")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConnector_Search_BroaderFailure(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/" {
			_, _ = w.Write([]byte(potatoSearch))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Search(context.Background(), "potatoes", "en")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
