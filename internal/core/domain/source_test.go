package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_IsValid(t *testing.T) {
	for _, s := range AllSources() {
		assert.True(t, s.IsValid(), s)
		assert.NotEqual(t, "Unknown", s.Description())
	}
	assert.False(t, Source("gbif").IsValid())
	assert.Equal(t, "Unknown", Source("gbif").Description())
}

func TestSourceForURI(t *testing.T) {
	tests := []struct {
		uri    string
		source Source
		ok     bool
	}{
		{"http://aims.fao.org/aos/agrovoc/c_6219", SourceAgrovoc, true},
		{"https://aims.fao.org/aos/agrovoc/c_6219", SourceAgrovoc, true},
		{"http://dbpedia.org/resource/Potato", SourceDBpedia, true},
		{"https://dbpedia.org/resource/Category:Root_vegetables", SourceDBpedia, true},
		{"http://www.wikidata.org/entity/Q10998", SourceWikidata, true},
		{"https://wikidata.org/entity/Q10998", SourceWikidata, true},
		{"http://aims.fao.org/aos/agrovoc/", "", false},
		{"ftp://dbpedia.org/resource/Potato", "", false},
		{"https://example.com/potato", "", false},
		{"potato", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			source, ok := SourceForURI(tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.source, source)
		})
	}
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "c 6219", LocalName("http://aims.fao.org/aos/agrovoc/c_6219"))
	assert.Equal(t, "Root vegetables", LocalName("http://dbpedia.org/resource/Category:Root_vegetables"))
	assert.Equal(t, "Smørbrød", LocalName("http://dbpedia.org/resource/Sm%C3%B8rbr%C3%B8d"))
	assert.Equal(t, "Q10998", LocalName("http://www.wikidata.org/entity/Q10998/"))
	assert.Equal(t, "Thing", LocalName("http://example.com/ns#Thing"))
}

func TestKeyForURI(t *testing.T) {
	key, err := KeyForURI("http://dbpedia.org/resource/Potato")
	assert.NoError(t, err)
	assert.Equal(t, ConceptKey{Source: SourceDBpedia, URI: "http://dbpedia.org/resource/Potato"}, key)
	assert.Equal(t, "dbpedia:http://dbpedia.org/resource/Potato", key.String())

	_, err = KeyForURI("https://example.com/x")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}
