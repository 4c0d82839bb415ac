package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tingbok/tingbok/internal/core/domain"
)

func TestCacheCmd_HasStatsSubcommand(t *testing.T) {
	found := false
	for _, c := range cacheCmd.Commands() {
		if c.Name() == "stats" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCacheStatsCmd_PrintsCounts(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "cache", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "location: /tmp/skos")
	assert.Contains(t, out, "concepts: 3")
	assert.Contains(t, out, "labels: 2")
	assert.Contains(t, out, "not found: 1")
	assert.Contains(t, out, "- agrovoc (3 concepts, 2 labels, 0 not found)")
	assert.Contains(t, out, "- wikidata (0 concepts, 0 labels, 0 not found)")
}

func TestCacheStatsCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "cache", "stats", "--json")
	require.NoError(t, err)

	var stats domain.CacheStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 3, stats.Concepts)
	assert.Equal(t, 1, stats.BySource[domain.SourceDBpedia].NotFound)
}

func TestCacheStatsCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.stats.err = errors.New("disk gone")

	_, err := execute(t, "cache", "stats")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading cache stats: disk gone")
}

func TestCacheStatsCmd_RejectsArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "cache", "stats", "extra")

	assert.Error(t, err)
}
