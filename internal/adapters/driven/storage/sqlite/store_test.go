package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tingbok/tingbok/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create a temporary directory for the test database
	tempDir, err := os.MkdirTemp("", "tingbok-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	// Return cleanup function
	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

var hammer = domain.ConceptKey{Source: domain.SourceDBpedia, URI: "http://dbpedia.org/resource/Hammer"}

// ==================== Store Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.Equal(t, dbFile, filepath.Base(store.Path()))
	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, domain.CachedEntry{
		Key: hammer, Requested: domain.KindConcept, Kind: domain.KindConcept,
		Payload: []byte(`{"uri":"http://dbpedia.org/resource/Hammer"}`), FetchedAt: time.Now(), TTL: time.Hour,
	}))
	require.NoError(t, store.Close())

	// Migrations are not re-applied on reopen.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var versions int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)

	_, ok, err := store.Get(ctx, hammer, domain.KindConcept)
	require.NoError(t, err)
	assert.True(t, ok)
}

// ==================== CacheStore Tests ====================

func TestStore_PutAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	entry := domain.CachedEntry{
		Key:       hammer,
		Requested: domain.KindConcept,
		Kind:      domain.KindConcept,
		Payload:   []byte(`{"uri":"http://dbpedia.org/resource/Hammer","prefLabel":"Hammer","source":"dbpedia"}`),
		FetchedAt: now,
		TTL:       60 * 24 * time.Hour,
	}
	require.NoError(t, store.Put(ctx, entry))

	got, ok, err := store.Get(ctx, hammer, domain.KindConcept)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.KindConcept, got.Kind)
	assert.Equal(t, domain.KindConcept, got.Requested)
	assert.JSONEq(t, string(entry.Payload), string(got.Payload))
	assert.Equal(t, entry.TTL, got.TTL)
	assert.WithinDuration(t, now, got.FetchedAt, time.Millisecond)

	c, err := got.Concept()
	require.NoError(t, err)
	assert.Equal(t, "Hammer", c.PrefLabel)
}

func TestStore_Get_Miss(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, ok, err := store.Get(context.Background(), hammer, domain.KindLabels)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStore_NegativeEntry(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, domain.CachedEntry{
		Key: hammer, Requested: domain.KindLabels, Kind: domain.KindNotFound,
		FetchedAt: time.Now(), TTL: 7 * 24 * time.Hour,
	}))

	got, ok, err := store.Get(ctx, hammer, domain.KindLabels)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.IsNegative())
	assert.Empty(t, got.Payload)
	assert.Equal(t, 7*24*time.Hour, got.TTL)
}

func TestStore_LabelKey(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	key, err := domain.KeyForLabel(domain.SourceDBpedia, "Hammer", "en")
	require.NoError(t, err)
	payload := []byte(`{"uri":"http://dbpedia.org/resource/Hammer","prefLabel":"Hammer"}`)
	require.NoError(t, store.Put(ctx, domain.CachedEntry{
		Key: key, Requested: domain.KindConcept, Kind: domain.KindConcept,
		Payload: payload, FetchedAt: time.Now(), TTL: time.Hour,
	}))

	got, ok, err := store.Get(ctx, key, domain.KindConcept)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, string(payload), string(got.Payload))

	_, ok, err = store.Get(ctx, hammer, domain.KindConcept)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PutReplaces(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, domain.CachedEntry{
		Key: hammer, Requested: domain.KindConcept, Kind: domain.KindNotFound,
		FetchedAt: time.Now().Add(-time.Hour), TTL: time.Minute,
	}))
	require.NoError(t, store.Put(ctx, domain.CachedEntry{
		Key: hammer, Requested: domain.KindConcept, Kind: domain.KindConcept,
		Payload: []byte(`{"uri":"http://dbpedia.org/resource/Hammer"}`), FetchedAt: time.Now(), TTL: time.Hour,
	}))

	got, ok, err := store.Get(ctx, hammer, domain.KindConcept)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, got.IsNegative())

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Concepts)
	assert.Equal(t, 0, stats.NotFound)
}

func TestStore_Put_InvalidKind(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.Put(context.Background(), domain.CachedEntry{Key: hammer, Requested: domain.KindNotFound})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Stats(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()
	put := func(source domain.Source, uri string, requested, kind domain.Kind) {
		require.NoError(t, store.Put(ctx, domain.CachedEntry{
			Key:       domain.ConceptKey{Source: source, URI: uri},
			Requested: requested,
			Kind:      kind,
			Payload:   []byte(`{}`),
			FetchedAt: now,
			TTL:       time.Hour,
		}))
	}

	put(domain.SourceAgrovoc, "http://aims.fao.org/aos/agrovoc/c_12332", domain.KindConcept, domain.KindConcept)
	put(domain.SourceAgrovoc, "http://aims.fao.org/aos/agrovoc/c_8171", domain.KindConcept, domain.KindConcept)
	put(domain.SourceAgrovoc, "http://aims.fao.org/aos/agrovoc/c_12332", domain.KindLabels, domain.KindLabels)
	put(domain.SourceWikidata, "http://www.wikidata.org/entity/Q1", domain.KindConcept, domain.KindNotFound)
	put(domain.SourceWikidata, "http://www.wikidata.org/entity/Q2", domain.KindLabels, domain.KindNotFound)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Concepts)
	assert.Equal(t, 1, stats.Labels)
	assert.Equal(t, 2, stats.NotFound)
	assert.Equal(t, store.Path(), stats.Location)
	assert.Equal(t, domain.SourceStat{Concepts: 2, Labels: 1}, stats.BySource[domain.SourceAgrovoc])
	assert.Equal(t, domain.SourceStat{NotFound: 2}, stats.BySource[domain.SourceWikidata])
}

func TestStore_ConcurrentWrites(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Put(ctx, domain.CachedEntry{
				Key:       domain.ConceptKey{Source: domain.SourceWikidata, URI: "http://www.wikidata.org/entity/Q" + string(rune('0'+i))},
				Requested: domain.KindConcept,
				Kind:      domain.KindConcept,
				Payload:   []byte(`{}`),
				FetchedAt: time.Now(),
				TTL:       time.Hour,
			}))
		}(i)
	}
	wg.Wait()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Concepts)
}
