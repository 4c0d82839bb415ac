package domain

import (
	"os"
	"path/filepath"
	"time"
)

// Cache TTL defaults. Positive entries match the inventory-md cache lifetime.
const (
	DefaultCacheTTL         = 60 * 24 * time.Hour
	DefaultNegativeCacheTTL = 7 * 24 * time.Hour
	DefaultMaxDepth         = 15
	DefaultUpstreamTimeout  = 10 * time.Second
	DefaultBatchConcurrency = 4
)

// CacheBackend selects the cache store implementation.
type CacheBackend string

// Available cache backends.
const (
	// CacheBackendFile stores one JSON file per record in a shared directory.
	CacheBackendFile CacheBackend = "file"

	// CacheBackendSQLite stores records in a local SQLite database.
	CacheBackendSQLite CacheBackend = "sqlite"

	// CacheBackendMemory keeps records in process memory only.
	CacheBackendMemory CacheBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendFile, CacheBackendSQLite, CacheBackendMemory:
		return true
	default:
		return false
	}
}

// Settings is the complete runtime configuration.
type Settings struct {
	Cache       CacheSettings
	Hierarchy   HierarchySettings
	Sources     map[Source]SourceSettings
	RootMapping *RootMapping
	Server      ServerSettings
	Log         LogSettings
	Vocabulary  VocabularySettings
}

// CacheSettings configures the cache store.
type CacheSettings struct {
	Backend     CacheBackend
	Dir         string
	TTL         time.Duration
	NegativeTTL time.Duration
}

// HierarchySettings configures the hierarchy builder.
type HierarchySettings struct {
	MaxDepth int
}

// SourceSettings configures one upstream adapter.
type SourceSettings struct {
	Enabled bool
	BaseURL string

	// SearchURL serves label search when it lives on another host.
	// Empty means BaseURL.
	SearchURL string

	Timeout           time.Duration
	Language          string
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	UserAgent         string
}

// ServerSettings configures the HTTP surface.
type ServerSettings struct {
	Addr             string
	BatchConcurrency int
}

// LogSettings configures logging.
type LogSettings struct {
	Level  string
	Pretty bool
}

// VocabularySettings points at the static package vocabulary.
type VocabularySettings struct {
	Path string
}

// DefaultUserAgent identifies tingbok to upstream services.
const DefaultUserAgent = "tingbok/0.1 (SKOS lookup service)"

// DefaultSettings returns a working configuration for all three sources.
func DefaultSettings() Settings {
	return Settings{
		Cache: CacheSettings{
			Backend:     CacheBackendFile,
			Dir:         DefaultCacheDir(),
			TTL:         DefaultCacheTTL,
			NegativeTTL: DefaultNegativeCacheTTL,
		},
		Hierarchy: HierarchySettings{MaxDepth: DefaultMaxDepth},
		Sources: map[Source]SourceSettings{
			SourceAgrovoc:  defaultSource("https://agrovoc.fao.org/browse/rest/v1", 2, 2),
			SourceDBpedia:  dbpediaSource(),
			SourceWikidata: defaultSource("https://www.wikidata.org", 5, 5),
		},
		RootMapping: DefaultRootMapping(),
		Server: ServerSettings{
			Addr:             ":5100",
			BatchConcurrency: DefaultBatchConcurrency,
		},
		Log: LogSettings{Level: "info"},
	}
}

func defaultSource(baseURL string, rps float64, burst int) SourceSettings {
	return SourceSettings{
		Enabled:           true,
		BaseURL:           baseURL,
		Timeout:           DefaultUpstreamTimeout,
		Language:          "en",
		RequestsPerSecond: rps,
		Burst:             burst,
		MaxRetries:        3,
		UserAgent:         DefaultUserAgent,
	}
}

func dbpediaSource() SourceSettings {
	s := defaultSource("https://dbpedia.org", 2, 2)
	s.SearchURL = "https://lookup.dbpedia.org/api"
	return s
}

// DefaultCacheDir returns ~/.cache/tingbok/skos, or a temp-dir fallback.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "tingbok", "skos")
	}
	return filepath.Join(os.TempDir(), "tingbok", "skos")
}
