package driven

import (
	"context"

	"github.com/tingbok/tingbok/internal/core/domain"
)

// CacheStore persists cache entries keyed by (source, URI, requested kind).
//
// Implementations decide the record format only; where the store lives is
// configuration. Freshness is not evaluated here: Get returns stale entries
// too and the caller applies the TTL.
//
// Concurrent Put calls for different keys must not block each other, and a
// reader must never observe a partially written entry.
type CacheStore interface {
	// Get returns the entry answering kind for key, if any.
	// A negative entry has Kind == domain.KindNotFound.
	Get(ctx context.Context, key domain.ConceptKey, kind domain.Kind) (*domain.CachedEntry, bool, error)

	// Put writes an entry, replacing any previous entry for the same key and kind.
	Put(ctx context.Context, entry domain.CachedEntry) error

	// Stats returns counts partitioned by kind and source.
	Stats(ctx context.Context) (domain.CacheStats, error)

	// Close releases resources.
	Close() error
}
