package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

type cacheSlot struct {
	key  domain.ConceptKey
	kind domain.Kind
}

// CacheStore is an in-memory implementation of driven.CacheStore.
// Entries do not survive a restart; it backs tests and --cache-backend=memory.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[cacheSlot]domain.CachedEntry
}

// NewCacheStore creates a new in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		entries: make(map[cacheSlot]domain.CachedEntry),
	}
}

// Get retrieves the entry for key and kind.
func (s *CacheStore) Get(_ context.Context, key domain.ConceptKey, kind domain.Kind) (*domain.CachedEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[cacheSlot{key: key, kind: kind}]
	if !ok {
		return nil, false, nil
	}
	entry.Payload = append([]byte(nil), entry.Payload...)
	return &entry, true, nil
}

// Put stores or replaces an entry.
func (s *CacheStore) Put(_ context.Context, entry domain.CachedEntry) error {
	if !entry.Requested.IsValid() {
		return fmt.Errorf("%w: cache kind %q", domain.ErrInvalidInput, entry.Requested)
	}
	entry.Payload = append([]byte(nil), entry.Payload...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[cacheSlot{key: entry.Key, kind: entry.Requested}] = entry
	return nil
}

// Stats counts entries by kind and source.
func (s *CacheStore) Stats(_ context.Context) (domain.CacheStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.CacheStats{
		BySource: make(map[domain.Source]domain.SourceStat),
		Location: "memory",
	}
	for _, entry := range s.entries {
		stats.Add(entry.Key.Source, entry.Kind)
	}
	return stats, nil
}

// Len returns the number of stored entries.
func (s *CacheStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close is a no-op.
func (s *CacheStore) Close() error {
	return nil
}
