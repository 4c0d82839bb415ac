package services

import (
	"context"

	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/core/ports/driven"
	"github.com/tingbok/tingbok/internal/core/ports/driving"
)

// Ensure CacheStatsService implements the interface.
var _ driving.CacheStatsService = (*CacheStatsService)(nil)

// CacheStatsService reports counts over the cache store.
type CacheStatsService struct {
	cache driven.CacheStore
}

// NewCacheStatsService creates a new cache statistics service.
func NewCacheStatsService(cache driven.CacheStore) *CacheStatsService {
	return &CacheStatsService{cache: cache}
}

// CacheStats returns entry counts by kind and source. Every known source is
// present in BySource, with zero counts when nothing is cached for it.
func (s *CacheStatsService) CacheStats(ctx context.Context) (domain.CacheStats, error) {
	if s.cache == nil {
		return domain.CacheStats{}, domain.ErrNotImplemented
	}
	stats, err := s.cache.Stats(ctx)
	if err != nil {
		return domain.CacheStats{}, err
	}
	if stats.BySource == nil {
		stats.BySource = make(map[domain.Source]domain.SourceStat)
	}
	for _, source := range domain.AllSources() {
		if _, ok := stats.BySource[source]; !ok {
			stats.BySource[source] = domain.SourceStat{}
		}
	}
	return stats, nil
}
