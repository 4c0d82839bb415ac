package driving

import (
	"context"

	"github.com/tingbok/tingbok/internal/core/domain"
)

// CacheStatsService reports read-only cache statistics.
type CacheStatsService interface {
	CacheStats(ctx context.Context) (domain.CacheStats, error)
}
