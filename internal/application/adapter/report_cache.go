package adapter

import (
	"context"

	"github.com/studyroom/backend/internal/domain/entity"
)

// ReportCache caches the monthly summary so the overview widget does not
// re-run the bucket queries on every request. A cache miss returns
// (nil, nil); cache failures are soft and must never fail the report.
type ReportCache interface {
	// GetMonthlySummary returns the cached summary for a key, or nil on miss.
	GetMonthlySummary(ctx context.Context, key string) (*entity.MonthlySummary, error)

	// SetMonthlySummary stores a summary under a key with the cache's TTL.
	SetMonthlySummary(ctx context.Context, key string, summary *entity.MonthlySummary) error

	// Invalidate drops all cached summaries, called after a record write.
	Invalidate(ctx context.Context) error
}
