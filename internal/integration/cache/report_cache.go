// Package cache implements Redis-backed caching for report data.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/studyroom/backend/internal/application/adapter"
	"github.com/studyroom/backend/internal/domain/entity"
)

// keyPrefix namespaces all report cache entries.
const keyPrefix = "report:"

// reportCache implements adapter.ReportCache on Redis.
type reportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a Redis-backed report cache with the given TTL.
func NewReportCache(client *redis.Client, ttl time.Duration) adapter.ReportCache {
	return &reportCache{
		client: client,
		ttl:    ttl,
	}
}

// GetMonthlySummary returns the cached summary for a key, or nil on miss.
func (c *reportCache) GetMonthlySummary(ctx context.Context, key string) (*entity.MonthlySummary, error) {
	payload, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var summary entity.MonthlySummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		// A corrupt entry is treated as a miss; it will be overwritten.
		return nil, nil
	}
	return &summary, nil
}

// SetMonthlySummary stores a summary under a key with the cache TTL.
func (c *reportCache) SetMonthlySummary(ctx context.Context, key string, summary *entity.MonthlySummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Invalidate drops all cached report entries.
func (c *reportCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to drop cache keys: %w", err)
	}
	return nil
}
