// Package cache provides a short-TTL Redis cache for computed
// leaderboards. The cache is strictly best-effort: any Redis failure
// reads as a miss and the caller recomputes.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/clipscore/internal/domain/types"
	"github.com/okian/clipscore/pkg/logger"
	"github.com/okian/clipscore/pkg/metrics"
)

// defaultTTL keeps rankings fresh enough between sync runs.
const defaultTTL = 30 * time.Second

const keyPrefix = "rankings:"

// Option applies a configuration option to the RankingsCache.
type Option func(*RankingsCache)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *RankingsCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger for the cache.
func WithLogger(l logger.Logger) Option {
	return func(c *RankingsCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// RankingsCache stores serialized leaderboards keyed by window.
type RankingsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// New creates a rankings cache over an existing Redis client.
func New(client *redis.Client, opts ...Option) *RankingsCache {
	c := &RankingsCache{
		client: client,
		ttl:    defaultTTL,
		logger: logger.Get().Named("cache"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the cached leaderboard for a window, or ok=false on a
// miss or any Redis failure.
func (c *RankingsCache) Get(ctx context.Context, window types.Window) ([]types.RankedEntry, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+string(window)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn(ctx, "rankings cache read failed", logger.Error(err))
		}
		metrics.RecordRankingsCacheMiss()
		return nil, false
	}

	var entries []types.RankedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.logger.Warn(ctx, "rankings cache entry corrupt", logger.Error(err))
		metrics.RecordRankingsCacheMiss()
		return nil, false
	}

	metrics.RecordRankingsCacheHit()
	return entries, true
}

// Set stores a computed leaderboard. Failures are logged and ignored;
// the next read just recomputes.
func (c *RankingsCache) Set(ctx context.Context, window types.Window, entries []types.RankedEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		c.logger.Warn(ctx, "rankings cache encode failed", logger.Error(err))
		return
	}
	if err := c.client.Set(ctx, keyPrefix+string(window), raw, c.ttl).Err(); err != nil {
		c.logger.Warn(ctx, "rankings cache write failed", logger.Error(err))
	}
}
