package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
)

const cacheKeyPrefix = "table:"

// Cache is the subset of the redis cache repository the decorator needs.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheMetrics receives hit/miss observations.
type CacheMetrics interface {
	RecordCacheOperation(hit bool, duration time.Duration)
}

// Cached wraps a TableStore with a short-lived read cache. A read is valid
// for the configured TTL; any successful write invalidates every cached
// table, forcing the next read of any table to hit the store. There is no
// background refresh.
type Cached struct {
	inner   TableStore
	cache   Cache
	ttl     time.Duration
	metrics CacheMetrics
	logger  *zap.Logger
}

// NewCached builds the caching decorator.
func NewCached(inner TableStore, cache Cache, ttl time.Duration, metrics CacheMetrics, logger *zap.Logger) *Cached {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{inner: inner, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

// ReadTable implements TableStore with read-through caching. Cache
// failures degrade to direct store reads.
func (c *Cached) ReadTable(ctx context.Context, table Table) ([]Row, error) {
	key := cacheKeyPrefix + table.Name

	start := time.Now()
	var cached []Row
	err := c.cache.Get(ctx, key, &cached)
	if err == nil {
		c.observe(true, time.Since(start))
		return cached, nil
	}
	c.observe(false, time.Since(start))
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		c.logger.Warn("table cache read failed", zap.String("table", table.Name), zap.Error(err))
	}

	rows, err := c.inner.ReadTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, rows, c.ttl); err != nil {
		c.logger.Warn("table cache write failed", zap.String("table", table.Name), zap.Error(err))
	}
	return rows, nil
}

// OverwriteTable implements TableStore and drops all cached tables on
// success.
func (c *Cached) OverwriteTable(ctx context.Context, table Table, rows []Row) error {
	if err := c.inner.OverwriteTable(ctx, table, rows); err != nil {
		return err
	}
	c.invalidateAll(ctx)
	return nil
}

// AppendRow implements TableStore and drops all cached tables on success.
func (c *Cached) AppendRow(ctx context.Context, table Table, row Row) error {
	if err := c.inner.AppendRow(ctx, table, row); err != nil {
		return err
	}
	c.invalidateAll(ctx)
	return nil
}

func (c *Cached) invalidateAll(ctx context.Context) {
	if err := c.cache.DeleteByPattern(ctx, cacheKeyPrefix+"*"); err != nil {
		c.logger.Warn("table cache invalidation failed", zap.Error(err))
	}
}

func (c *Cached) observe(hit bool, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordCacheOperation(hit, d)
	}
}
