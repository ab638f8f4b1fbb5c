// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"trade_integrity/internal/feature/integrity/domain/entity"
	"trade_integrity/internal/feature/integrity/usecase"
)

// CachingAuditRepository decorates an AuditRepository with Redis caching.
// Latest and List results are cached; Save invalidates the affected entries.
type CachingAuditRepository struct {
	inner     usecase.AuditRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

var _ usecase.AuditRepository = (*CachingAuditRepository)(nil)

// NewCachingAuditRepository decorates an AuditRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "audits".
func NewCachingAuditRepository(rdb *redis.Client, ttl time.Duration, inner usecase.AuditRepository, namespace string) *CachingAuditRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "audits"
	}
	return &CachingAuditRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		now:       time.Now,
	}
}

// Save stores the result and invalidates the cached latest entry and list pages.
func (c *CachingAuditRepository) Save(ctx context.Context, result *entity.AuditResult) error {
	if err := c.inner.Save(ctx, result); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}

	// Best effort: a stale entry expires with its TTL anyway
	if err := c.rdb.Del(ctx, c.latestKey(result.Instrument, result.Interval)).Err(); err != nil {
		slog.Warn("failed to invalidate latest audit cache", "instrument", result.Instrument, "error", err)
	}
	if err := c.deleteByPattern(ctx, c.listKeyPrefix()+"*"); err != nil {
		slog.Warn("failed to invalidate audit list cache", "error", err)
	}
	return nil
}

// Latest retrieves the latest audit, checking cache first then falling back to the database.
// Not-found results are not cached.
func (c *CachingAuditRepository) Latest(ctx context.Context, instrument string, interval entity.Timeframe) (*entity.AuditResult, error) {
	if c.rdb == nil {
		return c.inner.Latest(ctx, instrument, interval)
	}

	key := c.latestKey(instrument, interval)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.AuditResult
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.Latest(ctx, instrument, interval)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort), never past the close of the next candle
	if b, err := json.Marshal(out); err == nil {
		ttl := TTLUntilNextBoundary(interval, c.now(), c.ttl)
		_ = c.rdb.Set(ctx, key, b, ttl).Err()
	}

	return out, nil
}

// List retrieves recent audits, checking cache first then falling back to the database.
func (c *CachingAuditRepository) List(ctx context.Context, instrument string, limit int) ([]entity.AuditResult, error) {
	if c.rdb == nil {
		return c.inner.List(ctx, instrument, limit)
	}

	key := c.listKey(instrument, limit)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.AuditResult
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.List(ctx, instrument, limit)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// latestKey generates the cache key for the latest audit of an instrument and timeframe.
func (c *CachingAuditRepository) latestKey(instrument string, interval entity.Timeframe) string {
	return fmt.Sprintf("%s:latest:%s:%s",
		c.namespace,
		safe(instrument),
		safe(interval.String()),
	)
}

// listKey generates the cache key for one page of the audit list.
func (c *CachingAuditRepository) listKey(instrument string, limit int) string {
	scope := "*all"
	if instrument != "" {
		scope = safe(instrument)
	}
	return fmt.Sprintf("%s%s:%d", c.listKeyPrefix(), scope, limit)
}

// listKeyPrefix generates a prefix for invalidating every cached list page.
func (c *CachingAuditRepository) listKeyPrefix() string {
	return c.namespace + ":list:"
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingAuditRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes a key component so that distinct inputs never share a key.
// The separator ':' and glob characters used by SCAN are percent-encoded.
func safe(s string) string {
	return url.QueryEscape(s)
}
