package service

import (
	"context"
	"errors"

	"github.com/youpolonia/cms-sub038/internal/domain"
	"github.com/youpolonia/cms-sub038/pkg/cache"
	"github.com/youpolonia/cms-sub038/pkg/logger"
)

// RedisStatusCache adapts the Redis cache service to the StatusCache
// collaborator. Cache trouble is logged and treated as a miss.
type RedisStatusCache struct {
	cache cache.Service
}

// NewRedisStatusCache creates a RedisStatusCache
func NewRedisStatusCache(c cache.Service) *RedisStatusCache {
	return &RedisStatusCache{cache: c}
}

// GetContentStatus returns the cached latest event status, if any
func (c *RedisStatusCache) GetContentStatus(ctx context.Context, tenantID string, contentID uint64) (domain.ScheduleStatus, bool) {
	status, err := c.cache.GetContentStatusRaw(ctx, tenantID, contentID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.GetLogger().Warn().Err(err).Uint64("content_id", contentID).Msg("status cache read failed")
		}
		return "", false
	}
	return domain.ScheduleStatus(status), true
}

// SetContentStatus caches the latest event status for a content item
func (c *RedisStatusCache) SetContentStatus(ctx context.Context, tenantID string, contentID uint64, status domain.ScheduleStatus) {
	if err := c.cache.SetContentStatusRaw(ctx, tenantID, contentID, string(status)); err != nil {
		logger.GetLogger().Warn().Err(err).Uint64("content_id", contentID).Msg("status cache write failed")
	}
}

// InvalidateContent drops cached reads for a content item
func (c *RedisStatusCache) InvalidateContent(ctx context.Context, tenantID string, contentID uint64) {
	if err := c.cache.InvalidateContent(ctx, tenantID, contentID); err != nil {
		logger.GetLogger().Warn().Err(err).Uint64("content_id", contentID).Msg("status cache invalidation failed")
	}
}
