// Package cache keeps public list responses in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/common/metrics"
)

// ListCache stores serialized list responses per resource and filter
// variant. A nil *ListCache is a disabled cache: lookups miss and writes are
// dropped. Redis errors are logged and treated as misses.
type ListCache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	log    logger.Logger
}

func New(client redis.Cmdable, ttl time.Duration, prefix string, log logger.Logger) *ListCache {
	if prefix == "" {
		prefix = "finportal"
	}
	return &ListCache{client: client, ttl: ttl, prefix: prefix, log: log}
}

func (c *ListCache) key(resource, variant string) string {
	return fmt.Sprintf("%s:list:%s:%s", c.prefix, resource, variant)
}

// Get decodes the cached value into dest and reports whether it was found.
func (c *ListCache) Get(ctx context.Context, resource, variant string, dest interface{}) bool {
	if c == nil {
		return false
	}
	val, err := c.client.Get(ctx, c.key(resource, variant)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.warn("get", resource, err)
		}
		metrics.CacheLookups.WithLabelValues(resource, "miss").Inc()
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		metrics.CacheLookups.WithLabelValues(resource, "miss").Inc()
		return false
	}
	metrics.CacheLookups.WithLabelValues(resource, "hit").Inc()
	return true
}

// Set stores value for the configured TTL.
func (c *ListCache) Set(ctx context.Context, resource, variant string, value interface{}) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(resource, variant), data, c.ttl).Err(); err != nil {
		c.warn("set", resource, err)
	}
}

// Invalidate drops every cached variant of resource.
func (c *ListCache) Invalidate(ctx context.Context, resource string) {
	if c == nil {
		return
	}
	keys, err := c.client.Keys(ctx, c.key(resource, "*")).Result()
	if err != nil {
		c.warn("keys", resource, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.warn("del", resource, err)
		return
	}
	c.log.Debug("List cache invalidated", map[string]interface{}{
		"resource": resource,
		"count":    len(keys),
	})
}

func (c *ListCache) warn(op, resource string, err error) {
	stdErr := errors.NewCacheOperationFailedError(op, err)
	c.log.Warn("List cache operation failed", map[string]interface{}{
		"resource": resource,
		"code":     stdErr.Code,
		"error":    stdErr.Details,
	})
}
