package kgraph

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	platformredis "sectracker/internal/platform/redis"
	id "sectracker/pkg/domain"
)

// DefaultEntityTTL bounds how stale a cached graph entity may get. Ownership
// data changes rarely; a day keeps repeat lookups cheap without pinning
// acquisitions forever.
const DefaultEntityTTL = 24 * time.Hour

// RedisEntityCache caches fetched entities in Redis. Every failure is a
// miss: the graph HTTP fetch is the source of truth and cache outages must
// never fail a lookup.
type RedisEntityCache struct {
	client *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisEntityCache builds an entity cache over the shared Redis client.
func NewRedisEntityCache(client *platformredis.Client, ttl time.Duration, logger *slog.Logger) *RedisEntityCache {
	if ttl <= 0 {
		ttl = DefaultEntityTTL
	}
	return &RedisEntityCache{client: client, ttl: ttl, logger: logger}
}

func entityKey(entityID id.EntityID) string {
	return "kgraph:entity:" + entityID.String()
}

// Get returns the cached entity, or (nil, false) on miss or any cache error.
func (c *RedisEntityCache) Get(ctx context.Context, entityID id.EntityID) (*Entity, bool) {
	payload, err := c.client.Get(ctx, entityKey(entityID)).Bytes()
	if err != nil {
		return nil, false
	}
	var entity Entity
	if err := json.Unmarshal(payload, &entity); err != nil {
		if c.logger != nil {
			c.logger.DebugContext(ctx, "entity cache payload corrupt",
				"entity_id", entityID,
				"error", err,
			)
		}
		return nil, false
	}
	return &entity, true
}

// Set stores the entity with the configured TTL. Errors are logged and
// swallowed.
func (c *RedisEntityCache) Set(ctx context.Context, entity *Entity) {
	if entity == nil {
		return
	}
	payload, err := json.Marshal(entity)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, entityKey(entity.ID), payload, c.ttl).Err(); err != nil {
		if c.logger != nil {
			c.logger.DebugContext(ctx, "entity cache write failed",
				"entity_id", entity.ID,
				"error", err,
			)
		}
	}
}
