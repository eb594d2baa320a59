package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache is a thin JSON cache over redis. A Cache built with a nil client is a
// no-op: Get always misses and Set/Delete do nothing.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCache(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

// Enabled reports whether a redis client backs the cache.
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get loads key into target and reports whether it was found. Redis errors
// are logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string, target interface{}) bool {
	if !c.Enabled() {
		return false
	}
	cached, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache get failed")
		return false
	}
	if err := json.Unmarshal([]byte(cached), target); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache entry could not be decoded")
		return false
	}
	return true
}

// Set stores value under key with the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	c.SetWithin(ctx, key, value, 0)
}

// SetWithin stores value under key for at most limit. A zero limit uses the
// cache TTL.
func (c *Cache) SetWithin(ctx context.Context, key string, value interface{}, limit time.Duration) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache entry could not be encoded")
		return
	}
	if err := c.rdb.Set(ctx, key, data, cappedTTL(c.ttl, limit)).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}

// Delete removes keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.WithError(err).WithField("keys", keys).Warn("cache delete failed")
	}
}

// cappedTTL returns ttl bounded by limit. Zero means "no bound" for limit and
// "no expiry" for ttl.
func cappedTTL(ttl, limit time.Duration) time.Duration {
	if limit <= 0 {
		return ttl
	}
	if ttl <= 0 || ttl > limit {
		return limit
	}
	return ttl
}

func referenceListsKey(establishmentID string) string {
	return fmt.Sprintf("establishments:%s:reference_lists", establishmentID)
}

func blockageStatsKey(establishmentID string) string {
	return fmt.Sprintf("establishments:%s:blockage_stats", establishmentID)
}
