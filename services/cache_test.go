package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheWithoutRedisIsNoop(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(nil, 0, quietLogger())
	assert.False(t, cache.Enabled())

	cache.Set(ctx, "k", map[string]int{"a": 1})
	var out map[string]int
	assert.False(t, cache.Get(ctx, "k", &out))
	cache.Delete(ctx, "k")

	var missing *Cache
	assert.False(t, missing.Enabled())
}

func TestCappedTTL(t *testing.T) {
	tests := []struct {
		name       string
		ttl, limit time.Duration
		want       time.Duration
	}{
		{"no limit keeps ttl", 5 * time.Minute, 0, 5 * time.Minute},
		{"limit shortens ttl", 5 * time.Minute, time.Minute, time.Minute},
		{"shorter ttl wins", 30 * time.Second, time.Minute, 30 * time.Second},
		{"no expiry gets the limit", 0, time.Minute, time.Minute},
		{"blockage stats", 5 * time.Minute, blockageStatsTTL, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cappedTTL(tt.ttl, tt.limit))
		})
	}
}
