package feedback

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-feedback/internal/models"
)

const statsKeyPrefix = "event_stats:"

// RedisStatsCache caches derived event stats in Redis with a short TTL.
// A miss or any Redis failure falls back to the store.
type RedisStatsCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStatsCache(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{Client: client, TTL: ttl}
}

// Get returns the cached stats, or (nil, nil) on a miss.
func (c *RedisStatsCache) Get(ctx context.Context, eventID string) (*models.EventStats, error) {
	data, err := c.Client.Get(ctx, statsKeyPrefix+eventID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stats models.EventStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, eventID string, stats models.EventStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, statsKeyPrefix+eventID, data, c.TTL).Err()
}

func (c *RedisStatsCache) Invalidate(ctx context.Context, eventID string) error {
	return c.Client.Del(ctx, statsKeyPrefix+eventID).Err()
}
