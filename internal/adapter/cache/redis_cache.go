package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/K-Gaydukov/marketplace/internal/usecase"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func statusKey(orderID int64) string {
	return "order:status:" + strconv.FormatInt(orderID, 10)
}

func (r *RedisCache) SetStatus(ctx context.Context, orderID int64, status string) error {
	return r.rdb.Set(ctx, statusKey(orderID), status, r.ttl).Err()
}

func (r *RedisCache) GetStatus(ctx context.Context, orderID int64) (string, bool, error) {
	val, err := r.rdb.Get(ctx, statusKey(orderID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.OrderCache = (*RedisCache)(nil)
