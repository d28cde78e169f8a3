package counter

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisKey = "irishgrants:estimates"

// RedisStore shares the count between replicas with INCR.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb, key: redisKey}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Increment(ctx context.Context) (int64, error) {
	return r.client.Incr(ctx, r.key).Result()
}

func (r *RedisStore) Get(ctx context.Context) (int64, error) {
	n, err := r.client.Get(ctx, r.key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
