package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps records as plain Redis string keys. No TTL is set: the
// cart state is durable data, not a cache.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Load(ctx context.Context, namespace string) ([]byte, error) {
	data, err := r.client.Get(ctx, recordKey(namespace)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisStore) Save(ctx context.Context, namespace string, data []byte) error {
	if err := r.client.Set(ctx, recordKey(namespace), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, namespace string) error {
	if err := r.client.Del(ctx, recordKey(namespace)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func recordKey(namespace string) string {
	return fmt.Sprintf("kv:%s", namespace)
}
