package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrKeyNotFound is returned by KeyStore.Take for unknown or expired keys.
var ErrKeyNotFound = errors.New("key not found")

// KeyStore keeps short-lived single-use secrets such as OAuth state and reset tokens.
type KeyStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Take returns the value and deletes the key.
	Take(ctx context.Context, key string) (string, error)
}

// RedisKeyStore implements KeyStore on Redis.
type RedisKeyStore struct {
	client *redis.Client
}

var _ KeyStore = (*RedisKeyStore)(nil)

func NewRedisKeyStore(client *redis.Client) *RedisKeyStore {
	return &RedisKeyStore{client: client}
}

func (s *RedisKeyStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisKeyStore) Take(ctx context.Context, key string) (string, error) {
	val, err := s.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	return val, err
}
