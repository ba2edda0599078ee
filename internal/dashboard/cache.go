package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL = time.Minute
	cachePrefix     = "dashboard:stats:"
	genPrefix       = "dashboard:gen:"
	genTTL          = 24 * time.Hour
)

// StatsCache stores computed stats per owner and period. Every Delete bumps
// a per-owner generation; SetIfCurrent only writes when the generation read
// before computing is still current, so stats computed across an
// invalidation are dropped.
type StatsCache interface {
	Get(ctx context.Context, owner uuid.UUID, period string) (*Stats, error)
	Generation(ctx context.Context, owner uuid.UUID) (int64, error)
	SetIfCurrent(ctx context.Context, owner uuid.UUID, period string, gen int64, stats Stats) (bool, error)
	Delete(ctx context.Context, owner uuid.UUID) error
}

// RedisCache is the Redis-backed StatsCache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ StatsCache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(owner uuid.UUID, period string) string {
	return cachePrefix + owner.String() + ":" + period
}

func genKey(owner uuid.UUID) string {
	return genPrefix + owner.String()
}

// Get returns nil, nil on a miss.
func (c *RedisCache) Get(ctx context.Context, owner uuid.UUID, period string) (*Stats, error) {
	data, err := c.client.Get(ctx, cacheKey(owner, period)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Generation is 0 until the first Delete.
func (c *RedisCache) Generation(ctx context.Context, owner uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(owner)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// KEYS[1] generation, KEYS[2] stats; ARGV gen, payload, ttl ms.
var setIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

func (c *RedisCache) SetIfCurrent(ctx context.Context, owner uuid.UUID, period string, gen int64, stats Stats) (bool, error) {
	data, err := json.Marshal(stats)
	if err != nil {
		return false, err
	}
	stored, err := setIfCurrent.Run(ctx, c.client,
		[]string{genKey(owner), cacheKey(owner, period)},
		strconv.FormatInt(gen, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Delete bumps the generation and drops every period for owner.
func (c *RedisCache) Delete(ctx context.Context, owner uuid.UUID) error {
	keys := make([]string, len(periods))
	for i, p := range periods {
		keys[i] = cacheKey(owner, p)
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(owner))
		pipe.Expire(ctx, genKey(owner), genTTL)
		pipe.Del(ctx, keys...)
		return nil
	})
	return err
}
