// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisNamespace = "lunch"
	redisSweepBatch       = 500
)

// Each row is a hash {ns}:entry:{key} with fields v (value), c and e (unix nanos).
// {ns}:expiry is a sorted set of keys scored by expiry in unix microseconds.
var (
	redisSweepScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', '(' .. ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
for _, id in ipairs(ids) do
	redis.call('DEL', ARGV[3] .. id)
	redis.call('ZREM', KEYS[1], id)
end
return #ids
`)

	redisClearScript = redis.NewScript(`
local ids = redis.call('ZRANGE', KEYS[1], 0, -1)
for _, id in ipairs(ids) do
	redis.call('DEL', ARGV[1] .. id)
end
redis.call('DEL', KEYS[1])
return #ids
`)

	redisStatsScript = redis.NewScript(`
local total = redis.call('ZCARD', KEYS[1])
local valid = redis.call('ZCOUNT', KEYS[1], '(' .. ARGV[1], '+inf')
local size = 0
for _, id in ipairs(redis.call('ZRANGE', KEYS[1], 0, -1)) do
	size = size + redis.call('HSTRLEN', ARGV[2] .. id, 'v')
end
return {total, valid, size}
`)
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

// RedisStore is a Store on a Redis server, for deployments that share one cache between replicas.
type RedisStore struct {
	client      *redis.Client
	entryPrefix string
	expiryKey   string
}

// OpenRedisStore connects to Redis and verifies the connection with PING.
func OpenRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, storeErr(BackendRedis, "connect", err)
	}

	return NewRedisStore(client, opts.Namespace), nil
}

// NewRedisStore wraps an existing client. An empty namespace defaults to "lunch".
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = defaultRedisNamespace
	}
	return &RedisStore{
		client:      client,
		entryPrefix: namespace + ":entry:",
		expiryKey:   namespace + ":expiry",
	}
}

// Name implements Store.
func (s *RedisStore) Name() string { return BackendRedis }

// Put implements Store. The hash and the expiry index are written in one MULTI/EXEC.
func (s *RedisStore) Put(ctx context.Context, row Row) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		entry := s.entryPrefix + row.Key
		pipe.Del(ctx, entry)
		pipe.HSet(ctx, entry,
			"v", row.Value,
			"c", row.CreatedAt.UnixNano(),
			"e", row.ExpiresAt.UnixNano(),
		)
		pipe.ZAdd(ctx, s.expiryKey, redis.Z{
			Score:  float64(row.ExpiresAt.UnixMicro()),
			Member: row.Key,
		})
		return nil
	})
	return storeErr(BackendRedis, "put", err)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (Row, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.entryPrefix+key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(fields) == 0) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, storeErr(BackendRedis, "get", err)
	}

	created, err := strconv.ParseInt(fields["c"], 10, 64)
	if err != nil {
		return Row{}, false, storeErr(BackendRedis, "get", err)
	}
	expires, err := strconv.ParseInt(fields["e"], 10, 64)
	if err != nil {
		return Row{}, false, storeErr(BackendRedis, "get", err)
	}

	return Row{
		Key:       key,
		Value:     []byte(fields["v"]),
		CreatedAt: time.Unix(0, created),
		ExpiresAt: time.Unix(0, expires),
	}, true, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.entryPrefix+key)
		pipe.ZRem(ctx, s.expiryKey, key)
		return nil
	})
	if err != nil {
		return false, storeErr(BackendRedis, "delete", err)
	}
	return del.Val() > 0, nil
}

// DeleteExpired implements Store. Each batch runs as one server-side script.
func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	total := 0
	cutoff := strconv.FormatInt(now.UnixMicro(), 10)
	for {
		n, err := redisSweepScript.Run(ctx, s.client, []string{s.expiryKey},
			cutoff, redisSweepBatch, s.entryPrefix).Int()
		total += n
		if err != nil {
			return total, storeErr(BackendRedis, "delete expired", err)
		}
		if n < redisSweepBatch {
			return total, nil
		}
	}
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	n, err := redisClearScript.Run(ctx, s.client, []string{s.expiryKey}, s.entryPrefix).Int()
	if err != nil {
		return 0, storeErr(BackendRedis, "clear", err)
	}
	return n, nil
}

// Stats implements Store. SizeBytes is the summed length of the stored payloads.
func (s *RedisStore) Stats(ctx context.Context, now time.Time) (StoreStats, error) {
	vals, err := redisStatsScript.Run(ctx, s.client, []string{s.expiryKey},
		strconv.FormatInt(now.UnixMicro(), 10), s.entryPrefix).Int64Slice()
	if err != nil {
		return StoreStats{}, storeErr(BackendRedis, "stats", err)
	}
	if len(vals) != 3 {
		return StoreStats{}, storeErr(BackendRedis, "stats", errors.New("unexpected script reply"))
	}

	return StoreStats{
		Total:     int(vals[0]),
		Valid:     int(vals[1]),
		Expired:   int(vals[0] - vals[1]),
		SizeBytes: vals[2],
	}, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return storeErr(BackendRedis, "close", s.client.Close())
}

var _ Store = (*RedisStore)(nil)
