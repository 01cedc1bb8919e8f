// Package cache stores short-lived JSON snapshots of read-heavy listings.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when no entry exists.
var ErrMiss = errors.New("cache miss")

// Cache is a namespaced key/value store. Invalidate drops every key of a
// namespace by bumping its version, so no key scan is needed.
type Cache interface {
	Get(ctx context.Context, namespace, key string, dst any) error
	Set(ctx context.Context, namespace, key string, v any) error
	Invalidate(ctx context.Context, namespace string) error
}

// Options configures the Redis client.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

type redisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisClient connects and pings Redis. It returns nil when Addr is empty
// or the server is unreachable; callers then fall back to NewNop.
func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client, opts Options) Cache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "cache"
	}
	return &redisCache{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (c *redisCache) versionKey(namespace string) string {
	return c.prefix + ":" + namespace + ":v"
}

func (c *redisCache) dataKey(ctx context.Context, namespace, key string) (string, error) {
	ver, err := c.rdb.Get(ctx, c.versionKey(namespace)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("read cache version: %w", err)
	}
	sum := sha1.Sum([]byte(key))
	return fmt.Sprintf("%s:%s:%s:%x", c.prefix, namespace, strconv.FormatInt(ver, 10), sum[:]), nil
}

func (c *redisCache) Get(ctx context.Context, namespace, key string, dst any) error {
	k, err := c.dataKey(ctx, namespace, key)
	if err != nil {
		return err
	}
	bs, err := c.rdb.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(bs, dst); err != nil {
		return fmt.Errorf("cache decode: %w", err)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, namespace, key string, v any) error {
	k, err := c.dataKey(ctx, namespace, key)
	if err != nil {
		return err
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	return c.rdb.SetEx(ctx, k, bs, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, namespace string) error {
	return c.rdb.Incr(ctx, c.versionKey(namespace)).Err()
}

type nopCache struct{}

// NewNop returns a cache that never hits.
func NewNop() Cache { return nopCache{} }

func (nopCache) Get(context.Context, string, string, any) error { return ErrMiss }
func (nopCache) Set(context.Context, string, string, any) error { return nil }
func (nopCache) Invalidate(context.Context, string) error       { return nil }
