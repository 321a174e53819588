// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint for SCAN during prefix deletes.
const scanBatch = 100

// RedisCache shares resolved schemas between console processes.
type RedisCache struct {
	rdb        *redis.Client
	namespace  string
	defaultTTL time.Duration
	closed     atomic.Bool
	counters
}

// RedisCacheOptions configures NewRedisCache.
type RedisCacheOptions struct {
	URL            string // redis://host:port/db
	Prefix         string // namespace for every key, e.g. "ocms:"
	DefaultTTL     time.Duration
	ConnectTimeout time.Duration
}

// DefaultRedisCacheOptions returns the options used when only a URL is known.
func DefaultRedisCacheOptions() RedisCacheOptions {
	return RedisCacheOptions{
		Prefix:         "ocms:",
		DefaultTTL:     5 * time.Minute,
		ConnectTimeout: 5 * time.Second,
	}
}

// NewRedisCache dials Redis and fails unless it answers PING within the
// connect timeout.
func NewRedisCache(opts RedisCacheOptions) (*RedisCache, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}
	def := DefaultRedisCacheOptions()
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = def.ConnectTimeout
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = def.DefaultTTL
	}

	ro, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	ro.DialTimeout = opts.ConnectTimeout
	rdb := redis.NewClient(ro)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisCache{rdb: rdb, namespace: opts.Prefix, defaultTTL: opts.DefaultTTL}, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	b, err := c.rdb.Get(ctx, c.namespace+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.miss()
		return nil, ErrCacheMiss
	case err != nil:
		return nil, err
	}
	c.hit()
	return b, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.rdb.Set(ctx, c.namespace+key, value, ttl).Err(); err != nil {
		return err
	}
	c.set()
	return nil
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return c.rdb.Del(ctx, c.namespace+key).Err()
}

// DeleteByPrefix walks matching keys with SCAN and unlinks them in batches.
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	it := c.rdb.Scan(ctx, 0, c.namespace+prefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for it.Next(ctx) {
		batch = append(batch, it.Val())
		if len(batch) == scanBatch {
			if err := c.rdb.Unlink(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := it.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.rdb.Unlink(ctx, batch...).Err()
	}
	return nil
}

// Close implements Cache. Closing twice is a no-op.
func (c *RedisCache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.rdb.Close()
}

var _ Cache = (*RedisCache)(nil)
