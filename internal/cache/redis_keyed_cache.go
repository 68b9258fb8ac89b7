/*
SPDX-FileCopyrightText: Copyright (c) 2026 NVIDIA CORPORATION & AFFILIATES. All rights reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.

SPDX-License-Identifier: Apache-2.0
*/

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKeyedCache is a cache-aside read-through cache backed by Redis,
// the same shape as KeyedCache but for values that must stay consistent
// across every ingress replica rather than live per-process. Values are
// JSON-encoded; a miss is not an error, just a cache.ErrMiss.
type RedisKeyedCache[V any] struct {
	redis  *RedisClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// ErrMiss is returned by RedisKeyedCache.Get when the key is absent.
var ErrMiss = errors.New("cache: miss")

// NewRedisKeyedCache builds a RedisKeyedCache namespaced under prefix.
func NewRedisKeyedCache[V any](redisClient *RedisClient, prefix string, ttl time.Duration, logger *slog.Logger) *RedisKeyedCache[V] {
	return &RedisKeyedCache[V]{redis: redisClient, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *RedisKeyedCache[V]) fullKey(key string) string {
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

// Get returns the cached value, cache.ErrMiss on a cache miss, or the
// underlying Redis error on failure. Callers should treat any non-ErrMiss
// error as "cache unavailable" and fall through to the source of truth.
func (c *RedisKeyedCache[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V
	raw, err := c.redis.Client().Get(ctx, c.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrMiss
		}
		return zero, err
	}
	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, fmt.Errorf("redis keyed cache: decode %q: %w", key, err)
	}
	return v, nil
}

// Set writes value under key with the cache's configured TTL. Failures are
// logged and swallowed: a failed cache write must never fail the request
// that is populating the cache from the source of truth.
func (c *RedisKeyedCache[V]) Set(ctx context.Context, key string, value V) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("redis keyed cache encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.redis.Client().Set(ctx, c.fullKey(key), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("redis keyed cache set failed", slog.String("key", key), slog.Any("error", err))
	}
}

// Invalidate removes key from the cache ahead of its TTL, e.g. when a push
// channel is replaced or stopped.
func (c *RedisKeyedCache[V]) Invalidate(ctx context.Context, key string) {
	if err := c.redis.Client().Del(ctx, c.fullKey(key)).Err(); err != nil {
		c.logger.Warn("redis keyed cache invalidate failed", slog.String("key", key), slog.Any("error", err))
	}
}
