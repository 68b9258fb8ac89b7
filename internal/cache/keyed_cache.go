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
	"flag"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dealpipe/orchestrator/internal/config"
)

const (
	defaultCacheMaxSize = 1000
	defaultCacheTTLSec  = 300
)

// CacheConfig holds cache configuration.
type CacheConfig struct {
	MaxSize int
	TTL     time.Duration
}

// CacheFlagPointers holds pointers to flag values for cache configuration.
type CacheFlagPointers struct {
	maxSize *int
	ttlSec  *int
}

// RegisterCacheFlags registers cache-related command-line flags.
// Returns a CacheFlagPointers that should be converted to CacheConfig
// after flag.Parse() is called.
func RegisterCacheFlags() *CacheFlagPointers {
	return &CacheFlagPointers{
		ttlSec: flag.Int("cache-ttl",
			config.GetEnvInt("DEALPIPE_CACHE_TTL", defaultCacheTTLSec),
			"Cache TTL in seconds"),
		maxSize: flag.Int("cache-max-size",
			config.GetEnvInt("DEALPIPE_CACHE_MAX_SIZE", defaultCacheMaxSize),
			"Cache max number of entries"),
	}
}

// ToCacheConfig converts flag pointers to CacheConfig.
// This should be called after flag.Parse().
func (p *CacheFlagPointers) ToCacheConfig() CacheConfig {
	return CacheConfig{
		MaxSize: *p.maxSize,
		TTL:     time.Duration(*p.ttlSec) * time.Second,
	}
}

// KeyedCache is a generic thread-safe in-process LRU cache with per-entry
// TTL expiration. The push-channel and secret read-through caches in
// internal/ingress are built on RedisKeyedCache instead, not on this type.
type KeyedCache[V any] struct {
	cache  *expirable.LRU[string, V]
	logger *slog.Logger
}

// NewKeyedCache creates a new keyed cache with the specified max size and TTL.
func NewKeyedCache[V any](maxSize int, ttl time.Duration, logger *slog.Logger) *KeyedCache[V] {
	return &KeyedCache[V]{
		cache:  expirable.NewLRU[string, V](maxSize, nil, ttl),
		logger: logger,
	}
}

// Get retrieves a single value by key. Returns the value and true on hit.
func (c *KeyedCache[V]) Get(key string) (V, bool) {
	return c.cache.Get(key)
}

// Set stores a value under the given key.
func (c *KeyedCache[V]) Set(key string, value V) {
	c.cache.Add(key, value)
}

// Invalidate removes a single key, used when the underlying record changes
// (channel replace/stop, secret rotation) so the next read misses and
// refetches from the source of truth.
func (c *KeyedCache[V]) Invalidate(key string) {
	c.cache.Remove(key)
}

// Size returns the number of entries in the cache.
func (c *KeyedCache[V]) Size() int {
	return c.cache.Len()
}

// Logger returns the cache's logger, for composing domain-specific caches
// on top of KeyedCache that want to log at the same level.
func (c *KeyedCache[V]) Logger() *slog.Logger {
	return c.logger
}
