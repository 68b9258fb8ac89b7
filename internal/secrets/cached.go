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

package secrets

import (
	"context"
	"sync"
	"time"
)

const defaultTTL = 5 * time.Minute

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// CachedStore wraps a Store with the 5-minute in-process cache called for
// in §6 and §9's "shared mutable state...protected by a one-shot guard;
// tests must be able to reset them" design note. It is safe for concurrent
// use; Clear resets it for tests.
type CachedStore struct {
	backend Store
	ttl     time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachedStore wraps backend with the default 5-minute TTL.
func NewCachedStore(backend Store) *CachedStore {
	return &CachedStore{backend: backend, ttl: defaultTTL, entries: make(map[string]cacheEntry)}
}

func (c *CachedStore) Get(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	if e, ok := c.entries[name]; ok && time.Now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	v, err := c.backend.Get(ctx, name)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[name] = cacheEntry{value: v, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return v, nil
}

// Clear empties the cache, used by tests that rotate a secret mid-run.
func (c *CachedStore) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
