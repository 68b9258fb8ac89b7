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

package ingress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealpipe/orchestrator/internal/cache"
	"github.com/dealpipe/orchestrator/internal/repo"
)

const (
	channelCacheTTL = 5 * time.Minute
	secretCacheTTL  = 5 * time.Minute
)

// ChannelCache fronts repo.GetChannelByID with a Redis-backed read-through
// cache. Every ingress replica shares it, unlike the in-process KeyedCache
// the teacher uses for its own role lookups: a calendar push notification
// can land on any replica, so the cache layer here has to be process-
// independent rather than per-instance (§4.0/§9).
type ChannelCache struct {
	pool *pgxpool.Pool
	rc   *cache.RedisKeyedCache[repo.PushChannel]
}

// NewChannelCache builds a ChannelCache. redisClient may be nil, in which
// case Lookup always falls through to Postgres.
func NewChannelCache(pool *pgxpool.Pool, redisClient *cache.RedisClient, logger *slog.Logger) *ChannelCache {
	if redisClient == nil {
		return &ChannelCache{pool: pool}
	}
	return &ChannelCache{
		pool: pool,
		rc:   cache.NewRedisKeyedCache[repo.PushChannel](redisClient, "channel", channelCacheTTL, logger),
	}
}

// Lookup resolves an active/replaced channel by channel_id, populating the
// cache on a miss and tolerating a completely unavailable cache by falling
// straight through to Postgres.
func (c *ChannelCache) Lookup(ctx context.Context, tenantID uuid.UUID, channelID string) (*repo.PushChannel, error) {
	cacheKey := fmt.Sprintf("%s:%s", tenantID, channelID)

	// A miss and a genuinely unavailable cache are handled identically:
	// fall through to Postgres, the source of truth.
	if c.rc != nil {
		if v, err := c.rc.Get(ctx, cacheKey); err == nil {
			return &v, nil
		}
	}

	channel, err := repo.GetChannelByID(ctx, c.pool, tenantID, channelID)
	if err != nil {
		return nil, err
	}
	if channel != nil && c.rc != nil {
		c.rc.Set(ctx, cacheKey, *channel)
	}
	return channel, nil
}

// Invalidate drops a channel from the cache, called by the admin watch
// lifecycle on replace/stop so a stale row is never served from cache
// after the push channel transitions out of active.
func (c *ChannelCache) Invalidate(ctx context.Context, tenantID uuid.UUID, channelID string) {
	if c.rc == nil {
		return
	}
	c.rc.Invalidate(ctx, fmt.Sprintf("%s:%s", tenantID, channelID))
}

// SecretCache fronts the tasks-webhook shared-secret lookup the same way.
type SecretCache struct {
	pool *pgxpool.Pool
	rc   *cache.RedisKeyedCache[string]
}

// NewSecretCache builds a SecretCache. redisClient may be nil.
func NewSecretCache(pool *pgxpool.Pool, redisClient *cache.RedisClient, logger *slog.Logger) *SecretCache {
	if redisClient == nil {
		return &SecretCache{pool: pool}
	}
	return &SecretCache{
		pool: pool,
		rc:   cache.NewRedisKeyedCache[string](redisClient, "tasks_webhook_secret", secretCacheTTL, logger),
	}
}

// Lookup returns the stored tasks-webhook secret for tenantID, or "" if
// none has been registered yet (handshake not yet performed).
func (c *SecretCache) Lookup(ctx context.Context, tenantID uuid.UUID) (string, error) {
	cacheKey := tenantID.String()

	if c.rc != nil {
		if v, err := c.rc.Get(ctx, cacheKey); err == nil {
			return v, nil
		}
	}

	integration, err := repo.GetIntegration(ctx, c.pool, tenantID, repo.IntegrationTasks)
	if err != nil {
		return "", err
	}
	if integration == nil {
		return "", nil
	}
	secret, _ := integration.Config["secret"].(string)
	if secret != "" && c.rc != nil {
		c.rc.Set(ctx, cacheKey, secret)
	}
	return secret, nil
}

// Invalidate drops the cached secret, called after a handshake rotates it.
func (c *SecretCache) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if c.rc == nil {
		return
	}
	c.rc.Invalidate(ctx, tenantID.String())
}
