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

// Package ingress implements the two public, provider-facing webhook
// endpoints (§4.1, §4.2) and liveness (§6): the only HTTP surface that
// never carries CORS and is deliberately opaque to callers beyond the
// 200/4xx codes required by each provider's retry contract.
package ingress

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealpipe/orchestrator/internal/queue"
	"github.com/dealpipe/orchestrator/internal/secrets"
)

// Deps bundles every collaborator the ingress handlers need. A single
// instance is built once in cmd/ingress/main.go and shared by the router.
type Deps struct {
	Pool          *pgxpool.Pool
	Queue         queue.Client
	Secrets       secrets.Store
	Logger        *slog.Logger
	DefaultTenant string // TENANT_ID env default, §4.0 resolver chain's last link

	// ChannelCache and SecretCache are optional read-through caches in
	// front of the push-channel and tasks-webhook-secret lookups; nil is
	// valid and simply means "always go to Postgres".
	ChannelCache *ChannelCache
	SecretCache  *SecretCache
}
