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

package shared

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/dealpipe/orchestrator/internal/calendar"
	"github.com/dealpipe/orchestrator/internal/docs"
	"github.com/dealpipe/orchestrator/internal/llm"
	"github.com/dealpipe/orchestrator/internal/queue"
	"github.com/dealpipe/orchestrator/internal/secrets"
	"github.com/dealpipe/orchestrator/internal/tasks"
)

// Secret names read from secrets.Store; these are the provider API
// credentials, distinct from the tasks-webhook HMAC secret (which lives
// in Postgres, per §4.2's handshake, not here).
const (
	SecretCalendarAPIKey = "calendar.api_key"
	SecretTasksAPIToken  = "tasks.api_token"
	SecretDocsAPIToken   = "docs.api_token"
	SecretLLMAPIKey      = "llm.api_key"
)

var (
	secretStoreOnce sync.Once
	secretStore     secrets.Store
)

// BuildSecretStore returns the process-scoped secrets.Store singleton
// (§9: "shared mutable state...initialized on first use, protected by a
// one-shot guard"). LOCAL_DEV selects secrets.EnvStore; the hosted
// implementation is out of scope per §1 and is not modeled beyond the
// interface, so the non-local path uses the same EnvStore today.
func BuildSecretStore(cfg Config) secrets.Store {
	secretStoreOnce.Do(func() {
		secretStore = secrets.NewCachedStore(secrets.NewEnvStore("DEALPIPE_SECRET_"))
	})
	return secretStore
}

// ResetSecretStoreForTest clears the sync.Once guard so tests can rebuild
// the singleton against a fresh environment.
func ResetSecretStoreForTest() {
	secretStoreOnce = sync.Once{}
	secretStore = nil
}

var (
	queueClientOnce sync.Once
	queueClient     queue.Client
)

// BuildQueueClient returns the process-scoped queue.Client singleton,
// selected by LOCAL_DEV per the §9 pluggable-queue design note.
func BuildQueueClient(cfg Config) queue.Client {
	queueClientOnce.Do(func() {
		dispatchURL := cfg.WorkerURL + "/tasks/dispatch"
		if cfg.LocalDev {
			queueClient = queue.NewLocalClient(dispatchURL)
			return
		}
		// Minting the real service-identity-backed OIDC token source is
		// the hosted deployment surface's concern, out of scope per §1;
		// the core only needs an oauth2.TokenSource to hand to
		// HTTPQueueClient. A hosted deployment supplies one (e.g. via its
		// service account's metadata server) by replacing this source
		// before calling BuildQueueClient in a real rollout.
		ts := oauth2.StaticTokenSource(&oauth2.Token{})
		queueClient = queue.NewHTTPQueueClient(cfg.QueueCreateTaskURL, dispatchURL, cfg.TasksInvokerSAEmail, ts)
	})
	return queueClient
}

// ResetQueueClientForTest clears the sync.Once guard.
func ResetQueueClientForTest() {
	queueClientOnce = sync.Once{}
	queueClient = nil
}

// BuildCalendarClient constructs the concrete calendar.Client from the
// tenant's stored Integration config (base URL) and the secret store (API
// key).
func BuildCalendarClient(ctx context.Context, store secrets.Store, baseURL string) (calendar.Client, error) {
	apiKey, err := store.Get(ctx, SecretCalendarAPIKey)
	if err != nil {
		return nil, fmt.Errorf("build calendar client: %w", err)
	}
	return calendar.NewHTTPClient(baseURL, apiKey), nil
}

// BuildTasksClient constructs the concrete tasks.Client.
func BuildTasksClient(ctx context.Context, store secrets.Store, baseURL string) (tasks.Client, error) {
	apiToken, err := store.Get(ctx, SecretTasksAPIToken)
	if err != nil {
		return nil, fmt.Errorf("build tasks client: %w", err)
	}
	return tasks.NewHTTPClient(baseURL, apiToken), nil
}

// BuildDocsClient constructs the concrete docs.Client.
func BuildDocsClient(ctx context.Context, store secrets.Store, baseURL string) (docs.Client, error) {
	apiToken, err := store.Get(ctx, SecretDocsAPIToken)
	if err != nil {
		return nil, fmt.Errorf("build docs client: %w", err)
	}
	return docs.NewHTTPClient(baseURL, apiToken), nil
}

// BuildLLMClient constructs the concrete llm.Client, backed by the
// Anthropic API per §4.5 [FULL].
func BuildLLMClient(ctx context.Context, store secrets.Store, model string) (llm.Client, error) {
	apiKey, err := store.Get(ctx, SecretLLMAPIKey)
	if err != nil {
		return nil, fmt.Errorf("build llm client: %w", err)
	}
	return llm.NewAnthropicClient(apiKey, model), nil
}
