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
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dealpipe/orchestrator/internal/queue"
	"github.com/dealpipe/orchestrator/internal/repo"
	"github.com/dealpipe/orchestrator/internal/tasks"
	"github.com/dealpipe/orchestrator/internal/worker"
)

// Provider header names for the task manager's two-phase webhook
// registration: a handshake secret on first registration, then an
// HMAC-SHA256 signature over the raw body on every subsequent delivery.
const (
	hookSecretHeader    = "X-Hook-Secret"
	hookSignatureHeader = "X-Hook-Signature"
)

// TasksWebhook implements §4.2. chi does not buffer request bodies for
// middleware by default, so the handler reads the full raw body itself via
// io.ReadAll before any JSON decoding — required for HMAC verification to
// see exactly the bytes the provider signed.
func TasksWebhook(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tenantID, err := resolveTenant(r, "", d.DefaultTenant)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("tasks webhook: read body: %w", err))
			return
		}

		if handshakeSecret := r.Header.Get(hookSecretHeader); handshakeSecret != "" {
			handleHandshake(ctx, w, d, tenantID, handshakeSecret)
			return
		}

		signature := r.Header.Get(hookSignatureHeader)
		if signature == "" {
			writeJSONError(w, http.StatusUnauthorized, fmt.Errorf("tasks webhook: missing %s", hookSignatureHeader))
			return
		}

		handleEventDelivery(ctx, w, d, tenantID, body, signature)
	}
}

// handleHandshake persists the shared secret under Integration (tenant,
// tasks) and echoes it back, per §4.2's handshake-mode contract.
func handleHandshake(ctx context.Context, w http.ResponseWriter, d Deps, tenantID uuid.UUID, secret string) {
	cfg := map[string]any{"secret": secret}
	if err := repo.UpsertIntegration(ctx, d.Pool, tenantID, repo.IntegrationTasks, cfg); err != nil {
		d.Logger.ErrorContext(ctx, "tasks webhook: persist handshake secret failed", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	if d.SecretCache != nil {
		d.SecretCache.Invalidate(ctx, tenantID)
	}
	w.Header().Set(hookSecretHeader, secret)
	w.WriteHeader(http.StatusOK)
}

// handleEventDelivery implements §4.2's event-mode contract: look up the
// stored secret, verify the signature over the raw body in constant time,
// parse, and enqueue one TASKS_PROCESS job per task-resource event. Any
// internal error after signature verification still replies 200 (§4.2,
// §7: never let the provider deactivate the webhook over a transient
// fault) but is logged.
func handleEventDelivery(ctx context.Context, w http.ResponseWriter, d Deps, tenantID uuid.UUID, body []byte, signatureHex string) {
	var (
		secret string
		err    error
	)
	if d.SecretCache != nil {
		secret, err = d.SecretCache.Lookup(ctx, tenantID)
	} else {
		var integration *repo.Integration
		integration, err = repo.GetIntegration(ctx, d.Pool, tenantID, repo.IntegrationTasks)
		if integration != nil {
			secret, _ = integration.Config["secret"].(string)
		}
	}
	if err != nil {
		d.Logger.ErrorContext(ctx, "tasks webhook: secret lookup failed", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusUnauthorized, fmt.Errorf("tasks webhook: secret unavailable"))
		return
	}
	if secret == "" {
		writeJSONError(w, http.StatusUnauthorized, fmt.Errorf("tasks webhook: no registered secret for tenant"))
		return
	}

	if !tasks.VerifySignature(secret, body, signatureHex) {
		writeJSONError(w, http.StatusUnauthorized, fmt.Errorf("tasks webhook: invalid signature"))
		return
	}

	delivery, err := tasks.ParseDelivery(body)
	if err != nil {
		d.Logger.ErrorContext(ctx, "tasks webhook: parse delivery failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, ev := range delivery.Events {
		if !ev.IsTask() {
			continue
		}
		if err := dispatchTaskEvent(ctx, d, tenantID, ev); err != nil {
			d.Logger.ErrorContext(ctx, "tasks webhook: dispatch event failed",
				slog.String("task_gid", ev.TaskGID), slog.String("error", err.Error()))
		}
	}

	w.WriteHeader(http.StatusOK)
}

func dispatchTaskEvent(ctx context.Context, d Deps, tenantID uuid.UUID, ev tasks.Event) error {
	claimed, err := repo.ClaimIdempotencyKey(ctx, d.Pool, ev.IdempotencyKey())
	if err != nil {
		return fmt.Errorf("claim idempotency key: %w", err)
	}
	if !claimed {
		return nil
	}

	payload := worker.TasksProcessPayload{TaskGID: ev.TaskGID, ProjectGID: ev.ProjectGID}
	env, err := queue.NewEnvelope(queue.JobTasksProcess, tenantID.String(), payload, "")
	if err != nil {
		if relErr := repo.ReleaseIdempotencyKey(ctx, d.Pool, ev.IdempotencyKey()); relErr != nil {
			d.Logger.ErrorContext(ctx, "tasks webhook: release idempotency key failed", slog.String("error", relErr.Error()))
		}
		return fmt.Errorf("build envelope: %w", err)
	}
	if _, err := d.Queue.Enqueue(ctx, env); err != nil {
		if relErr := repo.ReleaseIdempotencyKey(ctx, d.Pool, ev.IdempotencyKey()); relErr != nil {
			d.Logger.ErrorContext(ctx, "tasks webhook: release idempotency key failed", slog.String("error", relErr.Error()))
		}
		return fmt.Errorf("enqueue tasks process: %w", err)
	}
	return nil
}
