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
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dealpipe/orchestrator/internal/calendar"
	"github.com/dealpipe/orchestrator/internal/queue"
	"github.com/dealpipe/orchestrator/internal/repo"
	"github.com/dealpipe/orchestrator/internal/worker"
)

// CalendarWebhook implements §4.1: the provider push-notification handler.
// Headers only, no body. Every failure path beyond the two explicit
// rejections answers 200 — the provider must not disable the channel on a
// transient storage fault.
func CalendarWebhook(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ping := calendar.ExtractPingHeaders(r.Header)

		if ping.ChannelID == "" || ping.ResourceID == "" {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("calendar webhook: missing channel_id or resource_id"))
			return
		}

		if ping.ResourceState == "sync" {
			// Initial handshake: acknowledge and do nothing.
			w.WriteHeader(http.StatusOK)
			return
		}

		tenantID, err := resolveTenant(r, "", d.DefaultTenant)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		var channel *repo.PushChannel
		if d.ChannelCache != nil {
			channel, err = d.ChannelCache.Lookup(ctx, tenantID, ping.ChannelID)
		} else {
			channel, err = repo.GetChannelByID(ctx, d.Pool, tenantID, ping.ChannelID)
		}
		if err != nil {
			d.Logger.ErrorContext(ctx, "calendar webhook: channel lookup failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusOK)
			return
		}
		if channel == nil || channel.ResourceID != ping.ResourceID ||
			(channel.ChannelToken != "" && channel.ChannelToken != ping.ChannelToken) {
			// Unknown channel, or resource_id/channel_token mismatch:
			// acknowledge and drop, do not retry the provider.
			w.WriteHeader(http.StatusOK)
			return
		}

		claimed, err := repo.ClaimIdempotencyKey(ctx, d.Pool, fmt.Sprintf("calendar_ping:%s:%s", ping.ChannelID, ping.MessageNumber))
		if err != nil {
			d.Logger.ErrorContext(ctx, "calendar webhook: idempotency claim failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusOK)
			return
		}
		if !claimed {
			w.WriteHeader(http.StatusOK)
			return
		}

		payload := worker.CalendarSyncPayload{CalendarID: channel.CalendarID, ChannelID: ping.ChannelID}
		env, err := queue.NewEnvelope(queue.JobCalendarSync, tenantID.String(), payload, "")
		if err != nil {
			d.Logger.ErrorContext(ctx, "calendar webhook: build envelope failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusOK)
			return
		}
		if _, err := d.Queue.Enqueue(ctx, env); err != nil {
			d.Logger.ErrorContext(ctx, "calendar webhook: enqueue failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusOK)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
