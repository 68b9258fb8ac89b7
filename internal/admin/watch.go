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

package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dealpipe/orchestrator/internal/calendar"
	"github.com/dealpipe/orchestrator/internal/repo"
)

const defaultCalendarID = "primary"

// watchStartRequest is the POST /admin/calendar/watch/start body (§6).
type watchStartRequest struct {
	CalendarID   string `json:"calendarId" validate:"omitempty"`
	ChannelToken string `json:"channelToken" validate:"omitempty"`
	TenantID     string `json:"tenantId" validate:"omitempty,uuid"`
}

// WatchStart implements §4.3 Start: allocate a fresh channel, call the
// provider to create the watch, persist the row, then run a full sync
// solely to obtain an initial sync_token.
func WatchStart(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req watchStartRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		calendarID := req.CalendarID
		if calendarID == "" {
			calendarID = defaultCalendarID
		}

		tenantID, err := resolveTenant(req.TenantID, d.DefaultTenant)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		channelID := uuid.NewString()
		watchResult, err := d.Calendar.Watch(ctx, calendar.WatchRequest{
			CalendarID:   calendarID,
			ChannelID:    channelID,
			ChannelToken: req.ChannelToken,
			Address:      d.IngressPublicBaseURL + "/webhooks/calendar",
		})
		if err != nil {
			writeJSONError(w, http.StatusBadGateway, fmt.Errorf("watch start: provider watch: %w", err))
			return
		}

		channel := repo.PushChannel{
			TenantID:     tenantID,
			CalendarID:   calendarID,
			ChannelID:    channelID,
			ResourceID:   watchResult.ResourceID,
			ChannelToken: req.ChannelToken,
			ExpirationMs: watchResult.ExpirationMs,
			Status:       repo.ChannelActive,
		}
		if err := repo.InsertChannel(ctx, d.Pool, channel); err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Errorf("watch start: persist channel: %w", err))
			return
		}

		// §4.3 Start: a full sync solely to obtain an initial sync_token,
		// which the provider returns on the last page. Events themselves are
		// not processed here — that is CALENDAR_SYNC's job, triggered by the
		// next push notification.
		pageToken := ""
		for {
			page, err := d.Calendar.FullSync(ctx, calendarID, 30, pageToken)
			if err != nil {
				d.Logger.ErrorContext(ctx, "watch start: initial full sync failed", "error", err.Error())
				break
			}
			if page.NextSyncToken != "" {
				if err := repo.SetSyncTokenOnActive(ctx, d.Pool, tenantID, calendarID, page.NextSyncToken); err != nil {
					d.Logger.ErrorContext(ctx, "watch start: persist initial sync token failed", "error", err.Error())
				}
			}
			if page.NextPageToken == "" {
				break
			}
			pageToken = page.NextPageToken
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"channelId":    channelID,
			"resourceId":   watchResult.ResourceID,
			"expirationMs": watchResult.ExpirationMs,
			"calendarId":   calendarID,
		})
	}
}

// watchReplaceRequest is the POST /admin/calendar/watch/replace body (§6).
type watchReplaceRequest struct {
	CalendarID string `json:"calendarId" validate:"omitempty"`
	TenantID   string `json:"tenantId" validate:"omitempty,uuid"`
}

// WatchReplace implements §4.3 Replace: create the new provider watch,
// copy the old channel's token and sync_token onto the new row, mark the
// old row replaced and insert the new row in one transaction, then stop
// the old channel. No read sees the calendar without an active row, and at
// most one active row exists per (tenant, calendar_id) at a time.
func WatchReplace(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req watchReplaceRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		calendarID := req.CalendarID
		if calendarID == "" {
			calendarID = defaultCalendarID
		}

		tenantID, err := resolveTenant(req.TenantID, d.DefaultTenant)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		newChannelID, oldChannelID, err := replaceChannel(ctx, d, tenantID, calendarID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"newChannelId": newChannelID,
			"oldChannelId": oldChannelID,
		})
	}
}

// replaceChannel is the §4.3 Replace sequence, shared by the HTTP handler
// and the scheduler's expiry sweep.
func replaceChannel(ctx context.Context, d Deps, tenantID uuid.UUID, calendarID string) (newChannelID, oldChannelID string, err error) {
	old, err := repo.GetActiveChannel(ctx, d.Pool, tenantID, calendarID)
	if err != nil {
		return "", "", fmt.Errorf("replace: lookup active channel: %w", err)
	}
	if old == nil {
		return "", "", fmt.Errorf("replace: no active channel for calendar %q", calendarID)
	}

	newChannelID = uuid.NewString()
	watchResult, err := d.Calendar.Watch(ctx, calendar.WatchRequest{
		CalendarID:   calendarID,
		ChannelID:    newChannelID,
		ChannelToken: old.ChannelToken,
		Address:      d.IngressPublicBaseURL + "/webhooks/calendar",
	})
	if err != nil {
		return "", "", fmt.Errorf("replace: provider watch: %w", err)
	}

	// create-new, carrying the old sync_token forward immediately so the
	// new row is never without one.
	newChannel := repo.PushChannel{
		TenantID:     tenantID,
		CalendarID:   calendarID,
		ChannelID:    newChannelID,
		ResourceID:   watchResult.ResourceID,
		ChannelToken: old.ChannelToken,
		SyncToken:    old.SyncToken,
		ExpirationMs: watchResult.ExpirationMs,
		Status:       repo.ChannelActive,
	}

	// mark-old-replaced must happen before InsertChannel, which would
	// otherwise violate the "at most one active per calendar" unique index;
	// the old row clears the active slot, then the new row claims it. Both
	// writes commit in one transaction, so no reader sees the calendar
	// without an active row, and the provider's new watch is already live
	// by the time the old row stops being active.
	if err := repo.WithTx(ctx, d.Pool, func(tx pgx.Tx) error {
		if err := repo.MarkChannelStatus(ctx, tx, tenantID, old.ChannelID, repo.ChannelReplaced); err != nil {
			return fmt.Errorf("replace: mark old replaced: %w", err)
		}
		if err := repo.InsertChannel(ctx, tx, newChannel); err != nil {
			return fmt.Errorf("replace: insert new channel: %w", err)
		}
		return nil
	}); err != nil {
		return "", "", err
	}

	if d.ChannelCache != nil {
		d.ChannelCache.Invalidate(ctx, tenantID, old.ChannelID)
	}

	// stop-old is best-effort: the old channel may already be expired at
	// the provider, and that is not a failure worth surfacing.
	if err := d.Calendar.Stop(ctx, old.ChannelID, old.ResourceID); err != nil {
		d.Logger.ErrorContext(ctx, "replace: stop old channel failed (ignored)",
			"channel_id", old.ChannelID, "error", err.Error())
	}

	return newChannelID, old.ChannelID, nil
}

// watchStopRequest is the POST /admin/calendar/watch/stop body (§6).
type watchStopRequest struct {
	ChannelID string `json:"channelId" validate:"required"`
	TenantID  string `json:"tenantId" validate:"omitempty,uuid"`
}

// WatchStop implements §4.3 Stop: provider stop + mark row stopped.
func WatchStop(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req watchStopRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		tenantID, err := resolveTenant(req.TenantID, d.DefaultTenant)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		channel, err := repo.GetChannelByID(ctx, d.Pool, tenantID, req.ChannelID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Errorf("watch stop: lookup channel: %w", err))
			return
		}
		if channel == nil {
			writeJSONError(w, http.StatusNotFound, fmt.Errorf("watch stop: channel %q not found", req.ChannelID))
			return
		}

		if err := d.Calendar.Stop(ctx, channel.ChannelID, channel.ResourceID); err != nil {
			d.Logger.ErrorContext(ctx, "watch stop: provider stop failed (ignored)",
				"channel_id", channel.ChannelID, "error", err.Error())
		}
		if err := repo.MarkChannelStatus(ctx, d.Pool, tenantID, channel.ChannelID, repo.ChannelStopped); err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Errorf("watch stop: mark stopped: %w", err))
			return
		}
		if d.ChannelCache != nil {
			d.ChannelCache.Invalidate(ctx, tenantID, channel.ChannelID)
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"channelId": channel.ChannelID,
			"status":    "stopped",
		})
	}
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("validate request body: %w", err)
	}
	return nil
}
