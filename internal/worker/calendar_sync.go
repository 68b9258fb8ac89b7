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

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dealpipe/orchestrator/internal/apperrors"
	"github.com/dealpipe/orchestrator/internal/calendar"
	"github.com/dealpipe/orchestrator/internal/repo"
)

const fullSyncWindowDays = 30
const fullSyncPageSize = 250

// CalendarSyncPayload is the §4.5 CALENDAR_SYNC job payload.
type CalendarSyncPayload struct {
	CalendarID string `json:"calendarId"`
	ChannelID  string `json:"channelId"`
}

// HandleCalendarSync implements §4.5: the incremental/full sync loop that
// upserts deals and kicks off materialization for newly detected ones.
func HandleCalendarSync(ctx context.Context, d Deps, tenantID uuid.UUID, raw json.RawMessage) error {
	var p CalendarSyncPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return apperrors.Wrap(apperrors.Admission, fmt.Errorf("calendar sync: decode payload: %w", err))
	}

	channel, err := repo.GetChannelByID(ctx, d.Pool, tenantID, p.ChannelID)
	if err != nil {
		return apperrors.Wrap(apperrors.Transient, err)
	}
	if channel == nil {
		// §4.5 step 1: abort silently if absent.
		return nil
	}

	pageToken := ""
	syncToken := channel.SyncToken
	incremental := syncToken != ""
	var nextSyncToken string

	for {
		var page calendar.Page
		if incremental {
			page, err = d.Calendar.IncrementalSync(ctx, p.CalendarID, syncToken, pageToken)
			if errors.Is(err, calendar.ErrTokenGone) {
				// §4.5 step 2: token gone, fall back to full sync.
				incremental = false
				pageToken = ""
				page, err = d.Calendar.FullSync(ctx, p.CalendarID, fullSyncWindowDays, pageToken)
			}
		} else {
			page, err = d.Calendar.FullSync(ctx, p.CalendarID, fullSyncWindowDays, pageToken)
		}
		if err != nil {
			return apperrors.Wrap(apperrors.Transient, fmt.Errorf("calendar sync: %w", err))
		}

		for _, ev := range page.Events {
			if err := processSyncedEvent(ctx, d, tenantID, p.CalendarID, ev); err != nil {
				// §4.5 failure policy: per-event exceptions are logged and
				// do not abort the batch.
				d.Logger.ErrorContext(ctx, "calendar sync: event processing failed",
					slog.String("event_id", ev.EventID), slog.String("error", err.Error()))
			}
		}

		if page.NextSyncToken != "" {
			nextSyncToken = page.NextSyncToken
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	// §4.5 step 7: persist onto whichever channel is currently active for
	// this calendar, not necessarily the triggering channel.
	if nextSyncToken != "" {
		if err := repo.SetSyncTokenOnActive(ctx, d.Pool, tenantID, p.CalendarID, nextSyncToken); err != nil {
			return apperrors.Wrap(apperrors.Transient, err)
		}
	}
	return nil
}

func processSyncedEvent(ctx context.Context, d Deps, tenantID uuid.UUID, calendarID string, ev calendar.Event) error {
	if ev.Status == "cancelled" {
		return nil
	}
	if !calendar.IsDealEvent(ev) {
		return nil
	}

	company, founder := calendar.ExtractCompanyFounder(ev)
	deal, err := repo.UpsertDeal(ctx, d.Pool, tenantID, calendarID, ev.EventID, company, founder)
	if err != nil {
		return fmt.Errorf("upsert deal: %w", err)
	}

	if deal.TaskRecordGID == "" {
		materializeDeal(ctx, d, tenantID, deal)
	}
	return nil
}

// materializeDeal implements §4.6: document workspace then task creation.
// Both steps are best-effort and logged; a step-1 failure does not block
// step 2 since the task is more user-visible.
func materializeDeal(ctx context.Context, d Deps, tenantID uuid.UUID, deal *repo.Deal) {
	docRootURL, docURLs, err := d.Docs.CreateWorkspace(ctx, fmt.Sprintf("%s — %s", deal.Company, deal.Founder))
	if err != nil {
		d.Logger.ErrorContext(ctx, "materialize deal: create workspace failed",
			slog.String("deal_id", deal.ID.String()), slog.String("error", err.Error()))
	} else {
		urls := make(map[string]string, len(docURLs))
		for name, u := range docURLs {
			urls[string(name)] = u
		}
		if err := repo.SetDocWorkspace(ctx, d.Pool, deal.ID, docRootURL, urls); err != nil {
			d.Logger.ErrorContext(ctx, "materialize deal: persist doc workspace failed",
				slog.String("deal_id", deal.ID.String()), slog.String("error", err.Error()))
		}
	}

	notes := fmt.Sprintf("Deal workspace: %s", docRootURL)
	section, err := firstMeetingSectionGID(ctx, d, tenantID)
	if err != nil {
		d.Logger.ErrorContext(ctx, "materialize deal: resolve FIRST_MEETING section failed",
			slog.String("deal_id", deal.ID.String()), slog.String("error", err.Error()))
		return
	}

	taskGID, err := d.Tasks.CreateTask(ctx, pipelineProjectGID, section, dealTaskName(deal), notes)
	if err != nil {
		d.Logger.ErrorContext(ctx, "materialize deal: create task failed",
			slog.String("deal_id", deal.ID.String()), slog.String("error", err.Error()))
		return
	}
	if err := repo.SetTaskRecordGID(ctx, d.Pool, deal.ID, taskGID); err != nil {
		d.Logger.ErrorContext(ctx, "materialize deal: persist task record gid failed",
			slog.String("deal_id", deal.ID.String()), slog.String("error", err.Error()))
	}
}

func dealTaskName(deal *repo.Deal) string {
	return fmt.Sprintf("%s — %s", deal.Company, deal.Founder)
}

// pipelineProjectGID is the single pipeline project every deal's task is
// created in. Multi-project pipelines are not modeled (§1 scope: single
// default tenant acceptable extends to a single pipeline project).
const pipelineProjectGID = "pipeline"

func firstMeetingSectionGID(ctx context.Context, d Deps, tenantID uuid.UUID) (string, error) {
	sections, err := repo.ListPipelineSections(ctx, d.Pool, tenantID, pipelineProjectGID)
	if err != nil {
		return "", err
	}
	for _, s := range sections {
		if s.StageKey == repo.StageFirstMeeting && s.Enabled {
			return s.SectionGID, nil
		}
	}
	return "", fmt.Errorf("no enabled section mapped to %s", repo.StageFirstMeeting)
}
