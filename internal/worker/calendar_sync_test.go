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
	"testing"

	"github.com/dealpipe/orchestrator/internal/calendar"
	"github.com/dealpipe/orchestrator/internal/repo"
)

// scriptedCalendar is a calendar.Client fake whose FullSync/IncrementalSync
// return a fixed page regardless of arguments, for calendar_sync tests.
type scriptedCalendar struct {
	page        calendar.Page
	tokenGoneOn string
}

func (s *scriptedCalendar) Watch(context.Context, calendar.WatchRequest) (calendar.WatchResult, error) {
	return calendar.WatchResult{}, nil
}
func (s *scriptedCalendar) Stop(context.Context, string, string) error { return nil }
func (s *scriptedCalendar) FullSync(context.Context, string, int, string) (calendar.Page, error) {
	return s.page, nil
}
func (s *scriptedCalendar) IncrementalSync(_ context.Context, _ string, syncToken, _ string) (calendar.Page, error) {
	if syncToken == s.tokenGoneOn {
		return calendar.Page{}, calendar.ErrTokenGone
	}
	return s.page, nil
}

func TestHandleCalendarSync_MaterializesNewDealEvent(t *testing.T) {
	pool := newTestPool(t)
	tenantID := seedTenant(t, pool)
	ctx := context.Background()

	if err := repo.UpsertPipelineSection(ctx, pool, repo.PipelineSection{
		TenantID: tenantID, ProjectGID: pipelineProjectGID, SectionGID: "sec-fm", StageKey: repo.StageFirstMeeting, Enabled: true,
	}); err != nil {
		t.Fatalf("upsert pipeline section: %v", err)
	}
	if err := repo.InsertChannel(ctx, pool, repo.PushChannel{
		TenantID: tenantID, CalendarID: "cal-primary", ChannelID: "chan-1", ResourceID: "res-1", Status: repo.ChannelActive,
	}); err != nil {
		t.Fatalf("insert channel: %v", err)
	}

	cal := &scriptedCalendar{page: calendar.Page{
		Events: []calendar.Event{
			{EventID: "evt-cs-1", Title: "Nimbus Systems — Jordan Founder [deal]", Status: "confirmed"},
		},
		NextSyncToken: "sync-token-1",
	}}
	ft := newFakeTasks()
	fd := newFakeDocs()
	d := testDeps(pool, &fakeQueue{}, cal, ft, fd, &fakeLLM{})

	payload := CalendarSyncPayload{CalendarID: "cal-primary", ChannelID: "chan-1"}
	raw, _ := json.Marshal(payload)
	if err := HandleCalendarSync(ctx, d, tenantID, raw); err != nil {
		t.Fatalf("HandleCalendarSync: %v", err)
	}

	deal, err := repo.GetDealByEvent(ctx, pool, tenantID, "cal-primary", "evt-cs-1")
	if err != nil {
		t.Fatalf("get deal by event: %v", err)
	}
	if deal == nil {
		t.Fatal("expected deal to be created")
	}
	if deal.Company != "Nimbus Systems" || deal.Founder != "Jordan Founder" {
		t.Errorf("company/founder = %q/%q, want Nimbus Systems/Jordan Founder", deal.Company, deal.Founder)
	}
	if deal.TaskRecordGID == "" {
		t.Error("expected task record gid to be set by materialization")
	}
	if deal.DocRootID == "" {
		t.Error("expected doc root id to be set by materialization")
	}

	channel, err := repo.GetChannelByID(ctx, pool, tenantID, "chan-1")
	if err != nil {
		t.Fatalf("get channel: %v", err)
	}
	if channel.SyncToken != "sync-token-1" {
		t.Errorf("sync token = %q, want sync-token-1", channel.SyncToken)
	}
}

func TestHandleCalendarSync_SkipsNonDealAndCancelledEvents(t *testing.T) {
	pool := newTestPool(t)
	tenantID := seedTenant(t, pool)
	ctx := context.Background()

	if err := repo.InsertChannel(ctx, pool, repo.PushChannel{
		TenantID: tenantID, CalendarID: "cal-primary", ChannelID: "chan-2", ResourceID: "res-2", Status: repo.ChannelActive,
	}); err != nil {
		t.Fatalf("insert channel: %v", err)
	}

	cal := &scriptedCalendar{page: calendar.Page{
		Events: []calendar.Event{
			{EventID: "evt-plain", Title: "Weekly standup", Status: "confirmed"},
			{EventID: "evt-cancelled", Title: "Foo Co — Bar Founder [deal]", Status: "cancelled"},
		},
	}}
	d := testDeps(pool, &fakeQueue{}, cal, newFakeTasks(), newFakeDocs(), &fakeLLM{})

	payload := CalendarSyncPayload{CalendarID: "cal-primary", ChannelID: "chan-2"}
	raw, _ := json.Marshal(payload)
	if err := HandleCalendarSync(ctx, d, tenantID, raw); err != nil {
		t.Fatalf("HandleCalendarSync: %v", err)
	}

	if deal, _ := repo.GetDealByEvent(ctx, pool, tenantID, "cal-primary", "evt-plain"); deal != nil {
		t.Error("non-deal event must not create a deal")
	}
	if deal, _ := repo.GetDealByEvent(ctx, pool, tenantID, "cal-primary", "evt-cancelled"); deal != nil {
		t.Error("cancelled event must not create a deal")
	}
}

func TestHandleCalendarSync_AbsentChannelIsNoOp(t *testing.T) {
	pool := newTestPool(t)
	tenantID := seedTenant(t, pool)
	ctx := context.Background()

	cal := &scriptedCalendar{}
	d := testDeps(pool, &fakeQueue{}, cal, newFakeTasks(), newFakeDocs(), &fakeLLM{})

	payload := CalendarSyncPayload{CalendarID: "cal-x", ChannelID: "does-not-exist"}
	raw, _ := json.Marshal(payload)
	if err := HandleCalendarSync(ctx, d, tenantID, raw); err != nil {
		t.Fatalf("HandleCalendarSync: %v", err)
	}
}
