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

	"github.com/dealpipe/orchestrator/internal/queue"
	"github.com/dealpipe/orchestrator/internal/repo"
)

func TestHandleStageAction_FirstMeetingAddsSubtasksAndNoCancel(t *testing.T) {
	pool := newTestPool(t)
	tenantID := seedTenant(t, pool)
	ctx := context.Background()

	deal, err := repo.UpsertDeal(ctx, pool, tenantID, "cal-1", "evt-1", "Acme Inc", "Jane Founder")
	if err != nil {
		t.Fatalf("upsert deal: %v", err)
	}
	if err := repo.SetTaskRecordGID(ctx, pool, deal.ID, "task-1"); err != nil {
		t.Fatalf("set task record gid: %v", err)
	}
	deal, err = repo.GetDeal(ctx, pool, deal.ID)
	if err != nil {
		t.Fatalf("get deal: %v", err)
	}

	ft := newFakeTasks()
	fq := &fakeQueue{}
	d := testDeps(pool, fq, fakeCalendar{}, ft, newFakeDocs(), &fakeLLM{})

	payload := StageActionPayload{
		TaskGID:       "task-1",
		SectionGID:    "sec-first-meeting",
		StageKey:      repo.StageFirstMeeting,
		ModifiedAtISO: "2026-07-31T10:00:00Z",
	}
	raw, _ := json.Marshal(payload)
	if err := HandleStageAction(ctx, d, tenantID, raw); err != nil {
		t.Fatalf("HandleStageAction: %v", err)
	}

	got, err := repo.GetDeal(ctx, pool, deal.ID)
	if err != nil {
		t.Fatalf("get deal after: %v", err)
	}
	if got.CurrentStage != repo.StageFirstMeeting {
		t.Errorf("current_stage = %q, want %q", got.CurrentStage, repo.StageFirstMeeting)
	}
	if len(ft.subtasks["task-1"]) != len(firstMeetingPrepSubtasks) {
		t.Errorf("got %d subtasks, want %d", len(ft.subtasks["task-1"]), len(firstMeetingPrepSubtasks))
	}
	if len(fq.snapshot()) != 0 {
		t.Errorf("FIRST_MEETING must not enqueue a follow-on job, got %d", len(fq.snapshot()))
	}
}

func TestHandleStageAction_InDiligenceEnqueuesResearchBatch(t *testing.T) {
	pool := newTestPool(t)
	tenantID := seedTenant(t, pool)
	ctx := context.Background()

	deal, err := repo.UpsertDeal(ctx, pool, tenantID, "cal-1", "evt-2", "Beta Corp", "Sam Founder")
	if err != nil {
		t.Fatalf("upsert deal: %v", err)
	}
	if err := repo.SetTaskRecordGID(ctx, pool, deal.ID, "task-2"); err != nil {
		t.Fatalf("set task record gid: %v", err)
	}
	fd := newFakeDocs()
	root, _, _ := fd.CreateWorkspace(ctx, "workspace")
	if err := repo.SetDocWorkspace(ctx, pool, deal.ID, root, map[string]string{}); err != nil {
		t.Fatalf("set doc workspace: %v", err)
	}

	ft := newFakeTasks()
	fq := &fakeQueue{}
	d := testDeps(pool, fq, fakeCalendar{}, ft, fd, &fakeLLM{})

	payload := StageActionPayload{
		TaskGID:       "task-2",
		SectionGID:    "sec-diligence",
		StageKey:      repo.StageInDiligence,
		ModifiedAtISO: "2026-07-31T11:00:00Z",
	}
	raw, _ := json.Marshal(payload)
	if err := HandleStageAction(ctx, d, tenantID, raw); err != nil {
		t.Fatalf("HandleStageAction: %v", err)
	}

	jobs := fq.snapshot()
	if len(jobs) != 1 || jobs[0].JobType != queue.JobResearchBatch {
		t.Fatalf("expected one RESEARCH_BATCH job, got %+v", jobs)
	}
	if len(ft.subtasks["task-2"]) != len(inDiligenceHumanSubtasks) {
		t.Errorf("got %d human subtasks, want %d", len(ft.subtasks["task-2"]), len(inDiligenceHumanSubtasks))
	}
}

func TestHandleStageAction_PassRequestsCancellationAndCompletesTask(t *testing.T) {
	pool := newTestPool(t)
	tenantID := seedTenant(t, pool)
	ctx := context.Background()

	deal, err := repo.UpsertDeal(ctx, pool, tenantID, "cal-1", "evt-3", "Gamma LLC", "Alex Founder")
	if err != nil {
		t.Fatalf("upsert deal: %v", err)
	}
	if err := repo.SetTaskRecordGID(ctx, pool, deal.ID, "task-3"); err != nil {
		t.Fatalf("set task record gid: %v", err)
	}

	run, err := repo.CreateWorkflowRun(ctx, pool, tenantID, deal.ID, repo.StageInDiligence)
	if err != nil {
		t.Fatalf("create workflow run: %v", err)
	}

	ft := newFakeTasks()
	d := testDeps(pool, &fakeQueue{}, fakeCalendar{}, ft, newFakeDocs(), &fakeLLM{})

	prev := repo.StageInDiligence
	payload := StageActionPayload{
		TaskGID:       "task-3",
		SectionGID:    "sec-pass",
		StageKey:      repo.StagePass,
		ModifiedAtISO: "2026-07-31T12:00:00Z",
		PreviousStage: &prev,
	}
	raw, _ := json.Marshal(payload)
	if err := HandleStageAction(ctx, d, tenantID, raw); err != nil {
		t.Fatalf("HandleStageAction: %v", err)
	}

	reloaded, err := repo.GetWorkflowRun(ctx, pool, run.ID)
	if err != nil {
		t.Fatalf("get workflow run: %v", err)
	}
	if !reloaded.CancelRequested {
		t.Error("expected prior running WorkflowRun to have cancel_requested = true")
	}
	if !ft.completed["task-3"] {
		t.Error("expected task marked complete on PASS")
	}
}

func TestHandleStageAction_IdempotentOnRepeatDelivery(t *testing.T) {
	pool := newTestPool(t)
	tenantID := seedTenant(t, pool)
	ctx := context.Background()

	deal, err := repo.UpsertDeal(ctx, pool, tenantID, "cal-1", "evt-4", "Delta Inc", "Robin Founder")
	if err != nil {
		t.Fatalf("upsert deal: %v", err)
	}
	if err := repo.SetTaskRecordGID(ctx, pool, deal.ID, "task-4"); err != nil {
		t.Fatalf("set task record gid: %v", err)
	}

	ft := newFakeTasks()
	d := testDeps(pool, &fakeQueue{}, fakeCalendar{}, ft, newFakeDocs(), &fakeLLM{})

	payload := StageActionPayload{
		TaskGID:       "task-4",
		SectionGID:    "sec-first-meeting",
		StageKey:      repo.StageFirstMeeting,
		ModifiedAtISO: "2026-07-31T13:00:00Z",
	}
	raw, _ := json.Marshal(payload)

	if err := HandleStageAction(ctx, d, tenantID, raw); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := HandleStageAction(ctx, d, tenantID, raw); err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if got := len(ft.subtasks["task-4"]); got != len(firstMeetingPrepSubtasks) {
		t.Errorf("subtasks applied %d times worth, want exactly one delivery's worth (%d)", got, len(firstMeetingPrepSubtasks))
	}
}
