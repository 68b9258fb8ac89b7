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
	"time"

	"github.com/dealpipe/orchestrator/internal/tasks"

	"github.com/dealpipe/orchestrator/internal/repo"
)

func TestHandleTasksProcess_FirstObservationIsNoOp(t *testing.T) {
	pool := newTestPool(t)
	tenantID := seedTenant(t, pool)
	ctx := context.Background()

	ft := newFakeTasks()
	ft.memberships["task-1"] = tasks.Membership{SectionGID: "sec-a", ModifiedAt: time.Now().UTC().Format(time.RFC3339)}
	fq := &fakeQueue{}
	d := testDeps(pool, fq, fakeCalendar{}, ft, newFakeDocs(), &fakeLLM{})

	payload := TasksProcessPayload{TaskGID: "task-1", ProjectGID: "pipeline"}
	raw, _ := json.Marshal(payload)
	if err := HandleTasksProcess(ctx, d, tenantID, raw); err != nil {
		t.Fatalf("HandleTasksProcess: %v", err)
	}
	if len(fq.snapshot()) != 0 {
		t.Errorf("first observation must not enqueue STAGE_ACTION, got %d jobs", len(fq.snapshot()))
	}
}

func TestHandleTasksProcess_UnmappedSectionIsNoOp(t *testing.T) {
	pool := newTestPool(t)
	tenantID := seedTenant(t, pool)
	ctx := context.Background()

	ft := newFakeTasks()
	fq := &fakeQueue{}
	d := testDeps(pool, fq, fakeCalendar{}, ft, newFakeDocs(), &fakeLLM{})

	t0 := time.Now().UTC()
	ft.memberships["task-2"] = tasks.Membership{SectionGID: "sec-a", ModifiedAt: t0.Format(time.RFC3339)}
	raw1, _ := json.Marshal(TasksProcessPayload{TaskGID: "task-2", ProjectGID: "pipeline"})
	if err := HandleTasksProcess(ctx, d, tenantID, raw1); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ft.memberships["task-2"] = tasks.Membership{SectionGID: "sec-unmapped", ModifiedAt: t0.Add(time.Minute).Format(time.RFC3339)}
	raw2, _ := json.Marshal(TasksProcessPayload{TaskGID: "task-2", ProjectGID: "pipeline"})
	if err := HandleTasksProcess(ctx, d, tenantID, raw2); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if len(fq.snapshot()) != 0 {
		t.Errorf("unmapped section must not enqueue STAGE_ACTION, got %d jobs", len(fq.snapshot()))
	}
}

func TestHandleTasksProcess_MappedTransitionEnqueuesStageAction(t *testing.T) {
	pool := newTestPool(t)
	tenantID := seedTenant(t, pool)
	ctx := context.Background()

	if err := repo.UpsertPipelineSection(ctx, pool, repo.PipelineSection{
		TenantID: tenantID, ProjectGID: "pipeline", SectionGID: "sec-ic", StageKey: repo.StageICReview, Enabled: true,
	}); err != nil {
		t.Fatalf("upsert pipeline section: %v", err)
	}

	ft := newFakeTasks()
	fq := &fakeQueue{}
	d := testDeps(pool, fq, fakeCalendar{}, ft, newFakeDocs(), &fakeLLM{})

	t0 := time.Now().UTC()
	ft.memberships["task-3"] = tasks.Membership{SectionGID: "sec-a", ModifiedAt: t0.Format(time.RFC3339)}
	raw1, _ := json.Marshal(TasksProcessPayload{TaskGID: "task-3", ProjectGID: "pipeline"})
	if err := HandleTasksProcess(ctx, d, tenantID, raw1); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ft.memberships["task-3"] = tasks.Membership{SectionGID: "sec-ic", ModifiedAt: t0.Add(time.Minute).Format(time.RFC3339)}
	raw2, _ := json.Marshal(TasksProcessPayload{TaskGID: "task-3", ProjectGID: "pipeline"})
	if err := HandleTasksProcess(ctx, d, tenantID, raw2); err != nil {
		t.Fatalf("second call: %v", err)
	}

	jobs := fq.snapshot()
	if len(jobs) != 1 {
		t.Fatalf("expected one enqueued job, got %d", len(jobs))
	}
	var got StageActionPayload
	if err := json.Unmarshal(jobs[0].Payload, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.StageKey != repo.StageICReview {
		t.Errorf("stageKey = %q, want %q", got.StageKey, repo.StageICReview)
	}
}
