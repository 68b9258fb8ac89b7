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

package repo

import (
	"context"
	"testing"
)

func TestUpsertDeal_CreatesThenCoalesces(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	tenantID := seedTenant(t, pool)

	d1, err := UpsertDeal(ctx, pool, tenantID, "cal-1", "evt-1", "Acme Co", "Jane Founder")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if d1.Company != "Acme Co" || d1.Founder != "Jane Founder" {
		t.Fatalf("unexpected deal after create: %+v", d1)
	}

	// A later sync with an empty founder (provider omitted the field) must
	// not clobber the previously observed value.
	d2, err := UpsertDeal(ctx, pool, tenantID, "cal-1", "evt-1", "Acme Co Inc", "")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if d2.ID != d1.ID {
		t.Fatalf("id changed across upserts: %s != %s", d2.ID, d1.ID)
	}
	if d2.Company != "Acme Co Inc" {
		t.Errorf("company = %q, want updated value Acme Co Inc", d2.Company)
	}
	if d2.Founder != "Jane Founder" {
		t.Errorf("founder = %q, want preserved value Jane Founder", d2.Founder)
	}
}

func TestGetDealByEvent_Missing(t *testing.T) {
	pool := newTestPool(t)
	tenantID := seedTenant(t, pool)
	got, err := GetDealByEvent(context.Background(), pool, tenantID, "cal-1", "evt-missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestSetTaskRecordGID_ThenGetDealByTaskGID(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	tenantID := seedTenant(t, pool)

	d, err := UpsertDeal(ctx, pool, tenantID, "cal-1", "evt-1", "Acme", "Jane")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := SetTaskRecordGID(ctx, pool, d.ID, "task-123"); err != nil {
		t.Fatalf("set task record gid: %v", err)
	}

	got, err := GetDealByTaskGID(ctx, pool, tenantID, "task-123")
	if err != nil {
		t.Fatalf("get by task gid: %v", err)
	}
	if got == nil || got.ID != d.ID {
		t.Fatalf("got = %+v, want deal %s", got, d.ID)
	}
}

func TestSetDocWorkspace_RoundTripsURLs(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	tenantID := seedTenant(t, pool)

	d, err := UpsertDeal(ctx, pool, tenantID, "cal-1", "evt-1", "Acme", "Jane")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	urls := map[string]string{"memo": "https://docs.example/memo", "research": "https://docs.example/research"}
	if err := SetDocWorkspace(ctx, pool, d.ID, "root-1", urls); err != nil {
		t.Fatalf("set doc workspace: %v", err)
	}

	got, err := GetDeal(ctx, pool, d.ID)
	if err != nil {
		t.Fatalf("get deal: %v", err)
	}
	if got.DocRootID != "root-1" {
		t.Errorf("doc root = %q, want root-1", got.DocRootID)
	}
	if got.DocURLs["memo"] != urls["memo"] {
		t.Errorf("doc urls = %+v, want %+v", got.DocURLs, urls)
	}
}

func TestSetCurrentStage(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	tenantID := seedTenant(t, pool)

	d, err := UpsertDeal(ctx, pool, tenantID, "cal-1", "evt-1", "Acme", "Jane")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := SetCurrentStage(ctx, pool, d.ID, StageInDiligence); err != nil {
		t.Fatalf("set stage: %v", err)
	}

	got, err := GetDeal(ctx, pool, d.ID)
	if err != nil {
		t.Fatalf("get deal: %v", err)
	}
	if got.CurrentStage != StageInDiligence {
		t.Errorf("stage = %q, want %q", got.CurrentStage, StageInDiligence)
	}
}
