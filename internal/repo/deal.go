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
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func scanDeal(row pgx.Row) (*Deal, error) {
	var d Deal
	var rawURLs []byte
	err := row.Scan(&d.ID, &d.TenantID, &d.CalendarID, &d.EventID, &d.Company, &d.Founder,
		&d.TaskRecordGID, &d.DocRootID, &rawURLs, &d.CurrentStage, &d.CreatedAt, &d.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(rawURLs) > 0 {
		if err := json.Unmarshal(rawURLs, &d.DocURLs); err != nil {
			return nil, fmt.Errorf("decode doc_urls: %w", err)
		}
	}
	return &d, nil
}

const dealColumns = `id, tenant_id, calendar_id, event_id, company, founder, task_record_gid, doc_root_id, doc_urls, current_stage, created_at, updated_at`

// GetDealByEvent fetches a deal by its (tenant, calendar_id, event_id)
// uniqueness key. Returns nil, nil when absent.
func GetDealByEvent(ctx context.Context, q Queryer, tenantID uuid.UUID, calendarID, eventID string) (*Deal, error) {
	row := q.QueryRow(ctx, `
		SELECT `+dealColumns+` FROM deals
		WHERE tenant_id = $1 AND calendar_id = $2 AND event_id = $3`,
		tenantID, calendarID, eventID)
	d, err := scanDeal(row)
	if err != nil {
		return nil, fmt.Errorf("get deal by event: %w", err)
	}
	return d, nil
}

// GetDealByTaskGID resolves a deal by its associated task record, used by
// STAGE_ACTION (§4.8) to find the deal a task transition belongs to.
func GetDealByTaskGID(ctx context.Context, q Queryer, tenantID uuid.UUID, taskGID string) (*Deal, error) {
	row := q.QueryRow(ctx, `
		SELECT `+dealColumns+` FROM deals
		WHERE tenant_id = $1 AND task_record_gid = $2`,
		tenantID, taskGID)
	d, err := scanDeal(row)
	if err != nil {
		return nil, fmt.Errorf("get deal by task gid: %w", err)
	}
	return d, nil
}

// GetDeal fetches a deal by primary key.
func GetDeal(ctx context.Context, q Queryer, id uuid.UUID) (*Deal, error) {
	row := q.QueryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id)
	d, err := scanDeal(row)
	if err != nil {
		return nil, fmt.Errorf("get deal: %w", err)
	}
	return d, nil
}

// UpsertDeal inserts a new deal or coalesces non-empty fields into the
// existing row keyed on (tenant, calendar_id, event_id), per §4.5 step 5.
// Returns the resulting row.
func UpsertDeal(ctx context.Context, q Queryer, tenantID uuid.UUID, calendarID, eventID, company, founder string) (*Deal, error) {
	row := q.QueryRow(ctx, `
		INSERT INTO deals (id, tenant_id, calendar_id, event_id, company, founder)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, calendar_id, event_id) DO UPDATE
		SET company    = COALESCE(NULLIF(EXCLUDED.company, ''), deals.company),
		    founder    = COALESCE(NULLIF(EXCLUDED.founder, ''), deals.founder),
		    updated_at = now()
		RETURNING `+dealColumns,
		uuid.New(), tenantID, calendarID, eventID, company, founder)
	d, err := scanDeal(row)
	if err != nil {
		return nil, fmt.Errorf("upsert deal: %w", err)
	}
	return d, nil
}

// SetTaskRecordGID persists the task-manager record id created by deal
// materialization (§4.6 step 2).
func SetTaskRecordGID(ctx context.Context, q Queryer, dealID uuid.UUID, taskRecordGID string) error {
	_, err := q.Exec(ctx, `
		UPDATE deals SET task_record_gid = $2, updated_at = now() WHERE id = $1`,
		dealID, taskRecordGID)
	if err != nil {
		return fmt.Errorf("set task record gid: %w", err)
	}
	return nil
}

// SetDocWorkspace persists the document root id and child-page URLs created
// by deal materialization (§4.6 step 1).
func SetDocWorkspace(ctx context.Context, q Queryer, dealID uuid.UUID, rootID string, urls map[string]string) error {
	raw, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("set doc workspace: encode urls: %w", err)
	}
	_, err = q.Exec(ctx, `
		UPDATE deals SET doc_root_id = $2, doc_urls = $3, updated_at = now() WHERE id = $1`,
		dealID, rootID, raw)
	if err != nil {
		return fmt.Errorf("set doc workspace: %w", err)
	}
	return nil
}

// SetCurrentStage writes the deal's new stage (§4.8: "always write new
// current_stage on the deal").
func SetCurrentStage(ctx context.Context, q Queryer, dealID uuid.UUID, stage StageKey) error {
	_, err := q.Exec(ctx, `
		UPDATE deals SET current_stage = $2, updated_at = now() WHERE id = $1`,
		dealID, stage)
	if err != nil {
		return fmt.Errorf("set current stage: %w", err)
	}
	return nil
}
