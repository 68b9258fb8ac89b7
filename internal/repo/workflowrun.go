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

func scanWorkflowRun(row pgx.Row) (*WorkflowRun, error) {
	var r WorkflowRun
	var rawMeta []byte
	err := row.Scan(&r.ID, &r.TenantID, &r.DealID, &r.StageKey, &r.Status,
		&r.CancelRequested, &rawMeta, &r.CreatedAt, &r.FinishedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(rawMeta) > 0 {
		if err := json.Unmarshal(rawMeta, &r.Meta); err != nil {
			return nil, fmt.Errorf("decode meta: %w", err)
		}
	}
	return &r, nil
}

const workflowRunColumns = `id, tenant_id, deal_id, stage_key, status, cancel_requested, meta, created_at, finished_at`

// CreateWorkflowRun opens a new run row in the running state, per §4.8's
// RESEARCH_BATCH/MEMO_GENERATE bookkeeping requirement. The partial unique
// index on (deal_id) WHERE status = 'running' rejects a second concurrent
// run for the same deal at the database level.
func CreateWorkflowRun(ctx context.Context, q Queryer, tenantID, dealID uuid.UUID, stage StageKey) (*WorkflowRun, error) {
	row := q.QueryRow(ctx, `
		INSERT INTO workflow_runs (id, tenant_id, deal_id, stage_key, status)
		VALUES ($1, $2, $3, $4, 'running')
		RETURNING `+workflowRunColumns,
		uuid.New(), tenantID, dealID, stage)
	r, err := scanWorkflowRun(row)
	if err != nil {
		return nil, fmt.Errorf("create workflow run: %w", err)
	}
	return r, nil
}

// GetWorkflowRun fetches a run by id.
func GetWorkflowRun(ctx context.Context, q Queryer, id uuid.UUID) (*WorkflowRun, error) {
	row := q.QueryRow(ctx, `SELECT `+workflowRunColumns+` FROM workflow_runs WHERE id = $1`, id)
	r, err := scanWorkflowRun(row)
	if err != nil {
		return nil, fmt.Errorf("get workflow run: %w", err)
	}
	return r, nil
}

// RequestCancelForDeal marks every currently-running run for a deal as
// cancel-requested. A later STAGE_ACTION superseding an in-flight
// RESEARCH_BATCH sets this so the batch's agent goroutines observe it on
// their next poll and stop early (§4.9, §5).
func RequestCancelForDeal(ctx context.Context, q Queryer, dealID uuid.UUID) error {
	_, err := q.Exec(ctx, `
		UPDATE workflow_runs SET cancel_requested = true
		WHERE deal_id = $1 AND status = 'running'`,
		dealID)
	if err != nil {
		return fmt.Errorf("request cancel for deal: %w", err)
	}
	return nil
}

// IsCancelRequested reports whether a run has been flagged for
// cancellation, polled by RESEARCH_AGENT goroutines between LLM calls.
func IsCancelRequested(ctx context.Context, q Queryer, runID uuid.UUID) (bool, error) {
	var canceled bool
	err := q.QueryRow(ctx, `SELECT cancel_requested FROM workflow_runs WHERE id = $1`, runID).Scan(&canceled)
	if err != nil {
		return false, fmt.Errorf("is cancel requested: %w", err)
	}
	return canceled, nil
}

// FinishWorkflowRun closes a run with a terminal status and attaches
// bookkeeping metadata (agent durations, error summaries). The WHERE
// clause enforces the write-once terminal transition from §3's invariant:
// a run already in a terminal status cannot be re-finished.
func FinishWorkflowRun(ctx context.Context, q Queryer, id uuid.UUID, status RunStatus, meta map[string]any) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("finish workflow run: encode meta: %w", err)
	}
	tag, err := q.Exec(ctx, `
		UPDATE workflow_runs
		SET status = $2, meta = $3, finished_at = now()
		WHERE id = $1 AND status = 'running'`,
		id, status, raw)
	if err != nil {
		return fmt.Errorf("finish workflow run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finish workflow run: run %s already terminal", id)
	}
	return nil
}

// ListRunningForDeal returns every currently-running run for a deal, used
// to detect the "stage action supersedes in-flight batch" condition before
// calling RequestCancelForDeal.
func ListRunningForDeal(ctx context.Context, q Queryer, dealID uuid.UUID) ([]WorkflowRun, error) {
	rows, err := q.Query(ctx, `
		SELECT `+workflowRunColumns+` FROM workflow_runs
		WHERE deal_id = $1 AND status = 'running'`,
		dealID)
	if err != nil {
		return nil, fmt.Errorf("list running for deal: %w", err)
	}
	defer rows.Close()

	var out []WorkflowRun
	for rows.Next() {
		r, err := scanWorkflowRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list running for deal: scan: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list running for deal: %w", err)
	}
	return out, nil
}
