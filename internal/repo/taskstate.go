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
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UpsertTaskStateSection performs the atomic "return previous value" upsert
// from §4.7 step 2: writes the new section_gid and modified_at, and returns
// whatever last_seen_section_gid held *before* this write, in a single
// round-trip so no lost-update race exists between concurrent dispatches of
// the same task (§9 design note, §8's TASKS_PROCESS stability law).
// previousSectionGID is "" when this is the first observation of the task.
func UpsertTaskStateSection(ctx context.Context, q Queryer, tenantID uuid.UUID, taskGID, projectGID, newSectionGID string, modifiedAt time.Time) (previousSectionGID string, err error) {
	row := q.QueryRow(ctx, `
		WITH prev AS (
			SELECT last_seen_section_gid FROM task_states
			WHERE tenant_id = $1 AND task_gid = $2 AND project_gid = $3
		), upsert AS (
			INSERT INTO task_states (tenant_id, task_gid, project_gid, last_seen_section_gid, last_processed_modified_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (tenant_id, task_gid, project_gid) DO UPDATE
			SET last_seen_section_gid      = $4,
			    last_processed_modified_at = $5
		)
		SELECT COALESCE((SELECT last_seen_section_gid FROM prev), '')`,
		tenantID, taskGID, projectGID, newSectionGID, modifiedAt)

	// prev is evaluated against the pre-upsert snapshot since CTEs in a
	// single statement all see the same snapshot, so this returns the value
	// that was in place before the write below lands.
	if err := row.Scan(&previousSectionGID); err != nil {
		return "", fmt.Errorf("upsert task state section: %w", err)
	}
	return previousSectionGID, nil
}

// SetLastTriggeredStage records the stage that was last dispatched for this
// task (§4.7 step 4: "finally set last_triggered_stage = stage_key").
func SetLastTriggeredStage(ctx context.Context, q Queryer, tenantID uuid.UUID, taskGID, projectGID string, stage StageKey) error {
	_, err := q.Exec(ctx, `
		UPDATE task_states SET last_triggered_stage = $4
		WHERE tenant_id = $1 AND task_gid = $2 AND project_gid = $3`,
		tenantID, taskGID, projectGID, stage)
	if err != nil {
		return fmt.Errorf("set last triggered stage: %w", err)
	}
	return nil
}
