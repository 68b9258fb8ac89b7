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
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dealpipe/orchestrator/internal/apperrors"
	"github.com/dealpipe/orchestrator/internal/queue"
	"github.com/dealpipe/orchestrator/internal/repo"
)

// TasksProcessPayload is the §4.7 TASKS_PROCESS job payload.
type TasksProcessPayload struct {
	TaskGID    string `json:"taskGid"`
	ProjectGID string `json:"projectGid"`
}

// StageActionPayload is the §4.8 STAGE_ACTION job payload, enqueued by
// HandleTasksProcess when it detects a stage transition.
type StageActionPayload struct {
	TaskGID       string         `json:"taskGid"`
	SectionGID    string         `json:"sectionGid"`
	StageKey      repo.StageKey  `json:"stageKey"`
	ModifiedAtISO string         `json:"modifiedAtIso"`
	PreviousStage *repo.StageKey `json:"previousStage,omitempty"`
}

// HandleTasksProcess implements §4.7: the state-change detector that
// collapses the task provider's any-edit event stream down to actual
// stage transitions.
func HandleTasksProcess(ctx context.Context, d Deps, tenantID uuid.UUID, raw json.RawMessage) error {
	var p TasksProcessPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return apperrors.Wrap(apperrors.Admission, fmt.Errorf("tasks process: decode payload: %w", err))
	}

	membership, err := d.Tasks.GetMembership(ctx, p.TaskGID, p.ProjectGID)
	if err != nil {
		return apperrors.Wrap(apperrors.Transient, fmt.Errorf("tasks process: get membership: %w", err))
	}

	modifiedAt, err := time.Parse(time.RFC3339, membership.ModifiedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.Permanent, fmt.Errorf("tasks process: parse modified_at: %w", err))
	}

	previousSectionGID, err := repo.UpsertTaskStateSection(ctx, d.Pool, tenantID, p.TaskGID, p.ProjectGID, membership.SectionGID, modifiedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.Transient, fmt.Errorf("tasks process: upsert task state: %w", err))
	}

	// §4.7 step 3: first observation or unchanged section is a no-op.
	if previousSectionGID == "" || previousSectionGID == membership.SectionGID {
		return nil
	}

	section, err := repo.ResolveSection(ctx, d.Pool, tenantID, p.ProjectGID, membership.SectionGID)
	if err != nil {
		return apperrors.Wrap(apperrors.Transient, fmt.Errorf("tasks process: resolve section: %w", err))
	}
	if section == nil {
		// Not mapped to a stage: no-op.
		return nil
	}

	var prevStage *repo.StageKey
	if prevSection, err := repo.ResolveSection(ctx, d.Pool, tenantID, p.ProjectGID, previousSectionGID); err == nil && prevSection != nil {
		prevStage = &prevSection.StageKey
	}

	payload := StageActionPayload{
		TaskGID:       p.TaskGID,
		SectionGID:    membership.SectionGID,
		StageKey:      section.StageKey,
		ModifiedAtISO: membership.ModifiedAt,
		PreviousStage: prevStage,
	}
	env, err := queue.NewEnvelope(queue.JobStageAction, tenantID.String(), payload, "")
	if err != nil {
		return apperrors.Wrap(apperrors.Permanent, fmt.Errorf("tasks process: build envelope: %w", err))
	}
	if _, err := d.Queue.Enqueue(ctx, env); err != nil {
		return apperrors.Wrap(apperrors.Transient, fmt.Errorf("tasks process: enqueue stage action: %w", err))
	}

	// §4.7 step 4: finally set last_triggered_stage.
	if err := repo.SetLastTriggeredStage(ctx, d.Pool, tenantID, p.TaskGID, p.ProjectGID, section.StageKey); err != nil {
		return apperrors.Wrap(apperrors.Transient, fmt.Errorf("tasks process: set last triggered stage: %w", err))
	}
	return nil
}
