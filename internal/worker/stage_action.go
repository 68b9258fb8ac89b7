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

	"github.com/google/uuid"

	"github.com/dealpipe/orchestrator/internal/apperrors"
	"github.com/dealpipe/orchestrator/internal/docs"
	"github.com/dealpipe/orchestrator/internal/queue"
	"github.com/dealpipe/orchestrator/internal/repo"
	"github.com/dealpipe/orchestrator/internal/tasks"
)

// Fixed subtask lists per stage, declared next to the stage constants so
// the table in §4.8 is reviewable in one place.
var (
	firstMeetingPrepSubtasks = []string{
		"Review company materials",
		"Check founder background",
		"Prepare meeting agenda",
		"Draft initial questions",
	}
	inDiligenceHumanSubtasks = []string{
		"Schedule reference calls",
		"Request data room access",
		"Review financial model",
		"Validate customer references",
		"Assess team composition",
	}
	icReviewChecklistSubtasks = []string{
		"Confirm deal terms",
		"Circulate memo to committee",
		"Schedule IC meeting",
		"Collect committee feedback",
		"Record IC decision",
	}
)

// HandleStageAction implements §4.8: the stage state machine.
func HandleStageAction(ctx context.Context, d Deps, tenantID uuid.UUID, raw json.RawMessage) error {
	var p StageActionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return apperrors.Wrap(apperrors.Admission, fmt.Errorf("stage action: decode payload: %w", err))
	}

	claimed, err := repo.ClaimIdempotencyKey(ctx, d.Pool, fmt.Sprintf("stage:%s:%s:%s", p.TaskGID, p.SectionGID, p.ModifiedAtISO))
	if err != nil {
		return apperrors.Wrap(apperrors.Transient, err)
	}
	if !claimed {
		return nil
	}

	deal, err := repo.GetDealByTaskGID(ctx, d.Pool, tenantID, p.TaskGID)
	if err != nil {
		return apperrors.Wrap(apperrors.Transient, err)
	}
	if deal == nil {
		return nil
	}

	if err := repo.SetCurrentStage(ctx, d.Pool, deal.ID, p.StageKey); err != nil {
		return apperrors.Wrap(apperrors.Transient, err)
	}
	appendStageStatusNote(ctx, d, deal, fmt.Sprintf("Stage changed to %s", p.StageKey))

	if (p.PreviousStage != nil && *p.PreviousStage == repo.StageInDiligence) ||
		p.StageKey == repo.StagePass || p.StageKey == repo.StageArchive {
		if err := repo.RequestCancelForDeal(ctx, d.Pool, deal.ID); err != nil {
			return apperrors.Wrap(apperrors.Transient, err)
		}
	}

	run, err := repo.CreateWorkflowRun(ctx, d.Pool, tenantID, deal.ID, p.StageKey)
	if err != nil {
		return apperrors.Wrap(apperrors.Transient, fmt.Errorf("stage action: open workflow run: %w", err))
	}

	if dispatchErr := dispatchStage(ctx, d, tenantID, deal, run, p.StageKey); dispatchErr != nil {
		_ = repo.FinishWorkflowRun(ctx, d.Pool, run.ID, repo.RunFailed, map[string]any{"error": dispatchErr.Error()})
		return apperrors.Wrap(apperrors.Transient, dispatchErr)
	}

	if err := repo.FinishWorkflowRun(ctx, d.Pool, run.ID, repo.RunSucceeded, nil); err != nil {
		return apperrors.Wrap(apperrors.Transient, err)
	}
	return nil
}

func appendStageStatusNote(ctx context.Context, d Deps, deal *repo.Deal, note string) {
	if deal.DocRootID == "" {
		return
	}
	blocks := []docs.Block{{Kind: docs.BlockParagraph, Text: note}}
	if err := d.Docs.AppendBlocks(ctx, deal.DocRootID, docs.PageMeetingNotes, blocks); err != nil {
		d.Logger.WarnContext(ctx, "stage action: append status note failed",
			"deal_id", deal.ID.String(), "error", err.Error())
	}
}

func dispatchStage(ctx context.Context, d Deps, tenantID uuid.UUID, deal *repo.Deal, run *repo.WorkflowRun, stage repo.StageKey) error {
	switch stage {
	case repo.StageFirstMeeting:
		return dispatchFirstMeeting(ctx, d, deal)
	case repo.StageInDiligence:
		return dispatchInDiligence(ctx, d, tenantID, deal, run)
	case repo.StageICReview:
		return dispatchICReview(ctx, d, tenantID, deal, run)
	case repo.StagePass, repo.StageArchive:
		return dispatchTerminal(ctx, d, deal, stage)
	default:
		return fmt.Errorf("stage action: unrecognized stage %q", stage)
	}
}

func dispatchFirstMeeting(ctx context.Context, d Deps, deal *repo.Deal) error {
	subtasks := make([]tasks.Subtask, len(firstMeetingPrepSubtasks))
	for i, title := range firstMeetingPrepSubtasks {
		subtasks[i] = tasks.Subtask{Title: title}
	}
	if err := d.Tasks.AddSubtasks(ctx, deal.TaskRecordGID, subtasks); err != nil {
		return fmt.Errorf("first meeting: add prep subtasks: %w", err)
	}
	notes := fmt.Sprintf("Deal workspace: %s", deal.DocRootID)
	if err := d.Tasks.UpdateNotes(ctx, deal.TaskRecordGID, notes); err != nil {
		return fmt.Errorf("first meeting: update notes: %w", err)
	}
	return nil
}

func dispatchInDiligence(ctx context.Context, d Deps, tenantID uuid.UUID, deal *repo.Deal, run *repo.WorkflowRun) error {
	var context string
	if deal.DocRootID != "" {
		content, err := d.Docs.ReadContent(ctx, deal.DocRootID, docs.PageMeetingNotes)
		if err != nil {
			d.Logger.WarnContext(ctx, "in diligence: read meeting notes failed", "deal_id", deal.ID.String(), "error", err.Error())
		} else {
			context = content
		}
		if err := d.Docs.ClearBlocks(ctx, deal.DocRootID, docs.PageResearch); err != nil {
			d.Logger.WarnContext(ctx, "in diligence: clear research placeholders failed", "deal_id", deal.ID.String(), "error", err.Error())
		}
	}

	payload := ResearchBatchPayload{
		RunID:   run.ID,
		DealID:  deal.ID,
		Company: deal.Company,
		Founder: deal.Founder,
		Context: context,
	}
	env, err := queue.NewEnvelope(queue.JobResearchBatch, tenantID.String(), payload, "")
	if err != nil {
		return fmt.Errorf("in diligence: build envelope: %w", err)
	}
	if _, err := d.Queue.Enqueue(ctx, env); err != nil {
		return fmt.Errorf("in diligence: enqueue research batch: %w", err)
	}

	subtasks := make([]tasks.Subtask, len(inDiligenceHumanSubtasks))
	for i, title := range inDiligenceHumanSubtasks {
		subtasks[i] = tasks.Subtask{Title: title}
	}
	if err := d.Tasks.AddSubtasks(ctx, deal.TaskRecordGID, subtasks); err != nil {
		return fmt.Errorf("in diligence: add human subtasks: %w", err)
	}
	return nil
}

func dispatchICReview(ctx context.Context, d Deps, tenantID uuid.UUID, deal *repo.Deal, run *repo.WorkflowRun) error {
	payload := MemoGeneratePayload{
		RunID:   run.ID,
		DealID:  deal.ID,
		Company: deal.Company,
		Founder: deal.Founder,
	}
	env, err := queue.NewEnvelope(queue.JobMemoGenerate, tenantID.String(), payload, "")
	if err != nil {
		return fmt.Errorf("ic review: build envelope: %w", err)
	}
	if _, err := d.Queue.Enqueue(ctx, env); err != nil {
		return fmt.Errorf("ic review: enqueue memo generate: %w", err)
	}

	subtasks := make([]tasks.Subtask, len(icReviewChecklistSubtasks))
	for i, title := range icReviewChecklistSubtasks {
		subtasks[i] = tasks.Subtask{Title: title}
	}
	if err := d.Tasks.AddSubtasks(ctx, deal.TaskRecordGID, subtasks); err != nil {
		return fmt.Errorf("ic review: add checklist subtasks: %w", err)
	}
	return nil
}

func dispatchTerminal(ctx context.Context, d Deps, deal *repo.Deal, stage repo.StageKey) error {
	if err := repo.RequestCancelForDeal(ctx, d.Pool, deal.ID); err != nil {
		return fmt.Errorf("terminal %s: re-issue cancellation: %w", stage, err)
	}
	appendStageStatusNote(ctx, d, deal, fmt.Sprintf("Deal marked %s.", stage))
	if err := d.Tasks.MarkComplete(ctx, deal.TaskRecordGID); err != nil {
		return fmt.Errorf("terminal %s: mark task complete: %w", stage, err)
	}
	return nil
}
