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
	"github.com/dealpipe/orchestrator/internal/docs"
	"github.com/dealpipe/orchestrator/internal/llm"
	"github.com/dealpipe/orchestrator/internal/repo"
)

const memoReviewWarning = "This memo was generated by an automated research pipeline. Verify all figures and claims before circulating to the investment committee."

// MemoGeneratePayload is the §4.10 MEMO_GENERATE job payload.
type MemoGeneratePayload struct {
	RunID   uuid.UUID `json:"runId"`
	DealID  uuid.UUID `json:"dealId"`
	Company string    `json:"company"`
	Founder string    `json:"founder"`
}

// HandleMemoGenerate implements §4.10: a single cancellable LLM call that
// synthesizes the IC memo, sharing the §4.9 cancellation/polling pattern.
func HandleMemoGenerate(ctx context.Context, d Deps, tenantID uuid.UUID, raw json.RawMessage) error {
	var p MemoGeneratePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return apperrors.Wrap(apperrors.Admission, fmt.Errorf("memo generate: decode payload: %w", err))
	}

	alreadyCanceled, err := repo.IsCancelRequested(ctx, d.Pool, p.RunID)
	if err != nil {
		return apperrors.Wrap(apperrors.Transient, err)
	}
	if alreadyCanceled {
		return nil
	}

	deal, err := repo.GetDeal(ctx, d.Pool, p.DealID)
	if err != nil {
		return apperrors.Wrap(apperrors.Transient, err)
	}
	if deal == nil {
		return nil
	}

	var researchSummary string
	if deal.DocRootID != "" {
		content, err := d.Docs.ReadContent(ctx, deal.DocRootID, docs.PageResearch)
		if err != nil {
			d.Logger.WarnContext(ctx, "memo generate: read research page failed", "deal_id", deal.ID.String(), "error", err.Error())
		} else {
			researchSummary = content
		}
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	poller := startRunPoller(ctx, d, p.RunID, cancel)
	defer poller.Stop()

	system, user := llm.BuildMemoPrompt(p.Company, p.Founder, researchSummary)
	completion, callErr := d.LLM.Complete(callCtx, system, user)

	status := repo.RunSucceeded
	var meta map[string]any
	if callErr != nil {
		if callCtx.Err() != nil {
			status = repo.RunCanceled
			meta = map[string]any{"canceled": true}
		} else {
			_ = repo.FinishWorkflowRun(ctx, d.Pool, p.RunID, repo.RunFailed, map[string]any{"error": callErr.Error()})
			return apperrors.Wrap(apperrors.Transient, fmt.Errorf("memo generate: llm call: %w", callErr))
		}
	} else if deal.DocRootID != "" {
		if err := d.Docs.ClearBlocks(ctx, deal.DocRootID, docs.PageMemo); err != nil {
			d.Logger.WarnContext(ctx, "memo generate: clear memo page failed", "deal_id", deal.ID.String(), "error", err.Error())
		}
		blocks := []docs.Block{docs.Callout(fmt.Sprintf("Generated on %s", time.Now().UTC().Format("2006-01-02")))}
		blocks = append(blocks, docs.MarkdownToBlocks(completion.Text)...)
		blocks = append(blocks, docs.Divider(), docs.Callout(memoReviewWarning))
		if err := d.Docs.AppendBlocks(ctx, deal.DocRootID, docs.PageMemo, blocks); err != nil {
			_ = repo.FinishWorkflowRun(ctx, d.Pool, p.RunID, repo.RunFailed, map[string]any{"error": err.Error()})
			return apperrors.Wrap(apperrors.Transient, fmt.Errorf("memo generate: append blocks: %w", err))
		}
	}

	if err := repo.FinishWorkflowRun(ctx, d.Pool, p.RunID, status, meta); err != nil {
		return apperrors.Wrap(apperrors.Transient, err)
	}
	return nil
}
