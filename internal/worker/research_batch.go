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
	"golang.org/x/sync/errgroup"

	"github.com/dealpipe/orchestrator/internal/apperrors"
	"github.com/dealpipe/orchestrator/internal/docs"
	"github.com/dealpipe/orchestrator/internal/llm"
	"github.com/dealpipe/orchestrator/internal/repo"
)

// HandleResearchBatch implements §4.9: the cancellable six-agent fan-out.
func HandleResearchBatch(ctx context.Context, d Deps, tenantID uuid.UUID, raw json.RawMessage) error {
	var p ResearchBatchPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return apperrors.Wrap(apperrors.Admission, fmt.Errorf("research batch: decode payload: %w", err))
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

	agentCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	poller := startRunPoller(ctx, d, p.RunID, cancel)
	defer poller.Stop()

	results := make([]agentResult, len(llm.AgentOrder))
	group, groupCtx := errgroup.WithContext(agentCtx)
	for i, key := range llm.AgentOrder {
		i, key := i, key
		group.Go(func() error {
			// Each agent's error is captured into its own result slot, not
			// returned to the group, so one failure never cancels its peers.
			results[i] = runResearchAgent(groupCtx, d, key, p.Company, p.Founder, p.Context)
			return nil
		})
	}
	_ = group.Wait()

	var blocks []docs.Block
	for i, key := range llm.AgentOrder {
		res := results[i]
		if !res.ok {
			d.Logger.WarnContext(ctx, "research batch: agent failed",
				"run_id", p.RunID.String(), "agent_key", string(key), "error", errString(res.err))
			continue
		}
		blocks = append(blocks, agentResultBlocks(key, res)...)
	}

	if deal.DocRootID != "" && len(blocks) > 0 {
		if err := d.Docs.AppendBlocks(ctx, deal.DocRootID, docs.PageResearch, blocks); err != nil {
			_ = repo.FinishWorkflowRun(ctx, d.Pool, p.RunID, repo.RunFailed, map[string]any{"error": err.Error()})
			return apperrors.Wrap(apperrors.Transient, fmt.Errorf("research batch: append blocks: %w", err))
		}
	}

	status := repo.RunSucceeded
	if agentCtx.Err() != nil {
		status = repo.RunCanceled
	}
	meta := map[string]any{}
	for i, key := range llm.AgentOrder {
		meta[string(key)] = results[i].ok
	}
	if err := repo.FinishWorkflowRun(ctx, d.Pool, p.RunID, status, meta); err != nil {
		return apperrors.Wrap(apperrors.Transient, err)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
