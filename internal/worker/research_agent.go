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
	"github.com/dealpipe/orchestrator/internal/llm"
	"github.com/dealpipe/orchestrator/internal/repo"
)

// ResearchBatchPayload is the §4.9 RESEARCH_BATCH job payload.
type ResearchBatchPayload struct {
	RunID   uuid.UUID `json:"runId"`
	DealID  uuid.UUID `json:"dealId"`
	Company string    `json:"company"`
	Founder string    `json:"founder"`
	Context string    `json:"context,omitempty"`
}

// ResearchAgentPayload is the §4.4 RESEARCH_AGENT job payload: the single-
// agent unit the §4.9 fan-out runs internally, and also a directly
// dispatchable job so one failed agent can be replayed in isolation.
type ResearchAgentPayload struct {
	RunID    uuid.UUID    `json:"runId"`
	DealID   uuid.UUID    `json:"dealId"`
	Company  string       `json:"company"`
	Founder  string       `json:"founder"`
	Context  string       `json:"context,omitempty"`
	AgentKey llm.AgentKey `json:"agentKey"`
}

// agentResult is one agent's outcome, captured rather than propagated as
// an error so one agent's failure never cancels its peers (§4.9).
type agentResult struct {
	key       llm.AgentKey
	ok        bool
	summary   string
	citations []llm.Citation
	err       error
}

// runResearchAgent performs the single LLM round-trip for one agent key.
// ctx cancellation aborts the call in flight; the result is always
// returned, never an error, so callers can collect outcomes independently.
func runResearchAgent(ctx context.Context, d Deps, key llm.AgentKey, company, founder, extraContext string) agentResult {
	system, user := llm.BuildAgentPrompt(key, company, founder, extraContext)
	completion, err := d.LLM.Complete(ctx, system, user)
	if err != nil {
		return agentResult{key: key, ok: false, err: err}
	}
	return agentResult{key: key, ok: true, summary: completion.Text, citations: completion.Citations}
}

// agentResultBlocks renders one successful agent's outcome as the
// heading/body/sources/divider sequence §4.9 specifies. A failed agent
// renders no blocks (silently skipped on the page; the failure is logged
// by the caller).
func agentResultBlocks(key llm.AgentKey, res agentResult) []docs.Block {
	if !res.ok {
		return nil
	}
	blocks := []docs.Block{{Kind: docs.BlockHeading, Level: 2, Text: llm.AgentTitle[key]}}
	blocks = append(blocks, docs.MarkdownToBlocks(res.summary)...)
	if len(res.citations) > 0 {
		blocks = append(blocks, docs.Block{Kind: docs.BlockHeading, Level: 3, Text: "Sources"})
		for _, c := range res.citations {
			label := c.Title
			if c.URL != "" {
				label = fmt.Sprintf("%s (%s)", c.Title, c.URL)
			}
			blocks = append(blocks, docs.Block{Kind: docs.BlockListItem, Text: label})
		}
	}
	blocks = append(blocks, docs.Divider())
	return blocks
}

// HandleResearchAgent runs a single research agent in isolation, for
// operational replay of one agent that failed during a batch, and appends
// its result directly to the research page.
func HandleResearchAgent(ctx context.Context, d Deps, tenantID uuid.UUID, raw json.RawMessage) error {
	var p ResearchAgentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return apperrors.Wrap(apperrors.Admission, fmt.Errorf("research agent: decode payload: %w", err))
	}
	if _, ok := llm.AgentTitle[p.AgentKey]; !ok {
		return apperrors.Wrap(apperrors.Admission, fmt.Errorf("research agent: unknown agent key %q", p.AgentKey))
	}

	deal, err := repo.GetDeal(ctx, d.Pool, p.DealID)
	if err != nil {
		return apperrors.Wrap(apperrors.Transient, err)
	}
	if deal == nil || deal.DocRootID == "" {
		return nil
	}

	res := runResearchAgent(ctx, d, p.AgentKey, p.Company, p.Founder, p.Context)
	if !res.ok {
		d.Logger.ErrorContext(ctx, "research agent: replay failed",
			"agent_key", string(p.AgentKey), "deal_id", p.DealID.String(), "error", res.err.Error())
		return apperrors.Wrap(apperrors.Transient, res.err)
	}

	blocks := agentResultBlocks(p.AgentKey, res)
	if err := d.Docs.AppendBlocks(ctx, deal.DocRootID, docs.PageResearch, blocks); err != nil {
		return apperrors.Wrap(apperrors.Transient, fmt.Errorf("research agent: append blocks: %w", err))
	}
	return nil
}
