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

// Package llm isolates the research-agent model provider behind a small
// interface. Cancellation is expressed purely through ctx: the client
// must abort the underlying HTTP round-trip when ctx is done, never via
// exceptions-as-control-flow (§9 design note).
package llm

import "context"

// AgentKey identifies one of the six fixed research agents run by
// RESEARCH_BATCH, in the order document output must preserve.
type AgentKey string

const (
	AgentMarketTAM            AgentKey = "market_tam"
	AgentCompetitors          AgentKey = "competitors"
	AgentFounderBackground    AgentKey = "founder_background"
	AgentRisksRedFlags        AgentKey = "risks_redflags"
	AgentProductDefensibility AgentKey = "product_defensibility"
	AgentTractionSignals      AgentKey = "traction_signals"
)

// AgentOrder is the fixed six-agent order the research page must honor
// regardless of completion order (§4.9, §8's ordering law).
var AgentOrder = []AgentKey{
	AgentMarketTAM,
	AgentCompetitors,
	AgentFounderBackground,
	AgentRisksRedFlags,
	AgentProductDefensibility,
	AgentTractionSignals,
}

// AgentTitle maps an agent key to the human-readable heading used on the
// research page.
var AgentTitle = map[AgentKey]string{
	AgentMarketTAM:            "Market & TAM",
	AgentCompetitors:          "Competitive Landscape",
	AgentFounderBackground:    "Founder Background",
	AgentRisksRedFlags:        "Risks & Red Flags",
	AgentProductDefensibility: "Product Defensibility",
	AgentTractionSignals:      "Traction Signals",
}

// Citation is one source backing a research claim.
type Citation struct {
	Title string
	URL   string
}

// Completion is one successful model response.
type Completion struct {
	Text      string
	Citations []Citation
}

// Client is the LLM provider surface the orchestrator depends on.
type Client interface {
	// Complete runs a single prompt to completion. ctx cancellation must
	// abort the in-flight HTTP call promptly.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (Completion, error)
}
