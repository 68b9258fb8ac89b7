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

package llm

import "fmt"

// agentInstruction is the per-agent research brief, kept next to the
// agent key constants so the fixed six-item set stays reviewable in one
// place (mirrors the STAGE_ACTION subtask-list convention).
var agentInstruction = map[AgentKey]string{
	AgentMarketTAM:            "Estimate total addressable market and growth trajectory.",
	AgentCompetitors:          "Identify direct and adjacent competitors and how this company differentiates.",
	AgentFounderBackground:    "Summarize the founder's relevant background, prior exits, and domain expertise.",
	AgentRisksRedFlags:        "Surface risks, red flags, or reasons for caution about this opportunity.",
	AgentProductDefensibility: "Assess the product's defensibility: moat, IP, switching costs, network effects.",
	AgentTractionSignals:      "Summarize traction signals: revenue, users, growth rate, notable customers.",
}

// BuildAgentPrompt assembles the system/user prompt pair for one research
// agent given the deal's company, founder, and optional extra context.
func BuildAgentPrompt(key AgentKey, company, founder, context string) (systemPrompt, userPrompt string) {
	systemPrompt = "You are a venture capital research analyst. Be concise, cite sources where possible, and flag uncertainty rather than fabricate."
	userPrompt = fmt.Sprintf("Company: %s\nFounder: %s\n\nTask: %s", company, founder, agentInstruction[key])
	if context != "" {
		userPrompt += "\n\nAdditional context:\n" + context
	}
	return systemPrompt, userPrompt
}

// MemoOutline is the fixed ten-section outline MEMO_GENERATE asks the
// model to follow (§4.10).
var MemoOutline = []string{
	"Executive Summary",
	"Company Overview",
	"Founder & Team",
	"Market & TAM",
	"Competitive Landscape",
	"Product & Defensibility",
	"Traction",
	"Risks & Red Flags",
	"Deal Terms",
	"Recommendation",
}

// BuildMemoPrompt assembles the system/user prompt pair for the single
// memo-synthesis call.
func BuildMemoPrompt(company, founder, researchSummary string) (systemPrompt, userPrompt string) {
	systemPrompt = "You are a venture capital investment committee analyst writing an internal memo. Follow the requested section outline exactly, using markdown headings for each section."
	userPrompt = fmt.Sprintf("Company: %s\nFounder: %s\n\nWrite a memo with these sections, in order:\n", company, founder)
	for i, s := range MemoOutline {
		userPrompt += fmt.Sprintf("%d. %s\n", i+1, s)
	}
	userPrompt += "\nResearch findings to synthesize:\n" + researchSummary
	return systemPrompt, userPrompt
}
