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

import (
	"strings"
	"testing"
)

func TestAgentOrder_MatchesInstructionSet(t *testing.T) {
	if len(AgentOrder) != 6 {
		t.Fatalf("len(AgentOrder) = %d, want 6", len(AgentOrder))
	}
	for _, k := range AgentOrder {
		if _, ok := agentInstruction[k]; !ok {
			t.Errorf("agent %q has no instruction", k)
		}
		if _, ok := AgentTitle[k]; !ok {
			t.Errorf("agent %q has no title", k)
		}
	}
}

func TestBuildAgentPrompt_IncludesContext(t *testing.T) {
	_, userPrompt := BuildAgentPrompt(AgentMarketTAM, "Acme", "Jane", "prior note: strong Q3")
	if !strings.Contains(userPrompt, "Acme") || !strings.Contains(userPrompt, "Jane") {
		t.Errorf("prompt missing company/founder: %q", userPrompt)
	}
	if !strings.Contains(userPrompt, "strong Q3") {
		t.Errorf("prompt missing extra context: %q", userPrompt)
	}
}

func TestBuildMemoPrompt_ListsOutlineInOrder(t *testing.T) {
	_, userPrompt := BuildMemoPrompt("Acme", "Jane", "findings...")
	lastIdx := -1
	for _, section := range MemoOutline {
		idx := strings.Index(userPrompt, section)
		if idx < 0 {
			t.Fatalf("prompt missing section %q", section)
		}
		if idx < lastIdx {
			t.Errorf("section %q appears out of order", section)
		}
		lastIdx = idx
	}
}
