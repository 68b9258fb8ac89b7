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
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient is the concrete Client backed by the Anthropic API.
type AnthropicClient struct {
	sdk   anthropic.Client
	model string
}

// NewAnthropicClient builds a client from an API key and the configured
// model name (LLM_MODEL in §6's environment table).
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		sdk:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		model: model,
	}
}

// Complete implements Client. ctx is passed straight through to the SDK
// call, which cancels the in-flight HTTP request on ctx.Done — the
// mechanism §9's cancellation-handle design note relies on.
func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (Completion, error) {
	msg, err := c.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return Completion{}, fmt.Errorf("anthropic complete: %w", err)
	}

	var out Completion
	for _, block := range msg.Content {
		if text := block.Text; text != "" {
			out.Text += text
		}
	}
	return out, nil
}
