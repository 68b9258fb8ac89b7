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

// Package worker implements the single /tasks/dispatch endpoint and the
// six jobType handlers behind it (§4.4-§4.10): the deal state machine, the
// fan-out research batch scheduler, and the individual LLM agents.
package worker

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealpipe/orchestrator/internal/calendar"
	"github.com/dealpipe/orchestrator/internal/docs"
	"github.com/dealpipe/orchestrator/internal/llm"
	"github.com/dealpipe/orchestrator/internal/queue"
	"github.com/dealpipe/orchestrator/internal/tasks"
)

// Deps bundles every collaborator a handler needs. A single instance is
// built once in cmd/worker/main.go and shared by the dispatcher.
type Deps struct {
	Pool     *pgxpool.Pool
	Queue    queue.Client
	Calendar calendar.Client
	Tasks    tasks.Client
	Docs     docs.Client
	LLM      llm.Client
	Logger   *slog.Logger

	// CancelPollInterval overrides the §4.9/§4.10 cancellation poll period;
	// zero means the production default (5s). Tests set this low so the
	// cancellation-liveness law can be exercised without a 5s sleep.
	CancelPollInterval time.Duration
}

func (d Deps) pollInterval() time.Duration {
	if d.CancelPollInterval > 0 {
		return d.CancelPollInterval
	}
	return 5 * time.Second
}
