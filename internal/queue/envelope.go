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

// Package queue is the pluggable enqueue(envelope) -> taskName interface
// (§9 design note): one real durable-queue-backed implementation and one
// direct-HTTP local implementation, selected by environment rather than
// compile-time.
package queue

import (
	"context"
	"encoding/json"
)

// JobType is one of the six dispatchable job kinds.
type JobType string

const (
	JobCalendarSync  JobType = "CALENDAR_SYNC"
	JobTasksProcess  JobType = "TASKS_PROCESS"
	JobStageAction   JobType = "STAGE_ACTION"
	JobResearchBatch JobType = "RESEARCH_BATCH"
	JobResearchAgent JobType = "RESEARCH_AGENT"
	JobMemoGenerate  JobType = "MEMO_GENERATE"
)

// Envelope is the on-wire JSON shape every job carries (§6).
type Envelope struct {
	JobType        JobType         `json:"jobType"`
	TenantID       string          `json:"tenantId"`
	Payload        json.RawMessage `json:"payload"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
}

// NewEnvelope marshals payload into an Envelope.
func NewEnvelope(jobType JobType, tenantID string, payload any, idempotencyKey string) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{JobType: jobType, TenantID: tenantID, Payload: raw, IdempotencyKey: idempotencyKey}, nil
}

// Client enqueues a job envelope and returns the backend's task name (used
// for logging/tracing), matching the "enqueue(envelope) -> taskName"
// interface from the design notes.
type Client interface {
	Enqueue(ctx context.Context, env Envelope) (taskName string, err error)
}
