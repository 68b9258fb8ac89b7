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

// Package repo is the data-access layer: every table in the tenant-scoped
// schema, one file per entity, plus the transaction helper used by the
// push-channel replace sequence.
package repo

import (
	"time"

	"github.com/google/uuid"
)

// IntegrationKind enumerates the external systems a tenant can configure.
type IntegrationKind string

const (
	IntegrationCalendar IntegrationKind = "calendar"
	IntegrationTasks    IntegrationKind = "tasks"
	IntegrationDocs     IntegrationKind = "docs"
	IntegrationLLM      IntegrationKind = "llm"
)

// ChannelStatus is the lifecycle state of a PushChannel row.
type ChannelStatus string

const (
	ChannelActive   ChannelStatus = "active"
	ChannelReplaced ChannelStatus = "replaced"
	ChannelStopped  ChannelStatus = "stopped"
)

// StageKey is one of the five logical pipeline phases.
type StageKey string

const (
	StageFirstMeeting StageKey = "FIRST_MEETING"
	StageInDiligence  StageKey = "IN_DILIGENCE"
	StageICReview     StageKey = "IC_REVIEW"
	StagePass         StageKey = "PASS"
	StageArchive      StageKey = "ARCHIVE"
)

// RunStatus is the lifecycle state of a WorkflowRun row.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunCanceled  RunStatus = "canceled"
)

// Tenant is the isolation unit every other row is scoped under.
type Tenant struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Integration is a per-tenant credential/config bag for one external kind.
type Integration struct {
	TenantID  uuid.UUID
	Kind      IntegrationKind
	Config    map[string]any
	UpdatedAt time.Time
}

// PushChannel is an active or retired subscription on an external calendar.
type PushChannel struct {
	TenantID     uuid.UUID
	CalendarID   string
	ChannelID    string
	ResourceID   string
	ChannelToken string
	SyncToken    string
	ExpirationMs int64
	Status       ChannelStatus
	CreatedAt    time.Time
}

// Deal is the canonical per-opportunity record linking external IDs.
type Deal struct {
	TenantID      uuid.UUID
	CalendarID    string
	EventID       string
	ID            uuid.UUID
	Company       string
	Founder       string
	TaskRecordGID string
	DocRootID     string
	DocURLs       map[string]string
	CurrentStage  StageKey
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TaskState is the last-observed placement of a task inside the pipeline
// project.
type TaskState struct {
	TenantID                 uuid.UUID
	TaskGID                  string
	ProjectGID               string
	LastSeenSectionGID       string
	LastProcessedModifiedAt  time.Time
	LastTriggeredStage       StageKey
}

// PipelineSection maps a provider section id to a logical stage.
type PipelineSection struct {
	TenantID   uuid.UUID
	ProjectGID string
	SectionGID string
	StageKey   StageKey
	Enabled    bool
}

// IdempotencyKey is a single-shot claim token. Insertion is the claim.
type IdempotencyKey struct {
	Key       string
	CreatedAt time.Time
}

// WorkflowRun is one attempt of a stage-driven orchestration on a deal.
type WorkflowRun struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	DealID          uuid.UUID
	StageKey        StageKey
	Status          RunStatus
	CancelRequested bool
	Meta            map[string]any
	CreatedAt       time.Time
	FinishedAt      *time.Time
}
