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

// Package admin implements the private push-channel and task-webhook
// lifecycle surface (§4.3, §6) plus scheduled housekeeping: the only
// binary that ever calls a provider's watch/stop/webhook-registration
// APIs directly.
package admin

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealpipe/orchestrator/internal/calendar"
	"github.com/dealpipe/orchestrator/internal/ingress"
	"github.com/dealpipe/orchestrator/internal/secrets"
	"github.com/dealpipe/orchestrator/internal/tasks"
)

// Deps bundles every collaborator the admin handlers need. A single
// instance is built once in cmd/admin/main.go and shared by the router and
// the scheduler.
type Deps struct {
	Pool          *pgxpool.Pool
	Calendar      calendar.Client
	Tasks         tasks.Client
	Secrets       secrets.Store
	Logger        *slog.Logger
	DefaultTenant string

	// IngressPublicBaseURL is the calendar provider's callback address:
	// watch requests register IngressPublicBaseURL + "/webhooks/calendar".
	IngressPublicBaseURL string

	// ChannelCache and SecretCache mirror the ingress service's read-through
	// caches so admin writes (replace, stop, handshake) can invalidate the
	// same entries ingress reads on its hot path (§4.0/§9).
	ChannelCache *ingress.ChannelCache
	SecretCache  *ingress.SecretCache

	// ReplaceLeadWindowMs is how long before expiration the scheduler
	// replaces a channel (§4.3: "well before expiration_ms").
	ReplaceLeadWindowMs int64
	// IdempotencyTTLDays and RetiredChannelTTLHours parameterize
	// housekeeping's two deletion windows (§6 /admin/housekeeping).
	IdempotencyTTLDays     int
	RetiredChannelTTLHours int
}

var validate = validator.New()
