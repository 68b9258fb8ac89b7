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

package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dealpipe/orchestrator/internal/repo"
)

const (
	defaultReplaceLeadWindowMs = int64(1 * time.Hour / time.Millisecond)
	replaceCheckSchedule       = "@every 5m"
	housekeepingSchedule       = "@daily"
)

// Scheduler wraps robfig/cron/v3 with the two time-based jobs §4.3 [FULL]
// calls for: a 5-minute sweep replacing channels nearing expiration, and a
// daily housekeeping pass mirroring the on-demand endpoint.
type Scheduler struct {
	cron *cron.Cron
	deps Deps
}

// NewScheduler builds a Scheduler; call Start to begin running jobs.
func NewScheduler(d Deps) *Scheduler {
	return &Scheduler{cron: cron.New(), deps: d}
}

// Start registers the two jobs and starts the cron runner in its own
// goroutine. Call Stop to drain in-flight jobs on shutdown.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(replaceCheckSchedule, s.replaceExpiringChannels); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(housekeepingSchedule, s.runHousekeeping); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop blocks until running jobs finish, per cron's documented shutdown
// contract.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) replaceExpiringChannels() {
	ctx := context.Background()
	leadWindow := s.deps.ReplaceLeadWindowMs
	if leadWindow <= 0 {
		leadWindow = defaultReplaceLeadWindowMs
	}
	cutoff := time.Now().UnixMilli() + leadWindow

	channels, err := repo.ListActiveChannelsExpiringBefore(ctx, s.deps.Pool, cutoff)
	if err != nil {
		s.deps.Logger.ErrorContext(ctx, "scheduler: list expiring channels failed", slog.String("error", err.Error()))
		return
	}

	for _, ch := range channels {
		if _, _, err := replaceChannel(ctx, s.deps, ch.TenantID, ch.CalendarID); err != nil {
			s.deps.Logger.ErrorContext(ctx, "scheduler: replace expiring channel failed",
				slog.String("tenant_id", ch.TenantID.String()),
				slog.String("calendar_id", ch.CalendarID),
				slog.String("error", err.Error()))
		}
	}
}

func (s *Scheduler) runHousekeeping() {
	ctx := context.Background()
	result, err := runHousekeeping(ctx, s.deps)
	if err != nil {
		s.deps.Logger.ErrorContext(ctx, "scheduler: housekeeping failed", slog.String("error", err.Error()))
		return
	}
	s.deps.Logger.InfoContext(ctx, "scheduler: housekeeping complete",
		slog.Int64("idempotency_keys_deleted", result.IdempotencyKeysDeleted),
		slog.Int64("retired_channels_deleted", result.RetiredChannelsDeleted))
}
