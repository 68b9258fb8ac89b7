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
	"fmt"
	"net/http"
	"time"

	"github.com/dealpipe/orchestrator/internal/repo"
)

const (
	defaultIdempotencyTTLDays     = 7
	defaultRetiredChannelTTLHours = 24
)

// housekeepingResult is the §6 /admin/housekeeping response shape.
type housekeepingResult struct {
	IdempotencyKeysDeleted int64 `json:"idempotencyKeysDeleted"`
	RetiredChannelsDeleted int64 `json:"retiredChannelsDeleted"`
}

// runHousekeeping implements §6's two deletion sweeps: idempotency keys
// older than their TTL (default 7 days) and retired channels older than
// their TTL (default 24h). Shared by the on-demand HTTP endpoint and the
// daily cron entry (§4.3 [FULL]).
func runHousekeeping(ctx context.Context, d Deps) (housekeepingResult, error) {
	idempotencyTTLDays := d.IdempotencyTTLDays
	if idempotencyTTLDays <= 0 {
		idempotencyTTLDays = defaultIdempotencyTTLDays
	}
	retiredTTLHours := d.RetiredChannelTTLHours
	if retiredTTLHours <= 0 {
		retiredTTLHours = defaultRetiredChannelTTLHours
	}

	keysDeleted, err := repo.DeleteIdempotencyKeysOlderThan(ctx, d.Pool, idempotencyTTLDays)
	if err != nil {
		return housekeepingResult{}, fmt.Errorf("housekeeping: idempotency keys: %w", err)
	}

	cutoff := time.Now().Add(-time.Duration(retiredTTLHours) * time.Hour)
	channelsDeleted, err := repo.DeleteRetiredChannelsOlderThan(ctx, d.Pool, cutoff)
	if err != nil {
		return housekeepingResult{}, fmt.Errorf("housekeeping: retired channels: %w", err)
	}

	return housekeepingResult{
		IdempotencyKeysDeleted: keysDeleted,
		RetiredChannelsDeleted: channelsDeleted,
	}, nil
}

// Housekeeping implements POST /admin/housekeeping: on-demand invocation
// of the same sweep the daily cron entry runs.
func Housekeeping(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := runHousekeeping(r.Context(), d)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
