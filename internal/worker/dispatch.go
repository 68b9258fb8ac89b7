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

package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dealpipe/orchestrator/internal/apperrors"
	"github.com/dealpipe/orchestrator/internal/queue"
)

// Handler processes one job's payload. tenantID is already resolved and
// parsed by the dispatcher.
type Handler func(ctx context.Context, d Deps, tenantID uuid.UUID, payload json.RawMessage) error

// Dispatcher routes a queue.JobType to its Handler: the "tagged variants
// with an exhaustive match" design note, expressed as a Go map literal.
type Dispatcher struct {
	deps     Deps
	handlers map[queue.JobType]Handler
}

// NewDispatcher builds the fixed six-entry routing table.
func NewDispatcher(deps Deps) *Dispatcher {
	return &Dispatcher{
		deps: deps,
		handlers: map[queue.JobType]Handler{
			queue.JobCalendarSync:  HandleCalendarSync,
			queue.JobTasksProcess:  HandleTasksProcess,
			queue.JobStageAction:   HandleStageAction,
			queue.JobResearchBatch: HandleResearchBatch,
			queue.JobResearchAgent: HandleResearchAgent,
			queue.JobMemoGenerate:  HandleMemoGenerate,
		},
	}
}

// JobTypes returns the routing table's key set, used by dispatch_test's
// check that it equals the declared constant set.
func (disp *Dispatcher) JobTypes() []queue.JobType {
	out := make([]queue.JobType, 0, len(disp.handlers))
	for jt := range disp.handlers {
		out = append(out, jt)
	}
	return out
}

// ServeHTTP implements the worker's single dispatch endpoint (§4.4,
// POST /tasks/dispatch). Unknown jobType is a 400 (non-retryable); handler
// success is 2xx (queue ack); handler failure maps through apperrors.Kind,
// defaulting to 5xx (queue retry) for unclassified errors.
func (disp *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var env queue.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode envelope: %w", err))
		return
	}

	handler, ok := disp.handlers[env.JobType]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown jobType %q", env.JobType))
		return
	}

	tenantID, err := uuid.Parse(env.TenantID)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid tenantId: %w", err))
		return
	}

	if err := handler(ctx, disp.deps, tenantID, env.Payload); err != nil {
		kind := apperrors.KindOf(err)
		disp.deps.Logger.ErrorContext(ctx, "job handler failed",
			slog.String("job_type", string(env.JobType)),
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()))
		writeError(w, apperrors.HTTPStatus(kind), err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
