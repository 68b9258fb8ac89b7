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
	"time"

	"github.com/google/uuid"

	"github.com/dealpipe/orchestrator/internal/repo"
)

// runPoller is the §4.9/§4.10 cancellation watchdog shared by
// RESEARCH_BATCH and MEMO_GENERATE: it polls a WorkflowRun's
// cancel_requested flag and trips a context.CancelFunc the first time it
// observes true, then stops itself.
type runPoller struct {
	stop chan struct{}
	done chan struct{}
}

// startRunPoller begins polling runID every d.pollInterval() using
// pollCtx (a context independent of the cancellation handle itself, so
// polling keeps working right up to the cancel it triggers). cancel is
// invoked at most once.
func startRunPoller(pollCtx context.Context, d Deps, runID uuid.UUID, cancel context.CancelFunc) *runPoller {
	p := &runPoller{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(d.pollInterval())
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				canceled, err := repo.IsCancelRequested(pollCtx, d.Pool, runID)
				if err != nil {
					// A transient DB read failure just means we try again
					// next tick; it must never stop the poller outright.
					continue
				}
				if canceled {
					cancel()
					return
				}
			}
		}
	}()
	return p
}

// Stop halts polling and waits for the goroutine to exit. Safe to call
// whether or not the poller already fired cancel().
func (p *runPoller) Stop() {
	close(p.stop)
	<-p.done
}
