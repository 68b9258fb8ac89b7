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
	"fmt"
	"net/http"
)

// tasksWebhookCreateRequest is the POST /admin/tasks/webhook/create body.
// ResourceGID names the pipeline project to watch; the registration points
// the provider at this deployment's /webhooks/tasks endpoint, where the
// two-phase handshake (§4.2) completes the shared-secret exchange.
type tasksWebhookCreateRequest struct {
	ResourceGID string `json:"resourceGid" validate:"required"`
}

// TasksWebhookCreate implements §6 POST /admin/tasks/webhook/create:
// registers a webhook with the task-management provider. The provider's
// handshake callback (§4.2) independently establishes the shared secret;
// this endpoint only creates the subscription.
func TasksWebhookCreate(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req tasksWebhookCreateRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		webhookGID, err := d.Tasks.CreateWebhook(ctx, req.ResourceGID, d.IngressPublicBaseURL+"/webhooks/tasks")
		if err != nil {
			writeJSONError(w, http.StatusBadGateway, fmt.Errorf("tasks webhook create: %w", err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"webhookGid": webhookGID})
	}
}

// tasksWebhookDeleteRequest is the POST /admin/tasks/webhook/delete body.
type tasksWebhookDeleteRequest struct {
	WebhookGID string `json:"webhookGid" validate:"required"`
}

// TasksWebhookDelete implements §6 POST /admin/tasks/webhook/delete.
func TasksWebhookDelete(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req tasksWebhookDeleteRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		if err := d.Tasks.DeleteWebhook(ctx, req.WebhookGID); err != nil {
			writeJSONError(w, http.StatusBadGateway, fmt.Errorf("tasks webhook delete: %w", err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"webhookGid": req.WebhookGID, "status": "deleted"})
	}
}
