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

package tasks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Event is one entry in a webhook delivery's events array.
type Event struct {
	WebhookGID   string `json:"webhook_gid"`
	ResourceGID  string `json:"resource_gid"`
	ResourceType string `json:"resource_type"`
	TaskGID      string `json:"task_gid"`
	ProjectGID   string `json:"project_gid"`
	Action       string `json:"action"`
	CreatedAt    string `json:"created_at"`
}

// Delivery is the JSON body of an event-mode webhook POST.
type Delivery struct {
	Events []Event `json:"events"`
}

// IdempotencyKey builds the §6-documented claim key for one event.
func (e Event) IdempotencyKey() string {
	return fmt.Sprintf("tasks_evt:%s:%s:%s:%s", e.WebhookGID, e.CreatedAt, e.ResourceGID, e.Action)
}

// IsTask reports whether the event concerns a task resource, the only
// resource type TASKS_PROCESS cares about.
func (e Event) IsTask() bool {
	return e.ResourceType == "task"
}

// ParseDelivery decodes a raw event-mode body.
func ParseDelivery(body []byte) (Delivery, error) {
	var d Delivery
	if err := json.Unmarshal(body, &d); err != nil {
		return Delivery{}, fmt.Errorf("parse tasks webhook delivery: %w", err)
	}
	return d, nil
}

// VerifySignature checks an HMAC-SHA256 hex-encoded signature of the raw
// request body against secret, in constant time.
func VerifySignature(secret string, body []byte, signatureHex string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}
