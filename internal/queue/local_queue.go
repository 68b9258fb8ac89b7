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

package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// LocalClient is the direct-HTTP local variant of the pluggable queue
// interface called for in §9's design notes: selected instead of
// HTTPQueueClient when LOCAL_DEV is truthy, it skips the durable-queue
// provider and OIDC signing entirely and posts straight to the worker's
// dispatch endpoint over HTTP, synchronously.
type LocalClient struct {
	DispatchURL string
	HTTPClient  *http.Client
}

// NewLocalClient builds a LocalClient posting directly to dispatchURL.
func NewLocalClient(dispatchURL string) *LocalClient {
	return &LocalClient{DispatchURL: dispatchURL, HTTPClient: &http.Client{Timeout: 30 * time.Second}}
}

// Enqueue implements Client by delivering the envelope immediately; the
// returned "task name" is synthetic since there is no durable-queue record.
func (c *LocalClient) Enqueue(ctx context.Context, env Envelope) (string, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("enqueue: encode envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.DispatchURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("enqueue: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("enqueue: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("enqueue: worker dispatch returned %d", resp.StatusCode)
	}
	return fmt.Sprintf("local-%s", env.JobType), nil
}
