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

	"golang.org/x/oauth2"
)

// HTTPQueueClient is the real durable-queue backend: it POSTs the
// envelope to the queue provider's task-creation API carrying an
// OIDC-signed Authorization header, addressed to the worker's dispatch
// URL as audience.
type HTTPQueueClient struct {
	CreateTaskURL  string // the queue provider's task-creation endpoint
	DispatchURL    string // audience: worker's /tasks/dispatch URL
	InvokerSAEmail string
	TokenSource    oauth2.TokenSource
	HTTPClient     *http.Client
}

// NewHTTPQueueClient builds an HTTPQueueClient, defaulting the HTTP
// client's timeout the way the teacher's provider clients do.
func NewHTTPQueueClient(createTaskURL, dispatchURL, invokerSAEmail string, ts oauth2.TokenSource) *HTTPQueueClient {
	return &HTTPQueueClient{
		CreateTaskURL:  createTaskURL,
		DispatchURL:    dispatchURL,
		InvokerSAEmail: invokerSAEmail,
		TokenSource:    ts,
		HTTPClient:     &http.Client{Timeout: 30 * time.Second},
	}
}

// taskCreateRequest is the minimal shape a durable-queue provider's
// task-creation API expects: the target URL, the body to deliver, and the
// OIDC identity to sign the delivery with.
type taskCreateRequest struct {
	HTTPTarget struct {
		URL    string            `json:"url"`
		Body   string            `json:"body"`
		Header map[string]string `json:"headers"`
		OIDC   struct {
			ServiceAccountEmail string `json:"serviceAccountEmail"`
			Audience            string `json:"audience"`
		} `json:"oidcToken"`
	} `json:"httpRequest"`
}

// Enqueue implements Client.
func (c *HTTPQueueClient) Enqueue(ctx context.Context, env Envelope) (string, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("enqueue: encode envelope: %w", err)
	}

	var reqBody taskCreateRequest
	reqBody.HTTPTarget.URL = c.DispatchURL
	reqBody.HTTPTarget.Body = string(body)
	reqBody.HTTPTarget.Header = map[string]string{"Content-Type": "application/json"}
	reqBody.HTTPTarget.OIDC.ServiceAccountEmail = c.InvokerSAEmail
	reqBody.HTTPTarget.OIDC.Audience = c.DispatchURL

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("enqueue: encode task request: %w", err)
	}

	token, err := c.TokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("enqueue: fetch OIDC token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.CreateTaskURL, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("enqueue: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	token.SetAuthHeader(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("enqueue: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("enqueue: queue provider returned %d", resp.StatusCode)
	}

	var result struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("enqueue: decode response: %w", err)
	}
	return result.Name, nil
}
