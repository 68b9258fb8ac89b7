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

package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPClient is the concrete Client backed by the calendar provider's REST
// API. BaseURL and APIKey are resolved from the tenant's Integration
// config bag (kind=calendar); the provider's own authentication and rate
// limiting are out of scope per §1 and are not modeled beyond a bearer
// token header.
type HTTPClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewHTTPClient builds an HTTPClient with the teacher's default provider
// timeout.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any, out any) (status int, err error) {
	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			return 0, fmt.Errorf("calendar: encode request: %w", err)
		}
	}

	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &reqBody)
	if err != nil {
		return 0, fmt.Errorf("calendar: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calendar: %w", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("calendar: decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Watch implements Client.
func (c *HTTPClient) Watch(ctx context.Context, req WatchRequest) (WatchResult, error) {
	var resp struct {
		ResourceID string `json:"resourceId"`
		Expiration string `json:"expiration"`
	}
	body := map[string]string{
		"id":      req.ChannelID,
		"type":    "web_hook",
		"address": req.Address,
		"token":   req.ChannelToken,
	}
	status, err := c.do(ctx, http.MethodPost, "/calendars/"+url.PathEscape(req.CalendarID)+"/events/watch", nil, body, &resp)
	if err != nil {
		return WatchResult{}, err
	}
	if status >= 300 {
		return WatchResult{}, fmt.Errorf("calendar: watch returned status %d", status)
	}
	expMs, _ := strconv.ParseInt(resp.Expiration, 10, 64)
	return WatchResult{ResourceID: resp.ResourceID, ExpirationMs: expMs}, nil
}

// Stop implements Client.
func (c *HTTPClient) Stop(ctx context.Context, channelID, resourceID string) error {
	body := map[string]string{"id": channelID, "resourceId": resourceID}
	status, err := c.do(ctx, http.MethodPost, "/channels/stop", nil, body, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("calendar: stop returned status %d", status)
	}
	return nil
}

type eventsPage struct {
	Items         []providerEvent `json:"items"`
	NextPageToken string          `json:"nextPageToken"`
	NextSyncToken string          `json:"nextSyncToken"`
}

type providerEvent struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Attendees   []struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Self        bool   `json:"self"`
	} `json:"attendees"`
}

func toPage(p eventsPage) Page {
	out := Page{NextPageToken: p.NextPageToken, NextSyncToken: p.NextSyncToken}
	for _, e := range p.Items {
		ev := Event{EventID: e.ID, Title: e.Summary, Description: e.Description, Status: e.Status}
		for _, a := range e.Attendees {
			ev.Attendees = append(ev.Attendees, Attendee{Email: a.Email, DisplayName: a.DisplayName, Self: a.Self})
		}
		out.Events = append(out.Events, ev)
	}
	return out
}

// FullSync implements Client.
func (c *HTTPClient) FullSync(ctx context.Context, calendarID string, sinceDays int, pageToken string) (Page, error) {
	q := url.Values{}
	q.Set("timeMin", time.Now().AddDate(0, 0, -sinceDays).Format(time.RFC3339))
	q.Set("maxResults", "250")
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	var resp eventsPage
	status, err := c.do(ctx, http.MethodGet, "/calendars/"+url.PathEscape(calendarID)+"/events", q, nil, &resp)
	if err != nil {
		return Page{}, err
	}
	if status >= 300 {
		return Page{}, fmt.Errorf("calendar: full sync returned status %d", status)
	}
	return toPage(resp), nil
}

// IncrementalSync implements Client. A 410 response maps to ErrTokenGone so
// callers fall back to FullSync per §4.5 step 2.
func (c *HTTPClient) IncrementalSync(ctx context.Context, calendarID, syncToken, pageToken string) (Page, error) {
	q := url.Values{}
	q.Set("syncToken", syncToken)
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	var resp eventsPage
	status, err := c.do(ctx, http.MethodGet, "/calendars/"+url.PathEscape(calendarID)+"/events", q, nil, &resp)
	if err != nil {
		return Page{}, err
	}
	if status == http.StatusGone {
		return Page{}, ErrTokenGone
	}
	if status >= 300 {
		return Page{}, fmt.Errorf("calendar: incremental sync returned status %d", status)
	}
	return toPage(resp), nil
}
