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

// Package calendar isolates the calendar provider's wire shapes behind a
// small interface so the rest of the orchestrator never imports a provider
// SDK directly.
package calendar

import (
	"context"
	"errors"
)

// ErrTokenGone is returned by IncrementalSync when the provider reports
// that a sync token has expired (HTTP 410), signaling that the caller must
// fall back to FullSync.
var ErrTokenGone = errors.New("calendar: sync token gone")

// Event is one calendar event as returned by either sync mode.
type Event struct {
	EventID     string
	Title       string
	Description string
	Status      string
	Attendees   []Attendee
}

// Attendee is one event participant.
type Attendee struct {
	Email       string
	DisplayName string
	Self        bool
}

// Page is one page of synced events plus the token to fetch the next page,
// empty when this is the last page.
type Page struct {
	Events        []Event
	NextPageToken string
	NextSyncToken string
}

// WatchRequest describes a new push-channel subscription to create.
type WatchRequest struct {
	CalendarID   string
	ChannelID    string
	ChannelToken string
	Address      string
}

// WatchResult carries the provider-assigned resource id and expiration for
// a newly created channel.
type WatchResult struct {
	ResourceID   string
	ExpirationMs int64
}

// Client is the calendar provider surface the orchestrator depends on.
// The concrete implementation wraps the provider's SDK; tests supply a
// hand-written fake.
type Client interface {
	Watch(ctx context.Context, req WatchRequest) (WatchResult, error)
	Stop(ctx context.Context, channelID, resourceID string) error
	FullSync(ctx context.Context, calendarID string, sinceDays int, pageToken string) (Page, error)
	IncrementalSync(ctx context.Context, calendarID, syncToken, pageToken string) (Page, error)
}
