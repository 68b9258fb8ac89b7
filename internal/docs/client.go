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

// Package docs isolates the document provider's wire shapes behind a small
// interface, and owns the markdown-to-block translation that is the only
// piece of output-format knowledge in the core (§9 design note).
package docs

import "context"

// PageName is one of the five fixed child pages every deal workspace gets.
type PageName string

const (
	PageMeetingNotes PageName = "meeting_notes"
	PageResearch     PageName = "research"
	PageRisks        PageName = "risks"
	PageFollowUps    PageName = "follow_ups"
	PageMemo         PageName = "memo"
)

// PageOrder is the fixed creation order for a new deal workspace.
var PageOrder = []PageName{PageMeetingNotes, PageResearch, PageRisks, PageFollowUps, PageMemo}

// Client is the document provider surface the orchestrator depends on.
// AppendBlocks and ClearBlocks address a page by the root workspace URL
// and its logical name rather than a raw provider page id, so callers
// that only have the deal's persisted doc_urls never need a second lookup.
type Client interface {
	CreateWorkspace(ctx context.Context, title string) (rootURL string, pageURLs map[PageName]string, err error)
	ReadContent(ctx context.Context, rootURL string, page PageName) (string, error)
	ClearBlocks(ctx context.Context, rootURL string, page PageName) error
	AppendBlocks(ctx context.Context, rootURL string, page PageName, blocks []Block) error
}
