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
	"regexp"
	"strings"
)

const dealTag = "[deal]"

var titleSplitRe = regexp.MustCompile(`^(.+?)\s*[—-]\s*(.+)$`)

// IsDealEvent reports whether an event carries the literal [deal] tag in
// its title or description, case-insensitively. Title is checked first —
// §9's open question on precedence is preserved as-is from the source.
func IsDealEvent(e Event) bool {
	return containsTag(e.Title) || containsTag(e.Description)
}

func containsTag(s string) bool {
	return strings.Contains(strings.ToLower(s), dealTag)
}

// ExtractCompanyFounder derives company and founder names from an event
// per §4.5 step 4: prefer the "Company — Founder" shape of the tag-stripped
// title, otherwise fall back to the tag-stripped title as company and the
// first non-self attendee as founder.
func ExtractCompanyFounder(e Event) (company, founder string) {
	if m := titleSplitRe.FindStringSubmatch(stripTag(e.Title)); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}

	company = stripTag(e.Title)
	for _, a := range e.Attendees {
		if a.Self {
			continue
		}
		if a.DisplayName != "" {
			return company, a.DisplayName
		}
		return company, a.Email
	}
	return company, ""
}

func stripTag(s string) string {
	idx := strings.Index(strings.ToLower(s), dealTag)
	if idx < 0 {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[:idx] + s[idx+len(dealTag):])
}
