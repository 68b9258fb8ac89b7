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

import "net/http"

// PingHeaders is the decoded shape of one push-notification delivery. The
// provider sends headers only, no body.
type PingHeaders struct {
	ChannelID     string
	ResourceID    string
	ResourceState string
	MessageNumber string
	ChannelToken  string
}

// ExtractPingHeaders reads the provider's real push-notification header
// names. This function is the only place in the codebase that knows them.
func ExtractPingHeaders(h http.Header) PingHeaders {
	return PingHeaders{
		ChannelID:     h.Get("X-Goog-Channel-Id"),
		ResourceID:    h.Get("X-Goog-Resource-Id"),
		ResourceState: h.Get("X-Goog-Resource-State"),
		MessageNumber: h.Get("X-Goog-Message-Number"),
		ChannelToken:  h.Get("X-Goog-Channel-Token"),
	}
}
