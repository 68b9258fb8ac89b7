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

package ingress

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

const tenantHeader = "X-Tenant-Id"

// resolveTenant implements the §4.0 resolver chain: explicit field → header
// → env default. explicitID is whatever the handler already pulled out of
// a typed body field, empty if the body carries none (both webhook bodies
// are provider-shaped and never carry a tenant field).
func resolveTenant(r *http.Request, explicitID, defaultTenant string) (uuid.UUID, error) {
	candidate := explicitID
	if candidate == "" {
		candidate = r.Header.Get(tenantHeader)
	}
	if candidate == "" {
		candidate = defaultTenant
	}
	if candidate == "" {
		return uuid.UUID{}, fmt.Errorf("resolve tenant: no tenant_id available (body, %s header, or TENANT_ID env)", tenantHeader)
	}
	id, err := uuid.Parse(candidate)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("resolve tenant: invalid tenant id %q: %w", candidate, err)
	}
	return id, nil
}
