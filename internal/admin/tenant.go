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
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// resolveTenant implements the §4.0 resolver chain's first and last links
// for admin requests: an explicit body field, then the TENANT_ID env default.
// Admin is a private, operator-facing surface so there is no header link
// in this chain (unlike ingress, which also accepts X-Tenant-Id from the
// calling provider).
func resolveTenant(explicitID, defaultTenant string) (uuid.UUID, error) {
	candidate := explicitID
	if candidate == "" {
		candidate = defaultTenant
	}
	if candidate == "" {
		return uuid.UUID{}, fmt.Errorf("resolve tenant: no tenantId in body and no TENANT_ID env default")
	}
	id, err := uuid.Parse(candidate)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("resolve tenant: invalid tenant id %q: %w", candidate, err)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
