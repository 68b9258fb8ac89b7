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

package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetIntegration fetches the config bag for (tenant, kind). Returns nil,
// nil when absent.
func GetIntegration(ctx context.Context, q Queryer, tenantID uuid.UUID, kind IntegrationKind) (*Integration, error) {
	var raw []byte
	i := Integration{TenantID: tenantID, Kind: kind}
	err := q.QueryRow(ctx, `
		SELECT config, updated_at FROM integrations
		WHERE tenant_id = $1 AND kind = $2`,
		tenantID, kind).Scan(&raw, &i.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get integration: %w", err)
	}
	if err := json.Unmarshal(raw, &i.Config); err != nil {
		return nil, fmt.Errorf("get integration: decode config: %w", err)
	}
	return &i, nil
}

// UpsertIntegration creates or replaces the config bag for (tenant, kind).
func UpsertIntegration(ctx context.Context, q Queryer, tenantID uuid.UUID, kind IntegrationKind, cfg map[string]any) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("upsert integration: encode config: %w", err)
	}
	_, err = q.Exec(ctx, `
		INSERT INTO integrations (tenant_id, kind, config, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (tenant_id, kind) DO UPDATE
		SET config = EXCLUDED.config, updated_at = now()`,
		tenantID, kind, raw)
	if err != nil {
		return fmt.Errorf("upsert integration: %w", err)
	}
	return nil
}
