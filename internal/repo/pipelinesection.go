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
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ResolveSection looks up the stage a section maps to for a project, per
// §4.8 step 1: "look up (project_gid, section_gid) in pipeline_sections; if
// absent or enabled = false, no-op". Returns nil, nil in both of those
// cases so callers can treat them identically without a second branch.
func ResolveSection(ctx context.Context, q Queryer, tenantID uuid.UUID, projectGID, sectionGID string) (*PipelineSection, error) {
	var s PipelineSection
	err := q.QueryRow(ctx, `
		SELECT tenant_id, project_gid, section_gid, stage_key, enabled
		FROM pipeline_sections
		WHERE tenant_id = $1 AND project_gid = $2 AND section_gid = $3`,
		tenantID, projectGID, sectionGID).
		Scan(&s.TenantID, &s.ProjectGID, &s.SectionGID, &s.StageKey, &s.Enabled)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve section: %w", err)
	}
	if !s.Enabled {
		return nil, nil
	}
	return &s, nil
}

// UpsertPipelineSection creates or updates a section-to-stage mapping,
// used by tenant onboarding and admin configuration endpoints.
func UpsertPipelineSection(ctx context.Context, q Queryer, s PipelineSection) error {
	_, err := q.Exec(ctx, `
		INSERT INTO pipeline_sections (tenant_id, project_gid, section_gid, stage_key, enabled)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, project_gid, section_gid) DO UPDATE
		SET stage_key = EXCLUDED.stage_key, enabled = EXCLUDED.enabled`,
		s.TenantID, s.ProjectGID, s.SectionGID, s.StageKey, s.Enabled)
	if err != nil {
		return fmt.Errorf("upsert pipeline section: %w", err)
	}
	return nil
}

// ListPipelineSections returns every section mapping configured for a
// project, enabled or not, for admin inspection endpoints.
func ListPipelineSections(ctx context.Context, q Queryer, tenantID uuid.UUID, projectGID string) ([]PipelineSection, error) {
	rows, err := q.Query(ctx, `
		SELECT tenant_id, project_gid, section_gid, stage_key, enabled
		FROM pipeline_sections
		WHERE tenant_id = $1 AND project_gid = $2
		ORDER BY section_gid`,
		tenantID, projectGID)
	if err != nil {
		return nil, fmt.Errorf("list pipeline sections: %w", err)
	}
	defer rows.Close()

	var out []PipelineSection
	for rows.Next() {
		var s PipelineSection
		if err := rows.Scan(&s.TenantID, &s.ProjectGID, &s.SectionGID, &s.StageKey, &s.Enabled); err != nil {
			return nil, fmt.Errorf("list pipeline sections: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pipeline sections: %w", err)
	}
	return out, nil
}
