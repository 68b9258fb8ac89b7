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
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func scanChannel(row pgx.Row) (*PushChannel, error) {
	var c PushChannel
	err := row.Scan(&c.TenantID, &c.CalendarID, &c.ChannelID, &c.ResourceID,
		&c.ChannelToken, &c.SyncToken, &c.ExpirationMs, &c.Status, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const channelColumns = `tenant_id, calendar_id, channel_id, resource_id, channel_token, sync_token, expiration_ms, status, created_at`

// InsertChannel creates a new push-channel row. Used by Start and by the
// "create new" step of Replace.
func InsertChannel(ctx context.Context, q Queryer, c PushChannel) error {
	_, err := q.Exec(ctx, `
		INSERT INTO push_channels (tenant_id, calendar_id, channel_id, resource_id, channel_token, sync_token, expiration_ms, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.TenantID, c.CalendarID, c.ChannelID, c.ResourceID, c.ChannelToken, c.SyncToken, c.ExpirationMs, c.Status)
	if err != nil {
		return fmt.Errorf("insert channel: %w", err)
	}
	return nil
}

// GetChannelByID fetches an active or replaced channel by (tenant,
// channel_id), regardless of calendar. Stopped channels are not returned.
// Returns nil, nil when absent.
func GetChannelByID(ctx context.Context, q Queryer, tenantID uuid.UUID, channelID string) (*PushChannel, error) {
	row := q.QueryRow(ctx, `
		SELECT `+channelColumns+` FROM push_channels
		WHERE tenant_id = $1 AND channel_id = $2
		AND status IN ('active', 'replaced')`,
		tenantID, channelID)
	c, err := scanChannel(row)
	if err != nil {
		return nil, fmt.Errorf("get channel by id: %w", err)
	}
	return c, nil
}

// GetActiveChannel fetches the single active channel for (tenant,
// calendar_id), if any.
func GetActiveChannel(ctx context.Context, q Queryer, tenantID uuid.UUID, calendarID string) (*PushChannel, error) {
	row := q.QueryRow(ctx, `
		SELECT `+channelColumns+` FROM push_channels
		WHERE tenant_id = $1 AND calendar_id = $2 AND status = 'active'`,
		tenantID, calendarID)
	c, err := scanChannel(row)
	if err != nil {
		return nil, fmt.Errorf("get active channel: %w", err)
	}
	return c, nil
}

// MarkChannelStatus transitions a channel row to a new status.
func MarkChannelStatus(ctx context.Context, q Queryer, tenantID uuid.UUID, channelID string, status ChannelStatus) error {
	_, err := q.Exec(ctx, `
		UPDATE push_channels SET status = $3
		WHERE tenant_id = $1 AND channel_id = $2`,
		tenantID, channelID, status)
	if err != nil {
		return fmt.Errorf("mark channel status: %w", err)
	}
	return nil
}

// SetSyncTokenOnActive persists next_sync_token onto whichever channel is
// currently active for (tenant, calendar_id) — not necessarily the
// triggering channel, since it may have been replaced mid-flight (§4.5
// step 7). Last-writer-wins, matching the ordering guarantee in §5.
func SetSyncTokenOnActive(ctx context.Context, q Queryer, tenantID uuid.UUID, calendarID, syncToken string) error {
	_, err := q.Exec(ctx, `
		UPDATE push_channels SET sync_token = $3
		WHERE tenant_id = $1 AND calendar_id = $2 AND status = 'active'`,
		tenantID, calendarID, syncToken)
	if err != nil {
		return fmt.Errorf("set sync token: %w", err)
	}
	return nil
}

// ListActiveChannelsExpiringBefore returns every active channel row, across
// all tenants, whose expiration_ms falls before cutoffMs. The scheduler
// (§4.3) uses this to find channels due for replacement well before they
// lapse; it is the one query in this file that is not tenant-scoped,
// matching the housekeeping sweep's own cross-tenant shape.
func ListActiveChannelsExpiringBefore(ctx context.Context, q Queryer, cutoffMs int64) ([]PushChannel, error) {
	rows, err := q.Query(ctx, `
		SELECT `+channelColumns+` FROM push_channels
		WHERE status = 'active' AND expiration_ms < $1
		ORDER BY expiration_ms`,
		cutoffMs)
	if err != nil {
		return nil, fmt.Errorf("list expiring channels: %w", err)
	}
	defer rows.Close()

	var out []PushChannel
	for rows.Next() {
		var c PushChannel
		if err := rows.Scan(&c.TenantID, &c.CalendarID, &c.ChannelID, &c.ResourceID,
			&c.ChannelToken, &c.SyncToken, &c.ExpirationMs, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("list expiring channels: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expiring channels: %w", err)
	}
	return out, nil
}

// DeleteRetiredChannelsOlderThan removes stopped/replaced channel rows
// created before cutoff (§6 /admin/housekeeping: retired channels older
// than 24h).
func DeleteRetiredChannelsOlderThan(ctx context.Context, q Queryer, cutoff time.Time) (int64, error) {
	tag, err := q.Exec(ctx, `
		DELETE FROM push_channels
		WHERE status IN ('replaced', 'stopped') AND created_at < $1`,
		cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete retired channels: %w", err)
	}
	return tag.RowsAffected(), nil
}
