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
)

// ClaimIdempotencyKey attempts to insert key and reports whether this call
// was the one that created it. A false result means the key was already
// claimed by an earlier call (possibly concurrent) and the caller must
// treat the event as a duplicate and skip processing. Key formats in use:
//
//	calendar_ping:{channel_id}:{message_number}   (§4.1)
//	tasks_evt:{webhook_gid}:{created_at}:{resource_gid}:{action}  (§4.2, §9)
//	stage:{task_gid}:{section_gid}:{modified_at}  (§4.8)
func ClaimIdempotencyKey(ctx context.Context, q Queryer, key string) (claimed bool, err error) {
	tag, err := q.Exec(ctx, `
		INSERT INTO idempotency_keys (key) VALUES ($1)
		ON CONFLICT (key) DO NOTHING`,
		key)
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseIdempotencyKey removes a claimed key, letting a later delivery of
// the same event re-claim it. Callers use this to undo a claim when the
// work the claim was gating (e.g. enqueueing a job) fails after the claim
// succeeded, so the event isn't silently dropped for good.
func ReleaseIdempotencyKey(ctx context.Context, q Queryer, key string) error {
	if _, err := q.Exec(ctx, `DELETE FROM idempotency_keys WHERE key = $1`, key); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// DeleteIdempotencyKeysOlderThan prunes claimed keys past their retention
// window (§6 /admin/housekeeping).
func DeleteIdempotencyKeysOlderThan(ctx context.Context, q Queryer, cutoffDays int) (int64, error) {
	tag, err := q.Exec(ctx, `
		DELETE FROM idempotency_keys
		WHERE created_at < now() - make_interval(days => $1)`,
		cutoffDays)
	if err != nil {
		return 0, fmt.Errorf("delete idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
