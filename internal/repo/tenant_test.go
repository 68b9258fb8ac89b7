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
	"testing"

	"github.com/google/uuid"
)

func TestEnsureTenant_CreatesOnce(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	id := uuid.New()

	if err := EnsureTenant(ctx, pool, id, "acme"); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := EnsureTenant(ctx, pool, id, "acme-renamed"); err != nil {
		t.Fatalf("second ensure: %v", err)
	}

	got, err := GetTenant(ctx, pool, id)
	if err != nil {
		t.Fatalf("get tenant: %v", err)
	}
	if got == nil {
		t.Fatal("expected tenant, got nil")
	}
	if got.Name != "acme" {
		t.Errorf("name = %q, want %q (second call should be a no-op)", got.Name, "acme")
	}
}

func TestGetTenant_Missing(t *testing.T) {
	pool := newTestPool(t)
	got, err := GetTenant(context.Background(), pool, uuid.New())
	if err != nil {
		t.Fatalf("get tenant: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing tenant, got %+v", got)
	}
}
