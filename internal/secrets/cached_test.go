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

package secrets

import (
	"context"
	"testing"
)

type countingStore struct {
	calls int
	value string
}

func (s *countingStore) Get(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.value, nil
}

func TestCachedStore_CachesBetweenCalls(t *testing.T) {
	backend := &countingStore{value: "shh"}
	cs := NewCachedStore(backend)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		v, err := cs.Get(ctx, "tasks.secret")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if v != "shh" {
			t.Errorf("Get() = %q, want %q", v, "shh")
		}
	}
	if backend.calls != 1 {
		t.Errorf("backend called %d times, want 1", backend.calls)
	}
}

func TestCachedStore_ClearForcesRefetch(t *testing.T) {
	backend := &countingStore{value: "v1"}
	cs := NewCachedStore(backend)
	ctx := context.Background()

	if _, err := cs.Get(ctx, "k"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	backend.value = "v2"
	cs.Clear()

	v, err := cs.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v != "v2" {
		t.Errorf("Get() after Clear() = %q, want %q", v, "v2")
	}
	if backend.calls != 2 {
		t.Errorf("backend called %d times, want 2", backend.calls)
	}
}

func TestEnvStore_PrefixAndKeyNormalization(t *testing.T) {
	t.Setenv("DEALPIPE_SECRET_TASKS_WEBHOOK_SECRET", "topsecret")
	s := NewEnvStore("DEALPIPE_SECRET_")

	v, err := s.Get(context.Background(), "tasks.webhook_secret")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v != "topsecret" {
		t.Errorf("Get() = %q, want %q", v, "topsecret")
	}
}

func TestEnvStore_NotFound(t *testing.T) {
	s := NewEnvStore("DEALPIPE_SECRET_")
	if _, err := s.Get(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing secret")
	}
}
