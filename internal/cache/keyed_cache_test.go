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

package cache

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestKeyedCache_SetAndGet(t *testing.T) {
	cache := NewKeyedCache[string](100, time.Minute, testLogger())

	cache.Set("channel-1", "tenant-a")
	cache.Set("channel-2", "tenant-b")

	if cache.Size() != 2 {
		t.Errorf("expected size 2, got %d", cache.Size())
	}

	v, ok := cache.Get("channel-1")
	if !ok || v != "tenant-a" {
		t.Errorf("expected hit with tenant-a, got %q ok=%v", v, ok)
	}
}

func TestKeyedCache_Miss(t *testing.T) {
	cache := NewKeyedCache[string](100, time.Minute, testLogger())

	_, ok := cache.Get("does-not-exist")
	if ok {
		t.Error("expected miss for unset key")
	}
}

func TestKeyedCache_Overwrite(t *testing.T) {
	cache := NewKeyedCache[int](100, time.Minute, testLogger())

	cache.Set("k", 1)
	cache.Set("k", 2)

	v, ok := cache.Get("k")
	if !ok || v != 2 {
		t.Errorf("expected overwritten value 2, got %d ok=%v", v, ok)
	}
	if cache.Size() != 1 {
		t.Errorf("expected size 1 after overwrite, got %d", cache.Size())
	}
}

func TestKeyedCache_Invalidate(t *testing.T) {
	cache := NewKeyedCache[string](100, time.Minute, testLogger())

	cache.Set("secret-id", "hmac-secret-value")
	cache.Invalidate("secret-id")

	if _, ok := cache.Get("secret-id"); ok {
		t.Error("expected miss after Invalidate")
	}
}

func TestKeyedCache_TTLExpiry(t *testing.T) {
	cache := NewKeyedCache[string](100, 10*time.Millisecond, testLogger())

	cache.Set("k", "v")
	time.Sleep(30 * time.Millisecond)

	if _, ok := cache.Get("k"); ok {
		t.Error("expected entry to have expired")
	}
}
