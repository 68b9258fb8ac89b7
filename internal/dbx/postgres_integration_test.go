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

package dbx

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"testing"
	"time"
)

var flagPtrs = RegisterFlags()

// TestIntegration_Connection tests connecting to a real PostgreSQL instance.
func TestIntegration_Connection(t *testing.T) {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := flagPtrs.ToConfig()

	ctx := context.Background()
	client, err := NewClient(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Failed to create postgres client: %v\n"+
			"Make sure PostgreSQL is running with:\n"+
			"  docker run --rm -d --name postgres -p 5432:5432 \\\n"+
			"    -e POSTGRES_PASSWORD=dealpipe -e POSTGRES_DB=dealpipe_db postgres:15.1",
			err)
	}
	defer client.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}
}

// TestIntegration_Pool tests that the connection pool is accessible.
func TestIntegration_Pool(t *testing.T) {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := flagPtrs.ToConfig()

	ctx := context.Background()
	client, err := NewClient(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Failed to create postgres client: %v", err)
	}
	defer client.Close()

	pool := client.Pool()
	if pool == nil {
		t.Fatal("Pool() returned nil")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := pool.Query(queryCtx, "SELECT 1")
	if err != nil {
		t.Fatalf("Failed to execute query: %v", err)
	}
	defer rows.Close()

	if !rows.Next() {
		t.Fatal("Expected at least one row from SELECT 1")
	}

	var result int
	if err := rows.Scan(&result); err != nil {
		t.Fatalf("Failed to scan result: %v", err)
	}

	if result != 1 {
		t.Errorf("Expected result 1, got %d", result)
	}
}

// TestIntegration_CreateClient tests the CreateClient method on Config.
func TestIntegration_CreateClient(t *testing.T) {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := flagPtrs.ToConfig()
	client, err := cfg.CreateClient(logger)
	if err != nil {
		t.Fatalf("Failed to create postgres client using CreateClient: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}
}
