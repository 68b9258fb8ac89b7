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

// Command worker runs the single dispatch endpoint and the six jobType
// handlers behind it (§2, §4.4-§4.10).
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dealpipe/orchestrator/internal/dbx"
	"github.com/dealpipe/orchestrator/internal/logging"
	"github.com/dealpipe/orchestrator/internal/repo"
	"github.com/dealpipe/orchestrator/internal/shared"
	"github.com/dealpipe/orchestrator/internal/worker"
)

func main() {
	logFlags := logging.RegisterFlags()
	pgFlags := dbx.RegisterFlags()
	appFlags := shared.RegisterFlags()
	flag.Parse()

	logCfg := logFlags.ToConfig()
	logger := logging.InitLogger("worker", logCfg)

	appCfg := appFlags.ToConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := dbx.NewClient(ctx, pgFlags.ToConfig(), logger)
	if err != nil {
		logger.Error("connect postgres failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pg.Close()

	dsn := shared.PostgresDSN(pgFlags.ToConfig())
	if err := repo.Migrate(dsn); err != nil {
		logger.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := repo.EnsureTenant(ctx, pg.Pool(), appCfg.DefaultTenant, "default"); err != nil {
		logger.Error("ensure default tenant failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	secretStore := shared.BuildSecretStore(appCfg)
	queueClient := shared.BuildQueueClient(appCfg)

	calendarClient, err := shared.BuildCalendarClient(ctx, secretStore, appCfg.CalendarAPIBaseURL)
	if err != nil {
		logger.Error("build calendar client failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	tasksClient, err := shared.BuildTasksClient(ctx, secretStore, appCfg.TasksAPIBaseURL)
	if err != nil {
		logger.Error("build tasks client failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	docsClient, err := shared.BuildDocsClient(ctx, secretStore, appCfg.DocsAPIBaseURL)
	if err != nil {
		logger.Error("build docs client failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	llmClient, err := shared.BuildLLMClient(ctx, secretStore, appCfg.LLMModel)
	if err != nil {
		logger.Error("build llm client failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	deps := worker.Deps{
		Pool:     pg.Pool(),
		Queue:    queueClient,
		Calendar: calendarClient,
		Tasks:    tasksClient,
		Docs:     docsClient,
		LLM:      llmClient,
		Logger:   logger,
	}

	srv := &http.Server{
		Addr:    appCfg.ListenAddr,
		Handler: worker.NewRouter(deps),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("worker listening", slog.String("addr", appCfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		logger.Info("worker shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
