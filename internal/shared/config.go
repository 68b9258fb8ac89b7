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

// Package shared is the bootstrap glue every cmd/* binary calls: the §6
// environment-table flags that are not specific to any one service
// (tenant default, worker/ingress addressing, LLM model, LOCAL_DEV), and
// the constructors that turn those flags into the queue client and
// secret store singletons the design notes call for.
package shared

import (
	"flag"
	"fmt"

	"github.com/google/uuid"

	"github.com/dealpipe/orchestrator/internal/config"
	"github.com/dealpipe/orchestrator/internal/dbx"
)

// Config holds the §6 environment table's service-agnostic fields.
type Config struct {
	ListenAddr           string
	DefaultTenant        uuid.UUID
	ProjectID            string
	Region               string
	ServiceName          string
	WorkerURL            string
	IngressPublicBaseURL string
	TasksInvokerSAEmail  string
	LLMModel             string
	LocalDev             bool

	// QueueCreateTaskURL is the durable-queue provider's task-creation
	// endpoint, only consulted when LocalDev is false.
	QueueCreateTaskURL string

	// CalendarAPIBaseURL, TasksAPIBaseURL, and DocsAPIBaseURL address the
	// three provider REST APIs. Per-tenant overrides live in the
	// integrations table (§4.1's Integration config bag); these flags are
	// the single-tenant default every provider client falls back to.
	CalendarAPIBaseURL string
	TasksAPIBaseURL    string
	DocsAPIBaseURL     string
}

// FlagPointers holds pointers to flag values, converted to Config after
// flag.Parse(), mirroring the teacher's RegisterFlags/ToConfig two-phase
// pattern used throughout dbx and cache.
type FlagPointers struct {
	listenAddr         *string
	defaultTenant      *string
	projectID          *string
	region             *string
	serviceName        *string
	workerURL          *string
	ingressURL         *string
	invokerSA          *string
	llmModel           *string
	localDev           *bool
	queueCreateURL     *string
	calendarAPIBaseURL *string
	tasksAPIBaseURL    *string
	docsAPIBaseURL     *string
}

// RegisterFlags registers the shared command-line flags.
func RegisterFlags() *FlagPointers {
	return &FlagPointers{
		listenAddr: flag.String("listen-addr",
			config.GetEnv("DEALPIPE_LISTEN_ADDR", ":8080"),
			"HTTP listen address"),
		defaultTenant: flag.String("tenant-id",
			config.GetEnv("TENANT_ID", "00000000-0000-0000-0000-000000000001"),
			"Default tenant UUID (TENANT_ID)"),
		projectID: flag.String("project-id",
			config.GetEnv("PROJECT_ID", ""),
			"Hosting project id (PROJECT_ID)"),
		region: flag.String("region",
			config.GetEnv("REGION", ""),
			"Hosting region (REGION)"),
		serviceName: flag.String("service-name",
			config.GetEnv("SERVICE_NAME", "dealpipe"),
			"Log tag for this binary (SERVICE_NAME)"),
		workerURL: flag.String("worker-url",
			config.GetEnv("WORKER_URL", "http://localhost:8082"),
			"Worker base URL, used by the local queue client and by admin's watch registration (WORKER_URL)"),
		ingressURL: flag.String("ingress-public-base-url",
			config.GetEnv("INGRESS_PUBLIC_BASE_URL", "http://localhost:8080"),
			"Public base URL providers push notifications to (INGRESS_PUBLIC_BASE_URL)"),
		invokerSA: flag.String("tasks-invoker-sa-email",
			config.GetEnv("TASKS_INVOKER_SA_EMAIL", ""),
			"Service account email the queue uses to sign OIDC tokens (TASKS_INVOKER_SA_EMAIL)"),
		llmModel: flag.String("llm-model",
			config.GetEnv("LLM_MODEL", "gpt-4o"),
			"LLM model identifier (LLM_MODEL)"),
		localDev: flag.Bool("local-dev",
			config.GetEnvBool("LOCAL_DEV", false),
			"Bypass OIDC and dispatch the queue directly via HTTP (LOCAL_DEV)"),
		queueCreateURL: flag.String("queue-create-task-url",
			config.GetEnv("DEALPIPE_QUEUE_CREATE_TASK_URL", ""),
			"Durable queue provider's task-creation endpoint (non-local only)"),
		calendarAPIBaseURL: flag.String("calendar-api-base-url",
			config.GetEnv("DEALPIPE_CALENDAR_API_BASE_URL", "https://www.googleapis.com/calendar/v3"),
			"Calendar provider REST API base URL (DEALPIPE_CALENDAR_API_BASE_URL)"),
		tasksAPIBaseURL: flag.String("tasks-api-base-url",
			config.GetEnv("DEALPIPE_TASKS_API_BASE_URL", "https://app.asana.com/api/1.0"),
			"Task-management provider REST API base URL (DEALPIPE_TASKS_API_BASE_URL)"),
		docsAPIBaseURL: flag.String("docs-api-base-url",
			config.GetEnv("DEALPIPE_DOCS_API_BASE_URL", "https://api.notion.com/v1"),
			"Document provider REST API base URL (DEALPIPE_DOCS_API_BASE_URL)"),
	}
}

// ToConfig converts flag pointers to Config. Must be called after
// flag.Parse().
func (f *FlagPointers) ToConfig() Config {
	tenantID, err := uuid.Parse(*f.defaultTenant)
	if err != nil {
		tenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	}
	return Config{
		ListenAddr:           *f.listenAddr,
		DefaultTenant:        tenantID,
		ProjectID:            *f.projectID,
		Region:               *f.region,
		ServiceName:          *f.serviceName,
		WorkerURL:            *f.workerURL,
		IngressPublicBaseURL: *f.ingressURL,
		TasksInvokerSAEmail:  *f.invokerSA,
		LLMModel:             *f.llmModel,
		LocalDev:             *f.localDev,
		QueueCreateTaskURL:   *f.queueCreateURL,
		CalendarAPIBaseURL:   *f.calendarAPIBaseURL,
		TasksAPIBaseURL:      *f.tasksAPIBaseURL,
		DocsAPIBaseURL:       *f.docsAPIBaseURL,
	}
}

// PostgresDSN renders a dbx.Config into the postgres:// DSN goose/pgx's
// database/sql driver expects (dbx.Client owns the pgxpool-native
// connection string internally; migrations run through database/sql, so
// main.go needs this second, string form too).
func PostgresDSN(cfg dbx.Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode)
}
