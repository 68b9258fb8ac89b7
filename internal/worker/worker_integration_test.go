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

package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dealpipe/orchestrator/internal/calendar"
	"github.com/dealpipe/orchestrator/internal/docs"
	"github.com/dealpipe/orchestrator/internal/llm"
	"github.com/dealpipe/orchestrator/internal/queue"
	"github.com/dealpipe/orchestrator/internal/repo"
	"github.com/dealpipe/orchestrator/internal/tasks"
)

// newTestPool boots a disposable Postgres container and migrates it, the
// same bootstrap the repo package's own integration tests use.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15.1",
		tcpostgres.WithDatabase("dealpipe_db"),
		tcpostgres.WithUsername("dealpipe"),
		tcpostgres.WithPassword("dealpipe"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}
	if err := repo.Migrate(dsn); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func seedTenant(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	if err := repo.EnsureTenant(context.Background(), pool, id, "acme"); err != nil {
		t.Fatalf("ensure tenant: %v", err)
	}
	return id
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeQueue records enqueued envelopes instead of dispatching over HTTP.
type fakeQueue struct {
	mu   sync.Mutex
	jobs []queue.Envelope
}

func (q *fakeQueue) Enqueue(_ context.Context, env queue.Envelope) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, env)
	return "fake-task-" + string(env.JobType), nil
}

func (q *fakeQueue) snapshot() []queue.Envelope {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]queue.Envelope, len(q.jobs))
	copy(out, q.jobs)
	return out
}

// fakeTasks is an in-memory tasks.Client.
type fakeTasks struct {
	mu          sync.Mutex
	memberships map[string]tasks.Membership
	created     []string
	subtasks    map[string][]tasks.Subtask
	notes       map[string]string
	completed   map[string]bool
	nextGID     int
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{
		memberships: map[string]tasks.Membership{},
		subtasks:    map[string][]tasks.Subtask{},
		notes:       map[string]string{},
		completed:   map[string]bool{},
	}
}

func (f *fakeTasks) GetMembership(_ context.Context, taskGID, _ string) (tasks.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memberships[taskGID], nil
}

func (f *fakeTasks) CreateTask(_ context.Context, _, sectionGID, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextGID++
	gid := uuid.New().String()
	f.created = append(f.created, gid)
	f.memberships[gid] = tasks.Membership{SectionGID: sectionGID, ModifiedAt: time.Now().UTC().Format(time.RFC3339)}
	return gid, nil
}

func (f *fakeTasks) AddSubtasks(_ context.Context, taskGID string, subtasks []tasks.Subtask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subtasks[taskGID] = append(f.subtasks[taskGID], subtasks...)
	return nil
}

func (f *fakeTasks) UpdateNotes(_ context.Context, taskGID, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes[taskGID] = notes
	return nil
}

func (f *fakeTasks) MarkComplete(_ context.Context, taskGID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[taskGID] = true
	return nil
}

func (f *fakeTasks) CreateWebhook(context.Context, string, string) (string, error) { return "", nil }
func (f *fakeTasks) DeleteWebhook(context.Context, string) error                    { return nil }

// fakeDocs is an in-memory docs.Client.
type fakeDocs struct {
	mu      sync.Mutex
	pages   map[string]map[docs.PageName][]docs.Block
	nextURL int
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{pages: map[string]map[docs.PageName][]docs.Block{}}
}

func (f *fakeDocs) CreateWorkspace(_ context.Context, _ string) (string, map[docs.PageName]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextURL++
	root := uuid.New().String()
	f.pages[root] = map[docs.PageName][]docs.Block{}
	urls := make(map[docs.PageName]string, len(docs.PageOrder))
	for _, name := range docs.PageOrder {
		urls[name] = root + "/" + string(name)
	}
	return root, urls, nil
}

func (f *fakeDocs) ReadContent(_ context.Context, root string, page docs.PageName) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out string
	for _, b := range f.pages[root][page] {
		out += b.Text + "\n"
	}
	return out, nil
}

func (f *fakeDocs) ClearBlocks(_ context.Context, root string, page docs.PageName) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pages[root] == nil {
		f.pages[root] = map[docs.PageName][]docs.Block{}
	}
	f.pages[root][page] = nil
	return nil
}

func (f *fakeDocs) AppendBlocks(_ context.Context, root string, page docs.PageName, blocks []docs.Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pages[root] == nil {
		f.pages[root] = map[docs.PageName][]docs.Block{}
	}
	f.pages[root][page] = append(f.pages[root][page], blocks...)
	return nil
}

// fakeLLM is an in-memory llm.Client that returns a canned completion per
// call, optionally blocking until ctx is canceled to exercise §4.9's
// cancellation contract.
type fakeLLM struct {
	mu      sync.Mutex
	calls   int
	block   bool
	release chan struct{}
}

func (f *fakeLLM) Complete(ctx context.Context, _, _ string) (llm.Completion, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block {
		select {
		case <-ctx.Done():
			return llm.Completion{}, ctx.Err()
		case <-f.release:
			return llm.Completion{}, ctx.Err()
		}
	}
	return llm.Completion{Text: "## Finding\n\nLooks promising."}, nil
}

// fakeCalendar is an in-memory calendar.Client, unused directly by most
// worker tests but kept so Deps can always be constructed fully.
type fakeCalendar struct{}

func (fakeCalendar) Watch(context.Context, calendar.WatchRequest) (calendar.WatchResult, error) {
	return calendar.WatchResult{}, nil
}
func (fakeCalendar) Stop(context.Context, string, string) error { return nil }
func (fakeCalendar) FullSync(context.Context, string, int, string) (calendar.Page, error) {
	return calendar.Page{}, nil
}
func (fakeCalendar) IncrementalSync(context.Context, string, string, string) (calendar.Page, error) {
	return calendar.Page{}, nil
}

func testDeps(pool *pgxpool.Pool, q queue.Client, cal calendar.Client, tk tasks.Client, dc docs.Client, lm llm.Client) Deps {
	return Deps{
		Pool:               pool,
		Queue:              q,
		Calendar:           cal,
		Tasks:              tk,
		Docs:               dc,
		LLM:                lm,
		Logger:             testLogger(),
		CancelPollInterval: 20 * time.Millisecond,
	}
}
