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

// Package secrets is the named key-value secret store interface the core
// depends on (§6). The hosted implementation is out of scope per §1; only
// the interface and a local, environment-backed implementation live here.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Store fetches a named secret.
type Store interface {
	Get(ctx context.Context, name string) (string, error)
}

// ErrNotFound is returned when name has no value in the backing store.
type ErrNotFound struct {
	Name string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("secrets: %q not found", e.Name)
}

// EnvStore reads secrets from the process environment, selected when
// LOCAL_DEV is truthy (§6). Names are upper-cased and non-alphanumeric
// runs collapsed to underscores so callers can pass provider-shaped names
// ("tasks.webhook_secret") without worrying about env-var conventions.
type EnvStore struct {
	Prefix string
}

// NewEnvStore builds an EnvStore whose lookups are prefixed, e.g.
// NewEnvStore("DEALPIPE_SECRET_").Get(ctx, "tasks.webhook_secret") reads
// DEALPIPE_SECRET_TASKS_WEBHOOK_SECRET.
func NewEnvStore(prefix string) *EnvStore {
	return &EnvStore{Prefix: prefix}
}

func (s *EnvStore) Get(_ context.Context, name string) (string, error) {
	key := s.Prefix + envKey(name)
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", &ErrNotFound{Name: name}
	}
	return v, nil
}

func envKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
