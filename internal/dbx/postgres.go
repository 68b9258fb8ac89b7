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

// Package dbx wraps the pgx connection pool used by every dealpipe service.
package dbx

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealpipe/orchestrator/internal/config"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	SSLMode         string
}

// Client wraps a pgx connection pool.
type Client struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewClient creates a new PostgreSQL client with connection pooling.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	connURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("postgres client connected successfully",
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.String("database", cfg.Database),
	)

	return &Client{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool.
func (c *Client) Close() {
	c.logger.Info("closing postgres client")
	c.pool.Close()
}

// Pool returns the underlying pgxpool.Pool for direct database access.
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// Ping verifies the database connection is still alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// CreateClient creates a PostgreSQL client from Config.
func (cfg *Config) CreateClient(logger *slog.Logger) (*Client, error) {
	return NewClient(context.Background(), *cfg, logger)
}

// FlagPointers holds pointers to flag values for PostgreSQL configuration.
type FlagPointers struct {
	host               *string
	port               *int
	user               *string
	password           *string
	database           *string
	maxConns           *int
	minConns           *int
	maxConnLifetimeMin *int
	sslMode            *string
}

// RegisterFlags registers PostgreSQL-related command-line flags.
// Returns a FlagPointers that should be converted to Config
// after flag.Parse() is called.
func RegisterFlags() *FlagPointers {
	return &FlagPointers{
		host: flag.String("postgres-host",
			config.GetEnv("DEALPIPE_POSTGRES_HOST", "localhost"),
			"PostgreSQL host"),
		port: flag.Int("postgres-port",
			config.GetEnvInt("DEALPIPE_POSTGRES_PORT", 5432),
			"PostgreSQL port"),
		user: flag.String("postgres-user",
			config.GetEnv("DEALPIPE_POSTGRES_USER", "postgres"),
			"PostgreSQL user"),
		password: flag.String("postgres-password",
			config.GetEnv("DEALPIPE_POSTGRES_PASSWORD", ""),
			"PostgreSQL password"),
		database: flag.String("postgres-database",
			config.GetEnv("DEALPIPE_POSTGRES_DATABASE_NAME", "dealpipe_db"),
			"PostgreSQL database name"),
		maxConns: flag.Int("postgres-max-conns",
			config.GetEnvInt("DEALPIPE_POSTGRES_MAX_CONNS", 10),
			"PostgreSQL maximum connections in pool"),
		minConns: flag.Int("postgres-min-conns",
			config.GetEnvInt("DEALPIPE_POSTGRES_MIN_CONNS", 2),
			"PostgreSQL minimum connections in pool"),
		maxConnLifetimeMin: flag.Int("postgres-max-conn-lifetime",
			config.GetEnvInt("DEALPIPE_POSTGRES_MAX_CONN_LIFETIME", 5),
			"PostgreSQL maximum connection lifetime in minutes"),
		sslMode: flag.String("postgres-ssl-mode",
			config.GetEnv("DEALPIPE_POSTGRES_SSL_MODE", "disable"),
			"PostgreSQL SSL mode (disable, require, verify-ca, verify-full)"),
	}
}

// ToConfig converts flag pointers to Config.
// This should be called after flag.Parse().
func (p *FlagPointers) ToConfig() Config {
	return Config{
		Host:            *p.host,
		Port:            *p.port,
		Database:        *p.database,
		User:            *p.user,
		Password:        *p.password,
		MaxConns:        int32(*p.maxConns),
		MinConns:        int32(*p.minConns),
		MaxConnLifetime: time.Duration(*p.maxConnLifetimeMin) * time.Minute,
		SSLMode:         *p.sslMode,
	}
}
