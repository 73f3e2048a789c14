// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// DRS Incident Bridge — One-Shot Process Command
//
// Standalone CLI tool that runs the incident pipeline for a single account.
// Intended for manual reprocessing and operational testing.
//
// Usage:
//
//	go run ./cmd/process/ --account 123456 --incident 42
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/anupamamaheepala/call-API/internal/config"
	"github.com/anupamamaheepala/call-API/internal/deliver"
	"github.com/anupamamaheepala/call-API/internal/pipeline"
	"github.com/anupamamaheepala/call-API/internal/queue"
	"github.com/anupamamaheepala/call-API/internal/store"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// --- CLI Flags ---
	accountFlag := flag.String("account", "", "Account number to process (required)")
	incidentFlag := flag.Int("incident", 0, "Incident identifier (required)")
	flag.Parse()

	if *accountFlag == "" || *incidentFlag <= 0 {
		fmt.Fprintf(os.Stderr, "Error: --account and a positive --incident are required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Connect to PostgreSQL ---
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create Postgres pool", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	if err := pgPool.Ping(ctx); err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	source := store.NewPostgres(pgPool, cfg.QueryTimeout)

	// --- Worker notices (optional) ---
	var notifier pipeline.Notifier
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()

		publisher := queue.NewPublisher(rdb, cfg.IncidentsQueue)
		if err := publisher.Ping(ctx); err != nil {
			slog.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		notifier = publisher
	}

	// --- Incident API client ---
	httpClient := deliver.NewHTTPClient(ctx, deliver.Config{
		TokenURL:     cfg.API.TokenURL,
		ClientID:     cfg.API.ClientID,
		ClientSecret: cfg.API.ClientSecret,
		Timeout:      cfg.RequestTimeout,
	})

	// --- Run Pipeline ---
	pipe := pipeline.New(pipeline.PipelineConfig{
		Source:    source,
		Deliverer: deliver.NewClient(httpClient, cfg.API.Endpoint),
		Notifier:  notifier,
	})

	result := pipe.Run(ctx, *accountFlag, *incidentFlag)

	// --- Summary ---
	slog.Info("pipeline finished",
		"account", result.AccountNum,
		"incident_id", result.IncidentID,
		"state", result.State,
		"elapsed", result.Elapsed,
	)

	if !result.Succeeded() {
		os.Exit(1)
	}
}
