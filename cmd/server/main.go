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

// DRS Incident Bridge — Trigger Service
//
// Entry point for the long-running bridge service. It:
//  1. Loads configuration from config.yaml and the environment
//  2. Connects to the Postgres replica of the BSS tables
//  3. Optionally connects to Redis for worker notices and trigger dedup
//  4. Serves POST /incidents to run one pipeline invocation per request
//  5. Handles graceful shutdown on SIGTERM/SIGINT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/anupamamaheepala/call-API/internal/config"
	"github.com/anupamamaheepala/call-API/internal/dedup"
	"github.com/anupamamaheepala/call-API/internal/deliver"
	"github.com/anupamamaheepala/call-API/internal/pipeline"
	"github.com/anupamamaheepala/call-API/internal/queue"
	"github.com/anupamamaheepala/call-API/internal/store"
	"github.com/anupamamaheepala/call-API/internal/trigger"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting DRS incident bridge")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"endpoint", cfg.API.Endpoint,
		"query_timeout", cfg.QueryTimeout,
		"request_timeout", cfg.RequestTimeout,
	)

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
	slog.Info("connected to PostgreSQL")

	source := store.NewPostgres(pgPool, cfg.QueryTimeout)

	// --- Connect to Redis (optional) ---
	var (
		rdb      *redis.Client
		notifier pipeline.Notifier
		filter   trigger.Filter
	)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opt)

		publisher := queue.NewPublisher(rdb, cfg.IncidentsQueue)
		if err := publisher.Ping(ctx); err != nil {
			slog.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		slog.Info("connected to Redis", "queue", cfg.IncidentsQueue)

		notifier = publisher
		filter = dedup.NewFilter(rdb)
	}

	// --- Incident API client ---
	httpClient := deliver.NewHTTPClient(ctx, deliver.Config{
		TokenURL:     cfg.API.TokenURL,
		ClientID:     cfg.API.ClientID,
		ClientSecret: cfg.API.ClientSecret,
		Timeout:      cfg.RequestTimeout,
	})
	deliverer := deliver.NewClient(httpClient, cfg.API.Endpoint)

	// --- Pipeline ---
	pipe := pipeline.New(pipeline.PipelineConfig{
		Source:    source,
		Deliverer: deliverer,
		Notifier:  notifier,
	})

	handler := trigger.NewHandler(pipe, filter)

	mux := http.NewServeMux()
	mux.HandleFunc("/incidents", handler.ServeIncident)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		// Check Postgres
		if err := source.Ping(r.Context()); err != nil {
			http.Error(w, "postgres unhealthy", http.StatusServiceUnavailable)
			return
		}
		// Check Redis only when configured
		if rdb != nil {
			if err := rdb.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh

		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}

		if rdb != nil {
			rdb.Close()
		}
		pgPool.Close()
	}()

	slog.Info("incident bridge listening", "addr", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("incident bridge stopped")
}
