// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package main is the entry point for the Kinoscope server.
//
// Kinoscope is a self-hosted movie recommendation service. It serves
// content-based, rating-weighted, and collaborative recommendations over
// a REST API backed by an embedded DuckDB database.
//
// # Application Architecture
//
// The server initializes components in this order:
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Database: embedded DuckDB with users, movies, and ratings
//  3. Recommendation core: rating matrix load and initial index build
//  4. Authentication: JWT token manager
//  5. Supervisor tree: periodic index rebuilds and the HTTP server
//
// # Configuration
//
// Highest priority wins: environment variables, then the config file
// (CONFIG_PATH, ./config.yaml, or /etc/kinoscope/config.yaml), then
// built-in defaults. Minimum viable setup:
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export DUCKDB_PATH=/data/kinoscope.duckdb
//	./kinoscope
//
// A catalog JSON file can be imported at startup:
//
//	export CATALOG_IMPORT_PATH=/data/movies.json
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests (10s timeout), the rebuild loop stops, and the
// database is closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kinoscope/kinoscope/internal/api"
	"github.com/kinoscope/kinoscope/internal/auth"
	"github.com/kinoscope/kinoscope/internal/config"
	"github.com/kinoscope/kinoscope/internal/importer"
	"github.com/kinoscope/kinoscope/internal/logging"
	"github.com/kinoscope/kinoscope/internal/recommend"
	"github.com/kinoscope/kinoscope/internal/store"
	"github.com/kinoscope/kinoscope/internal/supervisor"
	"github.com/kinoscope/kinoscope/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Default logger; logging config is not available yet.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Dur("rebuild_interval", cfg.Recommend.RebuildInterval).
		Msg("Starting Kinoscope")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Catalog.ImportPath != "" {
		if _, err := importer.New(st).ImportFile(ctx, cfg.Catalog.ImportPath); err != nil {
			logging.Fatal().Err(err).Msg("Catalog import failed")
		}
	}

	svc, err := recommend.NewService(cfg.Recommend.Core, st, st, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation service")
	}
	if err := svc.Start(ctx); err != nil {
		// An empty catalog is a fresh install, not a fatal condition.
		// Recommendations answer 503 until the first movies are imported.
		if recommend.IsInsufficientData(err) {
			logging.Warn().Err(err).Msg("Catalog empty, serving without an index")
		} else {
			logging.Fatal().Err(err).Msg("Failed to start recommendation service")
		}
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create JWT manager")
	}

	handler := api.NewHandler(cfg, st, svc, jwtManager)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	// zerolog-backed slog logger feeds suture's event hook.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddIndexService(services.NewRebuildService(svc, cfg.Recommend.RebuildInterval, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	logging.Info().Msg("Application stopped gracefully")
}
