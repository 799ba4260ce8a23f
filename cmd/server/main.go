// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

// Package main is the entry point for the QR Wizard server.
//
// QR Wizard is a self-hosted service for trackable QR code links. It
// mints short slugs, renders QR images, redirects scanners to the
// configured destination, and records every scan with privacy-preserving
// visitor identity for the analytics API.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Database: Initialize DuckDB and run schema migrations
//  3. GeoIP: Open the optional MaxMind database for country/region lookups
//  4. Authentication: Single-admin session auth (bcrypt + signed cookie)
//  5. HTTP Server: Chi router with the redirect hot path and admin API
//  6. Supervisor Tree: suture v4 supervising the HTTP server and retention sweeper
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (DATABASE_URL, SECRET_KEY, ADMIN_PASSWORD_HASH, ...)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Minimum production setup:
//
//	export DATABASE_URL=/data/qrwizard.duckdb
//	export SECRET_KEY=$(openssl rand -base64 32)
//	export ADMIN_PASSWORD_HASH=$(./qr-wizard --hash-password 'secure-password')
//	export PUBLIC_BASE_URL=https://go.example.com
//	./qr-wizard
//
// Optional GeoIP enrichment:
//
//	export GEOIP_DB_PATH=/data/GeoLite2-City.mmdb
//
// # CLI Modes
//
// Besides serving, the binary supports run-once modes:
//
//	./qr-wizard --purge --days 90     # delete scans/conversions older than 90 days, then exit
//	./qr-wizard --hash-password 'pw'  # print a bcrypt hash for ADMIN_PASSWORD_HASH, then exit
//
// The --host, --port, and --debug flags override the corresponding
// configuration for the current run.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops the retention sweeper
//   - Checkpoints and closes the DuckDB database
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soerfi/qr-wizard/internal/api"
	"github.com/soerfi/qr-wizard/internal/auth"
	"github.com/soerfi/qr-wizard/internal/config"
	"github.com/soerfi/qr-wizard/internal/database"
	"github.com/soerfi/qr-wizard/internal/geo"
	"github.com/soerfi/qr-wizard/internal/logging"
	"github.com/soerfi/qr-wizard/internal/metrics"
	"github.com/soerfi/qr-wizard/internal/supervisor"
	"github.com/soerfi/qr-wizard/internal/supervisor/services"
)

func main() {
	var (
		flagHost         = flag.String("host", "", "bind address (overrides HOST)")
		flagPort         = flag.Int("port", 0, "listen port (overrides PORT)")
		flagDebug        = flag.Bool("debug", false, "force debug log level")
		flagPurge        = flag.Bool("purge", false, "run one retention purge and exit")
		flagDays         = flag.Int("days", 0, "retention window in days for --purge (defaults to DATA_RETENTION_DAYS)")
		flagHashPassword = flag.String("hash-password", "", "print the bcrypt hash of the given password and exit")
	)
	flag.Parse()

	// The hash helper needs no configuration at all.
	if *flagHashPassword != "" {
		hash, err := auth.HashPassword(*flagHashPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash-password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// CLI flags override file and environment settings for this run
	if *flagHost != "" {
		cfg.Server.Host = *flagHost
	}
	if *flagPort != 0 {
		cfg.Server.Port = *flagPort
	}
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("base_url", cfg.BaseURL()).
		Str("tracking_param", cfg.Tracking.Param).
		Int("unique_window_hours", cfg.Tracking.UniqueWindowHours).
		Int("retention_days", cfg.Retention.Days).
		Msg("Configuration loaded")

	// Initialize database (runs schema creation and migrations)
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// One-shot purge mode: run the retention purge, then exit.
	if *flagPurge {
		days := cfg.Retention.Days
		if *flagDays > 0 {
			days = *flagDays
		}
		if days <= 0 {
			closeDBBeforeExit(db)
			logging.Fatal().Msg("Retention purge needs a positive window: pass --days or set DATA_RETENTION_DAYS")
		}
		if err := runPurge(context.Background(), db, days); err != nil {
			closeDBBeforeExit(db)
			logging.Fatal().Err(err).Int("days", days).Msg("Retention purge failed")
		}
		return
	}

	// Open the optional GeoIP database. Missing or broken databases
	// degrade to null geo fields instead of refusing to start.
	resolver := geo.NewNoop()
	if cfg.GeoIP.DatabasePath != "" {
		mm, err := geo.NewMaxMind(cfg.GeoIP.DatabasePath)
		if err != nil {
			logging.Warn().Err(err).Str("path", cfg.GeoIP.DatabasePath).
				Msg("Failed to open GeoIP database, geo fields will be null")
		} else {
			resolver = mm
		}
	}
	defer func() {
		if err := resolver.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing GeoIP reader")
		}
	}()
	logging.Info().Str("backend", resolver.Name()).Msg("Geo resolver ready")

	// Single-admin session auth
	authSvc := auth.NewService(cfg)
	if cfg.Security.AdminPasswordHash == "" {
		logging.Warn().Msg("ADMIN_PASSWORD_HASH not set - all admin logins will be rejected")
	}

	handler := api.NewHandler(db, cfg, authSvc, resolver)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	// Create supervisor tree
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		closeDBBeforeExit(db)
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Maintenance layer: retention sweeper
	if cfg.Retention.Days > 0 {
		days := cfg.Retention.Days
		sweep := func(ctx context.Context) error {
			return runPurge(ctx, db, days)
		}
		tree.AddMaintenanceService(services.NewRetentionService(sweep, cfg.Retention.SweepInterval))
		logging.Info().
			Int("retention_days", days).
			Dur("interval", cfg.Retention.SweepInterval).
			Msg("Retention sweeper added to supervisor tree")
	} else {
		logging.Info().Msg("Retention sweeper disabled (DATA_RETENTION_DAYS <= 0)")
	}

	// API layer: HTTP server
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// runPurge deletes scan and conversion events older than the retention
// window and records the outcome. Shared by the --purge CLI mode and
// the supervised sweeper.
func runPurge(ctx context.Context, db *database.DB, days int) error {
	start := time.Now()
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	deletedScans, deletedConversions, err := db.PurgeOldData(ctx, cutoff)
	metrics.RecordRetentionPurge(time.Since(start), deletedScans, deletedConversions, err)
	if err != nil {
		return err
	}
	logging.Info().
		Int("retention_days", days).
		Int64("deleted_scans", deletedScans).
		Int64("deleted_conversions", deletedConversions).
		Msg("Retention purge finished")
	return nil
}

// closeDBBeforeExit closes the database ahead of logging.Fatal, which
// exits without running deferred functions.
func closeDBBeforeExit(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}
