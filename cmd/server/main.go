// Copyright 2026 The HackGate Authors
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

	"github.com/hackgate/hackgate/internal/audit"
	"github.com/hackgate/hackgate/internal/config"
	"github.com/hackgate/hackgate/internal/guard"
	"github.com/hackgate/hackgate/internal/identitystore"
	"github.com/hackgate/hackgate/internal/identitystore/memory"
	"github.com/hackgate/hackgate/internal/observability/logger"
	"github.com/hackgate/hackgate/internal/observability/metrics"
	"github.com/hackgate/hackgate/internal/observability/tracing"
	"github.com/hackgate/hackgate/internal/provision"
	"github.com/hackgate/hackgate/internal/store/postgres"
	transportHTTP "github.com/hackgate/hackgate/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting hackgate dashboard gateway")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	traceProvider, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	} else {
		defer traceProvider.Shutdown(ctx)
	}

	// Initialize meter
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	// Identity store. The guard only needs token verification; the
	// provisioning service additionally needs the admin surface and gets a
	// nil store (-> per-request configuration error) when the service key
	// is missing.
	var guardStore identitystore.Store
	var adminStore identitystore.Store

	if cfg.IdentityStore.BaseURL != "" {
		client := identitystore.NewClient(identitystore.ClientConfig{
			BaseURL:    cfg.IdentityStore.BaseURL,
			ServiceKey: cfg.IdentityStore.ServiceKey,
			Timeout:    cfg.IdentityStore.Timeout,
		})
		guardStore = client
		if client.Configured() {
			adminStore = client
		} else {
			slog.Warn("identity store service key not set; judge provisioning is disabled")
		}
	} else {
		slog.Warn("IDENTITY_STORE_URL not set; using in-memory identity store (development mode)")
		mem := memory.NewStore()
		guardStore = mem
		adminStore = mem
	}

	// Audit trail: always to the log, optionally also to Postgres.
	var auditLogger audit.Logger = audit.NewSlogLogger()
	if cfg.AuditDB.Enabled {
		db, err := postgres.New(ctx, postgres.Config{
			Host:            cfg.AuditDB.Host,
			Port:            cfg.AuditDB.Port,
			User:            cfg.AuditDB.User,
			Password:        cfg.AuditDB.Password,
			Database:        cfg.AuditDB.Database,
			SSLMode:         cfg.AuditDB.SSLMode,
			MaxOpenConns:    cfg.AuditDB.MaxOpenConns,
			MaxIdleConns:    cfg.AuditDB.MaxIdleConns,
			ConnMaxLifetime: cfg.AuditDB.ConnMaxLifetime,
		})
		if err != nil {
			slog.Error("failed to connect to audit database", logger.Error(err))
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("connected to audit database")
		auditLogger = audit.NewFanoutLogger(auditLogger, postgres.NewAuditRepository(db))
	}

	// Session watcher: every session change the guard observes is published
	// here; the subscription below turns sign-in/sign-out transitions into
	// log lines.
	sessionWatcher := guard.NewWatcher()
	sessionChanges, unsubscribe := sessionWatcher.Subscribe()
	defer unsubscribe()
	go func() {
		for sess := range sessionChanges {
			if sess == nil {
				slog.Info("dashboard session ended")
				continue
			}
			slog.Info("dashboard session active", logger.AccountID(sess.Account.ID))
		}
	}()

	evaluator := guard.NewEvaluator(guardStore).WithWatcher(sessionWatcher)
	provisionService := provision.NewService(adminStore, auditLogger)

	// Rate Limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(provisionService, evaluator, auditLogger, meter)

	// Create router
	router := transportHTTP.NewRouter(handler, rateLimiter)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func runMigrate(cfg *config.Config) error {
	if !cfg.AuditDB.Enabled {
		return fmt.Errorf("AUDIT_DB_ENABLED must be set to migrate the audit schema")
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:            cfg.AuditDB.Host,
		Port:            cfg.AuditDB.Port,
		User:            cfg.AuditDB.User,
		Password:        cfg.AuditDB.Password,
		Database:        cfg.AuditDB.Database,
		SSLMode:         cfg.AuditDB.SSLMode,
		MaxOpenConns:    cfg.AuditDB.MaxOpenConns,
		MaxIdleConns:    cfg.AuditDB.MaxIdleConns,
		ConnMaxLifetime: cfg.AuditDB.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying audit schema...")
	if err := db.Migrate(ctx, postgres.AuditSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}
