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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-issue-importer/internal/api"
	"github.com/kurihiro0119/github-issue-importer/internal/collector"
	"github.com/kurihiro0119/github-issue-importer/internal/config"
	"github.com/kurihiro0119/github-issue-importer/internal/logging"
	"github.com/kurihiro0119/github-issue-importer/internal/metrics"
	"github.com/kurihiro0119/github-issue-importer/internal/registry"
	"github.com/kurihiro0119/github-issue-importer/internal/storage"
	"github.com/kurihiro0119/github-issue-importer/internal/storage/postgres"
	"github.com/kurihiro0119/github-issue-importer/internal/storage/sqlite"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize storage
	var store storage.Storage
	switch cfg.StorageType {
	case "postgres":
		store, err = postgres.NewPostgresStorage(cfg.PostgresURL)
		if err != nil {
			logger.Fatalf("Failed to initialize PostgreSQL storage: %v", err)
		}
	default:
		store, err = sqlite.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			logger.Fatalf("Failed to initialize SQLite storage: %v", err)
		}
	}
	defer store.Close()

	// GitHub re-verification is optional
	var coll collector.Collector
	if cfg.VerifyWithGitHub {
		coll, err = collector.NewGitHubCollector(cfg.GitHubToken, cfg.GitHubAPIURL, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize GitHub collector: %v", err)
		}
	}

	// Initialize metrics
	metricsCollector := metrics.NewCollector()
	prometheus.MustRegister(metricsCollector)

	reg := registry.NewRegistry(store, coll, metricsCollector, logger)
	handler := api.NewHandler(reg, logger)
	router := api.SetupRoutes(handler, logger, metricsCollector, promhttp.Handler())

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    addr,
			"storage": cfg.StorageType,
			"verify":  cfg.VerifyWithGitHub,
		}).Info("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		logger.Errorf("Server failed: %v", err)
		store.Close()
		os.Exit(1)
	case <-ctx.Done():
	}

	logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
}
