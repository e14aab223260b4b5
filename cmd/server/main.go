// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log" // Standard log for messages before zap is active and after it is synced
	"os"
	"os/signal"
	"strings"
	"syscall"

	"campus_desk_backend/internal/analytics"
	"campus_desk_backend/internal/config"
	"campus_desk_backend/internal/platform/database"
	platformElasticsearch "campus_desk_backend/internal/platform/elasticsearch"
	"campus_desk_backend/internal/session"

	"go.uber.org/zap"
)

const usage = `usage: server [command] [flags]

commands:
  serve              start the HTTP server (default)
  migrate            create or update tables and seed the default categories
  sync-items         reindex every lost and found item into Elasticsearch
  export-analytics   write an analytics report to a file
`

func main() {
	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	switch cmd {
	case "serve":
		startServer(cfg)
		return
	case "migrate":
		err = runMigrate(cfg)
	case "sync-items":
		err = runSyncItems(cfg, args)
	case "export-analytics":
		err = runExportAnalytics(cfg, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("FATAL: %s failed: %v", cmd, err)
	}
}

func startServer(cfg *config.Config) {
	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if server.ESClient != nil {
		if err := ensureItemsIndex(context.Background(), server.ESClient, server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch lost and found index; search falls back to filtering", zap.Error(err))
		}
	} else {
		server.AppLogger.Info("Elasticsearch client not initialized, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
}

func ensureItemsIndex(ctx context.Context, client *platformElasticsearch.ESClientWrapper, logger *zap.Logger) error {
	mapping, err := platformElasticsearch.LostFoundMapping()
	if err != nil {
		return err
	}
	return platformElasticsearch.CreateIndexIfNotExists(ctx, client, platformElasticsearch.LostFoundIndexName, mapping, logger)
}

func runMigrate(cfg *config.Config) error {
	deps, cleanup, err := initializeMigrateCommand(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := database.AutoMigrate(deps.DB, migrationModels()...); err != nil {
		return err
	}
	if err := deps.Categories.EnsureDefaults(context.Background()); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	deps.Logger.Info("Database migrated and default categories seeded.")
	return nil
}

func runSyncItems(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("sync-items", flag.ExitOnError)
	batchSize := fs.Int("batch-size", 100, "Batch size for syncing lost and found items")
	esRefresh := fs.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch *esRefresh {
	case "true", "false", "wait_for":
	default:
		return fmt.Errorf("invalid -es-refresh %q (expected true, false or wait_for)", *esRefresh)
	}

	deps, cleanup, err := initializeSyncCommand(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if deps.ES == nil {
		return errors.New("ELASTICSEARCH_URL is not set; there is no index to sync into")
	}
	ctx := context.Background()
	if err := ensureItemsIndex(ctx, deps.ES, deps.Logger); err != nil {
		return fmt.Errorf("failed to create/verify index before sync: %w", err)
	}

	deps.Logger.Info("Starting lost and found synchronization to Elasticsearch...",
		zap.Int("batchSize", *batchSize),
		zap.String("esRefreshPolicy", *esRefresh),
	)
	report, err := deps.Items.SyncIndex(ctx, *batchSize, *esRefresh)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d items failed to sync", report.Failed, report.Failed+report.Indexed)
	}
	deps.Logger.Info("Lost and found synchronization completed successfully.", zap.Int("indexed", report.Indexed))
	return nil
}

func runExportAnalytics(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export-analytics", flag.ExitOnError)
	format := fs.String("format", "pdf", "Export format (pdf or xlsx)")
	dateRange := fs.String("range", "month", "Date range (all, week, month, year, custom)")
	from := fs.String("from", "", "Start date for -range custom (YYYY-MM-DD)")
	to := fs.String("to", "", "End date for -range custom (YYYY-MM-DD)")
	out := fs.String("out", "", "Output file (defaults to analytics-report-<date>.<format>)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := analytics.ParseFormat(*format)
	if err != nil {
		return err
	}

	deps, cleanup, err := initializeExportCommand(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	now := deps.Analytics.Now()
	w, err := analytics.Params{Range: *dateRange, From: *from, To: *to}.Window(now)
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = analytics.FileName(f, now)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	// Offline exports cover every complaint, as the master admin would see them.
	operator := &session.Session{Kind: session.KindAdmin, AdminRole: session.RoleMasterAdmin, FirstName: "CLI"}
	if err := deps.Analytics.Export(context.Background(), operator, w, f, file); err != nil {
		return err
	}
	deps.Logger.Info("Analytics report written",
		zap.String("path", path),
		zap.String("format", string(f)),
		zap.String("range", w.Label),
	)
	return nil
}
