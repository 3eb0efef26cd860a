package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/0xfern/chatsnipe/internal/capture"
	"github.com/0xfern/chatsnipe/internal/config"
	"github.com/0xfern/chatsnipe/internal/database"
	"github.com/0xfern/chatsnipe/internal/dispatch"
	"github.com/0xfern/chatsnipe/internal/journal"
	"github.com/0xfern/chatsnipe/internal/model"
	"github.com/0xfern/chatsnipe/internal/notify"
	"github.com/0xfern/chatsnipe/internal/pipeline"
	"github.com/0xfern/chatsnipe/internal/store"
	"github.com/0xfern/chatsnipe/internal/trade"
	"github.com/0xfern/chatsnipe/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/sniper.local.yaml", "path to config file")
	flag.Parse()

	// .env feeds the ${VAR} substitutions in the config file.
	godotenv.Load()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting sniper",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"feed_url", cfg.Feed.URL,
		"room", cfg.Feed.Room,
		"dry_run", cfg.Trade.DryRun,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Open the address history store
	st, err := store.New(store.Config{
		Path:      cfg.Store.Path,
		BackupDir: cfg.Store.BackupDir,
	}, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	// Trade action and bounded-retry executor
	var creds *trade.Credentials
	if cfg.Trade.APIKey != "" {
		creds, err = trade.LoadCredentials(cfg.Trade.APIKey, cfg.Trade.APISecret)
		if err != nil {
			logger.Error("failed to load trade credentials", "error", err)
			os.Exit(1)
		}
	}

	action := trade.NewHTTPAction(cfg.Trade.BaseURL, creds, cfg.Trade.BuyAmount,
		trade.WithTimeout(cfg.Trade.Timeout),
		trade.WithDryRun(cfg.Trade.DryRun),
		trade.WithLogger(logger),
	)
	executor := trade.NewExecutor(action, trade.ExecutorConfig{
		Attempts:   cfg.Trade.Attempts,
		RetryDelay: cfg.Trade.RetryDelay,
		BuyAmount:  cfg.Trade.BuyAmount,
	}, logger)

	// Optional execution journal
	var journalQueue *dispatch.Queue[model.Execution]
	if cfg.Journal.Enabled {
		logger.Info("connecting to journal database",
			"host", cfg.Journal.Database.Host,
			"port", cfg.Journal.Database.Port,
			"database", cfg.Journal.Database.Name,
		)

		db, err := database.Connect(ctx, cfg.Journal.Database)
		if err != nil {
			logger.Error("failed to connect to journal database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := journal.EnsureSchema(ctx, db); err != nil {
			logger.Error("failed to ensure journal schema", "error", err)
			os.Exit(1)
		}

		journalQueue = dispatch.NewQueue[model.Execution](cfg.Journal.BufferSize)
		journalWriter := journal.NewWriter(journal.Config{
			BatchSize:     cfg.Journal.BatchSize,
			FlushInterval: cfg.Journal.FlushInterval,
		}, journalQueue, db, logger)

		if err := journalWriter.Start(ctx); err != nil {
			logger.Error("failed to start journal writer", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			journalWriter.Stop(shutdownCtx)
		}()

		logger.Info("journal connected")
	}

	// Assemble the pipeline
	var opts []pipeline.Option
	if journalQueue != nil {
		opts = append(opts, pipeline.WithJournal(journalQueue))
	}
	if cfg.Notify.TelegramToken != "" && cfg.Notify.ChatID != 0 {
		notifier, err := notify.NewTelegram(notify.Config{
			Token:  cfg.Notify.TelegramToken,
			ChatID: cfg.Notify.ChatID,
		}, logger)
		if err != nil {
			logger.Warn("telegram notifier unavailable, continuing without", "error", err)
		} else {
			opts = append(opts, pipeline.WithNotifier(notifier))
		}
	}

	ctrl := pipeline.New(pipeline.Config{
		DebounceWindow: cfg.Pipeline.DebounceWindow,
		MaxRecordAge:   cfg.Pipeline.MaxRecordAge,
		SuppressDepth:  cfg.Pipeline.SuppressDepth,
		SuppressScan:   cfg.Pipeline.SuppressScan,
	}, st, executor, logger, opts...)

	feedCfg := capture.DefaultConfig()
	feedCfg.URL = cfg.Feed.URL
	feedCfg.Room = cfg.Feed.Room
	feedCfg.Token = cfg.Feed.Token
	feedCfg.ReconnectBaseWait = cfg.Feed.ReconnectBaseDelay
	feedCfg.ReconnectMaxWait = cfg.Feed.ReconnectMaxDelay
	feedCfg.PingInterval = cfg.Feed.PingInterval
	feedCfg.StaleTimeout = cfg.Feed.ReadTimeout

	feed := capture.NewFeed(feedCfg, ctrl.Intake, logger)
	ctrl.AttachSource(feed)

	// Start health server early so startup is observable
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(ctrl, feed, st, logger),
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Start the pipeline; a capture startup failure is fatal
	if err := ctrl.Start(ctx); err != nil {
		logger.Error("failed to start pipeline", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		ctrl.Stop(shutdownCtx)
	}()

	logger.Info("sniper running",
		"room", cfg.Feed.Room,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	// Graceful shutdown of health server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("sniper stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(ctrl *pipeline.Controller, feed capture.Source, st *store.Store, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		stats := ctrl.Stats()
		health.Components["pipeline"] = stats
		if stats.State == pipeline.StateStopped.String() {
			health.Status = "unhealthy"
		}

		feedStats := feed.Stats()
		health.Components["feed"] = feedStats
		if !feedStats.Connected && health.Status == "healthy" {
			health.Status = "degraded"
		}

		if n, err := st.Len(); err != nil {
			health.Components["store"] = map[string]string{
				"status": "error",
				"error":  err.Error(),
			}
			health.Status = "unhealthy"
		} else {
			health.Components["store"] = map[string]interface{}{
				"records": n,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/records", func(w http.ResponseWriter, r *http.Request) {
		records, err := st.Recent(100)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		type row struct {
			Timestamp time.Time `json:"timestamp"`
			Address   string    `json:"address"`
		}
		rows := make([]row, 0, len(records))
		for _, rec := range records {
			rows = append(rows, row{Timestamp: rec.Timestamp, Address: rec.Address})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":   len(rows),
			"records": rows,
		})
	})

	return mux
}
