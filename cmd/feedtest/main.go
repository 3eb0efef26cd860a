// feedtest connects to the chat feed and prints every extracted address to
// the console, without touching the store or the trade path.
// Usage: go run ./cmd/feedtest --config configs/sniper.local.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/0xfern/chatsnipe/internal/capture"
	"github.com/0xfern/chatsnipe/internal/config"
	"github.com/0xfern/chatsnipe/internal/model"
)

func main() {
	configPath := flag.String("config", "configs/sniper.local.yaml", "path to config file")
	flag.Parse()

	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Feed.URL == "" || cfg.Feed.Room == "" {
		logger.Error("feed.url and feed.room are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	feedCfg := capture.DefaultConfig()
	feedCfg.URL = cfg.Feed.URL
	feedCfg.Room = cfg.Feed.Room
	feedCfg.Token = cfg.Feed.Token
	feedCfg.ReconnectBaseWait = cfg.Feed.ReconnectBaseDelay
	feedCfg.ReconnectMaxWait = cfg.Feed.ReconnectMaxDelay
	feedCfg.PingInterval = cfg.Feed.PingInterval
	feedCfg.StaleTimeout = cfg.Feed.ReadTimeout

	feed := capture.NewFeed(feedCfg, func(rec model.AddressRecord) {
		fmt.Printf("[ADDRESS] %s at %s\n", rec.Address, rec.Timestamp.Format(time.RFC3339Nano))
	}, logger)

	if err := feed.Start(ctx); err != nil {
		logger.Error("failed to start feed", "error", err)
		os.Exit(1)
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := feed.Stats()
				logger.Info("stats",
					"connected", stats.Connected,
					"reconnects", stats.Reconnects,
					"frames_seen", stats.FramesSeen,
					"records", stats.Records,
					"discarded", stats.Discarded,
				)
			}
		}
	}()

	logger.Info("feed streaming started - press Ctrl+C to stop", "room", cfg.Feed.Room)

	// Wait for shutdown
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("shutting down...")
	feed.Stop(shutdownCtx)

	logger.Info("shutdown complete")
}
