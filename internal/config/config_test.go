package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad(t *testing.T) {
	yaml := `
feed:
  url: wss://chat.example.com/ws
  room: alpha-calls
  token: feed-token
trade:
  base_url: https://exec.example.com
  api_key: test-key
  api_secret: test-secret
  buy_amount: 0.25
  retry_delay: 2s
pipeline:
  debounce_window: 1500ms
  max_record_age: 20s
store:
  path: data/addresses.txt
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Feed.URL != "wss://chat.example.com/ws" {
		t.Errorf("Feed.URL = %q, want %q", cfg.Feed.URL, "wss://chat.example.com/ws")
	}
	if cfg.Feed.Room != "alpha-calls" {
		t.Errorf("Feed.Room = %q, want %q", cfg.Feed.Room, "alpha-calls")
	}
	if cfg.Trade.BaseURL != "https://exec.example.com" {
		t.Errorf("Trade.BaseURL = %q, want %q", cfg.Trade.BaseURL, "https://exec.example.com")
	}
	if want := decimal.RequireFromString("0.25"); !cfg.Trade.BuyAmount.Equal(want) {
		t.Errorf("Trade.BuyAmount = %v, want %v", cfg.Trade.BuyAmount, want)
	}
	if cfg.Trade.RetryDelay != 2*time.Second {
		t.Errorf("Trade.RetryDelay = %v, want %v", cfg.Trade.RetryDelay, 2*time.Second)
	}
	if cfg.Pipeline.DebounceWindow != 1500*time.Millisecond {
		t.Errorf("Pipeline.DebounceWindow = %v, want %v", cfg.Pipeline.DebounceWindow, 1500*time.Millisecond)
	}
	if cfg.Store.Path != "data/addresses.txt" {
		t.Errorf("Store.Path = %q, want %q", cfg.Store.Path, "data/addresses.txt")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_API_SECRET", "secret123")

	yaml := `
feed:
  url: wss://chat.example.com/ws
  room: alpha-calls
trade:
  base_url: https://exec.example.com
  api_key: test-key
  api_secret: ${TEST_API_SECRET}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Trade.APISecret != "secret123" {
		t.Errorf("Trade.APISecret = %q, want %q", cfg.Trade.APISecret, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
feed:
  url: wss://chat.example.com/ws
  room: alpha-calls
trade:
  base_url: https://exec.example.com
  buy_amount: 0.1
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Feed.ReconnectBaseDelay != DefaultReconnectBaseDelay {
		t.Errorf("Feed.ReconnectBaseDelay = %v, want default %v", cfg.Feed.ReconnectBaseDelay, DefaultReconnectBaseDelay)
	}
	if cfg.Trade.Attempts != DefaultTradeAttempts {
		t.Errorf("Trade.Attempts = %d, want default %d", cfg.Trade.Attempts, DefaultTradeAttempts)
	}
	if cfg.Trade.RetryDelay != DefaultTradeRetryDelay {
		t.Errorf("Trade.RetryDelay = %v, want default %v", cfg.Trade.RetryDelay, DefaultTradeRetryDelay)
	}
	if cfg.Pipeline.DebounceWindow != DefaultDebounceWindow {
		t.Errorf("Pipeline.DebounceWindow = %v, want default %v", cfg.Pipeline.DebounceWindow, DefaultDebounceWindow)
	}
	if cfg.Pipeline.MaxRecordAge != DefaultMaxRecordAge {
		t.Errorf("Pipeline.MaxRecordAge = %v, want default %v", cfg.Pipeline.MaxRecordAge, DefaultMaxRecordAge)
	}
	if cfg.Pipeline.SuppressDepth != DefaultSuppressDepth {
		t.Errorf("Pipeline.SuppressDepth = %d, want default %d", cfg.Pipeline.SuppressDepth, DefaultSuppressDepth)
	}
	if cfg.Store.Path != DefaultStorePath {
		t.Errorf("Store.Path = %q, want default %q", cfg.Store.Path, DefaultStorePath)
	}
	if cfg.Journal.BatchSize != DefaultJournalBatchSize {
		t.Errorf("Journal.BatchSize = %d, want default %d", cfg.Journal.BatchSize, DefaultJournalBatchSize)
	}
	if cfg.Health.Port != DefaultHealthPort {
		t.Errorf("Health.Port = %d, want default %d", cfg.Health.Port, DefaultHealthPort)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SniperConfig
		wantErr string
	}{
		{
			name:    "missing feed url",
			cfg:     SniperConfig{},
			wantErr: "feed.url is required",
		},
		{
			name: "missing feed room",
			cfg: SniperConfig{
				Feed: FeedConfig{URL: "wss://chat.example.com/ws"},
			},
			wantErr: "feed.room is required",
		},
		{
			name: "missing trade base url",
			cfg: SniperConfig{
				Feed: FeedConfig{URL: "wss://chat.example.com/ws", Room: "alpha"},
			},
			wantErr: "trade.base_url is required",
		},
		{
			name: "api key without secret",
			cfg: SniperConfig{
				Feed: FeedConfig{URL: "wss://chat.example.com/ws", Room: "alpha"},
				Trade: TradeConfig{
					BaseURL:   "https://exec.example.com",
					APIKey:    "key-only",
					BuyAmount: decimal.NewFromInt(1),
				},
			},
			wantErr: "trade.api_key and trade.api_secret must be set together",
		},
		{
			name: "suppress depth exceeds scan",
			cfg: SniperConfig{
				Feed: FeedConfig{URL: "wss://chat.example.com/ws", Room: "alpha"},
				Trade: TradeConfig{
					BaseURL:    "https://exec.example.com",
					BuyAmount:  decimal.NewFromInt(1),
					Attempts:   3,
					RetryDelay: 2 * time.Second,
					Timeout:    30 * time.Second,
				},
				Pipeline: PipelineConfig{
					DebounceWindow: 1500 * time.Millisecond,
					MaxRecordAge:   20 * time.Second,
					SuppressDepth:  11,
					SuppressScan:   10,
				},
			},
			wantErr: "pipeline.suppress_depth (11) cannot exceed suppress_scan (10)",
		},
		{
			name: "journal enabled without password",
			cfg: SniperConfig{
				Feed: FeedConfig{URL: "wss://chat.example.com/ws", Room: "alpha"},
				Trade: TradeConfig{
					BaseURL:    "https://exec.example.com",
					BuyAmount:  decimal.NewFromInt(1),
					Attempts:   3,
					RetryDelay: 2 * time.Second,
					Timeout:    30 * time.Second,
				},
				Pipeline: PipelineConfig{
					DebounceWindow: 1500 * time.Millisecond,
					MaxRecordAge:   20 * time.Second,
					SuppressDepth:  3,
					SuppressScan:   10,
				},
				Store: StoreConfig{Path: "data/addresses.txt", BackupDir: "data/backups"},
				Journal: JournalConfig{
					Enabled:  true,
					Database: DBConfig{Host: "localhost", Name: "snipe", User: "snipe", MaxConns: 10},
				},
			},
			wantErr: "journal.database.password is required",
		},
		{
			name: "dry run allows empty trade endpoint",
			cfg: SniperConfig{
				Feed: FeedConfig{URL: "wss://chat.example.com/ws", Room: "alpha"},
				Trade: TradeConfig{
					DryRun:     true,
					Attempts:   3,
					RetryDelay: 2 * time.Second,
					Timeout:    30 * time.Second,
				},
				Pipeline: PipelineConfig{
					DebounceWindow: 1500 * time.Millisecond,
					MaxRecordAge:   20 * time.Second,
					SuppressDepth:  3,
					SuppressScan:   10,
				},
				Store:  StoreConfig{Path: "data/addresses.txt", BackupDir: "data/backups"},
				Health: HealthConfig{Port: 8080},
			},
			wantErr: "",
		},
		{
			name: "valid config",
			cfg: SniperConfig{
				Feed: FeedConfig{
					URL:                "wss://chat.example.com/ws",
					Room:               "alpha",
					ReconnectBaseDelay: time.Second,
					ReconnectMaxDelay:  60 * time.Second,
				},
				Trade: TradeConfig{
					BaseURL:    "https://exec.example.com",
					APIKey:     "key",
					APISecret:  "secret",
					BuyAmount:  decimal.RequireFromString("0.25"),
					Attempts:   3,
					RetryDelay: 2 * time.Second,
					Timeout:    30 * time.Second,
				},
				Pipeline: PipelineConfig{
					DebounceWindow: 1500 * time.Millisecond,
					MaxRecordAge:   20 * time.Second,
					SuppressDepth:  3,
					SuppressScan:   10,
				},
				Store: StoreConfig{Path: "data/addresses.txt", BackupDir: "data/backups"},
				Journal: JournalConfig{
					Enabled:       true,
					Database:      DBConfig{Host: "localhost", Name: "snipe", User: "snipe", Password: "pass", MaxConns: 10, MinConns: 2},
					BatchSize:     100,
					FlushInterval: time.Second,
					BufferSize:    1000,
				},
				Notify: NotifyConfig{TelegramToken: "tg-token", ChatID: 42},
				Health: HealthConfig{Port: 8080},
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
