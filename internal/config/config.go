package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// SniperConfig is the root configuration for a sniper instance.
type SniperConfig struct {
	Feed     FeedConfig     `yaml:"feed"`
	Trade    TradeConfig    `yaml:"trade"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Store    StoreConfig    `yaml:"store"`
	Journal  JournalConfig  `yaml:"journal"`
	Notify   NotifyConfig   `yaml:"notify"`
	Health   HealthConfig   `yaml:"health"`
}

// FeedConfig holds chat feed connection settings.
type FeedConfig struct {
	URL                string        `yaml:"url"`
	Room               string        `yaml:"room"`
	Token              string        `yaml:"token"` // Bearer token (empty = no auth)
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
}

// TradeConfig holds execution endpoint settings.
type TradeConfig struct {
	BaseURL    string          `yaml:"base_url"`
	APIKey     string          `yaml:"api_key"`
	APISecret  string          `yaml:"api_secret"`
	BuyAmount  decimal.Decimal `yaml:"buy_amount"`
	Attempts   int             `yaml:"attempts"`
	RetryDelay time.Duration   `yaml:"retry_delay"`
	Timeout    time.Duration   `yaml:"timeout"`
	DryRun     bool            `yaml:"dry_run"`
}

// PipelineConfig holds decision loop settings.
type PipelineConfig struct {
	DebounceWindow time.Duration `yaml:"debounce_window"`
	MaxRecordAge   time.Duration `yaml:"max_record_age"`
	SuppressDepth  int           `yaml:"suppress_depth"` // negative disables intake suppression
	SuppressScan   int           `yaml:"suppress_scan"`
}

// StoreConfig holds address ledger paths.
type StoreConfig struct {
	Path      string `yaml:"path"`
	BackupDir string `yaml:"backup_dir"`
}

// JournalConfig holds the execution journal database and batching settings.
type JournalConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Database      DBConfig      `yaml:"database"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// NotifyConfig holds Telegram notifier settings. The notifier is disabled
// unless both fields are set.
type NotifyConfig struct {
	TelegramToken string `yaml:"telegram_token"`
	ChatID        int64  `yaml:"chat_id"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}
