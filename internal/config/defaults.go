package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultPingInterval       = 15 * time.Second
	DefaultReadTimeout        = 30 * time.Second

	DefaultTradeAttempts   = 3
	DefaultTradeRetryDelay = 2 * time.Second
	DefaultTradeTimeout    = 30 * time.Second

	DefaultDebounceWindow = 1500 * time.Millisecond
	DefaultMaxRecordAge   = 20 * time.Second
	DefaultSuppressDepth  = 3
	DefaultSuppressScan   = 10

	DefaultStorePath      = "data/addresses.txt"
	DefaultStoreBackupDir = "data/backups"

	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 10
	DefaultMinConns  = 2

	DefaultJournalBatchSize     = 100
	DefaultJournalFlushInterval = 1 * time.Second
	DefaultJournalBufferSize    = 1000

	DefaultHealthPort = 8080
)

func (c *SniperConfig) applyDefaults() {
	// Feed defaults
	if c.Feed.ReconnectBaseDelay == 0 {
		c.Feed.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Feed.ReconnectMaxDelay == 0 {
		c.Feed.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Feed.PingInterval == 0 {
		c.Feed.PingInterval = DefaultPingInterval
	}
	if c.Feed.ReadTimeout == 0 {
		c.Feed.ReadTimeout = DefaultReadTimeout
	}

	// Trade defaults
	if c.Trade.Attempts == 0 {
		c.Trade.Attempts = DefaultTradeAttempts
	}
	if c.Trade.RetryDelay == 0 {
		c.Trade.RetryDelay = DefaultTradeRetryDelay
	}
	if c.Trade.Timeout == 0 {
		c.Trade.Timeout = DefaultTradeTimeout
	}

	// Pipeline defaults
	if c.Pipeline.DebounceWindow == 0 {
		c.Pipeline.DebounceWindow = DefaultDebounceWindow
	}
	if c.Pipeline.MaxRecordAge == 0 {
		c.Pipeline.MaxRecordAge = DefaultMaxRecordAge
	}
	if c.Pipeline.SuppressDepth == 0 {
		c.Pipeline.SuppressDepth = DefaultSuppressDepth
	}
	if c.Pipeline.SuppressScan == 0 {
		c.Pipeline.SuppressScan = DefaultSuppressScan
	}

	// Store defaults
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	if c.Store.BackupDir == "" {
		c.Store.BackupDir = DefaultStoreBackupDir
	}

	// Journal defaults
	applyDBDefaults(&c.Journal.Database)
	if c.Journal.BatchSize == 0 {
		c.Journal.BatchSize = DefaultJournalBatchSize
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = DefaultJournalFlushInterval
	}
	if c.Journal.BufferSize == 0 {
		c.Journal.BufferSize = DefaultJournalBufferSize
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
