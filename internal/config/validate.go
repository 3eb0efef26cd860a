package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *SniperConfig) Validate() error {
	if c.Feed.URL == "" {
		return errors.New("feed.url is required")
	}
	if c.Feed.Room == "" {
		return errors.New("feed.room is required")
	}
	if c.Feed.ReconnectBaseDelay > c.Feed.ReconnectMaxDelay {
		return fmt.Errorf("feed.reconnect_base_delay (%v) cannot exceed reconnect_max_delay (%v)",
			c.Feed.ReconnectBaseDelay, c.Feed.ReconnectMaxDelay)
	}

	if !c.Trade.DryRun {
		if c.Trade.BaseURL == "" {
			return errors.New("trade.base_url is required")
		}
		if !c.Trade.BuyAmount.IsPositive() {
			return errors.New("trade.buy_amount must be positive")
		}
	}
	if (c.Trade.APIKey == "") != (c.Trade.APISecret == "") {
		return errors.New("trade.api_key and trade.api_secret must be set together")
	}
	if c.Trade.Attempts < 1 {
		return errors.New("trade.attempts must be >= 1")
	}
	if c.Trade.RetryDelay <= 0 {
		return errors.New("trade.retry_delay must be positive")
	}
	if c.Trade.Timeout <= 0 {
		return errors.New("trade.timeout must be positive")
	}

	if c.Pipeline.DebounceWindow <= 0 {
		return errors.New("pipeline.debounce_window must be positive")
	}
	if c.Pipeline.MaxRecordAge <= 0 {
		return errors.New("pipeline.max_record_age must be positive")
	}
	if c.Pipeline.SuppressScan < 1 {
		return errors.New("pipeline.suppress_scan must be >= 1")
	}
	if c.Pipeline.SuppressDepth > c.Pipeline.SuppressScan {
		return fmt.Errorf("pipeline.suppress_depth (%d) cannot exceed suppress_scan (%d)",
			c.Pipeline.SuppressDepth, c.Pipeline.SuppressScan)
	}

	if c.Store.Path == "" {
		return errors.New("store.path is required")
	}
	if c.Store.BackupDir == "" {
		return errors.New("store.backup_dir is required")
	}

	if c.Journal.Enabled {
		if err := c.Journal.Database.validate("journal.database"); err != nil {
			return err
		}
		if c.Journal.BatchSize < 1 {
			return errors.New("journal.batch_size must be >= 1")
		}
		if c.Journal.BufferSize < 1 {
			return errors.New("journal.buffer_size must be >= 1")
		}
	}

	if c.Notify.TelegramToken != "" && c.Notify.ChatID == 0 {
		return errors.New("notify.chat_id is required when telegram_token is set")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
