package journal

import (
	"time"
)

// Config contains batching settings for the journal writer.
type Config struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     100,
		FlushInterval: time.Second,
	}
}

// executionRow represents a row to be inserted into the executions table.
// UUID and decimal values travel as text; Postgres casts them on insert.
type executionRow struct {
	ID         string
	Address    string
	ObservedAt time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Attempts   int
	Succeeded  bool
	Error      string
	BuyAmount  string
}

// Metrics holds counters for the journal writer.
type Metrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}
