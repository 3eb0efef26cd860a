package trade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/0xfern/chatsnipe/internal/model"
)

// ErrAttemptsExhausted wraps the last attempt's error once the retry budget
// is spent.
var ErrAttemptsExhausted = errors.New("buy attempts exhausted")

const (
	// DefaultAttempts is the retry budget per execution sequence.
	DefaultAttempts = 3
	// DefaultRetryDelay is the fixed wait between attempts.
	DefaultRetryDelay = 2 * time.Second
)

// ExecutorConfig configures the retry budget and order size.
type ExecutorConfig struct {
	Attempts   int
	RetryDelay time.Duration
	BuyAmount  decimal.Decimal
}

// DefaultExecutorConfig returns the standard retry budget.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Attempts:   DefaultAttempts,
		RetryDelay: DefaultRetryDelay,
	}
}

// Executor runs bounded-retry execution sequences against an Action. Its
// lock serializes sequences and is independent of any storage locking.
type Executor struct {
	action Action
	cfg    ExecutorConfig
	logger *slog.Logger

	mu sync.Mutex
}

// NewExecutor creates an executor over the given action.
func NewExecutor(action Action, cfg ExecutorConfig, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	return &Executor{
		action: action,
		cfg:    cfg,
		logger: logger.With("component", "executor"),
	}
}

// Execute runs one execution sequence for rec: up to Attempts calls with a
// fixed delay between them. The returned Execution always describes what
// happened; the error is non-nil when every attempt failed, when a
// non-retryable rejection ended the sequence early, or when the context was
// cancelled.
func (e *Executor) Execute(ctx context.Context, rec model.AddressRecord) (model.Execution, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exec := model.Execution{
		ID:         uuid.New(),
		Address:    rec.Address,
		ObservedAt: rec.Timestamp,
		StartedAt:  time.Now().UTC(),
		BuyAmount:  e.cfg.BuyAmount,
	}

	var lastErr error
	for attempt := 1; attempt <= e.cfg.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				exec.FinishedAt = time.Now().UTC()
				exec.Error = ctx.Err().Error()
				return exec, ctx.Err()
			case <-time.After(e.cfg.RetryDelay):
			}
		}

		exec.Attempts = attempt
		err := e.action.Execute(ctx, rec.Address)
		if err == nil {
			exec.Succeeded = true
			exec.FinishedAt = time.Now().UTC()
			e.logger.Info("buy succeeded",
				"address", rec.Address,
				"attempt", attempt,
				"execution_id", exec.ID,
			)
			return exec, nil
		}

		lastErr = err
		e.logger.Warn("buy attempt failed",
			"address", rec.Address,
			"attempt", attempt,
			"max_attempts", e.cfg.Attempts,
			"error", err,
		)

		// Client-side rejections will not heal on retry.
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.IsRetryable() {
			exec.FinishedAt = time.Now().UTC()
			exec.Error = err.Error()
			e.logger.Error("buy rejected, not retrying",
				"address", rec.Address,
				"status", apiErr.StatusCode,
			)
			return exec, err
		}
	}

	exec.FinishedAt = time.Now().UTC()
	exec.Error = lastErr.Error()
	e.logger.Error("buy attempts exhausted",
		"address", rec.Address,
		"attempts", e.cfg.Attempts,
		"error", lastErr,
	)
	return exec, fmt.Errorf("%w after %d attempts: %v", ErrAttemptsExhausted, e.cfg.Attempts, lastErr)
}

// Close releases the underlying action.
func (e *Executor) Close() error {
	return e.action.Close()
}
