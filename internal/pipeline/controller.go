package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0xfern/chatsnipe/internal/dispatch"
	"github.com/0xfern/chatsnipe/internal/guard"
	"github.com/0xfern/chatsnipe/internal/model"
	"github.com/0xfern/chatsnipe/internal/store"
)

// Controller owns the observation-to-execution decision path. Observations
// arrive through Intake on the capture goroutine; a single loop dequeues
// with coalescing, runs the guard chain, and executes.
type Controller struct {
	cfg      Config
	logger   *slog.Logger
	store    *store.Store
	queue    *dispatch.Queue[model.AddressRecord]
	recency  guard.Recency
	debounce *guard.Debounce
	executor Executor
	source   Source

	journal  *dispatch.Queue[model.Execution]
	notifier Notifier

	state atomic.Int32

	observed   atomic.Int64
	suppressed atomic.Int64
	stale      atomic.Int64
	superseded atomic.Int64
	debounced  atomic.Int64
	executed   atomic.Int64
	failed     atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a controller over the store and executor. The capture source
// is attached separately, after it has been built around Intake.
func New(cfg Config, st *store.Store, exec Executor, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = DefaultDebounceWindow
	}
	if cfg.MaxRecordAge <= 0 {
		cfg.MaxRecordAge = DefaultMaxRecordAge
	}
	if cfg.SuppressScan < 1 {
		cfg.SuppressScan = DefaultSuppressScan
	}

	c := &Controller{
		cfg:      cfg,
		logger:   logger.With("component", "pipeline"),
		store:    st,
		queue:    dispatch.NewQueue[model.AddressRecord](dispatch.DefaultInitialCapacity),
		recency:  guard.NewRecency(cfg.MaxRecordAge),
		debounce: guard.NewDebounce(cfg.DebounceWindow),
		executor: exec,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AttachSource wires the capture source. Must be called before Start.
func (c *Controller) AttachSource(src Source) {
	c.source = src
}

// State reports the current lifecycle phase.
func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
}

// Intake accepts one observation from the capture source. Safe for
// concurrent use; never blocks on the decision path.
func (c *Controller) Intake(rec model.AddressRecord) {
	c.observed.Add(1)

	if c.suppressedAtIntake(rec.Address) {
		c.suppressed.Add(1)
		c.logger.Debug("observation suppressed",
			"address", rec.Address,
			"depth", c.cfg.SuppressDepth,
		)
		return
	}

	if err := c.store.Append(rec); err != nil {
		c.logger.Error("append failed, dropping observation",
			"address", rec.Address,
			"error", err,
		)
		return
	}

	c.queue.Send(rec)
}

// suppressedAtIntake checks the newest store records for the address. Rank 1
// is the tip; a hit at rank <= SuppressDepth drops the observation before it
// is appended or queued.
func (c *Controller) suppressedAtIntake(address string) bool {
	if c.cfg.SuppressDepth <= 0 {
		return false
	}

	recent, err := c.store.Recent(c.cfg.SuppressScan)
	if err != nil {
		c.logger.Warn("suppression scan failed", "error", err)
		return false
	}

	depth := c.cfg.SuppressDepth
	if depth > len(recent) {
		depth = len(recent)
	}
	for i := 0; i < depth; i++ {
		if recent[i].Address == address {
			return true
		}
	}
	return false
}

// Start launches the decision loop and the capture source. A source start
// failure is fatal: the trade action is closed and the error returned.
func (c *Controller) Start(ctx context.Context) error {
	if c.source == nil {
		return errors.New("no capture source attached")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	if err := c.source.Start(c.ctx); err != nil {
		c.cancel()
		if closeErr := c.executor.Close(); closeErr != nil {
			c.logger.Warn("trade action close after failed start", "error", closeErr)
		}
		c.setState(StateStopped)
		return fmt.Errorf("start capture source: %w", err)
	}

	c.setState(StateRunning)
	c.wg.Add(1)
	go c.run()

	c.logger.Info("pipeline started",
		"debounce_window", c.cfg.DebounceWindow,
		"max_record_age", c.cfg.MaxRecordAge,
		"suppress_depth", c.cfg.SuppressDepth,
	)
	return nil
}

// run is the decision loop. ReceiveNewest coalesces bursts so only the
// newest queued record is evaluated.
func (c *Controller) run() {
	defer c.wg.Done()

	for {
		rec, coalesced, ok := c.queue.ReceiveNewest()
		if !ok {
			return
		}
		// Items drained after shutdown began are discarded, not executed.
		if c.ctx.Err() != nil {
			return
		}
		if coalesced > 0 {
			c.logger.Debug("coalesced burst",
				"dropped", coalesced,
				"surviving_address", rec.Address,
			)
		}
		c.handle(rec)
	}
}

// handle runs the guard chain on one surviving record.
func (c *Controller) handle(rec model.AddressRecord) {
	c.setState(StateEvaluating)
	defer c.setState(StateRunning)

	now := time.Now().UTC()

	if !c.recency.IsRecent(rec, now) {
		c.stale.Add(1)
		c.logger.Info("dropping stale record",
			"address", rec.Address,
			"age", now.Sub(rec.Timestamp),
			"max_age", c.recency.MaxAge(),
		)
		return
	}

	tip, ok, err := c.store.ReadLatest()
	if err != nil {
		c.logger.Error("tip check failed, dropping record",
			"address", rec.Address,
			"error", err,
		)
		return
	}
	if !ok || !tip.Equal(rec) {
		c.superseded.Add(1)
		c.logger.Info("dropping superseded record",
			"address", rec.Address,
			"observed_at", rec.Timestamp,
		)
		return
	}

	if c.debounce.ShouldSkip(rec.Address, now) {
		c.debounced.Add(1)
		c.logger.Info("dropping debounced record", "address", rec.Address)
		return
	}

	c.execute(rec)
}

// execute pauses capture for exactly one buy sequence, resumes it whatever
// the outcome, then records the execution instant for the debounce window.
func (c *Controller) execute(rec model.AddressRecord) {
	c.setState(StateExecuting)

	c.source.Pause()
	exec, err := c.executor.Execute(c.ctx, rec)
	c.source.Resume()

	now := time.Now().UTC()
	c.debounce.RecordExecution(rec.Address, now)
	c.debounce.Prune(now)

	if err != nil {
		c.failed.Add(1)
		c.logger.Error("execution sequence failed",
			"address", rec.Address,
			"attempts", exec.Attempts,
			"error", err,
		)
	} else {
		c.executed.Add(1)
		c.logger.Info("execution sequence succeeded",
			"address", rec.Address,
			"attempts", exec.Attempts,
			"execution_id", exec.ID,
		)
	}

	if c.journal != nil {
		c.journal.Send(exec)
	}
	if c.notifier != nil {
		c.notifier.ExecutionResult(exec)
	}
}

// Stop shuts the pipeline down: the decision loop exits, then the capture
// source and the trade action are released even when one of them fails.
func (c *Controller) Stop(ctx context.Context) error {
	c.logger.Info("stopping pipeline")

	if c.cancel != nil {
		c.cancel()
	}
	c.queue.Close()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		c.logger.Warn("timeout waiting for decision loop")
	}

	var firstErr error
	if c.source != nil {
		if err := c.source.Stop(ctx); err != nil {
			firstErr = fmt.Errorf("stop capture source: %w", err)
			c.logger.Warn("capture source stop failed", "error", err)
		}
	}
	if err := c.executor.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("close trade action: %w", err)
		}
		c.logger.Warn("trade action close failed", "error", err)
	}

	c.setState(StateStopped)
	c.logger.Info("pipeline stopped",
		"observed", c.observed.Load(),
		"executed", c.executed.Load(),
		"failed", c.failed.Load(),
	)
	return firstErr
}

// Stats returns a counter snapshot.
func (c *Controller) Stats() Stats {
	return Stats{
		State:      c.State().String(),
		Observed:   c.observed.Load(),
		Suppressed: c.suppressed.Load(),
		Stale:      c.stale.Load(),
		Superseded: c.superseded.Load(),
		Debounced:  c.debounced.Load(),
		Executed:   c.executed.Load(),
		Failed:     c.failed.Load(),
		Queue:      c.queue.Stats(),
	}
}
