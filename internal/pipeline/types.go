package pipeline

import (
	"context"
	"time"

	"github.com/0xfern/chatsnipe/internal/dispatch"
	"github.com/0xfern/chatsnipe/internal/model"
)

// State is the controller's lifecycle phase.
type State int32

const (
	// StateIdle is the phase before Start.
	StateIdle State = iota
	// StateRunning means the decision loop is waiting for observations.
	StateRunning
	// StateEvaluating means a dequeued record is being run through the guards.
	StateEvaluating
	// StateExecuting means a buy sequence is in flight.
	StateExecuting
	// StateStopped is terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateEvaluating:
		return "evaluating"
	case StateExecuting:
		return "executing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config tunes the intake filter and the decision path.
type Config struct {
	// DebounceWindow suppresses re-execution of an address within this span.
	DebounceWindow time.Duration

	// MaxRecordAge drops observations older than this at decision time.
	MaxRecordAge time.Duration

	// SuppressDepth drops an observation at intake when its address sits
	// within this many records of the store tip. Zero or negative disables
	// the filter.
	SuppressDepth int

	// SuppressScan caps how many recent records the intake filter reads.
	SuppressScan int
}

const (
	// DefaultDebounceWindow is the standard re-execution suppression span.
	DefaultDebounceWindow = 1500 * time.Millisecond
	// DefaultMaxRecordAge is the standard staleness cutoff.
	DefaultMaxRecordAge = 20 * time.Second
	// DefaultSuppressDepth is the standard intake filter depth.
	DefaultSuppressDepth = 3
	// DefaultSuppressScan is the standard intake filter scan width.
	DefaultSuppressScan = 10
)

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		DebounceWindow: DefaultDebounceWindow,
		MaxRecordAge:   DefaultMaxRecordAge,
		SuppressDepth:  DefaultSuppressDepth,
		SuppressScan:   DefaultSuppressScan,
	}
}

// Source is the capture side of the pipeline. Implementations push
// observations into Controller.Intake from their own goroutines.
type Source interface {
	// Start begins capturing. A failure here is the pipeline's one fatal
	// startup condition.
	Start(ctx context.Context) error
	// Stop tears capture down. Idempotent.
	Stop(ctx context.Context) error
	// Pause suppresses emission without dropping the underlying feed.
	Pause()
	// Resume re-enables emission.
	Resume()
}

// Executor runs one bounded-retry buy sequence for a surviving record. The
// returned Execution always describes what happened, error or not.
type Executor interface {
	Execute(ctx context.Context, rec model.AddressRecord) (model.Execution, error)
	// Close releases the underlying trade action. Called once at shutdown,
	// and after a failed start.
	Close() error
}

// Notifier receives the outcome of every execution sequence.
type Notifier interface {
	ExecutionResult(exec model.Execution)
}

// Option configures optional controller wiring.
type Option func(*Controller)

// WithJournal forwards every execution record to the journal queue.
func WithJournal(q *dispatch.Queue[model.Execution]) Option {
	return func(c *Controller) {
		c.journal = q
	}
}

// WithNotifier forwards every execution outcome to the notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// Stats is a counter snapshot for the health endpoint.
type Stats struct {
	State      string              `json:"state"`
	Observed   int64               `json:"observed"`
	Suppressed int64               `json:"suppressed"`
	Stale      int64               `json:"stale"`
	Superseded int64               `json:"superseded"`
	Debounced  int64               `json:"debounced"`
	Executed   int64               `json:"executed"`
	Failed     int64               `json:"failed"`
	Queue      dispatch.QueueStats `json:"queue"`
}
