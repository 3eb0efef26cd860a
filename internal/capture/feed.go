package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0xfern/chatsnipe/internal/model"
)

// Handler receives each address record extracted from the feed, on the
// feed's read goroutine.
type Handler func(model.AddressRecord)

// Source is a pausable stream of observed contract addresses.
type Source interface {
	// Start dials the feed and subscribes to the room. A failure here is
	// fatal; reconnection only covers failures after a successful start.
	Start(ctx context.Context) error

	// Stop gracefully shuts the feed down.
	Stop(ctx context.Context) error

	// Pause discards incoming messages until Resume. The connection stays
	// up and frames keep draining off the wire.
	Pause()

	// Resume re-enables message handling.
	Resume()

	// Connected returns current connection state.
	Connected() bool

	// Stats returns current feed statistics.
	Stats() SourceStats
}

// feed implements Source over a single reconnecting WebSocket.
type feed struct {
	cfg     Config
	handler Handler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.RWMutex
	conn *conn

	paused atomic.Bool

	// Stats
	reconnects atomic.Int64
	framesSeen atomic.Int64
	records    atomic.Int64
	discarded  atomic.Int64
}

// NewFeed creates a chat feed that invokes handler for every address
// record it extracts.
func NewFeed(cfg Config, handler Handler, logger *slog.Logger) Source {
	if logger == nil {
		logger = slog.Default()
	}

	return &feed{
		cfg:     cfg,
		handler: handler,
		logger:  logger.With("component", "capture"),
	}
}

// Start dials and subscribes. Any error here is returned to the caller and
// the feed is left stopped.
func (f *feed) Start(ctx context.Context) error {
	f.ctx, f.cancel = context.WithCancel(ctx)

	c, err := f.connect(f.ctx)
	if err != nil {
		f.cancel()
		return fmt.Errorf("connect chat feed: %w", err)
	}
	f.setConn(c)

	f.wg.Add(1)
	go f.run()

	f.logger.Info("chat feed started", "url", f.cfg.URL, "room", f.cfg.Room)
	return nil
}

// Stop gracefully shuts down.
func (f *feed) Stop(ctx context.Context) error {
	f.logger.Info("stopping chat feed")

	if f.cancel != nil {
		f.cancel()
	}

	f.mu.Lock()
	if f.conn != nil {
		f.conn.close()
	}
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		f.logger.Warn("shutdown timeout, forcing close")
	}

	f.logger.Info("chat feed stopped")
	return nil
}

// Pause discards messages until Resume.
func (f *feed) Pause() {
	if f.paused.CompareAndSwap(false, true) {
		f.logger.Debug("capture paused")
	}
}

// Resume re-enables message handling.
func (f *feed) Resume() {
	if f.paused.CompareAndSwap(true, false) {
		f.logger.Debug("capture resumed")
	}
}

// Connected returns the current connection state.
func (f *feed) Connected() bool {
	c := f.currentConn()
	return c != nil && c.isConnected()
}

// Stats returns current feed statistics.
func (f *feed) Stats() SourceStats {
	return SourceStats{
		Connected:  f.Connected(),
		Paused:     f.paused.Load(),
		Reconnects: f.reconnects.Load(),
		FramesSeen: f.framesSeen.Load(),
		Records:    f.records.Load(),
		Discarded:  f.discarded.Load(),
	}
}

func (f *feed) setConn(c *conn) {
	f.mu.Lock()
	f.conn = c
	f.mu.Unlock()
}

func (f *feed) currentConn() *conn {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.conn
}

// connect dials the server and subscribes to the configured room.
func (f *feed) connect(ctx context.Context) (*conn, error) {
	c := newConn(f.cfg, f.logger)
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	if err := f.subscribe(ctx, c); err != nil {
		c.close()
		return nil, err
	}
	return c, nil
}

// subscribe sends the room subscribe command and waits for the ack.
func (f *feed) subscribe(ctx context.Context, c *conn) error {
	cmd := Frame{Type: "subscribe", Room: f.cfg.Room}
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	if err := c.send(data); err != nil {
		return fmt.Errorf("send subscribe: %w", err)
	}

	deadline := time.NewTimer(f.cfg.SubscribeTimeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrTimeout
		case err := <-c.errs():
			return err
		case in := <-c.inbound():
			var fr Frame
			if err := json.Unmarshal(in.Data, &fr); err != nil {
				continue
			}
			switch fr.Type {
			case "subscribed":
				f.logger.Debug("subscribed to room", "room", f.cfg.Room)
				return nil
			case "error":
				return fmt.Errorf("subscribe rejected: %s", fr.Msg)
			}
			// Anything else before the ack is ignored.
		}
	}
}

// run consumes frames and errors from the current connection, reconnecting
// on failure.
func (f *feed) run() {
	defer f.wg.Done()

	for {
		c := f.currentConn()

		select {
		case <-f.ctx.Done():
			return

		case err := <-c.errs():
			f.logger.Warn("chat feed connection error", "error", err)
			if !f.reconnect() {
				return
			}

		case in := <-c.inbound():
			f.handleFrame(in)
		}
	}
}

// handleFrame parses one frame and hands any extracted record to the
// handler. Paused frames are counted and dropped before parsing.
func (f *feed) handleFrame(in Inbound) {
	f.framesSeen.Add(1)

	if f.paused.Load() {
		f.discarded.Add(1)
		return
	}

	var fr Frame
	if err := json.Unmarshal(in.Data, &fr); err != nil {
		f.logger.Debug("undecodable frame", "error", err)
		return
	}
	if fr.Type != "message" {
		return
	}

	addr, ok := ExtractAddress(fr.Text)
	if !ok {
		return
	}

	observed := in.ReceivedAt
	if fr.TS > 0 {
		observed = time.UnixMilli(fr.TS)
	}

	rec, err := model.NewAddressRecord(addr, observed)
	if err != nil {
		return
	}

	f.records.Add(1)
	f.logger.Debug("address observed",
		"address", rec.Address,
		"sender", fr.Sender,
		"room", fr.Room,
	)
	f.handler(rec)
}

// reconnect re-dials with exponential backoff until it succeeds or the feed
// is stopped. Returns false when stopped.
func (f *feed) reconnect() bool {
	f.mu.Lock()
	if f.conn != nil {
		f.conn.close()
	}
	f.mu.Unlock()

	wait := f.cfg.ReconnectBaseWait

	for {
		select {
		case <-f.ctx.Done():
			return false
		case <-time.After(wait):
		}

		f.logger.Info("reconnecting chat feed", "wait", wait)

		c, err := f.connect(f.ctx)
		if err != nil {
			f.logger.Warn("reconnection failed", "error", err)

			wait *= 2
			if wait > f.cfg.ReconnectMaxWait {
				wait = f.cfg.ReconnectMaxWait
			}
			continue
		}

		f.setConn(c)
		f.reconnects.Add(1)
		f.logger.Info("chat feed reconnected")
		return true
	}
}
