package capture

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/0xfern/chatsnipe/internal/model"
)

// chatServer is a scripted fake chat backend. It handles the subscribe
// handshake, then relays frames pushed to send; a signal on drop closes the
// active connection so reconnection can be exercised.
type chatServer struct {
	srv    *httptest.Server
	send   chan Frame
	drop   chan struct{}
	done   chan struct{}
	conns  atomic.Int32
	subErr string
}

func newChatServer(t *testing.T) *chatServer {
	t.Helper()

	cs := &chatServer{
		send: make(chan Frame, 16),
		drop: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	upgrader := websocket.Upgrader{}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		cs.conns.Add(1)

		var cmd Frame
		if err := ws.ReadJSON(&cmd); err != nil || cmd.Type != "subscribe" {
			return
		}
		if cs.subErr != "" {
			ws.WriteJSON(Frame{Type: "error", Msg: cs.subErr})
			return
		}
		ws.WriteJSON(Frame{Type: "subscribed", Room: cmd.Room})

		for {
			select {
			case <-cs.done:
				return
			case <-cs.drop:
				return
			case fr := <-cs.send:
				if err := ws.WriteJSON(fr); err != nil {
					return
				}
			}
		}
	}))

	t.Cleanup(cs.srv.Close)
	t.Cleanup(func() { close(cs.done) })
	return cs
}

func (cs *chatServer) url() string {
	return "ws" + strings.TrimPrefix(cs.srv.URL, "http")
}

func testFeedConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.Room = "alpha-calls"
	cfg.SubscribeTimeout = 2 * time.Second
	cfg.ReconnectBaseWait = 10 * time.Millisecond
	cfg.ReconnectMaxWait = 100 * time.Millisecond
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stopFeed(t *testing.T, f Source) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestFeedDeliversRecords(t *testing.T) {
	cs := newChatServer(t)

	got := make(chan model.AddressRecord, 4)
	f := NewFeed(testFeedConfig(cs.url()), func(rec model.AddressRecord) {
		got <- rec
	}, discardLogger())

	if err := f.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer stopFeed(t, f)

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cs.send <- Frame{
		Type:   "message",
		Room:   "alpha-calls",
		Sender: "deployer",
		Text:   "new launch 0x1111111111111111111111111111111111111111 lfg",
		TS:     ts.UnixMilli(),
	}

	select {
	case rec := <-got:
		if rec.Address != "0x1111111111111111111111111111111111111111" {
			t.Errorf("Address = %q", rec.Address)
		}
		if !rec.Timestamp.Equal(ts) {
			t.Errorf("Timestamp = %v, want %v", rec.Timestamp, ts)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for record")
	}

	// A frame without ts falls back to the local receive time.
	cs.send <- Frame{
		Type: "message",
		Text: "0x2222222222222222222222222222222222222222",
	}

	select {
	case rec := <-got:
		if rec.Address != "0x2222222222222222222222222222222222222222" {
			t.Errorf("Address = %q", rec.Address)
		}
		if age := time.Since(rec.Timestamp); age < 0 || age > 5*time.Second {
			t.Errorf("fallback Timestamp age = %v, want recent", age)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for second record")
	}
}

func TestFeedIgnoresIrrelevantFrames(t *testing.T) {
	cs := newChatServer(t)

	got := make(chan model.AddressRecord, 4)
	f := NewFeed(testFeedConfig(cs.url()), func(rec model.AddressRecord) {
		got <- rec
	}, discardLogger())

	if err := f.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer stopFeed(t, f)

	cs.send <- Frame{Type: "presence", Sender: "lurker"}
	cs.send <- Frame{Type: "message", Text: "no contract here, just vibes"}
	cs.send <- Frame{Type: "message", Text: "0x3333333333333333333333333333333333333333"}

	select {
	case rec := <-got:
		if rec.Address != "0x3333333333333333333333333333333333333333" {
			t.Errorf("Address = %q, irrelevant frames leaked through", rec.Address)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for record")
	}

	select {
	case rec := <-got:
		t.Errorf("unexpected extra record %+v", rec)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFeedStartFailsWhenUnreachable(t *testing.T) {
	cfg := testFeedConfig("ws://127.0.0.1:1/ws")

	f := NewFeed(cfg, func(model.AddressRecord) {}, discardLogger())
	if err := f.Start(context.Background()); err == nil {
		stopFeed(t, f)
		t.Fatal("Start() error = nil, want dial failure")
	}
}

func TestFeedStartFailsOnSubscribeReject(t *testing.T) {
	cs := newChatServer(t)
	cs.subErr = "unknown room"

	f := NewFeed(testFeedConfig(cs.url()), func(model.AddressRecord) {}, discardLogger())
	err := f.Start(context.Background())
	if err == nil {
		stopFeed(t, f)
		t.Fatal("Start() error = nil, want subscribe rejection")
	}
	if !strings.Contains(err.Error(), "subscribe rejected") {
		t.Errorf("Start() error = %v, want subscribe rejection", err)
	}
}

func TestFeedPauseDiscardsMessages(t *testing.T) {
	cs := newChatServer(t)

	got := make(chan model.AddressRecord, 4)
	f := NewFeed(testFeedConfig(cs.url()), func(rec model.AddressRecord) {
		got <- rec
	}, discardLogger())

	if err := f.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer stopFeed(t, f)

	f.Pause()
	if !f.Stats().Paused {
		t.Fatal("Stats().Paused = false after Pause()")
	}

	cs.send <- Frame{Type: "message", Text: "0x1111111111111111111111111111111111111111"}
	waitFor(t, "paused frame to be discarded", func() bool {
		return f.Stats().Discarded >= 1
	})

	f.Resume()
	cs.send <- Frame{Type: "message", Text: "0x2222222222222222222222222222222222222222"}

	select {
	case rec := <-got:
		if rec.Address != "0x2222222222222222222222222222222222222222" {
			t.Errorf("Address = %q, want only the post-resume record", rec.Address)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for post-resume record")
	}

	select {
	case rec := <-got:
		t.Errorf("discarded record was delivered: %+v", rec)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFeedReconnects(t *testing.T) {
	cs := newChatServer(t)

	got := make(chan model.AddressRecord, 4)
	f := NewFeed(testFeedConfig(cs.url()), func(rec model.AddressRecord) {
		got <- rec
	}, discardLogger())

	if err := f.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer stopFeed(t, f)

	cs.send <- Frame{Type: "message", Text: "0x1111111111111111111111111111111111111111"}
	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first record")
	}

	// Kill the server side of the connection and wait for the feed to come
	// back on a fresh one.
	cs.drop <- struct{}{}
	waitFor(t, "reconnection", func() bool {
		return cs.conns.Load() >= 2 && f.Connected()
	})

	cs.send <- Frame{Type: "message", Text: "0x2222222222222222222222222222222222222222"}
	select {
	case rec := <-got:
		if rec.Address != "0x2222222222222222222222222222222222222222" {
			t.Errorf("Address = %q", rec.Address)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for post-reconnect record")
	}

	if r := f.Stats().Reconnects; r != 1 {
		t.Errorf("Stats().Reconnects = %d, want 1", r)
	}
}
