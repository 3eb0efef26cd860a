package guard

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the minimum spacing between executions of the
// same address.
const DefaultDebounceWindow = 1500 * time.Millisecond

// Debounce tracks the last execution instant per address. The pipeline
// checks ShouldSkip before executing and calls RecordExecution after every
// execution sequence, successful or not. State lives in memory only.
type Debounce struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

// NewDebounce returns a debounce tracker with the given window. A
// non-positive window falls back to DefaultDebounceWindow.
func NewDebounce(window time.Duration) *Debounce {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debounce{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Window returns the configured debounce window.
func (d *Debounce) Window() time.Duration {
	return d.window
}

// ShouldSkip reports whether address executed within the window before now.
// An attempt exactly window after the recorded instant is not skipped.
func (d *Debounce) ShouldSkip(address string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	last, ok := d.last[address]
	return ok && now.Sub(last) < d.window
}

// RecordExecution stores now as the last execution instant for address.
func (d *Debounce) RecordExecution(address string, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last[address] = now
}

// Prune drops entries too old to cause a skip. Called off the hot decision
// path, after each execution.
func (d *Debounce) Prune(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for addr, last := range d.last {
		if now.Sub(last) >= d.window {
			delete(d.last, addr)
		}
	}
}

// Len returns the number of tracked addresses.
func (d *Debounce) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.last)
}
