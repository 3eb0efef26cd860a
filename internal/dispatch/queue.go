package dispatch

import (
	"sync"
)

// DefaultInitialCapacity is the starting ring size for new queues.
const DefaultInitialCapacity = 16

// Queue is a thread-safe ring buffer that doubles its capacity when it
// reaches 70% full, so senders never block or drop.
type Queue[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      []T
	head     int // read position
	tail     int // write position
	count    int
	capacity int
	closed   bool

	// Stats
	totalEnqueued  int64
	totalDequeued  int64
	totalCoalesced int64
	resizeCount    int
}

// NewQueue creates a queue with the given initial capacity.
func NewQueue[T any](initialCapacity int) *Queue[T] {
	if initialCapacity < 1 {
		initialCapacity = DefaultInitialCapacity
	}
	q := &Queue[T]{
		buf:      make([]T, initialCapacity),
		capacity: initialCapacity,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Send adds an item to the queue. Grows the ring if at 70% capacity.
// Returns false if the queue is closed.
func (q *Queue[T]) Send(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	// Grow when at or above 70% capacity after adding this item.
	threshold := (q.capacity * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if q.count+1 >= threshold {
		q.grow()
	}

	q.buf[q.tail] = item
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	q.totalEnqueued++

	q.cond.Signal()
	return true
}

// Receive removes and returns the oldest item. Blocks until an item is
// available or the queue is closed. Returns ok=false once the queue is
// closed and empty.
func (q *Queue[T]) Receive() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed {
		q.cond.Wait()
	}

	if q.count == 0 && q.closed {
		var zero T
		return zero, false
	}

	item := q.buf[q.head]
	var zero T
	q.buf[q.head] = zero // Clear reference for GC
	q.head = (q.head + 1) % q.capacity
	q.count--
	q.totalDequeued++

	return item, true
}

// TryReceive removes and returns the oldest item without blocking.
// Returns false when the queue is empty.
func (q *Queue[T]) TryReceive() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		var zero T
		return zero, false
	}

	item := q.buf[q.head]
	var zero T
	q.buf[q.head] = zero
	q.head = (q.head + 1) % q.capacity
	q.count--
	q.totalDequeued++

	return item, true
}

// ReceiveNewest blocks for the first available item, then non-blockingly
// drains everything already queued behind it and returns only the newest,
// along with how many older items were coalesced away. Returns ok=false
// once the queue is closed and empty.
func (q *Queue[T]) ReceiveNewest() (item T, coalesced int, ok bool) {
	item, ok = q.Receive()
	if !ok {
		var zero T
		return zero, 0, false
	}

	for {
		next, more := q.TryReceive()
		if !more {
			break
		}
		item = next
		coalesced++
	}

	if coalesced > 0 {
		q.mu.Lock()
		q.totalCoalesced += int64(coalesced)
		q.mu.Unlock()
	}

	return item, coalesced, true
}

// DrainTo removes up to max items in FIFO order. A non-positive max drains
// everything. Returns nil when the queue is empty.
func (q *Queue[T]) DrainTo(max int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return nil
	}

	n := q.count
	if max > 0 && max < n {
		n = max
	}

	result := make([]T, n)
	for i := 0; i < n; i++ {
		result[i] = q.buf[q.head]
		var zero T
		q.buf[q.head] = zero
		q.head = (q.head + 1) % q.capacity
		q.count--
		q.totalDequeued++
	}

	return result
}

// Close closes the queue. After closing, Send returns false and blocked
// receivers drain what remains, then get ok=false.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the current number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the current ring capacity.
func (q *Queue[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity
}

// Stats returns queue counters for the health endpoint. TotalDequeued
// counts every removed item; TotalCoalesced counts the subset removed as
// superseded during a coalescing drain.
func (q *Queue[T]) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Depth:          q.count,
		Capacity:       q.capacity,
		TotalEnqueued:  q.totalEnqueued,
		TotalDequeued:  q.totalDequeued,
		TotalCoalesced: q.totalCoalesced,
		ResizeCount:    q.resizeCount,
	}
}

// QueueStats describes queue state and lifetime counters.
type QueueStats struct {
	Depth          int   `json:"depth"`
	Capacity       int   `json:"capacity"`
	TotalEnqueued  int64 `json:"total_enqueued"`
	TotalDequeued  int64 `json:"total_dequeued"`
	TotalCoalesced int64 `json:"total_coalesced"`
	ResizeCount    int   `json:"resize_count"`
}

// grow doubles the ring capacity. Must be called with lock held.
func (q *Queue[T]) grow() {
	newCapacity := q.capacity * 2
	newBuf := make([]T, newCapacity)

	if q.count > 0 {
		if q.head < q.tail {
			// Contiguous: [head...tail)
			copy(newBuf, q.buf[q.head:q.tail])
		} else {
			// Wrapped: [head...end) + [0...tail)
			n := copy(newBuf, q.buf[q.head:])
			copy(newBuf[n:], q.buf[:q.tail])
		}
	}

	q.buf = newBuf
	q.head = 0
	q.tail = q.count
	q.capacity = newCapacity
	q.resizeCount++
}
