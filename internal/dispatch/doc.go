// Package dispatch provides the unbounded hand-off queue between the
// capture side and the execution loop.
//
// The queue is a growable ring buffer. Producers never block: the ring
// doubles its capacity when it fills past 70%. The execution loop consumes
// with ReceiveNewest, which waits for at least one record and then drains
// everything queued behind it, delivering only the newest. Records passed
// over this way are counted as coalesced, not lost: every record was
// already persisted before it entered the queue.
package dispatch
