// Package guard holds the admission checks that sit between the queue and
// the trade executor: a recency check that rejects records observed too
// long ago, and a per-address debounce that suppresses rapid repeat
// executions.
package guard
