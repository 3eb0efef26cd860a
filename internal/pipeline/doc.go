// Package pipeline coordinates the observation-to-execution path. A capture
// source pushes address observations into the controller's intake, which
// filters re-pastes, persists history, and enqueues. A single decision loop
// coalesces bursts, runs the guard chain (stale, superseded, debounced), and
// triggers one serialized buy sequence per surviving record, pausing capture
// for the duration. Per-event failures are absorbed; only a capture startup
// failure and operator cancellation reach the process boundary.
package pipeline
