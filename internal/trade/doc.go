// Package trade executes buy orders for observed addresses.
//
// An Action is one purchase attempt against an execution endpoint; the
// Executor owns the retry budget around it (fixed attempt count, fixed
// delay) and serializes execution sequences behind its own lock. Trade
// failures are terminal for the record, never for the process.
package trade
