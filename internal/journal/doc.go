// Package journal persists execution outcomes to PostgreSQL.
//
// The writer drains executions from a dispatch queue, accumulates them into
// batches, and flushes on size or interval. Rows are append-only; replayed
// executions are absorbed by ON CONFLICT (id) DO NOTHING.
package journal
