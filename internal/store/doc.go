// Package store implements the durable address ledger.
//
// The ledger:
//   - Holds at most one record per address (later timestamp wins on conflict)
//   - Persists as newline-delimited "<RFC 3339 UTC>|<address>" text,
//     ascending by timestamp after every write
//   - Rewrites atomically (temp file + rename) inside a single critical
//     section per append (read, merge, sort, write)
//   - Skips malformed lines on read, never fails on them
//
// Backups are point-in-time copies named addresses_YYYYMMDD_HHMMSS.txt; a
// failed backup is reported to the caller and logged, never fatal.
package store
