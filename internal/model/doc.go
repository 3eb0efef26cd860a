// Package model defines shared data types used across the chatsnipe pipeline.
//
// Conventions:
//   - Addresses: canonical form is "0x" + 40 lowercase hex characters; values
//     failing NormalizeAddress are never constructed into records
//   - Timestamps: time.Time, always UTC
//   - IDs: uuid.UUID for executions
//   - Amounts: decimal.Decimal, never floats
package model
