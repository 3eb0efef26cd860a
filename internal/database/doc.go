// Package database provides connection pool management for the execution
// journal's PostgreSQL instance.
package database
