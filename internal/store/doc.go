// Package store provides SQLite-backed storage for evolution runs.
//
// The store is a flat dump, not a model of the machine: one row per run,
// one row per (run, step, state) membership and one row per (run, step)
// blocking record. It exists so results can be listed and re-read by run ID
// after the process that computed them has exited.
//
// # Identity and ordering
//
//   - Runs are keyed by an externally generated ID (UUIDv7 in the CLI)
//   - Every run gets a monotonically increasing seq on insert
//   - All queries order by seq or step, never by timestamps
//   - Writing a run ID that already exists is a no-op
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
