// Package store provides the SQLite-backed evaluation journal.
//
// The journal is an append-only mirror of the insertions a ledger
// accepted:
//   - Tasks: one row per optimization run, with its objective names
//   - Evaluations: one row per accepted (configuration, performance) pair
//
// # Invariants
//
// Duplicate rejection
//   - UNIQUE(task_id, config_id), written with ON CONFLICT DO NOTHING
//   - A configuration is journaled at most once per task, like the ledger
//
// Logical order
//   - Rows are ordered by seq, the per-task insertion number
//   - Reads use ORDER BY seq ASC, config_id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Evaluations must belong to a known task
//
// Configuration IDs come from space.ConfigID: RFC 8785 canonical JSON and
// SHA-256 with domain separation.
package store
