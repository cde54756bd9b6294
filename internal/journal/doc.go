// Package journal provides SQLite-backed durable storage for lifecycle
// dispatch records.
//
// The journal is an append-only log with:
//   - Contexts: one row per execution context, with the class it serves
//   - Units: the configuration units loaded for a context, with their
//     content fingerprints
//   - Dispatches: one row per decorator invocation reported by the engine
//
// # Ordering
//
// Dispatch rows are keyed by the engine's logical sequence number, never by
// wall-clock time. Every read orders by seq ASC, so a run reads back in
// the order it happened regardless of when rows were flushed.
//
// Writes are idempotent: recording the same seq or context twice is a
// no-op.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package journal
