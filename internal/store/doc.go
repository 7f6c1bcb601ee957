// Package store provides the SQLite journal of dispatched state messages.
//
// The journal is append-only:
//   - messages: one row per dispatched message, keyed by (session, seq)
//   - snapshots: the state hash recorded when a session stops
//
// Ordering uses the engine's logical seq, never timestamps. Every read is
// ORDER BY seq ASC so replay feeds messages to the reducers in the order
// they were first dispatched. Sessions are UUIDv7 tokens and sort by
// creation time.
//
// Replay rebuilds a fresh state tree from a session's messages and checks
// its hash against the recorded snapshot.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
