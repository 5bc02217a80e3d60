// Package store provides SQLite-backed durable key-value storage for the
// tracker's records.
//
// Each key holds one serialized record (canonical JSON text, see package
// record). Writes replace the whole value; there is no partial update. A
// per-key revision counter is bumped on every write so that tooling can tell
// whether a record changed between two reads.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - single open connection: SQLite allows one writer, and ":memory:"
//     databases live only as long as their connection
package store
