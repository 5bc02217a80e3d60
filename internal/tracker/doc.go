// Package tracker is the application state of one tracker session.
//
// A Tracker owns the checklist, gate, preferences, job list, digest and
// current route. Every mutation is applied in memory and the affected
// record is persisted in full before the call returns. Derived values
// (passed count, gate) are recomputed from memory, never re-read.
//
// Thread-safety: all exported methods are safe for concurrent use. Mutations
// are serialised behind one mutex. Digest generation is the only
// asynchronous operation and runs in the digest package's single slot.
package tracker
