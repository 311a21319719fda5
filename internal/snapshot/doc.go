// Package snapshot persists assembled datasets in an embedded bbolt database.
//
// Each snapshot lives in its own uuid-keyed sub-bucket holding JSON-encoded
// events and metrics; a metadata bucket tracks the latest snapshot. Writes are
// transactional, so a crash mid-write cannot corrupt committed snapshots.
package snapshot
