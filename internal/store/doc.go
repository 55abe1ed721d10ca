// Package store provides a SQLite-backed document database.
//
// Documents live at slash-separated paths (collection/id[/collection/id...])
// and hold a *value.Map of fields. The store is the resolver's reference
// handle: tagging.Resolve(t, store) validates REFERENCE paths against it.
//
// # Writes
//
//   - Set replaces a document, or merges into it with SetOptions{Merge: true}.
//   - Update changes individual fields addressed by dotted paths and
//     requires the document to exist.
//   - Field transforms (ServerTimestamp, Increment, ArrayUnion, ArrayRemove,
//     Delete) are applied inside the write transaction.
//
// # Storage
//
// Field maps are stored as tagged wire JSON (internal/wire) so key order and
// every domain type survive a round trip. Each write is stamped with a
// logical seq from the store Clock; List orders by id COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
