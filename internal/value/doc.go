// Package value defines the universal value model exchanged between a
// scripting host and the document database client.
//
// Value is a sealed interface. The scalar, sequence and mapping variants are
// what any JSON-like host can express; the remaining variants are the
// database-domain types (GeoPoint, Timestamp, Reference, Blob) and the
// write-time field transforms (ServerTimestamp, Increment, ArrayUnion,
// ArrayRemove, Delete).
//
// Pair is the one variant that only appears in tagged form: it carries a Tag
// and a payload built from primitives, and is produced by package tagging.
//
// This package imports nothing internal. All other internal packages import
// value; value stays the foundational layer.
package value
