// Package tagging converts values to and from their boundary-safe tagged
// form.
//
// Tag walks a value tree and replaces every database-domain value with a
// value.Pair whose payload is built only from primitives, arrays and maps.
// Resolve walks a tagged tree and rebuilds the domain values, asking a
// Handle to construct document references.
//
//	host value --Tag--> tagged value --(boundary)--> Resolve(h) --> client value
//
// Both directions are pure, synchronous and re-entrant: there is no shared
// state, so concurrent calls need no locking. The only side effect is the
// Handle.DocumentReference call made for REFERENCE pairs.
//
// # Guarantees
//
//   - Resolve(Tag(v), h) is Equal to v for any acyclic v whose references h
//     accepts.
//   - Tag output never contains a domain value.
//   - Map key order is preserved in both directions; nothing is sorted.
//   - A map or array that contains itself fails with CyclicValue instead of
//     recursing forever.
//   - Nesting beyond the max depth fails with DepthExceeded instead of
//     exhausting the stack.
//   - Every failure aborts the whole conversion. There are no partial
//     results, and nothing is logged or swallowed.
package tagging
