package testutil

import "sync"

// FixedIDs returns predetermined document IDs for testing.
//
// This enables deterministic Add calls and golden comparison of stored paths.
//
// Thread-safety: FixedIDs is safe for concurrent use via internal mutex.
type FixedIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDs creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedIDs("doc-1", "doc-2")
//	gen.NewID() // "doc-1"
//	gen.NewID() // "doc-2"
//	gen.NewID() // panic: all ids exhausted
func NewFixedIDs(ids ...string) *FixedIDs {
	return &FixedIDs{ids: ids}
}

// NewID returns the next predetermined ID.
//
// Panics if all IDs have been consumed, which means the test created more
// documents than it declared.
func (g *FixedIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedIDs: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
