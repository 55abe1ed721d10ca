package testutil

import (
	"sync"
	"time"
)

// Epoch is the wall-clock origin of a DeterministicClock.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a thread-safe logical clock for tests. It satisfies
// store.Clock: each Next advances seq by one and Now by one second, so
// server timestamps written in a test are reproducible.
//
// Unlike store.LogicalClock, DeterministicClock can be reset for test reuse.
type DeterministicClock struct {
	mu    sync.Mutex
	seq   int64
	start time.Time
}

// NewDeterministicClock creates a clock at seq 0 whose Now is Epoch.
//
// The first call to Next() returns 1.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockFrom(Epoch)
}

// NewDeterministicClockFrom creates a clock at seq 0 whose Now is start.
func NewDeterministicClockFrom(start time.Time) *DeterministicClock {
	return &DeterministicClock{start: start.UTC()}
}

// Next increments and returns the next sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Now returns start plus one second per issued sequence number.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start.Add(time.Duration(c.seq) * time.Second)
}

// Reset resets the clock to 0.
//
// After Reset(), the next call to Next() returns 1 and Now() is back at start.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
