package store

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Clock stamps writes. Next returns a strictly increasing seq; Now is the
// time recorded for ServerTimestamp fields and create/update times.
type Clock interface {
	Next() int64
	Now() time.Time
}

// LogicalClock is the default Clock: an atomic seq counter and wall time.
//
// Thread-safety: LogicalClock is safe for concurrent use.
type LogicalClock struct {
	seq atomic.Int64
}

// NewLogicalClock creates a clock starting at 0.
func NewLogicalClock() *LogicalClock {
	return &LogicalClock{}
}

// NewLogicalClockAt creates a clock that resumes after start.
func NewLogicalClockAt(start int64) *LogicalClock {
	c := &LogicalClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *LogicalClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *LogicalClock) Current() int64 {
	return c.seq.Load()
}

// Now returns the current UTC wall time.
func (c *LogicalClock) Now() time.Time {
	return time.Now().UTC()
}

// IDGenerator produces document IDs for Add.
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 document IDs, so List
// returns added documents roughly in creation order.
type UUIDv7Generator struct{}

// NewID creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
