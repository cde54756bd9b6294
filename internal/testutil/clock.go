package testutil

import (
	"slices"
	"sync"
)

// DeterministicClock is an engine.Sequencer for tests. It starts at 1 in
// every test and keeps each number it hands out, so a test can check that
// every dispatch consumed exactly one sequence.
type DeterministicClock struct {
	mu     sync.Mutex
	issued []int64
}

// NewDeterministicClock creates a clock whose first Next returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next hands out the number after the last one issued.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := int64(len(c.issued) + 1)
	c.issued = append(c.issued, seq)
	return seq
}

// Issued returns every number handed out since the last Reset, in order.
func (c *DeterministicClock) Issued() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.issued)
}

// Reset forgets the issued numbers; the next Next returns 1 again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued = nil
}
