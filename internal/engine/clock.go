package engine

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Sequencer hands out dispatch sequence numbers.
type Sequencer interface {
	Next() int64
}

// Clock numbers dispatches 1, 2, 3, ... It is safe for concurrent use, so
// executors for different classes can share one clock and one journal.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose first Next returns start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// SeqSource reports the highest dispatch sequence already recorded.
// *journal.Journal satisfies it.
type SeqSource interface {
	LastSeq(ctx context.Context) (int64, error)
}

// ResumeClock creates a clock that continues after the last sequence in
// src, so a new run appends to a journal without reusing numbers.
func ResumeClock(ctx context.Context, src SeqSource) (*Clock, error) {
	last, err := src.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume clock: %w", err)
	}
	return NewClockAt(last), nil
}

func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
