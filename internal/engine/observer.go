package engine

import "context"

// Dispatch records one decorator invocation.
type Dispatch struct {
	Seq       int64
	Phase     Phase
	Class     string
	Method    string
	ContextID string
	Decorator string
	Priority  int

	// Err is the decorator's error, nil on success.
	Err error
}

// Observer is notified after every decorator invocation, on the goroutine
// that ran the phase. Observers must not fail the phase; one that needs to
// report errors logs them.
type Observer interface {
	Observe(ctx context.Context, d Dispatch)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, d Dispatch)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, d Dispatch) {
	f(ctx, d)
}
