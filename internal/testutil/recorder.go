package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/decorum/internal/decorator"
	"github.com/roach88/decorum/internal/execution"
	"github.com/roach88/decorum/internal/suite"
)

// CallLog collects decorator calls in the order they happen. Several
// recorders share one log so tests can assert on the interleaving.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

// Add appends one formatted entry.
func (l *CallLog) Add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

// Calls returns a copy of the entries.
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.calls)
}

// Reset empties the log.
func (l *CallLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

// ClassRecorder is a ClassDecorator that records every call to Log.
// Zero-valued error fields mean success; Unsupported opts it out of every
// context.
type ClassRecorder struct {
	Label       string
	Prio        int
	Log         *CallLog
	Unsupported bool

	SupportErr   error
	BeforeAllErr error
	AfterAllErr  error
}

var _ decorator.ClassDecorator = (*ClassRecorder)(nil)

func (r *ClassRecorder) Name() string  { return r.Label }
func (r *ClassRecorder) Priority() int { return r.Prio }

func (r *ClassRecorder) IsConfigurationSupported(*execution.Context) (bool, error) {
	if r.SupportErr != nil {
		return false, r.SupportErr
	}
	return !r.Unsupported, nil
}

func (r *ClassRecorder) BeforeAll(_ context.Context, _ *execution.Context, class suite.Class) error {
	r.Log.Add("%s.before-all(%s)", r.Label, class.Name)
	return r.BeforeAllErr
}

func (r *ClassRecorder) AfterAll(_ context.Context, _ *execution.Context, class suite.Class) error {
	r.Log.Add("%s.after-all(%s)", r.Label, class.Name)
	return r.AfterAllErr
}

// MethodRecorder is a MethodDecorator that records every call to Log. An
// after-test entry carries the test error when the invocation has one.
type MethodRecorder struct {
	Label       string
	Prio        int
	Log         *CallLog
	Unsupported bool

	SupportErr    error
	BeforeTestErr error
	AfterTestErr  error
}

var _ decorator.MethodDecorator = (*MethodRecorder)(nil)

func (r *MethodRecorder) Name() string  { return r.Label }
func (r *MethodRecorder) Priority() int { return r.Prio }

func (r *MethodRecorder) IsConfigurationSupported(*execution.Context) (bool, error) {
	if r.SupportErr != nil {
		return false, r.SupportErr
	}
	return !r.Unsupported, nil
}

func (r *MethodRecorder) BeforeTest(_ context.Context, inv *decorator.Invocation) error {
	r.Log.Add("%s.before-test(%s)", r.Label, inv.MethodName())
	return r.BeforeTestErr
}

func (r *MethodRecorder) AfterTest(_ context.Context, inv *decorator.Invocation) error {
	if inv.Err != nil {
		r.Log.Add("%s.after-test(%s) err=%v", r.Label, inv.MethodName(), inv.Err)
	} else {
		r.Log.Add("%s.after-test(%s)", r.Label, inv.MethodName())
	}
	return r.AfterTestErr
}
