package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/decorum/internal/decorator"
	"github.com/roach88/decorum/internal/engine"
	"github.com/roach88/decorum/internal/execution"
	"github.com/roach88/decorum/internal/journal"
	"github.com/roach88/decorum/internal/suite"
)

// PropertiesFunc yields override properties. It is called on every
// callback; only the call that creates the class context has an effect.
type PropertiesFunc func() map[string]any

// Runner drives lifecycle phases for test classes.
type Runner struct {
	executor       *engine.Executor
	contexts       *execution.Registry
	properties     PropertiesFunc
	considerErrors bool
	journal        *journal.Journal
	logger         *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithProperties sets the override properties source.
func WithProperties(fn PropertiesFunc) Option {
	return func(r *Runner) {
		r.properties = fn
	}
}

// WithStaticProperties overrides with a fixed map.
func WithStaticProperties(props map[string]any) Option {
	return WithProperties(func() map[string]any { return props })
}

// WithConsiderErrors forwards a failing test's error to after-test
// decorators through Invocation.Err. Off by default.
func WithConsiderErrors() Option {
	return func(r *Runner) {
		r.considerErrors = true
	}
}

// WithJournal records each class context (and its units) when created.
// Dispatches are recorded by a journal.Observer on the executor.
func WithJournal(j *journal.Journal) Option {
	return func(r *Runner) {
		r.journal = j
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner.
func New(executor *engine.Executor, contexts *execution.Registry, opts ...Option) *Runner {
	r := &Runner{
		executor:   executor,
		contexts:   contexts,
		properties: func() map[string]any { return nil },
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) context(ctx context.Context, class suite.Class) (*execution.Context, error) {
	ec, err := r.contexts.GetInstance(class, r.properties())
	if err != nil {
		return nil, err
	}
	if r.journal != nil {
		if err := r.journal.RecordContext(ctx, ec); err != nil {
			r.logger.Warn("journal context write failed", "class", class.Name, "error", err)
		}
	}
	return ec, nil
}

// BeforeAll runs the before-all phase for class.
func (r *Runner) BeforeAll(ctx context.Context, class suite.Class) (*execution.Context, error) {
	ec, err := r.context(ctx, class)
	if err != nil {
		return nil, err
	}
	inv := &decorator.Invocation{Class: class, Context: ec}
	if err := r.executor.ProcessBeforeAll(ctx, inv); err != nil {
		return ec, err
	}
	return ec, nil
}

// AfterAll runs the after-all phase for class and releases its context,
// whether or not a decorator failed. A class whose context was never
// created has nothing to tear down.
func (r *Runner) AfterAll(ctx context.Context, class suite.Class) error {
	ec, ok := r.contexts.Lookup(class.Name)
	if !ok {
		// Nothing was set up for this class.
		return nil
	}
	defer r.contexts.Drop(class)
	return r.executor.ProcessAfterAll(ctx, &decorator.Invocation{Class: class, Context: ec})
}

// BeforeEach builds the invocation for method and runs the before-test
// phase. The invocation is returned even when a decorator fails so
// AfterEach can still tear down; it is nil only if the context could not
// be obtained.
func (r *Runner) BeforeEach(ctx context.Context, class suite.Class, method suite.Method, instance any) (*decorator.Invocation, error) {
	ec, err := r.context(ctx, class)
	if err != nil {
		return nil, err
	}
	inv := &decorator.Invocation{
		Class:    class,
		Method:   &method,
		Context:  ec,
		Instance: instance,
	}
	return inv, r.executor.ProcessBefore(ctx, inv)
}

// AfterEach runs the after-test phase. testErr is attached to the
// invocation only when the runner considers errors.
func (r *Runner) AfterEach(ctx context.Context, inv *decorator.Invocation, testErr error) error {
	if inv == nil {
		return nil
	}
	inv.Err = nil
	if r.considerErrors {
		inv.Err = testErr
	}
	return r.executor.ProcessAfter(ctx, inv)
}

// Case is one test method of a class run.
type Case struct {
	Method   suite.Method
	Instance any
	Body     func(ctx context.Context, inv *decorator.Invocation) error
}

// CaseResult is the outcome of one Case.
type CaseResult struct {
	Method string
	Err    error
}

// Report is the outcome of a class run.
type Report struct {
	Class string
	Cases []CaseResult
	Err   error // before-all and after-all failures
}

// Failed reports whether any phase or case failed.
func (r *Report) Failed() bool {
	if r.Err != nil {
		return true
	}
	for _, c := range r.Cases {
		if c.Err != nil {
			return true
		}
	}
	return false
}

// RunClass runs every case of class outside of go test. A failing
// before-all skips the cases, after-all runs regardless. A failing
// before-test skips the body, after-test runs regardless.
func (r *Runner) RunClass(ctx context.Context, class suite.Class, cases []Case) *Report {
	report := &Report{Class: class.Name, Cases: []CaseResult{}}

	_, beforeErr := r.BeforeAll(ctx, class)
	if beforeErr == nil {
		for _, c := range cases {
			report.Cases = append(report.Cases, r.runCase(ctx, class, c))
		}
	} else {
		r.logger.Error("before-all failed, skipping class", "class", class.Name, "error", beforeErr)
	}

	afterErr := r.AfterAll(ctx, class)
	report.Err = errors.Join(beforeErr, afterErr)
	return report
}

func (r *Runner) runCase(ctx context.Context, class suite.Class, c Case) CaseResult {
	res := CaseResult{Method: c.Method.Name}

	inv, err := r.BeforeEach(ctx, class, c.Method, c.Instance)
	testErr := err
	if err == nil && c.Body != nil {
		testErr = c.Body(ctx, inv)
	}
	if afterErr := r.AfterEach(ctx, inv, testErr); afterErr != nil {
		testErr = errors.Join(testErr, fmt.Errorf("teardown: %w", afterErr))
	}
	res.Err = testErr
	return res
}
