package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/decorum/internal/decorator"
)

// Source supplies the decorators to dispatch. *decorator.Registry
// implements it.
type Source interface {
	ClassDecorators() ([]decorator.ClassDecorator, error)
	MethodDecorators() ([]decorator.MethodDecorator, error)
}

// TeardownPolicy decides what an after phase does when a decorator fails.
type TeardownPolicy int

const (
	// AbortOnFirstFailure stops the phase at the first failure. Decorators
	// ordered after the failing one are not torn down.
	AbortOnFirstFailure TeardownPolicy = iota

	// BestEffortTeardown invokes every applicable after decorator and
	// returns all failures joined.
	BestEffortTeardown
)

func (p TeardownPolicy) String() string {
	if p == BestEffortTeardown {
		return "best-effort"
	}
	return "abort"
}

// Executor runs lifecycle phases. It holds no per-run state and is safe
// for concurrent use by runs of different test classes.
type Executor struct {
	source    Source
	policy    TeardownPolicy
	clock     Sequencer
	observers []Observer
	logger    *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithTeardownPolicy sets the after-phase failure policy.
// Default: AbortOnFirstFailure.
func WithTeardownPolicy(p TeardownPolicy) Option {
	return func(e *Executor) {
		e.policy = p
	}
}

// WithClock sets the dispatch sequencer. Default: a fresh Clock.
func WithClock(c Sequencer) Option {
	return func(e *Executor) {
		e.clock = c
	}
}

// WithObserver adds an observer. Observers are notified in the order added.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observers = append(e.observers, o)
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// New creates an Executor over source.
func New(source Source, opts ...Option) *Executor {
	e := &Executor{
		source: source,
		clock:  NewClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessBeforeAll runs BeforeAll on the applicable class decorators in
// ascending priority order.
func (e *Executor) ProcessBeforeAll(ctx context.Context, inv *decorator.Invocation) error {
	return processClass(ctx, e, PhaseBeforeAll, inv, func(d decorator.ClassDecorator) error {
		return d.BeforeAll(ctx, inv.Context, inv.Class)
	})
}

// ProcessAfterAll runs AfterAll on the applicable class decorators in
// descending priority order.
func (e *Executor) ProcessAfterAll(ctx context.Context, inv *decorator.Invocation) error {
	return processClass(ctx, e, PhaseAfterAll, inv, func(d decorator.ClassDecorator) error {
		return d.AfterAll(ctx, inv.Context, inv.Class)
	})
}

// ProcessBefore runs BeforeTest on the applicable method decorators in
// ascending priority order.
func (e *Executor) ProcessBefore(ctx context.Context, inv *decorator.Invocation) error {
	return processMethod(ctx, e, PhaseBeforeTest, inv, func(d decorator.MethodDecorator) error {
		return d.BeforeTest(ctx, inv)
	})
}

// ProcessAfter runs AfterTest on the applicable method decorators in
// descending priority order.
func (e *Executor) ProcessAfter(ctx context.Context, inv *decorator.Invocation) error {
	return processMethod(ctx, e, PhaseAfterTest, inv, func(d decorator.MethodDecorator) error {
		return d.AfterTest(ctx, inv)
	})
}

func processClass(ctx context.Context, e *Executor, phase Phase, inv *decorator.Invocation, call func(decorator.ClassDecorator) error) error {
	if err := validate(inv); err != nil {
		return err
	}
	decs, err := e.source.ClassDecorators()
	if err != nil {
		return fmt.Errorf("%s %s: %w", phase, inv.Class.Name, err)
	}
	return dispatch(ctx, e, phase, inv, decs, call)
}

func processMethod(ctx context.Context, e *Executor, phase Phase, inv *decorator.Invocation, call func(decorator.MethodDecorator) error) error {
	if err := validate(inv); err != nil {
		return err
	}
	decs, err := e.source.MethodDecorators()
	if err != nil {
		return fmt.Errorf("%s %s: %w", phase, inv.Class.Name, err)
	}
	return dispatch(ctx, e, phase, inv, decs, call)
}

func validate(inv *decorator.Invocation) error {
	if inv == nil || inv.Context == nil {
		return ErrMissingContext
	}
	return inv.Class.Validate()
}

// dispatch filters, orders and invokes decorators for one phase.
func dispatch[D decorator.Applicable](ctx context.Context, e *Executor, phase Phase, inv *decorator.Invocation, decs []D, call func(D) error) error {
	ordered, err := applicable(e, phase, inv, decs)
	if err != nil {
		return err
	}
	order(phase, ordered)

	var failures []error
	for _, d := range ordered {
		name := decorator.NameOf(d)
		err := call(d)
		e.notify(ctx, Dispatch{
			Seq:       e.clock.Next(),
			Phase:     phase,
			Class:     inv.Class.Name,
			Method:    methodOf(phase, inv),
			ContextID: inv.Context.ID(),
			Decorator: name,
			Priority:  d.Priority(),
			Err:       err,
		})
		if err == nil {
			e.logger.Debug("decorator invoked", "phase", phase.String(), "class", inv.Class.Name, "decorator", name)
			continue
		}

		pe := &PhaseError{
			Phase:     phase,
			Decorator: name,
			Priority:  d.Priority(),
			Class:     inv.Class.Name,
			Method:    methodOf(phase, inv),
			Err:       err,
		}
		e.logger.Error("decorator failed", "phase", phase.String(), "class", inv.Class.Name, "decorator", name, "error", err)
		if !phase.IsAfter() || e.policy != BestEffortTeardown {
			return pe
		}
		failures = append(failures, pe)
	}
	return errors.Join(failures...)
}

// applicable returns the decorators that support the invocation's context,
// in discovery order. The check runs on every call.
func applicable[D decorator.Applicable](e *Executor, phase Phase, inv *decorator.Invocation, decs []D) ([]D, error) {
	out := make([]D, 0, len(decs))
	for _, d := range decs {
		ok, err := d.IsConfigurationSupported(inv.Context)
		if err != nil {
			e.logger.Error("applicability check failed", "phase", phase.String(), "class", inv.Class.Name, "decorator", decorator.NameOf(d), "error", err)
			return nil, &PhaseError{
				Phase:     phase,
				Decorator: decorator.NameOf(d),
				Priority:  d.Priority(),
				Class:     inv.Class.Name,
				Method:    methodOf(phase, inv),
				Check:     true,
				Err:       err,
			}
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// order sorts ascending by priority with a stable sort. After phases get
// the exact reverse, so ties unwind in reverse discovery order too.
func order[D decorator.Applicable](phase Phase, decs []D) {
	slices.SortStableFunc(decs, func(a, b D) int {
		return cmp.Compare(a.Priority(), b.Priority())
	})
	if phase.IsAfter() {
		slices.Reverse(decs)
	}
}

// methodOf names the target method; class phases have none.
func methodOf(phase Phase, inv *decorator.Invocation) string {
	if phase.IsClass() {
		return ""
	}
	return inv.MethodName()
}

func (e *Executor) notify(ctx context.Context, d Dispatch) {
	for _, o := range e.observers {
		o.Observe(ctx, d)
	}
}
