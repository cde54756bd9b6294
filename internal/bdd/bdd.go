// Package bdd runs lifecycle decorators around godog scenarios.
//
// A feature file plays the test class and each scenario a test method.
// Scenario tags become method features: "@transactional" is a flag,
// "@seed=users.yaml" carries a value. Tags inherited from the feature are
// included, since godog flattens them onto every scenario.
//
//	hooks := bdd.New(runner)
//	godog.TestSuite{
//		TestSuiteInitializer: hooks.InitializeTestSuite,
//		ScenarioInitializer: func(sc *godog.ScenarioContext) {
//			hooks.InitializeScenario(sc)
//			registerSteps(sc)
//		},
//	}.Run()
//
// The class before-all phase runs lazily before the first scenario of each
// feature; after-all runs for every started feature when the suite ends.
package bdd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/cucumber/godog"

	"github.com/roach88/decorum/internal/decorator"
	"github.com/roach88/decorum/internal/harness"
	"github.com/roach88/decorum/internal/suite"
)

// Hooks adapts a harness.Runner to godog.
type Hooks struct {
	runner    *harness.Runner
	className func(*godog.Scenario) string
	logger    *slog.Logger

	mu       sync.Mutex
	started  []suite.Class
	setupErr map[string]error
	errs     []error
}

// Option configures Hooks.
type Option func(*Hooks)

// WithClassName overrides how a scenario maps to its test class.
// Default: the feature URI.
func WithClassName(fn func(*godog.Scenario) string) Option {
	return func(h *Hooks) {
		h.className = fn
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hooks) {
		h.logger = logger
	}
}

// New creates hooks driving runner.
func New(runner *harness.Runner, opts ...Option) *Hooks {
	h := &Hooks{
		runner:    runner,
		className: FeatureURI,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		setupErr:  make(map[string]error),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FeatureURI names the class after the scenario's feature file.
func FeatureURI(sc *godog.Scenario) string {
	return sc.Uri
}

// Features converts scenario tags into method features.
func Features(sc *godog.Scenario) []suite.Feature {
	features := make([]suite.Feature, 0, len(sc.Tags))
	for _, tag := range sc.Tags {
		name := strings.TrimPrefix(tag.Name, "@")
		if key, value, ok := strings.Cut(name, "="); ok {
			features = append(features, suite.With(key, value))
		} else {
			features = append(features, suite.Flag(name))
		}
	}
	return features
}

type invocationKey struct{}

// InvocationFrom returns the invocation of the running scenario. Step
// definitions use it to reach the execution context.
func InvocationFrom(ctx context.Context) (*decorator.Invocation, bool) {
	inv, ok := ctx.Value(invocationKey{}).(*decorator.Invocation)
	return inv, ok
}

// InitializeScenario registers the before/after scenario hooks.
func (h *Hooks) InitializeScenario(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		class := suite.NewClass(h.className(s))
		if err := h.ensureStarted(ctx, class); err != nil {
			return ctx, err
		}

		method := suite.NewMethod(s.Name, Features(s)...)
		inv, err := h.runner.BeforeEach(ctx, class, method, nil)
		if inv != nil {
			ctx = context.WithValue(ctx, invocationKey{}, inv)
		}
		return ctx, err
	})

	sc.After(func(ctx context.Context, s *godog.Scenario, scenarioErr error) (context.Context, error) {
		inv, ok := InvocationFrom(ctx)
		if !ok {
			return ctx, nil
		}
		if err := h.runner.AfterEach(ctx, inv, scenarioErr); err != nil {
			return ctx, fmt.Errorf("after scenario %q: %w", s.Name, err)
		}
		return ctx, nil
	})
}

// InitializeTestSuite registers the suite-end hook that runs after-all for
// every started feature, in start order.
func (h *Hooks) InitializeTestSuite(tsc *godog.TestSuiteContext) {
	tsc.AfterSuite(func() {
		if err := h.Finish(context.Background()); err != nil {
			h.logger.Error("after-all failed", "error", err)
		}
	})
}

// ensureStarted runs before-all once per class. A failed before-all is
// remembered and fails every later scenario of the class.
func (h *Hooks) ensureStarted(ctx context.Context, class suite.Class) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err, seen := h.setupErr[class.Name]; seen {
		return err
	}
	_, err := h.runner.BeforeAll(ctx, class)
	h.setupErr[class.Name] = err
	h.started = append(h.started, class)
	if err != nil {
		h.errs = append(h.errs, err)
	}
	return err
}

// Finish runs after-all for every started class and returns the joined
// class-level errors, before-all failures included. Calling it again only
// returns the errors.
func (h *Hooks) Finish(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, class := range h.started {
		if err := h.runner.AfterAll(ctx, class); err != nil {
			h.errs = append(h.errs, err)
		}
	}
	h.started = nil
	return errors.Join(h.errs...)
}
