package decorator

import (
	"context"

	"github.com/roach88/decorum/internal/execution"
	"github.com/roach88/decorum/internal/feature"
	"github.com/roach88/decorum/internal/suite"
)

// Applicable is the part of the contract shared by both decorator kinds.
type Applicable interface {
	// Priority orders decorators within a phase. Lower runs first in
	// before phases and last in after phases.
	Priority() int

	// IsConfigurationSupported reports whether the decorator takes part in
	// runs of the given context. It is asked again on every phase.
	IsConfigurationSupported(ec *execution.Context) (bool, error)
}

// ClassDecorator hooks into the class lifecycle.
type ClassDecorator interface {
	Applicable
	BeforeAll(ctx context.Context, ec *execution.Context, class suite.Class) error
	AfterAll(ctx context.Context, ec *execution.Context, class suite.Class) error
}

// MethodDecorator hooks into the lifecycle of every test method.
type MethodDecorator interface {
	Applicable
	BeforeTest(ctx context.Context, inv *Invocation) error
	AfterTest(ctx context.Context, inv *Invocation) error
}

// Named is optionally implemented by decorators to label them in logs,
// errors and journals.
type Named interface {
	Name() string
}

// Invocation describes one lifecycle callback. It is built by the host
// runner and never outlives the callback.
type Invocation struct {
	Class   suite.Class
	Method  *suite.Method
	Context *execution.Context

	// Instance is the live test fixture, if the host has one.
	Instance any

	// Err is the error the test already produced. Only set for after
	// phases, and only when the host opts in to exception awareness.
	Err error
}

// FeatureResolver resolves the features declared on the invocation's class
// and method.
func (inv *Invocation) FeatureResolver() feature.Set {
	b := feature.NewBuilder(inv.Class)
	if inv.Method != nil {
		b = b.WithTestMethod(*inv.Method)
	}
	return b.Build()
}

// MethodName returns the target method name, or "" for class phases.
func (inv *Invocation) MethodName() string {
	if inv.Method == nil {
		return ""
	}
	return inv.Method.Name
}
