package harness

import (
	"github.com/roach88/decorum/internal/decorator"
	"github.com/roach88/decorum/internal/engine"
	"github.com/roach88/decorum/internal/execution"
	"github.com/roach88/decorum/internal/testutil"
)

// newTestRunner wires recorders into a runner with deterministic ids.
func newTestRunner(decs []any, engineOpts []engine.Option, opts ...Option) (*Runner, *execution.Registry) {
	contexts := execution.NewRegistry(nil, execution.WithIDGenerator(testutil.NewSequentialIDs("")))
	executor := engine.New(decorator.NewRegistry(decorator.Providers(decs)), engineOpts...)
	return New(executor, contexts, opts...), contexts
}

func newExecutor(decs []any) *engine.Executor {
	return engine.New(decorator.NewRegistry(decorator.Providers(decs)))
}
