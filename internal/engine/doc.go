// Package engine dispatches lifecycle phases to decorators.
//
// An Executor has one entry point per phase:
//
//	ProcessBeforeAll  class decorators, ascending priority
//	ProcessBefore     method decorators, ascending priority
//	ProcessAfter      method decorators, descending priority
//	ProcessAfterAll   class decorators, descending priority
//
// Each call asks every decorator of the phase's kind whether it supports
// the invocation's execution context, sorts the supporting ones by
// priority, and invokes them one after another on the calling goroutine.
//
// ORDERING:
// Before phases use a stable ascending sort, so equal priorities keep
// discovery order. After phases use the exact reverse of that order, ties
// included, so teardown unwinds setup like a stack.
//
// FAILURE:
// The first failing decorator (or failing applicability check) ends the
// phase; later decorators are not invoked and nothing is retried. The error
// comes back as a *PhaseError naming the decorator. With
// WithTeardownPolicy(BestEffortTeardown), after phases keep going and
// return every failure joined with errors.Join. Before phases always abort.
//
// SEQUENCING:
// Every invoked decorator is reported to the Observers as a Dispatch
// stamped with a sequence number from a logical clock. Sequence numbers
// are strictly increasing for the Executor's lifetime; wall-clock time is
// never used for ordering.
//
// The context.Context passed to the entry points is handed to decorators
// untouched. The engine itself never checks it: a hung decorator blocks
// the phase.
package engine
