package engine

import (
	"errors"
	"fmt"
)

// ErrMissingContext is returned when an invocation carries no execution
// context. The phase does not run.
var ErrMissingContext = errors.New("engine: invocation has no execution context")

// PhaseError reports the decorator that ended a phase.
type PhaseError struct {
	Phase     Phase
	Decorator string
	Priority  int
	Class     string
	Method    string

	// Check is true when the applicability check failed rather than the
	// lifecycle call itself.
	Check bool

	Err error
}

func (e *PhaseError) Error() string {
	target := e.Class
	if e.Method != "" {
		target += "." + e.Method
	}
	what := "decorator"
	if e.Check {
		what = "applicability check of"
	}
	return fmt.Sprintf("%s %s: %s %s (priority %d): %v", e.Phase, target, what, e.Decorator, e.Priority, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// IsPhaseError reports whether err wraps a PhaseError.
// Uses errors.As to handle wrapped errors.
func IsPhaseError(err error) bool {
	var pe *PhaseError
	return errors.As(err, &pe)
}

// FailedDecorators lists the decorators named by every PhaseError in err,
// including those joined by a best-effort teardown.
func FailedDecorators(err error) []string {
	var names []string
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if pe, ok := err.(*PhaseError); ok {
			names = append(names, pe.Decorator)
			return
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return names
}
