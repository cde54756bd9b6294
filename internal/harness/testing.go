package harness

import (
	"context"
	"testing"

	"github.com/roach88/decorum/internal/suite"
)

// Run executes cases as subtests of t, bracketed by the class phases.
// After-all is registered with t.Cleanup, so it runs after every subtest
// finished even if one of them failed or before-all failed.
func Run(t *testing.T, r *Runner, class suite.Class, cases ...Case) {
	t.Helper()

	t.Cleanup(func() {
		// t.Context is already cancelled when cleanups run.
		if err := r.AfterAll(context.WithoutCancel(t.Context()), class); err != nil {
			t.Errorf("after-all %s: %v", class.Name, err)
		}
	})

	if _, err := r.BeforeAll(t.Context(), class); err != nil {
		t.Fatalf("before-all %s: %v", class.Name, err)
	}

	for _, c := range cases {
		t.Run(c.Method.Name, func(t *testing.T) {
			ctx := t.Context()

			inv, err := r.BeforeEach(ctx, class, c.Method, c.Instance)
			testErr := err
			if err != nil {
				t.Errorf("before-test: %v", err)
			} else if c.Body != nil {
				if testErr = c.Body(ctx, inv); testErr != nil {
					t.Error(testErr)
				}
			}

			if err := r.AfterEach(ctx, inv, testErr); err != nil {
				t.Errorf("after-test: %v", err)
			}
		})
	}
}
