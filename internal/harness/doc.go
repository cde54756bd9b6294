// Package harness drives the lifecycle phases of a test class the way a
// host test runner would.
//
// A Runner ties an engine.Executor to an execution.Registry:
//
//	BeforeAll   get (or create) the class context, then before-all phase
//	BeforeEach  build the invocation, then before-test phase
//	AfterEach   attach the test error if configured, then after-test phase
//	AfterAll    after-all phase, then release the class context
//
// Run plugs a Runner into go test: one subtest per Case, after-all
// registered with t.Cleanup so it runs even when a case fails.
//
// # Scenario Format
//
// Scenarios describe a class run in YAML so the produced dispatch trace can
// be compared against a golden file:
//
//	name: ordered_teardown
//	description: "Teardown mirrors setup"
//	class:
//	  name: OrderTest
//	  features: { transactional: true }
//	properties: { dsn: ":memory:" }
//	methods:
//	  - name: TestCreate
//	    features: { seed: users.yaml }
//	  - name: TestBroken
//	    fail: "assertion failed"
//
// A method with fail set returns that error from its body. Feature maps are
// declared in sorted key order.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
