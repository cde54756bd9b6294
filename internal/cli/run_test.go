package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/decorum/internal/journal"
	"github.com/roach88/decorum/internal/testutil"
)

func recorders(log *testutil.CallLog) []any {
	return []any{
		&testutil.ClassRecorder{Label: "tx", Prio: 0, Log: log},
		&testutil.MethodRecorder{Label: "seed", Prio: 10, Log: log},
	}
}

func TestRun_PassingScenario(t *testing.T) {
	log := &testutil.CallLog{}
	out, err := executeCommand(t, recorders(log), "run", "testdata/scenarios/passing.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Scenario: passing (PassingTest)\n  PASS  TestOne\nPASSED\n", out)
	assert.Equal(t, []string{
		"tx.before-all(PassingTest)",
		"seed.before-test(TestOne)",
		"seed.after-test(TestOne)",
		"tx.after-all(PassingTest)",
	}, log.Calls())
}

func TestRun_FailingCase(t *testing.T) {
	log := &testutil.CallLog{}
	out, err := executeCommand(t, recorders(log), "--format", "json", "run", "testdata/scenarios/checkout.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailed, ExitCode(err))

	var result RunResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "checkout", result.Scenario)
	assert.Equal(t, "CheckoutTest", result.Class)
	assert.False(t, result.Passed)
	assert.Equal(t, []CaseView{
		{Method: "TestPay", Passed: true},
		{Method: "TestRefund", Passed: false, Error: "refund rejected"},
	}, result.Cases)

	// Teardown still ran for the failing case and the class.
	calls := log.Calls()
	assert.Contains(t, calls, "seed.after-test(TestRefund)")
	assert.Equal(t, "tx.after-all(CheckoutTest)", calls[len(calls)-1])
}

func TestRun_ConsiderErrors(t *testing.T) {
	log := &testutil.CallLog{}
	_, err := executeCommand(t, recorders(log), "run", "testdata/scenarios/checkout.yaml", "--consider-errors")
	require.Error(t, err)

	assert.Contains(t, log.Calls(), "seed.after-test(TestRefund) err=refund rejected")
}

func TestRun_RecordsJournal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	log := &testutil.CallLog{}

	_, err := executeCommand(t, recorders(log), "run", "testdata/scenarios/passing.yaml", "--db", db)
	require.NoError(t, err)
	// A second run continues the sequence.
	_, err = executeCommand(t, recorders(log), "run", "testdata/scenarios/passing.yaml", "--db", db)
	require.NoError(t, err)

	out, err := executeCommand(t, nil, "--format", "json", "journal", "--db", db)
	require.NoError(t, err)

	var entries []EntryView
	decodeResponse(t, out, &entries)
	require.Len(t, entries, 8)
	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Seq)
		assert.Equal(t, "PassingTest", e.Class)
	}
	assert.Equal(t, "before-all", entries[0].Phase)
	assert.Equal(t, "tx", entries[0].Decorator)
	assert.Equal(t, "TestOne", entries[1].Method)
	assert.Equal(t, "after-all", entries[7].Phase)
	assert.NotEqual(t, entries[0].ContextID, entries[4].ContextID, "each run creates its own context")
}

func TestRun_UnitsAndOverrides(t *testing.T) {
	log := &testutil.CallLog{}
	_, err := executeCommand(t, recorders(log), "run", "testdata/scenarios/passing.yaml",
		"--units", "testdata/units", "--set", "pool=9")
	require.NoError(t, err)

	_, err = executeCommand(t, recorders(log), "run", "testdata/scenarios/passing.yaml", "--units", "testdata/broken")
	require.Error(t, err)
	assert.Equal(t, ExitFailed, ExitCode(err), "a unit load failure fails the class")
}

func TestRun_CommandErrors(t *testing.T) {
	_, err := executeCommand(t, nil, "run", "testdata/scenarios/missing.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))

	_, err = executeCommand(t, nil, "run", "testdata/scenarios/passing.yaml", "--units", "testdata/none")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestRun_SetOverridesScenarioProperties(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	log := &testutil.CallLog{}

	_, err := executeCommand(t, recorders(log), "run", "testdata/scenarios/configured.yaml",
		"--units", "testdata/units", "--set", "pool=9", "--db", db)
	require.NoError(t, err)

	j, err := journal.Open(db)
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	entries, err := j.List(ctx, journal.Filter{Class: "ConfiguredTest"})
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	rec, ok, err := j.Context(ctx, entries[0].ContextID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "9", rec.Properties["pool"], "--set wins over the scenario")
	assert.Equal(t, "30", rec.Properties["timeout"], "scenario fills keys --set leaves alone")
	assert.Len(t, rec.Units, 2)
}
