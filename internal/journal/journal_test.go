package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/decorum/internal/engine"
	"github.com/roach88/decorum/internal/execution"
	"github.com/roach88/decorum/internal/suite"
	"github.com/roach88/decorum/internal/unit"
)

func TestOpen_CreatesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		j, err := Open(path)
		require.NoError(t, err, "open %d", i)

		version, err := j.schemaVersion()
		require.NoError(t, err)
		assert.Equal(t, currentSchemaVersion, version)
		require.NoError(t, j.Close())
	}

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_WALMode(t *testing.T) {
	j := createTestJournal(t)

	var mode string
	require.NoError(t, j.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestRecordAndList(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	entries := []Entry{
		{Seq: 3, ContextID: "c1", Phase: engine.PhaseAfterAll, Class: "A", Decorator: "tx", Priority: 1, Error: "rollback failed"},
		{Seq: 1, ContextID: "c1", Phase: engine.PhaseBeforeAll, Class: "A", Decorator: "tx", Priority: 1},
		{Seq: 2, ContextID: "c2", Phase: engine.PhaseBeforeTest, Class: "B", Method: "TestX", Decorator: "seed", Priority: 5},
	}
	for _, e := range entries {
		require.NoError(t, j.Record(ctx, e))
	}
	// Duplicate seq is ignored.
	require.NoError(t, j.Record(ctx, Entry{Seq: 1, ContextID: "other", Phase: engine.PhaseBeforeAll, Class: "Z", Decorator: "z"}))

	all, err := j.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].Seq, all[1].Seq, all[2].Seq})
	assert.Equal(t, "A", all[0].Class)
	assert.Equal(t, "TestX", all[1].Method)
	assert.True(t, all[2].Failed())

	byClass, err := j.List(ctx, Filter{Class: "A"})
	require.NoError(t, err)
	assert.Len(t, byClass, 2)

	failed, err := j.List(ctx, Filter{Failed: true})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "rollback failed", failed[0].Error)

	byPhase, err := j.List(ctx, Filter{Phase: engine.PhaseBeforeTest, ContextID: "c2"})
	require.NoError(t, err)
	require.Len(t, byPhase, 1)
	assert.Equal(t, engine.PhaseBeforeTest, byPhase[0].Phase)

	none, err := j.List(ctx, Filter{Class: "missing"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	last, err := j.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), last)
}

func TestLastSeq_Empty(t *testing.T) {
	last, err := createTestJournal(t).LastSeq(context.Background())
	require.NoError(t, err)
	assert.Zero(t, last)
}

func TestRecordContext(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	loader := unit.NewLoader(unit.Static{{
		Path:   "db.units.yaml",
		Format: unit.FormatYAML,
		Data: []byte(`units:
  - name: orders
    provider: sqlite3
    properties:
      - {name: dsn, value: ":memory:"}
  - provider: postgres
`),
	}})
	ec, err := execution.NewRegistry(loader).GetInstance(suite.NewClass("A"), map[string]any{"debug": true})
	require.NoError(t, err)

	require.NoError(t, j.RecordContext(ctx, ec))
	require.NoError(t, j.RecordContext(ctx, ec), "recording twice is a no-op")

	rec, ok, err := j.Context(ctx, ec.ID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", rec.Class)
	assert.Equal(t, map[string]any{"dsn": ":memory:", "debug": true}, rec.Properties)

	require.Len(t, rec.Units, 2)
	assert.Equal(t, "orders", rec.Units[0].Name)
	assert.True(t, rec.Units[0].Named)
	assert.False(t, rec.Units[1].Named)
	assert.Equal(t, "postgres", rec.Units[1].Provider)
	assert.Equal(t, "db.units.yaml", rec.Units[0].Source)
	assert.Equal(t, ec.Descriptors()[0].Fingerprint(), rec.Units[0].Fingerprint)

	_, ok, err = j.Context(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestObserver_RecordsDispatches(t *testing.T) {
	j := createTestJournal(t)
	obs := NewObserver(j, nil)

	obs.Observe(context.Background(), engine.Dispatch{
		Seq: 1, Phase: engine.PhaseAfterTest, Class: "A", Method: "TestY",
		ContextID: "c1", Decorator: "cleanup", Priority: 2, Err: errors.New("left rows behind"),
	})

	entries, err := j.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{
		Seq: 1, ContextID: "c1", Phase: engine.PhaseAfterTest, Class: "A", Method: "TestY",
		Decorator: "cleanup", Priority: 2, Error: "left rows behind",
	}, entries[0])
}

func TestObserver_SwallowsWriteErrors(t *testing.T) {
	j := createTestJournal(t)
	require.NoError(t, j.Close())

	assert.NotPanics(t, func() {
		NewObserver(j, nil).Observe(context.Background(), engine.Dispatch{Seq: 1, Phase: engine.PhaseBeforeAll})
	})
}

func TestMarshalProperties(t *testing.T) {
	data, err := marshalProperties(map[string]any{"b": 2, "a": "x", "fn": func() {}})
	require.NoError(t, err)
	assert.Contains(t, data, `"a":"x","b":2,"fn":"0x`)

	empty, err := marshalProperties(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", empty)
}
