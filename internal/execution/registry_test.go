package execution_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/decorum/internal/execution"
	"github.com/roach88/decorum/internal/suite"
	"github.com/roach88/decorum/internal/testutil"
	"github.com/roach88/decorum/internal/unit"
)

// countingLoader wraps a unit loader and counts calls.
type countingLoader struct {
	calls atomic.Int32
	load  func(map[string]any) ([]*unit.Descriptor, error)
}

func (l *countingLoader) LoadDescriptors(overrides map[string]any) ([]*unit.Descriptor, error) {
	l.calls.Add(1)
	return l.load(overrides)
}

func staticUnits(decls ...unit.Declaration) *countingLoader {
	return &countingLoader{load: func(overrides map[string]any) ([]*unit.Descriptor, error) {
		out := make([]*unit.Descriptor, 0, len(decls))
		for _, d := range decls {
			out = append(out, unit.NewDescriptor(d, overrides))
		}
		return out, nil
	}}
}

func TestGetInstance_CachesPerClass(t *testing.T) {
	loader := staticUnits(unit.Declaration{Name: "db", Named: true})
	reg := execution.NewRegistry(loader, execution.WithIDGenerator(testutil.NewSequentialIDs("")))

	a1, err := reg.GetInstance(suite.NewClass("A"), nil)
	require.NoError(t, err)
	a2, err := reg.GetInstance(suite.NewClass("A"), map[string]any{"ignored": true})
	require.NoError(t, err)
	b, err := reg.GetInstance(suite.NewClass("B"), nil)
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, "ctx-1", a1.ID())
	assert.Equal(t, "ctx-2", b.ID())
	assert.Equal(t, int32(2), loader.calls.Load())
	assert.Equal(t, 2, reg.Len())
}

func TestGetInstance_FirstOverridesWin(t *testing.T) {
	loader := staticUnits(unit.Declaration{Properties: []unit.Property{{Name: "mode", Value: "declared"}}})
	reg := execution.NewRegistry(loader)

	first, err := reg.GetInstance(suite.NewClass("A"), map[string]any{"mode": "first"})
	require.NoError(t, err)
	second, err := reg.GetInstance(suite.NewClass("A"), map[string]any{"mode": "second"})
	require.NoError(t, err)

	v, _ := second.Property("mode")
	assert.Equal(t, "first", v)
	assert.Same(t, first, second)
}

func TestGetInstance_MergesUnitsInDiscoveryOrder(t *testing.T) {
	loader := staticUnits(
		unit.Declaration{Name: "one", Named: true, Properties: []unit.Property{{Name: "k", Value: "1"}, {Name: "a", Value: "x"}}},
		unit.Declaration{Name: "two", Named: true, Properties: []unit.Property{{Name: "k", Value: "2"}}},
	)
	ec, err := execution.NewRegistry(loader).GetInstance(suite.NewClass("A"), nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"k": "2", "a": "x"}, ec.Properties())
	require.Len(t, ec.Descriptors(), 2)

	d, ok := ec.Descriptor("one")
	require.True(t, ok)
	name, _ := d.UnitName()
	assert.Equal(t, "one", name)

	_, ok = ec.Descriptor("missing")
	assert.False(t, ok)
}

func TestGetInstance_MissingClass(t *testing.T) {
	loader := staticUnits()
	reg := execution.NewRegistry(loader)

	_, err := reg.GetInstance(suite.Class{}, nil)
	require.ErrorIs(t, err, suite.ErrMissingClass)
	assert.Zero(t, loader.calls.Load())
}

func TestGetInstance_LoaderFailureCachesNothing(t *testing.T) {
	fail := true
	loader := &countingLoader{load: func(map[string]any) ([]*unit.Descriptor, error) {
		if fail {
			return nil, &unit.LoadError{Code: unit.ErrCodeParseFailed, Message: "bad"}
		}
		return nil, nil
	}}
	reg := execution.NewRegistry(loader)

	_, err := reg.GetInstance(suite.NewClass("A"), nil)
	require.Error(t, err)
	assert.True(t, execution.IsCreateError(err))
	assert.Equal(t, unit.ErrCodeParseFailed, unit.ErrorCode(err))
	assert.Equal(t, 0, reg.Len())

	fail = false
	ec, err := reg.GetInstance(suite.NewClass("A"), nil)
	require.NoError(t, err)
	assert.NotNil(t, ec)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestGetInstance_LoaderPanicFailsAndRetries(t *testing.T) {
	var panicked bool
	loader := &countingLoader{load: func(map[string]any) ([]*unit.Descriptor, error) {
		if !panicked {
			panicked = true
			panic("cue evaluation blew up")
		}
		return nil, nil
	}}
	reg := execution.NewRegistry(loader, execution.WithIDGenerator(testutil.NewSequentialIDs("")))
	class := suite.NewClass("A")

	ec, err := reg.GetInstance(class, nil)
	require.Error(t, err)
	assert.Nil(t, ec)
	assert.True(t, execution.IsCreateError(err))
	assert.Contains(t, err.Error(), "panic: cue evaluation blew up")
	assert.Equal(t, 0, reg.Len())
	_, ok := reg.Lookup("A")
	assert.False(t, ok)

	ec, err = reg.GetInstance(class, nil)
	require.NoError(t, err)
	require.NotNil(t, ec)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestGetInstance_NilLoader(t *testing.T) {
	ec, err := execution.NewRegistry(nil).GetInstance(suite.NewClass("A"), nil)
	require.NoError(t, err)
	assert.Empty(t, ec.Descriptors())
	assert.Empty(t, ec.Properties())
}

func TestGetInstance_ConcurrentSameClassBuildsOnce(t *testing.T) {
	release := make(chan struct{})
	loader := &countingLoader{load: func(map[string]any) ([]*unit.Descriptor, error) {
		<-release
		return nil, nil
	}}
	reg := execution.NewRegistry(loader)

	const callers = 16
	results := make([]*execution.Context, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ec, err := reg.GetInstance(suite.NewClass("Shared"), nil)
			if err == nil {
				results[i] = ec
			}
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loader.calls.Load())
	for _, ec := range results {
		assert.Same(t, results[0], ec)
	}
}

func TestGetInstance_ConcurrentDifferentClasses(t *testing.T) {
	reg := execution.NewRegistry(staticUnits())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := reg.GetInstance(suite.NewClass(fmt.Sprintf("C%d", i)), nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 32, reg.Len())
}

func TestDrop(t *testing.T) {
	reg := execution.NewRegistry(staticUnits())
	class := suite.NewClass("A")

	first, err := reg.GetInstance(class, nil)
	require.NoError(t, err)

	assert.True(t, reg.Drop(class))
	assert.False(t, reg.Drop(class))
	assert.Equal(t, 0, reg.Len())

	second, err := reg.GetInstance(class, nil)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestWithUnitLoader(t *testing.T) {
	fsys := unit.Static{{
		Path:   "orders.units.yaml",
		Format: unit.FormatYAML,
		Data:   []byte("units:\n  - name: orders\n    provider: sqlite3\n    properties:\n      - {name: dsn, value: ':memory:'}\n"),
	}}
	reg := execution.NewRegistry(unit.NewLoader(fsys))

	ec, err := reg.GetInstance(suite.NewClass("A"), map[string]any{"debug": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"dsn": ":memory:", "debug": true}, ec.Properties())
}

func TestCreateError_Unwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	err := fmt.Errorf("outer: %w", &execution.CreateError{Class: "A", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.True(t, execution.IsCreateError(err))
	assert.Contains(t, err.Error(), "create execution context for A")
	assert.False(t, execution.IsCreateError(cause))
}

func TestLookup(t *testing.T) {
	reg := execution.NewRegistry(staticUnits())

	_, ok := reg.Lookup("A")
	assert.False(t, ok)

	ec, err := reg.GetInstance(suite.NewClass("A"), nil)
	require.NoError(t, err)

	got, ok := reg.Lookup("A")
	require.True(t, ok)
	assert.Same(t, ec, got)
}
