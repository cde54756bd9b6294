package execution

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/decorum/internal/suite"
	"github.com/roach88/decorum/internal/unit"
)

func TestContext_Attributes(t *testing.T) {
	ec := newContext("id", suite.NewClass("A"), nil)

	assert.False(t, ec.Contains("tx"))
	ec.Set("tx", 42)
	assert.True(t, ec.Contains("tx"))

	v, ok := ec.Get("tx")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	old, ok := ec.Delete("tx")
	assert.True(t, ok)
	assert.Equal(t, 42, old)
	assert.False(t, ec.Contains("tx"))

	_, ok = ec.Delete("tx")
	assert.False(t, ok)
}

func TestContext_PropertiesAreCopies(t *testing.T) {
	d := unit.NewDescriptor(unit.Declaration{Properties: []unit.Property{{Name: "k", Value: "v"}}}, nil)
	ec := newContext("id", suite.NewClass("A"), []*unit.Descriptor{d})

	props := ec.Properties()
	props["k"] = "changed"
	descs := ec.Descriptors()
	descs[0] = nil

	v, _ := ec.Property("k")
	assert.Equal(t, "v", v)
	assert.NotNil(t, ec.Descriptors()[0])
	assert.Equal(t, "A", ec.Class().Name)
	assert.Equal(t, "id", ec.ID())
}

func TestContext_ConcurrentAttributes(t *testing.T) {
	ec := newContext("id", suite.NewClass("A"), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			ec.Set("k", i)
		}(i)
		go func() {
			defer wg.Done()
			ec.Get("k")
		}()
	}
	wg.Wait()

	assert.True(t, ec.Contains("k"))
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a, b := gen.Generate(), gen.Generate()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('7'), a[14], "version nibble")
}
