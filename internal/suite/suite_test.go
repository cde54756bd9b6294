package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainFixture struct{}

type declaringFixture struct{}

func (declaringFixture) DeclareFeatures() []Feature {
	return []Feature{Flag("transactional"), With("seed-data", "users.yaml")}
}

func TestClassOf_UsesQualifiedTypeName(t *testing.T) {
	c := ClassOf(&plainFixture{})
	assert.Equal(t, "github.com/roach88/decorum/internal/suite.plainFixture", c.Name)
	assert.Empty(t, c.Features)
}

func TestClassOf_PointerAndValueShareIdentity(t *testing.T) {
	assert.Equal(t, ClassOf(plainFixture{}).Name, ClassOf(&plainFixture{}).Name)
}

func TestClassOf_CollectsDeclaredFeatures(t *testing.T) {
	c := ClassOf(declaringFixture{})
	require.Len(t, c.Features, 2)
	assert.Equal(t, "transactional", c.Features[0].Key)
	assert.Nil(t, c.Features[0].Value)
	assert.Equal(t, "users.yaml", c.Features[1].Value)
}

func TestClassOf_Nil(t *testing.T) {
	c := ClassOf(nil)
	assert.ErrorIs(t, c.Validate(), ErrMissingClass)
}

func TestClass_Validate(t *testing.T) {
	assert.NoError(t, NewClass("OrderTest").Validate())
	assert.ErrorIs(t, NewClass("   ").Validate(), ErrMissingClass)
}
