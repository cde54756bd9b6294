package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AllValid(t *testing.T) {
	out, err := executeCommand(t, nil, "validate", "testdata/units")
	require.NoError(t, err)

	assert.Contains(t, out, "ok    META-INF/persistence.xml (1 units)\n")
	assert.Contains(t, out, "ok    reporting.units.yaml (1 units)\n")
	assert.Contains(t, out, "All configuration sources are valid\n")
}

func TestValidate_ReportsEverySource(t *testing.T) {
	out, err := executeCommand(t, nil, "--format", "json", "validate", "testdata/broken")
	require.Error(t, err)
	assert.Equal(t, ExitFailed, ExitCode(err))

	var result ValidateResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, result.Valid)
	require.Len(t, result.Sources, 2)

	bad := result.Sources[0]
	assert.Equal(t, "bad.units.cue", bad.Path)
	assert.Equal(t, "cue", bad.Format)
	assert.False(t, bad.Valid)
	assert.Equal(t, "E004", bad.Code)
	assert.Positive(t, bad.Line)

	good := result.Sources[1]
	assert.Equal(t, "good.units.yaml", good.Path)
	assert.True(t, good.Valid)
	assert.Equal(t, 1, good.Units)
}

func TestValidate_TextFailure(t *testing.T) {
	out, err := executeCommand(t, nil, "validate", "testdata/broken")
	require.Error(t, err)

	assert.Contains(t, out, "FAIL  bad.units.cue:")
	assert.Contains(t, out, "[E004]")
	assert.NotContains(t, out, "All configuration sources are valid")
}

func TestValidate_MissingDirectory(t *testing.T) {
	_, err := executeCommand(t, nil, "validate", "testdata/nope")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
}
