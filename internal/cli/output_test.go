package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailed, ExitCode(errors.New("plain")))
	assert.Equal(t, ExitUsage, ExitCode(exitErrorf(ExitUsage, "bad flag")))

	wrapped := fmt.Errorf("outer: %w", exitErrorf(ExitUsage, "inner"))
	assert.Equal(t, ExitUsage, ExitCode(wrapped))
}

func TestExitError_KeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := exitErrorf(ExitUsage, "failed to open database: %w", cause)

	assert.Equal(t, "failed to open database: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{JSON: true, Out: &buf}

	require.NoError(t, p.Result(map[string]int{"units": 2}, "ignored"))
	assert.JSONEq(t, `{"status":"ok","data":{"units":2}}`, buf.String())

	buf.Reset()
	require.NoError(t, p.Fail("E004", "cannot parse", nil))
	assert.JSONEq(t, `{"status":"error","error":{"code":"E004","message":"cannot parse"}}`, buf.String())
}

func TestPrinter_Text(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf}

	require.NoError(t, p.Result(nil, "done\n"))
	assert.Equal(t, "done\n", buf.String())

	buf.Reset()
	require.NoError(t, p.Fail("E002", "scan failed", "details hidden"))
	assert.Equal(t, "Error [E002]: scan failed\n", buf.String())

	buf.Reset()
	p.Verbose = true
	require.NoError(t, p.Fail("E002", "scan failed", "permission denied"))
	assert.Equal(t, "Error [E002]: scan failed\nDetails: permission denied\n", buf.String())
}

func TestPrinter_DebugfUsesDiag(t *testing.T) {
	var out, diag bytes.Buffer
	p := &Printer{JSON: true, Out: &out, Diag: &diag, Verbose: true}

	p.Debugf("read %d entries", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "read 3 entries\n", diag.String())

	p.Verbose = false
	p.Debugf("hidden")
	assert.Equal(t, "read 3 entries\n", diag.String())
}
