package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/decorum/internal/decorator"
)

// executeCommand runs the root command with args and returns stdout.
func executeCommand(t *testing.T, decs []any, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(decorator.Providers(decs))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeResponse parses a JSON Envelope and its data into data.
func decodeResponse(t *testing.T, out string, data any) Envelope {
	t.Helper()
	var raw struct {
		Envelope
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), "output: %s", out)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Envelope
}
